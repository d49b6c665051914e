// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable attempts,
// delays and an optional transient-error predicate. Package installs use it
// to ride out dpkg lock contention, and signature updates use it for mirror
// rate limits.
package retry
