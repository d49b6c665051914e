// Package s3 archives run logs to Amazon S3 or an S3-compatible object store.
//
// [Client] implements provisioning.Archiver. The bucket is created on the
// first upload if it does not exist.
package s3
