// Package naming normalizes site domains and derives resource names from them.
//
// A [Domain] carries the operator's display form next to its Punycode form.
// Document roots, virtual host files, database defaults and registry keys
// are always built from the ASCII form; only user-facing output uses the
// display form.
package naming
