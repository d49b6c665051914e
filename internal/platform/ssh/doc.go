// Package ssh runs provisioning commands on a remote host.
//
// [Client] implements shell.Runner over a single reused connection with
// key-based authentication. Dialing retries with exponential backoff; a host
// key mismatch against the configured known_hosts file is not retried.
package ssh
