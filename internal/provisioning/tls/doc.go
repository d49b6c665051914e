// Package tls points DNS at the host, obtains the site certificate and
// schedules its renewal.
//
// dns.record runs only when a Cloudflare token and zone are configured. The
// tls.* steps are left out of the plan when tls.enabled is false.
package tls
