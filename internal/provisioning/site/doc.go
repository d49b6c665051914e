// Package site reserves a site's resources before provisioning and records
// the site in the registry once it is complete.
package site
