// Package web serves the site: it writes and activates the nginx virtual
// host and deploys WordPress into the document root.
package web
