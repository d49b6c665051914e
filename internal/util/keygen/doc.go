// Package keygen generates random secrets for site provisioning.
//
// It produces operator-facing passwords and the eight WordPress
// authentication keys and salts written into wp-config.php.
package keygen
