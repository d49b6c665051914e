// Package security hardens the host: ufw rules, fail2ban jails and ClamAV.
package security
