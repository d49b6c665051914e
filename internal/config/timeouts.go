package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	Step              time.Duration // Default bound for any provisioning step
	Packages          time.Duration // Bound for package index refresh and install steps
	Database          time.Duration // Bound for database provisioning and reset
	CMS               time.Duration // Bound for CMS download, extraction and install
	Antivirus         time.Duration // Bound for signature updates
	Certificate       time.Duration // Bound for certificate issuance
	Probe             time.Duration // Bound for each precondition probe
	SSHDial           time.Duration // Bound for establishing the SSH connection
	RetryMaxAttempts  int           // Maximum number of retry attempts
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - LEMPRESS_TIMEOUT_STEP (default: 10m)
//   - LEMPRESS_TIMEOUT_PACKAGES (default: 30m)
//   - LEMPRESS_TIMEOUT_DATABASE (default: 2m)
//   - LEMPRESS_TIMEOUT_CMS (default: 10m)
//   - LEMPRESS_TIMEOUT_ANTIVIRUS (default: 15m)
//   - LEMPRESS_TIMEOUT_CERTIFICATE (default: 5m)
//   - LEMPRESS_TIMEOUT_PROBE (default: 10s)
//   - LEMPRESS_TIMEOUT_SSH_DIAL (default: 30s)
//   - LEMPRESS_RETRY_MAX_ATTEMPTS (default: 5)
//   - LEMPRESS_RETRY_INITIAL_DELAY (default: 2s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Step:              parseDuration("LEMPRESS_TIMEOUT_STEP", 10*time.Minute),
		Packages:          parseDuration("LEMPRESS_TIMEOUT_PACKAGES", 30*time.Minute),
		Database:          parseDuration("LEMPRESS_TIMEOUT_DATABASE", 2*time.Minute),
		CMS:               parseDuration("LEMPRESS_TIMEOUT_CMS", 10*time.Minute),
		Antivirus:         parseDuration("LEMPRESS_TIMEOUT_ANTIVIRUS", 15*time.Minute),
		Certificate:       parseDuration("LEMPRESS_TIMEOUT_CERTIFICATE", 5*time.Minute),
		Probe:             parseDuration("LEMPRESS_TIMEOUT_PROBE", 10*time.Second),
		SSHDial:           parseDuration("LEMPRESS_TIMEOUT_SSH_DIAL", 30*time.Second),
		RetryMaxAttempts:  parseInt("LEMPRESS_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("LEMPRESS_RETRY_INITIAL_DELAY", 2*time.Second),
	}
}

// ForStep returns the bound for the named step. Step names are
// "<group>.<action>"; groups without a dedicated timeout use Step.
func (t *Timeouts) ForStep(name string) time.Duration {
	group, _, _ := strings.Cut(name, ".")
	var d time.Duration
	switch {
	case group == "packages":
		d = t.Packages
	case group == "database":
		d = t.Database
	case group == "cms":
		d = t.CMS
	case group == "antivirus":
		d = t.Antivirus
	case name == "tls.issue":
		d = t.Certificate
	}
	if d <= 0 {
		d = t.Step
	}
	return d
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
