// Package config defines the provisioning configuration and its loaders.
//
// The [Config] struct is read from an optional YAML file (see [Load]).
// Defaults target a stock Ubuntu 22.04 host. Secrets never come from the
// file; they are read from the environment variables listed in
// constants.go. Per-step timeouts are loaded separately by [LoadTimeouts].
package config
