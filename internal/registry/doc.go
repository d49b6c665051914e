// Package registry persists the sites provisioned on a host.
//
// Records live in a single YAML file written atomically. [Registry.Lock]
// takes an exclusive advisory lock next to the file so concurrent runs
// against the same registry serialize.
package registry
