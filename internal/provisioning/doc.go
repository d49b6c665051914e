// Package provisioning provides the step model and the runner that drives a
// provisioning run.
//
// # Subpackages
//
//   - plan/ declares the ordered step lists for each run variant
//   - packages/ refreshes the package index and installs the stack
//   - database/ creates the site database, user and grant
//   - web/ writes the nginx virtual host and deploys WordPress
//   - security/ configures ufw, fail2ban and ClamAV
//   - tls/ manages DNS records, certificate issuance and renewal
//   - services/ verifies PHP-FPM and the admin panel
//   - site/ reserves and records the site in the registry
//   - reset/ wipes an existing installation before a clean install
//   - archive/ uploads the run log to object storage
//
// # Core Types
//
// Context carries configuration, the immutable Request, shared State, the
// collaborator Services and the Observer. Step defines one action with
// Name(), DependsOn() and Provision(). Pipeline runs steps sequentially,
// bounds each with a timeout and halts on the first failure.
package provisioning
