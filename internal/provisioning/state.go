package provisioning

import "time"

// State holds the shared results of provisioning steps.
// It is progressively populated as each step completes and read by later
// steps and the reporter.
type State struct {
	// Web results
	PHPSocket       string
	VirtualHostPath string

	// DNS results
	ServerIP  string
	DNSRecord string

	// TLS results
	Certificate CertificatePaths
	NextRenewal time.Time

	// Service results
	PanelPort   int
	PanelActive bool

	// Reset results: paths and objects removed by a clean install
	Wiped []string

	// Archive results
	ArchiveKey string
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{}
}
