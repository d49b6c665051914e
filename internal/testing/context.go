package testing

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/imamik/lempress/internal/config"
	"github.com/imamik/lempress/internal/provisioning"
)

// StaticRunLog is a provisioning.RunLogSource with fixed content.
type StaticRunLog []byte

func (s StaticRunLog) Current() ([]byte, error) {
	return []byte(s), nil
}

// NewContext returns a provisioning context wired to fakes with a discarded
// log and a one-second step bound. A nil cfg uses config.Default().
func NewContext(cfg *config.Config, req provisioning.Request, fakes *FakeServices) *provisioning.Context {
	if cfg == nil {
		cfg = config.Default()
	}
	observer := provisioning.NewLogObserver(log.New(io.Discard, "", 0))
	ctx := provisioning.NewContext(context.Background(), cfg, req, fakes.Services(), observer)
	ctx.Timeouts = &config.Timeouts{Step: time.Second, RetryMaxAttempts: 1, RetryInitialDelay: time.Millisecond}
	ctx.RunLog = StaticRunLog("=== lempress run started ===\n")
	return ctx
}
