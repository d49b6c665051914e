package archive

import (
	"errors"
	"testing"
	"time"

	"github.com/imamik/lempress/internal/config"
	lptest "github.com/imamik/lempress/internal/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLog struct{}

func (failingLog) Current() ([]byte, error) { return nil, errors.New("file closed") }

func fixedUploader() *Uploader {
	return &Uploader{now: func() time.Time {
		return time.Date(2026, 10, 14, 14, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	}}
}

func TestUploader_Provision(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.Archive.Bucket = "logs"
	cfg.Archive.Prefix = "runs"
	fakes := lptest.NewFakeServices()
	fakes.ArchiveEnabled = true
	ctx := lptest.NewContext(cfg, lptest.NewRequestBuilder().WithDomain("тест.site").Build(), fakes)

	require.NoError(t, fixedUploader().Provision(ctx))

	key := "runs/xn--e1aybc.site/20261014T120000Z.log"
	assert.Equal(t, []string{"archiver.Upload " + key}, fakes.Calls())
	assert.Equal(t, key, ctx.State.ArchiveKey)
	assert.Contains(t, string(fakes.Uploaded[key]), "lempress run started")
}

func TestUploader_Errors(t *testing.T) {
	t.Parallel()

	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().Build(), lptest.NewFakeServices())
	assert.ErrorIs(t, fixedUploader().Provision(ctx), ErrArchiveNotConfigured)

	fakes := lptest.NewFakeServices()
	fakes.ArchiveEnabled = true
	ctx = lptest.NewContext(nil, lptest.NewRequestBuilder().Build(), fakes)
	ctx.RunLog = failingLog{}
	err := fixedUploader().Provision(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read run log")
	assert.Empty(t, fakes.Calls())
}

func TestUploader_NoRunLog(t *testing.T) {
	t.Parallel()
	fakes := lptest.NewFakeServices()
	fakes.ArchiveEnabled = true
	ctx := lptest.NewContext(nil, lptest.NewRequestBuilder().Build(), fakes)
	ctx.RunLog = nil

	require.NoError(t, fixedUploader().Provision(ctx))
	assert.Empty(t, fakes.Calls())
}
