// Package archive uploads the log of the current run to object storage.
package archive

import (
	"errors"
	"fmt"
	"time"

	"github.com/imamik/lempress/internal/provisioning"
	"github.com/imamik/lempress/internal/util/naming"
)

const (
	phase = "archive"

	UploadStep = "runlog.archive"

	stampLayout = "20060102T150405Z"
)

// ErrArchiveNotConfigured is returned when runlog.archive runs without an archiver.
var ErrArchiveNotConfigured = errors.New("run log archive is not configured")

// Uploader stores this run's log lines under
// <prefix>/<domain>/<UTC timestamp>.log.
type Uploader struct {
	now func() time.Time
}

func NewUploader() *Uploader { return &Uploader{now: time.Now} }

func (u *Uploader) Name() string        { return UploadStep }
func (u *Uploader) DependsOn() []string { return []string{"site.register"} }

func (u *Uploader) Provision(ctx *provisioning.Context) error {
	if ctx.Services.Archiver == nil {
		return ErrArchiveNotConfigured
	}
	if ctx.RunLog == nil {
		ctx.Observer.Printf("[%s] No run log attached, skipping upload", phase)
		return nil
	}

	data, err := ctx.RunLog.Current()
	if err != nil {
		return fmt.Errorf("failed to read run log: %w", err)
	}
	stamp := u.now().UTC().Format(stampLayout)
	key := naming.RunLogArchiveKey(ctx.Config.Archive.Prefix, ctx.Request.Domain, stamp)

	ctx.Observer.Printf("[%s] Uploading %d bytes to %s...", phase, len(data), key)
	if err := ctx.Services.Archiver.Upload(ctx, key, data); err != nil {
		return fmt.Errorf("failed to upload run log: %w", err)
	}
	ctx.State.ArchiveKey = key
	return nil
}
