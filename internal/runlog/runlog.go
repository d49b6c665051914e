// Package runlog provides the append-only run log mirrored to the console.
package runlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// RunLog is a timestamped log file opened for append. Every line written
// through Logger also goes to the console writer.
type RunLog struct {
	path   string
	file   *os.File
	start  int64
	logger *log.Logger
}

// Open opens path for append, creating it and its directory if needed. The
// file is never truncated or rotated. A nil console discards console output.
func Open(path string, console io.Writer) (*RunLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	// #nosec G304
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat run log: %w", err)
	}
	if console == nil {
		console = io.Discard
	}
	rl := &RunLog{
		path:   path,
		file:   f,
		start:  info.Size(),
		logger: log.New(io.MultiWriter(console, f), "", log.LstdFlags),
	}
	rl.logger.Printf("=== lempress run started %s ===", time.Now().UTC().Format(time.RFC3339))
	return rl, nil
}

// Logger returns the logger writing to both the console and the file.
func (r *RunLog) Logger() *log.Logger {
	return r.logger
}

// Path returns the log file path.
func (r *RunLog) Path() string {
	return r.path
}

// Printf writes one timestamped line.
func (r *RunLog) Printf(format string, v ...interface{}) {
	r.logger.Printf(format, v...)
}

// Current returns everything this run has written, starting at its banner.
func (r *RunLog) Current() ([]byte, error) {
	// #nosec G304
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run log: %w", err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Seek(r.start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to read run log: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read run log: %w", err)
	}
	return data, nil
}

// Close syncs and closes the file.
func (r *RunLog) Close() error {
	if r.file == nil {
		return nil
	}
	_ = r.file.Sync()
	err := r.file.Close()
	r.file = nil
	return err
}
