package shell

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// protectedPaths are never removed by RemoveAll.
var protectedPaths = map[string]bool{
	"/": true, "/etc": true, "/var": true, "/var/www": true, "/usr": true, "/home": true, "/root": true,
}

// Files performs file operations through a Runner so they work the same on
// local and remote targets.
type Files struct {
	runner Runner
}

func NewFiles(r Runner) *Files {
	return &Files{runner: r}
}

// Exists reports whether path exists.
func (f *Files) Exists(ctx context.Context, p string) (bool, error) {
	_, err := f.runner.Run(ctx, Cmd("test", "-e", p))
	if err == nil {
		return true, nil
	}
	if ExitCode(err) == 1 {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", p, err)
}

// MkdirAll creates a directory and its parents, owned by owner when set.
func (f *Files) MkdirAll(ctx context.Context, p, owner string) error {
	args := []string{"-d", "-m", "0755"}
	if owner != "" {
		args = append(args, "-o", owner, "-g", owner)
	}
	if _, err := f.runner.Run(ctx, Cmd("install", append(args, p)...)); err != nil {
		return fmt.Errorf("failed to create %s: %w", p, err)
	}
	return nil
}

// RemoveAll deletes path recursively. Relative and top-level system paths are refused.
func (f *Files) RemoveAll(ctx context.Context, p string) error {
	clean := path.Clean(p)
	if !strings.HasPrefix(clean, "/") || protectedPaths[clean] {
		return fmt.Errorf("refusing to remove %q", p)
	}
	if _, err := f.runner.Run(ctx, Cmd("rm", "-rf", "--", clean)); err != nil {
		return fmt.Errorf("failed to remove %s: %w", clean, err)
	}
	return nil
}

// WriteFile writes data to path with the given octal mode, creating parents.
// Content travels on stdin.
func (f *Files) WriteFile(ctx context.Context, p string, data []byte, mode string) error {
	cmd := Cmd("install", "-D", "-m", mode, "/dev/stdin", p).WithStdin(data)
	if _, err := f.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

// ReadFile returns the content of path.
func (f *Files) ReadFile(ctx context.Context, p string) ([]byte, error) {
	res, err := f.runner.Run(ctx, Cmd("cat", "--", p))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return res.Output, nil
}

// Symlink points link at target, replacing an existing link.
func (f *Files) Symlink(ctx context.Context, target, link string) error {
	if _, err := f.runner.Run(ctx, Cmd("ln", "-sfn", target, link)); err != nil {
		return fmt.Errorf("failed to link %s: %w", link, err)
	}
	return nil
}
