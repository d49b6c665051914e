// Package shell runs commands on the provisioning target.
//
// Every collaborator adapter in internal/platform executes through a
// [Runner]. [LocalRunner] uses os/exec on the current host; the ssh package
// provides a Runner for remote targets.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/kballard/go-shellquote"
)

// ErrTimeout is returned when a command is stopped by its context deadline.
var ErrTimeout = errors.New("command timed out")

// Command is one program invocation. Sensitive input goes through Stdin,
// never Args, so it stays out of process listings and logs.
type Command struct {
	Name  string
	Args  []string
	Env   []string
	Stdin []byte
}

// Cmd builds a Command.
func Cmd(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// WithEnv returns a copy with additional KEY=VALUE environment entries.
func (c Command) WithEnv(env ...string) Command {
	c.Env = append(append([]string(nil), c.Env...), env...)
	return c
}

// WithStdin returns a copy that feeds data to the command's standard input.
func (c Command) WithStdin(data []byte) Command {
	c.Stdin = data
	return c
}

// String returns the shell-quoted command line, prefixed with env when set.
func (c Command) String() string {
	words := append([]string{c.Name}, c.Args...)
	if len(c.Env) > 0 {
		words = append(append([]string{"env"}, c.Env...), words...)
	}
	return shellquote.Join(words...)
}

// Result is the combined output and exit code of a command.
type Result struct {
	Output []byte
	Code   int
}

// Text returns the trimmed output.
func (r Result) Text() string {
	return strings.TrimSpace(string(r.Output))
}

// ExitError is returned when a command exits non-zero.
type ExitError struct {
	Command string
	Code    int
	Output  string
}

func (e *ExitError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("command %q exited with code %d", e.Command, e.Code)
	}
	return fmt.Sprintf("command %q exited with code %d: %s", e.Command, e.Code, out)
}

// ExitCode returns the exit code carried by err, or -1 if err is not an ExitError.
func ExitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return -1
}

// Runner executes commands on a target host.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// LocalRunner executes commands on the current host.
type LocalRunner struct{}

func (LocalRunner) Run(ctx context.Context, c Command) (Result, error) {
	// #nosec G204
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Env = append(os.Environ(), c.Env...)
	if c.Stdin != nil {
		cmd.Stdin = bytes.NewReader(c.Stdin)
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	res := Result{Output: out.Bytes(), Code: exitCode(err)}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("%w: %s: %w", ErrTimeout, c, ctx.Err())
	}
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return res, &ExitError{Command: c.String(), Code: ee.ExitCode(), Output: out.String()}
		}
		return res, fmt.Errorf("failed to run %s: %w", c, err)
	}
	return res, nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}
