package testing

import (
	"context"
	"strings"
	"sync"

	"github.com/imamik/lempress/internal/platform/shell"
)

type response struct {
	prefix string
	result shell.Result
	err    error
	times  int // remaining uses; 0 means unlimited
}

// FakeRunner is a shell.Runner that records commands and replays scripted
// responses. Responses match on the command line prefix; the most recently
// registered match wins. Unmatched commands succeed with empty output.
type FakeRunner struct {
	mu        sync.Mutex
	commands  []shell.Command
	responses []*response
}

// NewFakeRunner creates a FakeRunner that succeeds for every command.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{}
}

// On registers output and err for commands starting with prefix.
func (f *FakeRunner) On(prefix, output string, err error) *FakeRunner {
	return f.add(&response{prefix: prefix, result: shell.Result{Output: []byte(output)}, err: err})
}

// Fail makes commands starting with prefix exit with code.
func (f *FakeRunner) Fail(prefix string, code int, output string) *FakeRunner {
	return f.FailTimes(prefix, 0, code, output)
}

// FailTimes makes the next n commands starting with prefix exit with code.
func (f *FakeRunner) FailTimes(prefix string, n, code int, output string) *FakeRunner {
	err := &shell.ExitError{Command: prefix, Code: code, Output: output}
	return f.add(&response{prefix: prefix, result: shell.Result{Output: []byte(output), Code: code}, err: err, times: n})
}

func (f *FakeRunner) add(r *response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, r)
	return f
}

func (f *FakeRunner) Run(ctx context.Context, cmd shell.Command) (shell.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, cmd)
	if err := ctx.Err(); err != nil {
		return shell.Result{Code: -1}, err
	}

	line := cmd.String()
	for i := len(f.responses) - 1; i >= 0; i-- {
		r := f.responses[i]
		if !strings.HasPrefix(line, r.prefix) {
			continue
		}
		if r.times < 0 {
			continue
		}
		if r.times > 0 {
			r.times--
			if r.times == 0 {
				r.times = -1
			}
		}
		return r.result, r.err
	}
	return shell.Result{}, nil
}

// Commands returns every command run so far.
func (f *FakeRunner) Commands() []shell.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shell.Command(nil), f.commands...)
}

// CommandLines returns the quoted command lines run so far.
func (f *FakeRunner) CommandLines() []string {
	cmds := f.Commands()
	lines := make([]string, len(cmds))
	for i, c := range cmds {
		lines[i] = c.String()
	}
	return lines
}

// Ran reports whether any command line started with prefix.
func (f *FakeRunner) Ran(prefix string) bool {
	for _, l := range f.CommandLines() {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

// Count returns how many command lines started with prefix.
func (f *FakeRunner) Count(prefix string) int {
	n := 0
	for _, l := range f.CommandLines() {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}
