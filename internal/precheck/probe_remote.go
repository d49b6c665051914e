package precheck

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/imamik/lempress/internal/platform/shell"
)

// RemoteProbe reads host facts by running commands on the target.
type RemoteProbe struct {
	runner shell.Runner
}

func NewRemoteProbe(r shell.Runner) *RemoteProbe {
	return &RemoteProbe{runner: r}
}

func (p *RemoteProbe) OSRelease(ctx context.Context) (OSInfo, error) {
	res, err := p.runner.Run(ctx, shell.Cmd("cat", "/etc/os-release"))
	if err != nil {
		return OSInfo{}, err
	}
	return ParseOSRelease(string(res.Output))
}

func (p *RemoteProbe) FreeBytes(ctx context.Context, path string) (uint64, error) {
	res, err := p.runner.Run(ctx, shell.Cmd("df", "-B1", "--output=avail", path))
	if err != nil {
		return 0, err
	}
	lines := strings.Fields(strings.TrimSpace(string(res.Output)))
	if len(lines) < 2 {
		return 0, fmt.Errorf("unexpected df output %q", res.Text())
	}
	free, err := strconv.ParseUint(lines[len(lines)-1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected df output %q: %w", res.Text(), err)
	}
	return free, nil
}

func (p *RemoteProbe) Reachable(ctx context.Context, hostport string) error {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return err
	}
	script := fmt.Sprintf("exec 3<>/dev/tcp/%s/%s", host, port)
	_, err = p.runner.Run(ctx, shell.Cmd("bash", "-c", script))
	return err
}

func (p *RemoteProbe) EffectiveUID(ctx context.Context) (int, error) {
	res, err := p.runner.Run(ctx, shell.Cmd("id", "-u"))
	if err != nil {
		return -1, err
	}
	uid, err := strconv.Atoi(res.Text())
	if err != nil {
		return -1, fmt.Errorf("unexpected id output %q: %w", res.Text(), err)
	}
	return uid, nil
}

// ParseOSRelease extracts ID and VERSION_ID from os-release content.
func ParseOSRelease(content string) (OSInfo, error) {
	var info OSInfo
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"'`)
		switch key {
		case "ID":
			info.ID = value
		case "VERSION_ID":
			info.Version = value
		}
	}
	if info.ID == "" || info.Version == "" {
		return OSInfo{}, fmt.Errorf("os-release lacks ID or VERSION_ID")
	}
	return info, nil
}
