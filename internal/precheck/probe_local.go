package precheck

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
)

// LocalProbe reads facts about the current host.
type LocalProbe struct{}

func (LocalProbe) OSRelease(ctx context.Context) (OSInfo, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return OSInfo{}, fmt.Errorf("failed to read host info: %w", err)
	}
	return OSInfo{ID: info.Platform, Version: info.PlatformVersion}, nil
}

func (LocalProbe) FreeBytes(ctx context.Context, path string) (uint64, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("failed to read disk usage: %w", err)
	}
	return usage.Free, nil
}

func (LocalProbe) Reachable(ctx context.Context, hostport string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", hostport)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (LocalProbe) EffectiveUID(context.Context) (int, error) {
	return os.Geteuid(), nil
}
