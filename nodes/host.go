package nodes

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
	xcpu "golang.org/x/sys/cpu"

	"github.com/mordilloSan/hostnodes/common/flow"
)

type HostInfo struct {
	Hostname   string `json:"hostname"`
	OSType     string `json:"osType"`
	Platform   string `json:"platform"`
	Arch       string `json:"arch"`
	Release    string `json:"release"`
	Endianness string `json:"endianness"`
	TmpDir     string `json:"tmpDir"`
}

type Uptime struct {
	Uptime uint64 `json:"uptime"`
}

// HostnameFunc overrides where the hostname comes from.
type HostnameFunc func(ctx context.Context) (string, error)

// test seams (override in tests)
var (
	hostInfo   = host.InfoWithContext
	hostUptime = host.UptimeWithContext
)

// FetchHostInfo gathers host identity. A nil hostname uses the kernel's.
func FetchHostInfo(ctx context.Context, hostname HostnameFunc) (*HostInfo, error) {
	info, err := hostInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("host info: %w", err)
	}

	name := info.Hostname
	if hostname != nil {
		if name, err = hostname(ctx); err != nil {
			return nil, fmt.Errorf("hostname: %w", err)
		}
	}

	return &HostInfo{
		Hostname:   name,
		OSType:     osType(runtime.GOOS),
		Platform:   runtime.GOOS,
		Arch:       runtime.GOARCH,
		Release:    info.KernelVersion,
		Endianness: endianness(),
		TmpDir:     os.TempDir(),
	}, nil
}

func FetchUptimeSeconds(ctx context.Context) (uint64, error) {
	return hostUptime(ctx)
}

// osType maps GOOS to the kernel name uname(1) would print.
func osType(goos string) string {
	switch goos {
	case "linux", "android":
		return "Linux"
	case "darwin", "ios":
		return "Darwin"
	case "windows":
		return "Windows_NT"
	case "freebsd":
		return "FreeBSD"
	case "openbsd":
		return "OpenBSD"
	case "netbsd":
		return "NetBSD"
	case "dragonfly":
		return "DragonFly"
	case "solaris", "illumos":
		return "SunOS"
	case "aix":
		return "AIX"
	}
	return goos
}

func endianness() string {
	if xcpu.IsBigEndian {
		return "BE"
	}
	return "LE"
}

// HostInfoNode answers with static host identity.
type HostInfoNode struct {
	Hostname HostnameFunc
}

func (n *HostInfoNode) Execute(ctx context.Context, msg *flow.Message, out flow.Output) error {
	info, err := FetchHostInfo(ctx, n.Hostname)
	if err != nil {
		return err
	}
	msg.Payload = info
	return out.Send(msg)
}

// UptimeNode answers with seconds since boot.
type UptimeNode struct{}

func (UptimeNode) Execute(ctx context.Context, msg *flow.Message, out flow.Output) error {
	up, err := FetchUptimeSeconds(ctx)
	if err != nil {
		return fmt.Errorf("uptime: %w", err)
	}
	msg.Payload = Uptime{Uptime: up}
	return out.Send(msg)
}
