package nodes

import (
	"fmt"
	"time"

	"github.com/mordilloSan/hostnodes/common/flow"
)

// Node types, named as the flow editor knows them.
const (
	TypeOS          = "OS"
	TypeDrives      = "Drives"
	TypeUptime      = "Uptime"
	TypeCPUs        = "CPUs"
	TypeLoadavg     = "Loadavg"
	TypeMemory      = "Memory"
	TypeNetworkIntf = "NetworkIntf"
)

// Sources accepted in Options.
const (
	HostnameKernel = "kernel"
	HostnameDBus   = "dbus"

	DiskSourceDF       = "df"
	DiskSourceGopsutil = "gopsutil"
)

// Options selects the strategy for nodes that have more than one source.
type Options struct {
	HostnameSource     string
	DiskSource         string
	DiskTimeout        time.Duration
	DiskIncludeAll     bool
	MeminfoPath        string
	AllowBaseOverwrite bool
}

// Handlers builds every node for opts, keyed by node type.
func Handlers(opts Options) (map[string]flow.Handler, error) {
	hostNode := &HostInfoNode{}
	switch opts.HostnameSource {
	case "", HostnameKernel:
	case HostnameDBus:
		hostNode.Hostname = DBusHostname
	default:
		return nil, fmt.Errorf("unknown hostname source %q", opts.HostnameSource)
	}

	drives := &DrivesNode{Timeout: opts.DiskTimeout}
	switch opts.DiskSource {
	case "", DiskSourceDF:
		drives.Lister = DFLister{}
	case DiskSourceGopsutil:
		drives.Lister = PartitionLister{IncludeAll: opts.DiskIncludeAll}
	default:
		return nil, fmt.Errorf("unknown disk source %q", opts.DiskSource)
	}

	return map[string]flow.Handler{
		TypeOS:      hostNode,
		TypeDrives:  drives,
		TypeUptime:  UptimeNode{},
		TypeCPUs:    CPUsNode{},
		TypeLoadavg: LoadavgNode{},
		TypeMemory: &MemoryNode{
			Enricher:           DefaultEnricher(opts.MeminfoPath),
			AllowBaseOverwrite: opts.AllowBaseOverwrite,
		},
		TypeNetworkIntf: NetworkIntfNode{},
	}, nil
}

// RegisterHandlers registers every node with the flow runtime.
func RegisterHandlers(opts Options) error {
	hs, err := Handlers(opts)
	if err != nil {
		return err
	}
	for t, h := range hs {
		flow.Register(t, h)
	}
	return nil
}
