package nodes

import (
	"context"
	"fmt"
	"net"
	"slices"

	gopsnet "github.com/shirou/gopsutil/v4/net"

	"github.com/mordilloSan/hostnodes/common/flow"
)

const zeroMAC = "00:00:00:00:00:00"

type InterfaceAddress struct {
	Address  string  `json:"address"`
	Netmask  string  `json:"netmask"`
	Family   string  `json:"family"` // IPv4 | IPv6
	MAC      string  `json:"mac"`
	Internal bool    `json:"internal"`
	CIDR     string  `json:"cidr"`
	ScopeID  *uint32 `json:"scopeid,omitempty"` // IPv6 only
}

type NetworkInterfaces struct {
	Interfaces map[string][]InterfaceAddress `json:"networkInterfaces"`
}

// test seam (override in tests)
var netInterfaces = gopsnet.InterfacesWithContext

// FetchNetworkInterfaces maps each interface name to its addresses.
// Interfaces without an address are left out.
func FetchNetworkInterfaces(ctx context.Context) (map[string][]InterfaceAddress, error) {
	ifaces, err := netInterfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("network interfaces: %w", err)
	}

	result := make(map[string][]InterfaceAddress, len(ifaces))
	for _, iface := range ifaces {
		mac := iface.HardwareAddr
		if mac == "" {
			mac = zeroMAC
		}
		internal := slices.Contains(iface.Flags, "loopback")

		for _, a := range iface.Addrs {
			// addr.Addr is CIDR already
			ip, ipnet, err := net.ParseCIDR(a.Addr)
			if err != nil {
				continue
			}
			addr := InterfaceAddress{
				Address:  ip.String(),
				Netmask:  net.IP(ipnet.Mask).String(),
				Family:   "IPv4",
				MAC:      mac,
				Internal: internal,
				CIDR:     a.Addr,
			}
			if ip.To4() == nil {
				addr.Family = "IPv6"
				addr.ScopeID = scopeID(ip, iface.Index)
			}
			result[iface.Name] = append(result[iface.Name], addr)
		}
	}
	return result, nil
}

// scopeID is the interface index for link-local addresses and 0 otherwise.
func scopeID(ip net.IP, index int) *uint32 {
	var id uint32
	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		id = uint32(index)
	}
	return &id
}

type NetworkIntfNode struct{}

func (NetworkIntfNode) Execute(ctx context.Context, msg *flow.Message, out flow.Output) error {
	ifaces, err := FetchNetworkInterfaces(ctx)
	if err != nil {
		return err
	}
	msg.Payload = NetworkInterfaces{Interfaces: ifaces}
	return out.Send(msg)
}
