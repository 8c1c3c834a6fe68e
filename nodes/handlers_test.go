package nodes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mordilloSan/hostnodes/common/flow"
)

func TestHandlers_Defaults(t *testing.T) {
	hs, err := Handlers(Options{})
	require.NoError(t, err)
	assert.Len(t, hs, 7)

	drives := hs[TypeDrives].(*DrivesNode)
	assert.IsType(t, DFLister{}, drives.Lister)
	assert.Nil(t, hs[TypeOS].(*HostInfoNode).Hostname)
}

func TestHandlers_Sources(t *testing.T) {
	hs, err := Handlers(Options{
		HostnameSource: HostnameDBus,
		DiskSource:     DiskSourceGopsutil,
		DiskTimeout:    time.Second,
		DiskIncludeAll: true,
	})
	require.NoError(t, err)

	assert.NotNil(t, hs[TypeOS].(*HostInfoNode).Hostname)
	drives := hs[TypeDrives].(*DrivesNode)
	assert.Equal(t, PartitionLister{IncludeAll: true}, drives.Lister)
	assert.Equal(t, time.Second, drives.Timeout)

	_, err = Handlers(Options{DiskSource: "zfs"})
	assert.Error(t, err)
	_, err = Handlers(Options{HostnameSource: "ldap"})
	assert.Error(t, err)
}

func TestRegisterHandlers(t *testing.T) {
	require.NoError(t, RegisterHandlers(Options{}))
	for _, ty := range []string{TypeOS, TypeDrives, TypeUptime, TypeCPUs, TypeLoadavg, TypeMemory, TypeNetworkIntf} {
		_, ok := flow.Get(ty)
		assert.True(t, ok, "missing %s", ty)
	}
}
