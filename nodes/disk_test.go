package nodes

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mordilloSan/hostnodes/common/flow"
)

const dfOutput = `Filesystem     1024-blocks      Used Available Capacity Mounted on
/dev/sda1         41152736  20576368  18462936      53% /
tmpfs              8126796         0   8126796       0% /dev/shm
/dev/sdb1        960303848 480151924 431290980      53% /mnt/My Backups
broken line
`

func TestParseDF(t *testing.T) {
	records, err := ParseDF(strings.NewReader(dfOutput))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, DiskRecord{
		Filesystem: "/dev/sda1",
		Size:       41152736,
		Used:       20576368,
		Available:  18462936,
		Capacity:   0.53,
		Mount:      "/",
	}, records[0])
	assert.Equal(t, 0.0, records[1].Capacity)
	assert.Equal(t, "/mnt/My Backups", records[2].Mount)
}

func TestParseDF_EmptyInput(t *testing.T) {
	records, err := ParseDF(strings.NewReader(""))
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestParseCapacity(t *testing.T) {
	assert.Equal(t, 0.07, parseCapacity("7%"))
	assert.Equal(t, 1.0, parseCapacity("100%"))
	assert.Equal(t, 0.0, parseCapacity("-"))
}

func TestDFLister(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	ctx := context.Background()

	t.Run("parses_command_output", func(t *testing.T) {
		lister := DFLister{
			Command: "sh",
			Args:    []string{"-c", "printf 'Filesystem 1024-blocks Used Available Capacity Mounted on\\n/dev/vda1 100 40 60 40%% /\\n'"},
		}
		records, err := lister.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "/dev/vda1", records[0].Filesystem)
		assert.Equal(t, 0.4, records[0].Capacity)
	})

	t.Run("command_failure_includes_stderr", func(t *testing.T) {
		lister := DFLister{Command: "sh", Args: []string{"-c", "echo 'df: boom' >&2; exit 1"}}
		_, err := lister.List(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "df: boom")
	})

	t.Run("missing_binary", func(t *testing.T) {
		_, err := DFLister{Command: "definitely-not-a-df-binary"}.List(ctx)
		assert.Error(t, err)
	})
}

type fakeLister struct {
	records []DiskRecord
	err     error
}

func (f fakeLister) List(context.Context) ([]DiskRecord, error) { return f.records, f.err }

func TestDrivesNode(t *testing.T) {
	ctx := context.Background()

	t.Run("emits_raw_listing", func(t *testing.T) {
		want := []DiskRecord{{Filesystem: "/dev/sda1", Size: 10, Used: 5, Available: 5, Capacity: 0.5, Mount: "/"}}
		out := &flow.Collector{}

		require.NoError(t, (&DrivesNode{Lister: fakeLister{records: want}}).Execute(ctx, flow.NewMessage(""), out))
		require.Len(t, out.Sent(), 1)
		assert.Equal(t, want, out.Sent()[0].Payload)
	})

	t.Run("listing_failure_is_fatal", func(t *testing.T) {
		out := &flow.Collector{}

		err := (&DrivesNode{Lister: fakeLister{err: errors.New("df not found")}}).Execute(ctx, flow.NewMessage(""), out)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "df not found")
		assert.Empty(t, out.Sent())
		assert.Empty(t, out.Reported())
	})
}

func TestPartitionLister(t *testing.T) {
	override(t, &diskPartitions, func(context.Context, bool) ([]disk.PartitionStat, error) {
		return []disk.PartitionStat{
			{Device: "/dev/nvme0n1p2", Mountpoint: "/", Fstype: "ext4"},
			{Device: "proc", Mountpoint: "/proc", Fstype: "proc"},
			{Device: "/dev/sdz1", Mountpoint: "/gone", Fstype: "xfs"},
		}, nil
	})
	override(t, &diskUsage, func(_ context.Context, path string) (*disk.UsageStat, error) {
		if path == "/gone" {
			return nil, errors.New("stale mount")
		}
		return &disk.UsageStat{Path: path, Total: 4096 * 1024, Used: 1024 * 1024, Free: 3072 * 1024, UsedPercent: 25}, nil
	})

	records, err := PartitionLister{}.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, DiskRecord{
		Filesystem: "/dev/nvme0n1p2",
		Size:       4096,
		Used:       1024,
		Available:  3072,
		Capacity:   0.25,
		Mount:      "/",
	}, records[0])

	all, err := PartitionLister{IncludeAll: true}.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
