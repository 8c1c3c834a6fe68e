package nodes

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shirou/gopsutil/v4/disk"
)

// test seams (override in tests)
var (
	diskPartitions = disk.PartitionsWithContext
	diskUsage      = disk.UsageWithContext
)

// PartitionLister builds the disk listing from the mount table instead of
// spawning df.
type PartitionLister struct {
	IncludeAll bool // keep pseudo filesystems
}

func (p PartitionLister) List(ctx context.Context) ([]DiskRecord, error) {
	parts, err := diskPartitions(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("partitions: %w", err)
	}
	records := make([]DiskRecord, 0, len(parts))
	for _, part := range parts {
		if !p.IncludeAll && isPseudoFS(part) {
			continue
		}
		usage, err := diskUsage(ctx, part.Mountpoint)
		if err != nil {
			continue
		}
		records = append(records, DiskRecord{
			Filesystem: part.Device,
			Size:       usage.Total / 1024,
			Used:       usage.Used / 1024,
			Available:  usage.Free / 1024,
			Capacity:   math.Round(usage.UsedPercent) / 100,
			Mount:      part.Mountpoint,
		})
	}
	return records, nil
}

func isPseudoFS(p disk.PartitionStat) bool {
	if strings.HasPrefix(p.Device, "/dev/") {
		return false
	}
	switch p.Fstype {
	case "proc", "sysfs", "devtmpfs", "devpts",
		"tmpfs", "cgroup", "cgroup2", "pstore",
		"securityfs", "debugfs", "tracefs",
		"configfs", "overlay", "squashfs", "ramfs",
		"bpf", "nsfs", "autofs", "fusectl", "mqueue", "hugetlbfs":
		return true
	}
	return false
}
