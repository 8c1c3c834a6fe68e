package nodes

import (
	"context"
	"fmt"
	"time"

	"github.com/mordilloSan/hostnodes/common/flow"
)

// DiskRecord is one filesystem as reported by df. Sizes are in KiB and
// Capacity is the used fraction.
type DiskRecord struct {
	Filesystem string  `json:"filesystem"`
	Size       uint64  `json:"size"`
	Used       uint64  `json:"used"`
	Available  uint64  `json:"available"`
	Capacity   float64 `json:"capacity"`
	Mount      string  `json:"mount"`
}

// DiskLister produces the per-filesystem listing.
type DiskLister interface {
	List(ctx context.Context) ([]DiskRecord, error)
}

// DrivesNode answers with the raw disk listing.
type DrivesNode struct {
	Lister  DiskLister
	Timeout time.Duration // 0 = no limit
}

func (n *DrivesNode) Execute(ctx context.Context, msg *flow.Message, out flow.Output) error {
	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}

	records, err := n.Lister.List(ctx)
	if err != nil {
		return fmt.Errorf("disk listing: %w", err)
	}
	msg.Payload = records
	return out.Send(msg)
}
