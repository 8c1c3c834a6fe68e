package nodes

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mordilloSan/go-logger/logger"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/mordilloSan/hostnodes/common/flow"
)

// Base memory payload keys.
const (
	KeyTotalMem = "totalmem"
	KeyFreeMem  = "freemem"
	KeyMemUsage = "memusage"
)

// Enricher supplies extra memory statistics merged on top of the base payload.
type Enricher interface {
	Enrich(ctx context.Context) ([]MeminfoEntry, error)
}

// test seam (override in tests)
var virtualMemory = mem.VirtualMemoryWithContext

// MemUsage returns 100 - free/total*100 with exactly two decimals.
func MemUsage(total, free uint64) string {
	pct := 100 - (float64(free)/float64(total))*100
	return strconv.FormatFloat(pct, 'f', 2, 64)
}

// BaseMemory builds the payload every platform gets.
func BaseMemory(total, free uint64) map[string]any {
	return map[string]any{
		KeyTotalMem: total,
		KeyFreeMem:  free,
		KeyMemUsage: MemUsage(total, free),
	}
}

func isBaseKey(k string) bool {
	return k == KeyTotalMem || k == KeyFreeMem || k == KeyMemUsage
}

// MergeMeminfo writes entries into payload in bytes. Later entries win.
// Base keys are left alone unless allowOverwrite is set.
func MergeMeminfo(payload map[string]any, entries []MeminfoEntry, allowOverwrite bool) {
	for _, e := range entries {
		if !allowOverwrite && isBaseKey(e.Key) {
			logger.DebugKV("meminfo key collides with base field, skipping", "key", e.Key)
			continue
		}
		payload[e.Key] = e.Bytes()
	}
}

// MemoryNode answers with total/free/usage, plus whatever Enricher adds.
type MemoryNode struct {
	Enricher           Enricher
	AllowBaseOverwrite bool
}

func (n *MemoryNode) Execute(ctx context.Context, msg *flow.Message, out flow.Output) error {
	vm, err := virtualMemory(ctx)
	if err != nil {
		return fmt.Errorf("virtual memory: %w", err)
	}

	payload := BaseMemory(vm.Total, vm.Available)
	if n.Enricher == nil {
		msg.Payload = payload
		return out.Send(msg)
	}

	entries, err := n.Enricher.Enrich(ctx)
	if err != nil {
		logger.Warnf("memory enrichment failed: %v", err)
		out.Error(fmt.Errorf("memory enrichment: %w", err), msg)
		return nil
	}
	MergeMeminfo(payload, entries, n.AllowBaseOverwrite)

	msg.Payload = payload
	return out.Send(msg)
}
