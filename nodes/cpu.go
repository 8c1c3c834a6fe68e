package nodes

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"

	"github.com/mordilloSan/hostnodes/common/flow"
)

// ---------- Types ----------

// CPUTimes are cumulative per-core times in milliseconds.
type CPUTimes struct {
	User uint64 `json:"user"`
	Nice uint64 `json:"nice"`
	Sys  uint64 `json:"sys"`
	Idle uint64 `json:"idle"`
	IRQ  uint64 `json:"irq"`
}

type CPUDescriptor struct {
	Model string   `json:"model"`
	Speed int      `json:"speed"` // MHz
	Times CPUTimes `json:"times"`
}

type CPUs struct {
	CPUs []CPUDescriptor `json:"cpus"`
}

type LoadAverage struct {
	LoadAvg [3]float64 `json:"loadavg"`
}

// test seams (override in tests)
var (
	cpuInfo  = cpu.InfoWithContext
	cpuTimes = cpu.TimesWithContext
	loadAvg  = load.AvgWithContext
)

// ---------- Fetchers ----------

// FetchCPUs returns one descriptor per logical core.
func FetchCPUs(ctx context.Context) ([]CPUDescriptor, error) {
	info, err := cpuInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("cpu info: %w", err)
	}
	times, err := cpuTimes(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("cpu times: %w", err)
	}

	n := len(times)
	if n == 0 {
		n = len(info)
	}

	cpus := make([]CPUDescriptor, 0, n)
	for i := range n {
		var d CPUDescriptor
		// some platforms report one info entry per package, not per core
		if len(info) > 0 {
			src := info[min(i, len(info)-1)]
			d.Model = strings.TrimSpace(src.ModelName)
			d.Speed = int(math.Round(src.Mhz))
		}
		if i < len(times) {
			t := times[i]
			d.Times = CPUTimes{
				User: millis(t.User),
				Nice: millis(t.Nice),
				Sys:  millis(t.System),
				Idle: millis(t.Idle),
				IRQ:  millis(t.Irq),
			}
		}
		cpus = append(cpus, d)
	}
	return cpus, nil
}

func millis(seconds float64) uint64 {
	if seconds <= 0 {
		return 0
	}
	return uint64(math.Round(seconds * 1000))
}

func FetchLoadAverage(ctx context.Context) ([3]float64, error) {
	avg, err := loadAvg(ctx)
	if err != nil {
		return [3]float64{}, fmt.Errorf("load average: %w", err)
	}
	return [3]float64{avg.Load1, avg.Load5, avg.Load15}, nil
}

// ---------- Nodes ----------

type CPUsNode struct{}

func (CPUsNode) Execute(ctx context.Context, msg *flow.Message, out flow.Output) error {
	cpus, err := FetchCPUs(ctx)
	if err != nil {
		return err
	}
	msg.Payload = CPUs{CPUs: cpus}
	return out.Send(msg)
}

type LoadavgNode struct{}

func (LoadavgNode) Execute(ctx context.Context, msg *flow.Message, out flow.Output) error {
	avg, err := FetchLoadAverage(ctx)
	if err != nil {
		return err
	}
	msg.Payload = LoadAverage{LoadAvg: avg}
	return out.Send(msg)
}
