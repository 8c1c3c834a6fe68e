package nodes

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// DFLister runs df(1) in POSIX mode and parses its table.
type DFLister struct {
	Command string   // default "df"
	Args    []string // default -kP
}

func (d DFLister) List(ctx context.Context) ([]DiskRecord, error) {
	name, args := d.Command, d.Args
	if name == "" {
		name = "df"
	}
	if args == nil {
		args = []string{"-kP"}
	}

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ParseDF(bytes.NewReader(output))
}

// ParseDF parses `df -kP` output. The header line and rows that do not
// carry numeric columns are skipped.
func ParseDF(r io.Reader) ([]DiskRecord, error) {
	records := []DiskRecord{}
	sc := bufio.NewScanner(r)
	header := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if header {
			header = false
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}
		size, err1 := strconv.ParseUint(fields[1], 10, 64)
		used, err2 := strconv.ParseUint(fields[2], 10, 64)
		avail, err3 := strconv.ParseUint(fields[3], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}

		records = append(records, DiskRecord{
			Filesystem: fields[0],
			Size:       size,
			Used:       used,
			Available:  avail,
			Capacity:   parseCapacity(fields[4]),
			Mount:      strings.Join(fields[5:], " "),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// parseCapacity turns "42%" into 0.42. Unparseable values ("-") give 0.
func parseCapacity(s string) float64 {
	pct, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0
	}
	return math.Round(pct) / 100
}
