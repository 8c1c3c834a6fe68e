package nodes

import (
	"bufio"
	"context"
	"io"
	"math"
	"math/bits"
	"os"
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultMeminfoPath = "/proc/meminfo"

	unitKB = "kB"
)

var meminfoLine = regexp.MustCompile(`^(\w+):\s+(\d+)`)

// MeminfoEntry is one "Key:   value [kB]" line.
type MeminfoEntry struct {
	Key   string
	Value uint64
	Unit  string
}

// Bytes returns the value in bytes when the unit is kB, else the raw value.
// A kB value too large for uint64 saturates at math.MaxUint64.
func (e MeminfoEntry) Bytes() uint64 {
	if e.Unit != unitKB {
		return e.Value
	}
	hi, lo := bits.Mul64(e.Value, 1024)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

// ParseMeminfoLine parses a single line. ok is false for lines that do not
// start with a word key, a colon and an integer.
func ParseMeminfoLine(line string) (entry MeminfoEntry, ok bool) {
	m := meminfoLine.FindStringSubmatch(line)
	if m == nil {
		return MeminfoEntry{}, false
	}
	v, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return MeminfoEntry{}, false
	}
	entry = MeminfoEntry{Key: m[1], Value: v}
	if strings.HasSuffix(strings.TrimRight(line, " \t\r"), unitKB) {
		entry.Unit = unitKB
	}
	return entry, true
}

// ParseMeminfo parses every matching line of r, in order.
func ParseMeminfo(r io.Reader) ([]MeminfoEntry, error) {
	var entries []MeminfoEntry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if e, ok := ParseMeminfoLine(sc.Text()); ok {
			entries = append(entries, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// MeminfoEnricher reads extra memory statistics from a meminfo-format file.
type MeminfoEnricher struct {
	Path string
}

func (m MeminfoEnricher) Enrich(ctx context.Context) ([]MeminfoEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := m.Path
	if path == "" {
		path = DefaultMeminfoPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseMeminfo(f)
}
