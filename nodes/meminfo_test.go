package nodes

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMeminfoLine(t *testing.T) {
	tests := []struct {
		line  string
		want  MeminfoEntry
		match bool
	}{
		{"MemTotal:       16384000 kB", MeminfoEntry{Key: "MemTotal", Value: 16384000, Unit: "kB"}, true},
		{"HugePages_Total:       0", MeminfoEntry{Key: "HugePages_Total", Value: 0}, true},
		{"Hugepagesize:       2048 kB  ", MeminfoEntry{Key: "Hugepagesize", Value: 2048, Unit: "kB"}, true},
		{"Buffers:        4096 kB\r", MeminfoEntry{Key: "Buffers", Value: 4096, Unit: "kB"}, true},
		{"Active(anon):    1234 kB", MeminfoEntry{}, false},
		{"BadLine nomatch", MeminfoEntry{}, false},
		{"NoValue:   kB", MeminfoEntry{}, false},
		{"", MeminfoEntry{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseMeminfoLine(tt.line)
		if ok != tt.match {
			t.Errorf("ParseMeminfoLine(%q) ok = %v, want %v", tt.line, ok, tt.match)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMeminfoLine(%q) = %+v, want %+v", tt.line, got, tt.want)
		}
	}
}

func TestMeminfoEntry_Bytes(t *testing.T) {
	assert.Equal(t, uint64(2048*1024), MeminfoEntry{Key: "k", Value: 2048, Unit: "kB"}.Bytes())
	assert.Equal(t, uint64(7), MeminfoEntry{Key: "k", Value: 7}.Bytes())

	// largest kB value that still fits
	fits := uint64(math.MaxUint64 / 1024)
	assert.Equal(t, fits*1024, MeminfoEntry{Key: "k", Value: fits, Unit: "kB"}.Bytes())

	assert.Equal(t, uint64(math.MaxUint64), MeminfoEntry{Key: "Huge", Value: 18014398509481985, Unit: "kB"}.Bytes())
	assert.Equal(t, uint64(math.MaxUint64), MeminfoEntry{Key: "Huge", Value: math.MaxUint64, Unit: "kB"}.Bytes())
}

func TestParseMeminfo_MergesOnlyMatchingLines(t *testing.T) {
	input := "MemTotal:    16384000 kB\nMemFree:     512000 kB\nBadLine nomatch"
	entries, err := ParseMeminfo(strings.NewReader(input))
	require.NoError(t, err)

	payload := BaseMemory(1000, 250)
	MergeMeminfo(payload, entries, false)

	assert.Equal(t, uint64(16384000*1024), payload["MemTotal"])
	assert.Equal(t, uint64(512000*1024), payload["MemFree"])
	assert.NotContains(t, payload, "BadLine")
	assert.Len(t, payload, 5)
}

func TestMeminfoEnricher(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads_file", func(t *testing.T) {
		path := filepath.Join(dir, "meminfo")
		require.NoError(t, os.WriteFile(path, []byte("MemAvailable:  100 kB\nHugePages_Free: 3\n"), 0o644))

		entries, err := MeminfoEnricher{Path: path}.Enrich(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []MeminfoEntry{
			{Key: "MemAvailable", Value: 100, Unit: "kB"},
			{Key: "HugePages_Free", Value: 3},
		}, entries)
	})

	t.Run("missing_file", func(t *testing.T) {
		entries, err := MeminfoEnricher{Path: filepath.Join(dir, "nope")}.Enrich(context.Background())
		assert.Error(t, err)
		assert.Nil(t, entries)
	})

	t.Run("cancelled_context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := MeminfoEnricher{Path: filepath.Join(dir, "meminfo")}.Enrich(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
