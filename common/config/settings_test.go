package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mordilloSan/go-logger/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Config{
		Levels: []logger.Level{logger.ErrorLevel},
	})
	os.Exit(m.Run())
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("empty_path_gives_defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, DefaultSettings(), cfg)
	})

	t.Run("empty_file_gives_defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, ""))
		require.NoError(t, err)
		assert.Equal(t, DefaultSettings(), cfg)
	})

	t.Run("comment_only_file_gives_defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "# hostnodes config\n---\n  # nothing set yet\n\n"))
		require.NoError(t, err)
		assert.Equal(t, DefaultSettings(), cfg)
	})

	t.Run("partial_file_keeps_other_defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "disk:\n  source: gopsutil\n  timeout: 5s\nserver:\n  verbose: true\n"))
		require.NoError(t, err)
		assert.Equal(t, "gopsutil", cfg.Disk.Source)
		assert.Equal(t, 5*time.Second, cfg.Disk.Timeout)
		assert.True(t, cfg.Server.Verbose)
		assert.Equal(t, DefaultPort, cfg.Server.Port)
		assert.Equal(t, "/proc/meminfo", cfg.Memory.MeminfoPath)
	})

	t.Run("unknown_key_rejected", func(t *testing.T) {
		_, err := Load(writeConfig(t, "disk:\n  sauce: df\n"))
		assert.Error(t, err)
	})

	t.Run("invalid_value_rejected", func(t *testing.T) {
		_, err := Load(writeConfig(t, "host:\n  hostnameSource: ldap\n"))
		assert.ErrorContains(t, err, "host.hostnameSource")
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestIsBlankYAML(t *testing.T) {
	assert.True(t, isBlankYAML(nil))
	assert.True(t, isBlankYAML([]byte(" \n\t\r\n")))
	assert.True(t, isBlankYAML([]byte("# a\n---\n...\n")))
	assert.False(t, isBlankYAML([]byte("# a\nserver: {}\n")))
	assert.False(t, isBlankYAML([]byte("disk:\n  # comment\n  source: df\n")))
}

func TestValidate(t *testing.T) {
	cfg := DefaultSettings()
	assert.Empty(t, cfg.Validate())

	cfg.Server.Port = 0
	cfg.Disk.Source = "zfs"
	cfg.Disk.Timeout = -time.Second
	cfg.Memory.MeminfoPath = " "
	assert.Len(t, cfg.Validate(), 4)
}
