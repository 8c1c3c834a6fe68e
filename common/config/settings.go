package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/mordilloSan/go-logger/logger"
)

// Settings is the on-disk configuration.
type Settings struct {
	Server Server `yaml:"server"`
	Host   Host   `yaml:"host"`
	Disk   Disk   `yaml:"disk"`
	Memory Memory `yaml:"memory"`
}

type Server struct {
	Port    int  `yaml:"port"`
	Verbose bool `yaml:"verbose"`
}

type Host struct {
	HostnameSource string `yaml:"hostnameSource"` // kernel | dbus
}

type Disk struct {
	Source     string        `yaml:"source"` // df | gopsutil
	Timeout    time.Duration `yaml:"timeout"`
	IncludeAll bool          `yaml:"includeAll"`
}

type Memory struct {
	MeminfoPath        string `yaml:"meminfoPath"`
	AllowBaseOverwrite bool   `yaml:"allowBaseOverwrite"`
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() *Settings {
	return &Settings{
		Server: Server{Port: DefaultPort},
		Host:   Host{HostnameSource: "kernel"},
		Disk:   Disk{Source: "df"},
		Memory: Memory{MeminfoPath: "/proc/meminfo"},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
// An empty path returns the defaults.
func Load(path string) (*Settings, error) {
	cfg := DefaultSettings()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// A null document would zero every default.
	if isBlankYAML(b) {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(b), yaml.Strict())
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		logYAMLError(err, path)
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config %s: %s", path, strings.Join(errs, "; "))
	}
	return cfg, nil
}

// isBlankYAML reports whether b holds nothing but whitespace, comments and
// document markers.
func isBlankYAML(b []byte) bool {
	for line := range strings.Lines(string(b)) {
		line = strings.TrimSpace(line)
		switch {
		case line == "", line == "---", line == "...", strings.HasPrefix(line, "#"):
			continue
		}
		return false
	}
	return true
}

// Validate returns every problem found, or nil.
func (s *Settings) Validate() []string {
	var errs []string

	if s.Server.Port < 1 || s.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	switch s.Host.HostnameSource {
	case "kernel", "dbus":
	default:
		errs = append(errs, "host.hostnameSource must be kernel or dbus")
	}
	switch s.Disk.Source {
	case "df", "gopsutil":
	default:
		errs = append(errs, "disk.source must be df or gopsutil")
	}
	if s.Disk.Timeout < 0 {
		errs = append(errs, "disk.timeout cannot be negative")
	}
	if strings.TrimSpace(s.Memory.MeminfoPath) == "" {
		errs = append(errs, "memory.meminfoPath cannot be empty")
	}

	return errs
}

// logYAMLError extracts and logs detailed error information from goccy/go-yaml
func logYAMLError(err error, path string) {
	var syntaxErr *yaml.SyntaxError
	if errors.As(err, &syntaxErr) {
		if tok := syntaxErr.GetToken(); tok != nil {
			logger.Errorf("config error in %s at line %d, column %d: %s",
				path,
				tok.Position.Line,
				tok.Position.Column,
				syntaxErr.GetMessage())
			return
		}
		logger.Errorf("config error in %s: %s", path, syntaxErr.GetMessage())
		return
	}

	logger.Errorf("config error in %s: %v", path, err)
}
