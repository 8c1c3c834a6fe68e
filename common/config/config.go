package config

// Defaults
const (
	AppName           = "hostnodes"
	DefaultPort       = 8095
	DefaultConfigPath = "/etc/hostnodes/config.yaml"
)

// Build info - set at build time via ldflags:
// go build -ldflags "-X github.com/mordilloSan/hostnodes/common/config.Version=v1.0.0"
var (
	Version   = "untracked"
	CommitSHA = ""
	BuildTime = ""
)
