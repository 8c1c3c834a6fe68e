package cmd

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/mordilloSan/hostnodes/common/config"
	"github.com/mordilloSan/hostnodes/common/flow"
	"github.com/mordilloSan/hostnodes/nodes"
)

// ServerConfig is the runtime config passed to the server.
type ServerConfig struct {
	Port     int
	Verbose  bool
	Settings *config.Settings
}

// test seams (override in tests)
var (
	runServerFunc           = RunServer
	stdout        io.Writer = os.Stdout
	exit                    = os.Exit
)

// StartHostNodes is the CLI entrypoint (called from main.go).
func StartHostNodes() {
	if len(os.Args) < 2 {
		printGeneralUsage()
		return
	}

	switch os.Args[1] {
	case "-h", "--help", "help":
		printGeneralUsage()
	case "version", "--version":
		printVersion()
	case "list":
		listCmd()
	case "inject":
		injectCmd(os.Args[2:])
	case "run":
		runCmd(os.Args[2:])
	default:
		// Unknown subcommand → help
		fmt.Fprintf(os.Stderr, "unknown command: %q\n\n", os.Args[1])
		printGeneralUsage()
	}
}

func runCmd(args []string) {
	fs := pflag.NewFlagSet("run", pflag.ExitOnError)

	var cfg ServerConfig
	var configPath string
	fs.IntVarP(&cfg.Port, "port", "p", config.DefaultPort, "HTTP server port (1-65535)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "enable verbose logging")
	fs.StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultConfigPath+" when present)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "hostnodes %s\n", config.Version)
		fmt.Fprintln(os.Stderr, "\nUsage:")
		fmt.Fprintln(os.Stderr, "  hostnodes run [flags]")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return
	}

	settings, err := loadSettings(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(2)
		return
	}

	// Flags override the file
	if !fs.Changed("port") {
		cfg.Port = settings.Server.Port
	}
	if !fs.Changed("verbose") {
		cfg.Verbose = settings.Server.Verbose
	}
	settings.Server.Port = cfg.Port
	settings.Server.Verbose = cfg.Verbose
	cfg.Settings = settings

	// Reject 0: clients need a fixed, known port
	if cfg.Port <= 0 || cfg.Port > 65535 {
		fmt.Fprintln(os.Stderr, "invalid --port: must be between 1 and 65535 (port 0 not supported)")
		exit(2)
		return
	}

	runServerFunc(cfg)
}

func injectCmd(args []string) {
	fs := pflag.NewFlagSet("inject", pflag.ExitOnError)

	var topic, configPath string
	var verbose bool
	fs.StringVarP(&topic, "topic", "t", "", "topic of the injected message")
	fs.StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultConfigPath+" when present)")
	fs.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  hostnodes inject <type> [flags]")
		fmt.Fprintf(os.Stderr, "\nTypes: %s\n", strings.Join(nodeTypes(), ", "))
		fmt.Fprintln(os.Stderr, "\nFlags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return
	}
	if fs.NArg() != 1 {
		fs.Usage()
		exit(2)
		return
	}

	settings, err := loadSettings(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(2)
		return
	}
	initLogger(verbose || settings.Server.Verbose)

	if err := nodes.RegisterHandlers(nodeOptions(settings)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(2)
		return
	}

	if err := Inject(context.Background(), fs.Arg(0), topic, stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if flow.IsFatal(err) {
			exit(1)
			return
		}
		exit(2)
	}
}

func listCmd() {
	for _, t := range nodeTypes() {
		fmt.Fprintln(stdout, t)
	}
}

// nodeTypes lists the node types the binary ships, without touching the host.
func nodeTypes() []string {
	hs, err := nodes.Handlers(nodes.Options{})
	if err != nil {
		return nil
	}
	return slices.Sorted(maps.Keys(hs))
}

// loadSettings reads path, or the default config path when path is empty
// and that file exists.
func loadSettings(path string) (*config.Settings, error) {
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigPath); err == nil {
			path = config.DefaultConfigPath
		}
	}
	return config.Load(path)
}

func printVersion() {
	fmt.Fprintf(stdout, "%s %s", config.AppName, config.Version)
	if config.CommitSHA != "" {
		fmt.Fprintf(stdout, " (%s)", config.CommitSHA)
	}
	if config.BuildTime != "" {
		fmt.Fprintf(stdout, " built %s", config.BuildTime)
	}
	fmt.Fprintln(stdout)
}

func printGeneralUsage() {
	fmt.Fprintf(os.Stderr, `hostnodes %s

Usage:
  hostnodes <command> [flags]

Commands:
  run         Run the HTTP server
  inject      Run one node and print its messages
  list        List node types
  version     Print version
  help        Show this help

Examples:
  hostnodes run
  hostnodes run --port 8095 --verbose
  hostnodes inject Memory --topic mem

Use "hostnodes <command> -h" for more info about a command.
`, config.Version)
}
