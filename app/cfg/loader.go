package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const DefaultUserAgent = "RssHowler/2.3"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath    string `long:"db" env:"HOWLER_DB" default:"howler.db" description:"SQLite database holding feeds and downloaded items"`
	OutputDir string `long:"output-dir" env:"HOWLER_OUTPUT_DIR" default:"." description:"Directory under which per-feed folders are created"`

	// HTTP
	UserAgent       string        `long:"user-agent" env:"HOWLER_USER_AGENT" default:"RssHowler/2.3" description:"User agent string for HTTP requests"`
	Timeout         time.Duration `long:"timeout" env:"HOWLER_TIMEOUT" default:"60s" description:"Connect, header and idle-read timeout for each request"`
	RequestInterval time.Duration `long:"request-interval" env:"HOWLER_REQUEST_INTERVAL" default:"0s" description:"Minimum delay between outgoing requests"`

	// Run
	ImportFile  string `long:"import" env:"HOWLER_IMPORT" description:"YAML subscription file to upsert into the database before syncing"`
	MetricsFile string `long:"metrics-file" env:"HOWLER_METRICS_FILE" description:"Write run metrics in Prometheus text format to this file"`

	// Application metadata
	LogFormat   string `long:"log-format" env:"HOWLER_LOG_FORMAT" default:"text" choice:"text" choice:"json" description:"Log output format"`
	Debug       bool   `long:"debug" env:"HOWLER_DEBUG" description:"Enable debug logging"`
	ShowVersion bool   `long:"version" description:"Print version and exit"`

	Args struct {
		Targets []string `positional-arg-name:"target" description:"Feed URL (inspected once) or database path (all enabled feeds)"`
	} `positional-args:"yes"`
}

// Load parses the process arguments and environment.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs returns nil, nil when help was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be non-negative")
	}
	if raw.RequestInterval < 0 {
		return nil, fmt.Errorf("request interval must be non-negative")
	}

	cfg := &Cfg{
		DBPath:          raw.DBPath,
		OutputDir:       raw.OutputDir,
		UserAgent:       cmp.Or(raw.UserAgent, DefaultUserAgent),
		Timeout:         raw.Timeout,
		RequestInterval: raw.RequestInterval,
		ImportFile:      raw.ImportFile,
		MetricsFile:     raw.MetricsFile,
		Targets:         raw.Args.Targets,
		LogFormat:       raw.LogFormat,
		Debug:           raw.Debug,
		ShowVersion:     raw.ShowVersion,
		Version:         GetVersion(),
	}

	return cfg, nil
}
