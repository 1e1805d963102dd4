package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath    string
	OutputDir string

	// HTTP
	UserAgent       string
	Timeout         time.Duration
	RequestInterval time.Duration

	// Run
	ImportFile  string
	MetricsFile string
	Targets     []string

	// Application metadata
	LogFormat   string
	Debug       bool
	ShowVersion bool
	Version     string
}
