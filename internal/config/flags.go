package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagProject = flag.String("project", "", "Path to project file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagFPS     = flag.Int("fps", 0, "Output frame rate")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagProject != "" {
		cfg.Project = *flagProject
	}
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagFPS > 0 {
		cfg.Output.FPS = *flagFPS
	}
}
