// Package config handles application configuration loading and management.
package config

// Config holds all application settings.
type Config struct {
	Project string        `yaml:"project"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig holds packet output settings.
type OutputConfig struct {
	FPS  int    `yaml:"fps"`  // Output frame rate
	Bind string `yaml:"bind"` // Local UDP bind address, empty for ephemeral
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Project: "project.yaml",
		Output: OutputConfig{
			FPS: 40,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
