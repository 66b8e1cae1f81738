package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envConfig = "TFLITECONV_CONFIG"

// Config represents the tfliteconv configuration file
// (~/.config/tfliteconv/config.yaml). It only supplies defaults for flags
// that were not set on the command line.
type Config struct {
	Python     string `yaml:"python"`
	TFLogLevel string `yaml:"tf_log_level"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tfliteconv", "config.yaml")
}

// LoadConfig reads the config file at path. With an empty path the default
// location is used, and a missing default file yields a zero Config. An
// explicitly named file must exist.
func LoadConfig(path string) (Config, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyConfig copies config defaults into the flag destinations when the
// corresponding flag was not explicitly set.
func applyConfig(c *cli.Command, cfg Config) {
	if cfg.Python != "" && !c.IsSet("python") {
		pythonPath = cfg.Python
	}
	if cfg.TFLogLevel != "" && !c.IsSet("tf-log-level") {
		tfLogLevel = cfg.TFLogLevel
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}
