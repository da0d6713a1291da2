package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// genConfig holds the tool settings that apply across invocations
type genConfig struct {
	Package string
	Output  string
	Verbose bool
}

func defaultGenConfig() genConfig {
	return genConfig{
		Package: "model",
	}
}

type fileConfig struct {
	Package string `toml:"package"`
	Output  string `toml:"output"`
	Verbose bool   `toml:"verbose"`
}

func loadGenConfig(path string) (genConfig, error) {
	cfg := defaultGenConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return genConfig{}, fmt.Errorf("load sofiegen config: %w", err)
	}

	if meta.IsDefined("package") {
		pkg := strings.TrimSpace(raw.Package)
		if pkg != "" {
			cfg.Package = pkg
		}
	}

	if meta.IsDefined("output") {
		cfg.Output = strings.TrimSpace(raw.Output)
	}

	if meta.IsDefined("verbose") {
		cfg.Verbose = raw.Verbose
	}

	return cfg, nil
}
