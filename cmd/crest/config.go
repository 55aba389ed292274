package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
)

// Config mirrors crest.toml.
type Config struct {
	Dump DumpConfig `toml:"dump"`
}

// DumpConfig holds defaults for the dump command.
type DumpConfig struct {
	Color string `toml:"color"`
}

// loadConfig reads crest.toml from --config or the working directory.
// A missing file is not an error; defaults apply.
func loadConfig(cmd *cobra.Command) (Config, error) {
	cfg := Config{Dump: DumpConfig{Color: "auto"}}
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = "crest.toml"
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	return cfg, nil
}

// colorEnabled resolves the effective color mode: flag beats config,
// "auto" follows whether stdout is a terminal.
func colorEnabled(cmd *cobra.Command, cfg Config) bool {
	mode, _ := cmd.Flags().GetString("color")
	if mode == "" {
		mode = cfg.Dump.Color
	}
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}
