// Package config resolves shelfgraph settings from, in increasing
// precedence: the yaml config file, environment variables (including a
// project-local .env file), and CLI flags. Each resolved value remembers
// where it came from so `shelfgraph config` can show the effective setup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

type ResolveOptions struct {
	ConfigPath string
	CLIDBPath  string
	CLIOutDir  string
}

type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	DBPath       ResolvedValue `json:"db_path"`
	OutputDir    ResolvedValue `json:"output_dir"`
	FeaturesPath ResolvedValue `json:"features_path"`
}

type fileConfig struct {
	DBPath       string `yaml:"db_path"`
	OutputDir    string `yaml:"output_dir"`
	FeaturesPath string `yaml:"features_path"`
}

// DefaultOutputDir is where the CSV tables land when nothing is configured.
const DefaultOutputDir = "data"

func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".shelfgraph", "config.yaml")
}

// ResolveConfig layers file, environment, and CLI values. A project-local
// .env file is loaded first so its variables participate as environment.
func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	// Missing .env is the normal case; system env still applies.
	_ = godotenv.Load()

	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{
		ConfigPath:   path,
		OutputDir:    ResolvedValue{Value: DefaultOutputDir, Source: SourceDefault, From: "built-in default"},
		FeaturesPath: ResolvedValue{Value: filepath.Join(DefaultOutputDir, "reviewer_features.csv"), Source: SourceDefault, From: "built-in default"},
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		apply(&out.OutputDir, cfg.OutputDir, SourceConfig, path)
		apply(&out.FeaturesPath, cfg.FeaturesPath, SourceConfig, path)
	}

	applyEnv(&out.DBPath, "SHELFGRAPH_DB")
	applyEnv(&out.DBPath, "SHELFGRAPH_DB_PATH")
	applyEnv(&out.OutputDir, "SHELFGRAPH_OUT")
	applyEnv(&out.FeaturesPath, "SHELFGRAPH_FEATURES")

	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")
	apply(&out.OutputDir, opts.CLIOutDir, SourceCLI, "--out")

	if out.DBPath.Value != "" {
		out.DBPath.Value = expandUserPath(out.DBPath.Value)
	}

	return out, nil
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
