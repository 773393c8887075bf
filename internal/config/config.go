package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "semgraph.yaml"

// DefaultExclude lists directory names never descended into.
var DefaultExclude = []string{
	".git", "__pycache__", ".venv", "venv", "node_modules",
	".semgraph", "dist", "build", ".next",
}

type Config struct {
	Project struct {
		Root             string   `yaml:"root"`
		Exclude          []string `yaml:"exclude"`
		RespectGitignore bool     `yaml:"respect_gitignore"`
		StateDir         string   `yaml:"state_dir"` // relative to root
	} `yaml:"project"`
	AI struct {
		Provider  string `yaml:"provider"`
		Model     string `yaml:"model"` // embedding model; empty picks the provider default
		APIKey    string `yaml:"api_key"`
		BaseURL   string `yaml:"base_url"`
		Dimension int    `yaml:"dimension"`
	} `yaml:"ai"`
	Storage struct {
		Path string `yaml:"path"` // relative to the state dir unless absolute
	} `yaml:"storage"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
	Search struct {
		Candidates int `yaml:"candidates"`
		Limit      int `yaml:"limit"`
	} `yaml:"search"`
}

// DefaultConfig returns a config that works without any file present.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Project.Root = "."
	cfg.Project.Exclude = append([]string(nil), DefaultExclude...)
	cfg.Project.StateDir = ".semgraph"
	cfg.AI.Provider = "ollama"
	cfg.Storage.Path = "index.db"
	cfg.Server.Addr = "127.0.0.1:8765"
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	cfg.Search.Candidates = 50
	cfg.Search.Limit = 10
	return cfg
}

// LoadConfig reads path on top of DefaultConfig. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if len(cfg.Project.Exclude) == 0 {
		cfg.Project.Exclude = append([]string(nil), DefaultExclude...)
	}
	if cfg.Search.Candidates <= 0 {
		cfg.Search.Candidates = 50
	}
	if cfg.Search.Limit <= 0 {
		cfg.Search.Limit = 10
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if root := os.Getenv("SEMGRAPH_ROOT"); root != "" {
		cfg.Project.Root = root
	}
	if apiKey := os.Getenv("SEMGRAPH_API_KEY"); apiKey != "" {
		cfg.AI.APIKey = apiKey
	}
	if provider := os.Getenv("SEMGRAPH_EMBED_PROVIDER"); provider != "" {
		cfg.AI.Provider = strings.ToLower(provider)
	}
	if level := os.Getenv("SEMGRAPH_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

// ExcludeSet returns the exclusion list as a lookup set.
func (c *Config) ExcludeSet() map[string]bool {
	set := make(map[string]bool, len(c.Project.Exclude))
	for _, name := range c.Project.Exclude {
		set[name] = true
	}
	return set
}
