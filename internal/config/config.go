package config

import (
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Project struct {
		Root string `yaml:"root"`
	} `yaml:"project"`
	Analysis struct {
		Workers        int      `yaml:"workers"`
		ParseTimeoutMS int      `yaml:"parse_timeout_ms"`
		CoreLanguages  []string `yaml:"core_languages"`
	} `yaml:"analysis"`
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.Project.Root = "."
	cfg.Analysis.Workers = runtime.NumCPU()
	cfg.Analysis.ParseTimeoutMS = 5000
	cfg.Storage.DBPath = "codeatlas.db"
	return cfg
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config when present
	if file, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	}

	// 3. Override with Environment Variables if present
	if workers := os.Getenv("CODEATLAS_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			cfg.Analysis.Workers = n
		}
	}
	if db := os.Getenv("CODEATLAS_DB"); db != "" {
		cfg.Storage.DBPath = db
	}
	if root := os.Getenv("CODEATLAS_ROOT"); root != "" {
		cfg.Project.Root = root
	}

	if cfg.Analysis.Workers <= 0 {
		cfg.Analysis.Workers = runtime.NumCPU()
	}
	return cfg, nil
}
