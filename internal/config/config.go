package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gsfdstack/gsfd-analysis/internal/models"
)

// Config captures the settings of a batch analysis and of the query server.
type Config struct {
	Reports ReportsConfig       `yaml:"reports"`
	Output  OutputConfig        `yaml:"output"`
	Logging LoggingConfig       `yaml:"logging"`
	Metrics MetricsConfig       `yaml:"metrics"`
	Server  ServerConfig        `yaml:"server"`
	Layouts []models.LayoutSpec `yaml:"layouts"`
}

// ReportsConfig locates the simulator reports.
type ReportsConfig struct {
	Path    string `yaml:"path"`
	Workers int    `yaml:"workers"`
}

// OutputConfig controls where exported tables are written.
type OutputConfig struct {
	Path        string `yaml:"path"`
	ResultsFile string `yaml:"resultsFile"`
	Facets      bool   `yaml:"facets"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// MetricsConfig controls the metrics dump of batch runs.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfilePath"`
}

// ServerConfig controls the gRPC listener of the query server.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("GSFD_ANALYSIS_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if len(cfg.Layouts) == 0 {
		cfg.Layouts = models.DefaultLayouts()
	}
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Reports: ReportsConfig{Workers: 0},
		Output: OutputConfig{
			Path:        "analysis",
			ResultsFile: "results.csv",
			Facets:      true,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Server: ServerConfig{
			Address:         ":50061",
			MetricsAddress:  ":2113",
			GracefulTimeout: 10 * time.Second,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GSFD_ANALYSIS_REPORTS_PATH"); v != "" {
		cfg.Reports.Path = v
	}
	if v := os.Getenv("GSFD_ANALYSIS_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Reports.Workers = n
		}
	}
	if v := os.Getenv("GSFD_ANALYSIS_OUTPUT_PATH"); v != "" {
		cfg.Output.Path = v
	}
	if v := os.Getenv("GSFD_ANALYSIS_FACETS"); v != "" {
		cfg.Output.Facets = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("GSFD_ANALYSIS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("GSFD_ANALYSIS_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("GSFD_ANALYSIS_METRICS_TEXTFILE"); v != "" {
		cfg.Metrics.TextfilePath = v
	}
	if v := os.Getenv("GSFD_ANALYSIS_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("GSFD_ANALYSIS_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("GSFD_ANALYSIS_GRACEFUL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.GracefulTimeout = d
		}
	}
}
