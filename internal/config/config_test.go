package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GSFD_ANALYSIS_CONFIG", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Output.ResultsFile != "results.csv" || !cfg.Output.Facets {
		t.Fatalf("unexpected output defaults: %+v", cfg.Output)
	}
	if cfg.Server.GracefulTimeout != 10*time.Second {
		t.Fatalf("unexpected graceful timeout %v", cfg.Server.GracefulTimeout)
	}
	if len(cfg.Layouts) != 2 || cfg.Layouts[0].Name != "failure_delta" {
		t.Fatalf("expected built-in layouts, got %d", len(cfg.Layouts))
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	doc := `
reports:
  path: /data/reports
  workers: 2
output:
  path: out
  facets: false
server:
  gracefulTimeout: 3s
layouts:
  - name: custom
    x: [failure_delta]
    statistics: [correct]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GSFD_ANALYSIS_WORKERS", "8")
	t.Setenv("GSFD_ANALYSIS_LOG_FORMAT", "json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Reports.Path != "/data/reports" {
		t.Fatalf("unexpected reports path %q", cfg.Reports.Path)
	}
	if cfg.Reports.Workers != 8 {
		t.Fatalf("expected env to override workers, got %d", cfg.Reports.Workers)
	}
	if cfg.Output.Facets {
		t.Fatalf("expected facets disabled by file")
	}
	if cfg.Output.ResultsFile != "results.csv" {
		t.Fatalf("expected default results file to survive, got %q", cfg.Output.ResultsFile)
	}
	if !cfg.Logging.JSON {
		t.Fatalf("expected json logging from env")
	}
	if cfg.Server.GracefulTimeout != 3*time.Second {
		t.Fatalf("unexpected graceful timeout %v", cfg.Server.GracefulTimeout)
	}
	if len(cfg.Layouts) != 1 || cfg.Layouts[0].Name != "custom" || cfg.Layouts[0].XAxis[0] != "failure_delta" {
		t.Fatalf("unexpected layouts %+v", cfg.Layouts)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
