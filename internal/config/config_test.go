package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolateEnv clears every variable Load consults so tests see defaults.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	t.Setenv("OUTLINE_DATA_DIR", "")
	t.Setenv("OUTLINE_LOG_LEVEL", "")
	t.Setenv("OUTLINE_LOG_FORMAT", "")
	return dataHome
}

func TestConfigValidation(t *testing.T) {
	valid := func() Config {
		return Config{
			Paths:   PathsConfig{DataDir: "/var/lib/outline"},
			Logging: LoggingConfig{Level: "info", Format: "json"},
			Limits:  DefaultLimits(),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
			errMsg:  "Level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
			errMsg:  "Format",
		},
		{
			name:    "too many workers",
			mutate:  func(c *Config) { c.Limits.MaxConcurrentAnalyses = 65 },
			wantErr: true,
			errMsg:  "MaxConcurrentAnalyses",
		},
		{
			name:    "timeout too short",
			mutate:  func(c *Config) { c.Limits.AnalysisTimeout = 10 * time.Millisecond },
			wantErr: true,
			errMsg:  "AnalysisTimeout",
		},
		{
			name:    "negative rate",
			mutate:  func(c *Config) { c.Limits.RateLimit.ChaptersPerSecond = -1 },
			wantErr: true,
			errMsg:  "ChaptersPerSecond",
		},
		{
			name:    "burst too large",
			mutate:  func(c *Config) { c.Limits.RateLimit.BurstSize = 500 },
			wantErr: true,
			errMsg:  "BurstSize",
		},
		{
			name:    "blank fields fall back to defaults",
			mutate:  func(c *Config) { c.Logging = LoggingConfig{}; c.Limits = Limits{} },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err != nil && tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("validate() error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestDefaultLimits(t *testing.T) {
	limits := DefaultLimits()

	if limits.MaxConcurrentAnalyses != 4 {
		t.Errorf("MaxConcurrentAnalyses = %d, want 4", limits.MaxConcurrentAnalyses)
	}
	if limits.AnalysisTimeout != 2*time.Minute {
		t.Errorf("AnalysisTimeout = %v, want 2m", limits.AnalysisTimeout)
	}
	if limits.RateLimit.ChaptersPerSecond != 0 {
		t.Errorf("ChaptersPerSecond = %v, want 0 (unthrottled)", limits.RateLimit.ChaptersPerSecond)
	}
}

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	dataHome := isolateEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Paths.DataDir != filepath.Join(dataHome, "outline") {
		t.Errorf("DataDir = %q", cfg.Paths.DataDir)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Limits != DefaultLimits() {
		t.Errorf("Limits = %+v", cfg.Limits)
	}
}

func TestLoadFileParsesYAML(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
paths:
  data_dir: /srv/outline
logging:
  level: debug
  format: json
limits:
  max_concurrent_analyses: 8
  analysis_timeout: 30s
  rate_limit:
    chapters_per_second: 2.5
    burst_size: 4
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Paths.DataDir != "/srv/outline" {
		t.Errorf("DataDir = %q", cfg.Paths.DataDir)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	want := Limits{
		MaxConcurrentAnalyses: 8,
		AnalysisTimeout:       30 * time.Second,
		RateLimit:             RateLimitConfig{ChaptersPerSecond: 2.5, BurstSize: 4},
	}
	if cfg.Limits != want {
		t.Errorf("Limits = %+v, want %+v", cfg.Limits, want)
	}
}

func TestLoadFileEnvOverrides(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: error\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OUTLINE_DATA_DIR", "/tmp/outline-data")
	t.Setenv("OUTLINE_LOG_LEVEL", "WARN")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Paths.DataDir != "/tmp/outline-data" {
		t.Errorf("DataDir = %q", cfg.Paths.DataDir)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q, want env override", cfg.Logging.Level)
	}
}

func TestLoadFileRejectsInvalid(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		data string
	}{
		{"malformed yaml", "logging: [\n"},
		{"bad level", "logging:\n  level: loud\n"},
		{"zero timeout with workers", "limits:\n  max_concurrent_analyses: 2\n  analysis_timeout: 0s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Error("LoadFile succeeded")
			}
		})
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandTilde("~/stories"); got != filepath.Join(home, "stories") {
		t.Errorf("expandTilde = %q", got)
	}
	if got := expandTilde("/abs/path"); got != "/abs/path" {
		t.Errorf("expandTilde changed absolute path to %q", got)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("OUTLINE_CONFIG", "/etc/outline.yaml")
	if got := getConfigPath(); got != "/etc/outline.yaml" {
		t.Errorf("getConfigPath = %q", got)
	}

	t.Setenv("OUTLINE_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := getConfigPath(); got != filepath.Join("/xdg", "outline", "config.yaml") {
		t.Errorf("getConfigPath = %q", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Paths.DataDir = "/data/outline"
	cfg.Limits.AnalysisTimeout = 45 * time.Second
	if err := Save(cfg, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Paths.DataDir != "/data/outline" || loaded.Limits.AnalysisTimeout != 45*time.Second {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "chapter", 3)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record emitted at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"chapter":3`) {
		t.Errorf("output = %q", out)
	}

	if parseLevel("bogus") != slog.LevelInfo {
		t.Error("unknown level should default to info")
	}
}
