package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		{"DEBUG", slog.LevelDebug, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"WARNING", slog.LevelWarn, false},
		{"WARN", slog.LevelWarn, false},
		{"ERROR", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := parseLogLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if result != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("nonexistent.yaml")
	if err != nil {
		t.Fatalf("LoadConfig returned error for missing file: %v", err)
	}

	if config.Level != "INFO" {
		t.Errorf("Default level = %q, want %q", config.Level, "INFO")
	}
	if !config.ConsoleEnabled {
		t.Error("Default ConsoleEnabled = false, want true")
	}
	if config.FileEnabled {
		t.Error("Default FileEnabled = true, want false")
	}
	if config.FilePath != "logs/paintgalaxy.log" {
		t.Errorf("Default FilePath = %q", config.FilePath)
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logging.yaml")
	yamlContent := `logging:
  level: DEBUG
  console_format: json
  file_enabled: true
  file_path: test.log
  file_max_size_mb: 20
`
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if config.Level != "DEBUG" {
		t.Errorf("Level = %q, want DEBUG", config.Level)
	}
	if config.ConsoleFormat != "json" {
		t.Errorf("ConsoleFormat = %q, want json", config.ConsoleFormat)
	}
	if !config.ConsoleEnabled {
		t.Error("ConsoleEnabled should keep its default when omitted")
	}
	if !config.FileEnabled || config.FilePath != "test.log" || config.FileMaxSizeMB != 20 {
		t.Errorf("unexpected file settings: %+v", config)
	}
	if config.FileMaxBackups != 5 {
		t.Errorf("FileMaxBackups = %d, want default 5", config.FileMaxBackups)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logging.yaml")
	if err := os.WriteFile(path, []byte("logging: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	config, err := LoadConfig(path)
	if err == nil {
		t.Error("expected parse error")
	}
	if config.Level != "INFO" {
		t.Errorf("expected defaults on error, got %+v", config)
	}
}

func TestEnvVarOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("LOG_CONSOLE_FORMAT", "json")
	t.Setenv("LOG_FILE_ENABLED", "true")
	t.Setenv("LOG_FILE_PATH", "/tmp/override.log")

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if config.Level != "ERROR" {
		t.Errorf("Level = %q, want ERROR", config.Level)
	}
	if config.ConsoleFormat != "json" {
		t.Errorf("ConsoleFormat = %q, want json", config.ConsoleFormat)
	}
	if !config.FileEnabled {
		t.Error("FileEnabled = false, want true")
	}
	if config.FilePath != "/tmp/override.log" {
		t.Errorf("FilePath = %q", config.FilePath)
	}
}

func initBuffer(t *testing.T, format, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	config := DefaultConfig()
	config.Level = level
	config.ConsoleFormat = format
	config.Output = &buf
	if err := Initialize(config); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { logger = nil })
	return &buf
}

func TestInitializeWithTextFormat(t *testing.T) {
	buf := initBuffer(t, "text", "INFO")

	Info("scenario generated", "stars", 42)

	out := buf.String()
	if !strings.Contains(out, "msg=\"scenario generated\"") || !strings.Contains(out, "stars=42") {
		t.Errorf("unexpected text output: %q", out)
	}
}

func TestInitializeWithJSONFormat(t *testing.T) {
	buf := initBuffer(t, "json", "INFO")

	Warning("slow generation", "ms", 1500)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["level"] != "WARN" || record["msg"] != "slow generation" {
		t.Errorf("unexpected record: %v", record)
	}
}

func TestInitializeUnknownLevel(t *testing.T) {
	config := DefaultConfig()
	config.Level = "loud"
	if err := Initialize(config); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := initBuffer(t, "text", "WARN")

	Debug("hidden")
	Info("hidden too")
	Error("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("records below WARN leaked: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("error record missing: %q", out)
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")
	config := DefaultConfig()
	config.ConsoleEnabled = false
	config.FileEnabled = true
	config.FilePath = path
	if err := Initialize(config); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { logger = nil })

	Info("to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"to file"`) {
		t.Errorf("unexpected file content: %q", data)
	}
}

func TestMultiHandler(t *testing.T) {
	var debugBuf, errorBuf bytes.Buffer
	h := newMultiHandler(
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	l := slog.New(h).With("run", 1)

	l.Debug("only debug")
	l.Error("both")

	if !strings.Contains(debugBuf.String(), "only debug") || !strings.Contains(debugBuf.String(), "both") {
		t.Errorf("debug handler output: %q", debugBuf.String())
	}
	if strings.Contains(errorBuf.String(), "only debug") || !strings.Contains(errorBuf.String(), "run=1") {
		t.Errorf("error handler output: %q", errorBuf.String())
	}
}

func TestNilLogger(t *testing.T) {
	logger = nil

	// None of these should panic before Initialize.
	Debug("x")
	Info("x")
	Warning("x")
	Error("x")
}
