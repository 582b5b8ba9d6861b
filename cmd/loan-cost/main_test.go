package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/loan-cost/internal/config"
	"github.com/iwvelando/loan-cost/pkg/output"
)

const testConfig = `fees:
  initiationBase: "165"
  initiationRate: "0.10"
  initiationThreshold: "1000"
  initiationCap: "1050"
  serviceFeePerMonth: "60"
  serviceFeeCap: "500"
  vatRate: "0.15"
limits:
  maxTermDays: 1095
  maxMonthlyRate: "0.05"
logging:
  level: error
output:
  format: pretty
cache:
  backend: none
store:
  backend: memory
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LoggingConfig
		override string
		wantErr  bool
	}{
		{name: "defaults", cfg: config.LoggingConfig{}},
		{name: "console debug", cfg: config.LoggingConfig{Level: "debug", Format: "console"}},
		{name: "override wins", cfg: config.LoggingConfig{Level: "bogus"}, override: "warn"},
		{name: "invalid level", cfg: config.LoggingConfig{Level: "verbose"}, wantErr: true},
		{name: "invalid format", cfg: config.LoggingConfig{Format: "xml"}, wantErr: true},
		{name: "file output", cfg: config.LoggingConfig{OutputFile: filepath.Join(t.TempDir(), "logs", "loan-cost.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.cfg, tt.override)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("initializeLogger() error = %v", err)
			}
			_ = logger.Sync()
		})
	}
}

func TestCalculateJSON(t *testing.T) {
	configPath := writeConfig(t, testConfig)

	out, err := runRoot(t, "calculate", "--config", configPath,
		"--principal", "1000", "--term-days", "30", "--start", "2025-04-01",
		"--rate", "0.05", "--output-format", "json")
	if err != nil {
		t.Fatalf("calculate failed: %v\n%s", err, out)
	}

	var view output.View
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("failed to decode output: %v\n%s", err, out)
	}
	if view.TotalRepayment != "1308.75" {
		t.Fatalf("expected total repayment 1308.75, got %s", view.TotalRepayment)
	}
	if view.MaturityDate != "2025-05-01" {
		t.Fatalf("expected maturity 2025-05-01, got %s", view.MaturityDate)
	}
}

func TestCalculateCSVWithSalaryDay(t *testing.T) {
	configPath := writeConfig(t, testConfig)

	out, err := runRoot(t, "calculate", "--config", configPath,
		"--principal", "1000", "--term-days", "60", "--start", "2025-04-10",
		"--rate", "0.05", "--salary-day", "25", "--output-format", "csv")
	if err != nil {
		t.Fatalf("calculate failed: %v\n%s", err, out)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, 2 installments and total, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "1,2025-05-25,") || !strings.HasPrefix(lines[2], "2,2025-06-25,") {
		t.Fatalf("unexpected installments:\n%s", out)
	}
	if !strings.HasPrefix(lines[3], "total,,") {
		t.Fatalf("total row should leave the due date empty:\n%s", out)
	}
}

func TestCalculateRejectsInvalidInput(t *testing.T) {
	configPath := writeConfig(t, testConfig)

	tests := map[string][]string{
		"rate above limit": {"--principal", "1000", "--term-days", "30", "--start", "2025-04-01", "--rate", "0.06"},
		"zero principal":   {"--principal", "0", "--term-days", "30", "--start", "2025-04-01", "--rate", "0.05"},
		"salary day zero":  {"--principal", "1000", "--term-days", "30", "--start", "2025-04-01", "--rate", "0.05", "--salary-day", "0"},
		"bad principal":    {"--principal", "ten", "--term-days", "30", "--rate", "0.05"},
		"bad start":        {"--principal", "1000", "--term-days", "30", "--start", "01/04/2025", "--rate", "0.05"},
		"bad format":       {"--principal", "1000", "--term-days", "30", "--rate", "0.05", "--output-format", "xml"},
		"missing rate":     {"--principal", "1000", "--term-days", "30"},
	}

	for name, flags := range tests {
		t.Run(name, func(t *testing.T) {
			args := append([]string{"calculate", "--config", configPath}, flags...)
			if _, err := runRoot(t, args...); err == nil {
				t.Fatal("expected error but got nil")
			}
		})
	}
}

func TestCalculateMissingConfig(t *testing.T) {
	_, err := runRoot(t, "calculate", "--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--principal", "1000", "--term-days", "30", "--rate", "0.05")
	if err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestMergeLogging(t *testing.T) {
	merged := mergeLogging(
		config.LoggingConfig{Level: "info", Format: "json", OutputFile: "a.log"},
		config.LoggingConfig{Format: "console"},
	)
	if merged.Level != "info" || merged.Format != "console" || merged.OutputFile != "a.log" {
		t.Fatalf("unexpected merge result %+v", merged)
	}
}
