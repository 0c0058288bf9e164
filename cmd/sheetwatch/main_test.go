package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
watch_dir = %q
log_dir = %q
database_path = %q

[llm]
api_key = "test"

[codegen]
tool_path = %q
output_dir = %q
`,
		filepath.Join(base, "sheets"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "sheetwatch.db"),
		filepath.Join(base, "bin", "ldrc"),
		filepath.Join(base, "codegen"),
	)
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return buf.String()
}

func TestListWithEmptyStore(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out := runCommand(t, "--config", cfgPath, "list")
	if !strings.Contains(out, "No analyses stored") {
		t.Fatalf("output = %q", out)
	}
}

func TestStatsWithEmptyStore(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out := runCommand(t, "--config", cfgPath, "stats")
	if !strings.Contains(out, "Analyses:  0") {
		t.Fatalf("output = %q", out)
	}
}

func TestReanalyzeUnknownFilename(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out := runCommand(t, "--config", cfgPath, "reanalyze", "missing.pdf")
	if !strings.Contains(out, "No stored analyses for missing.pdf") {
		t.Fatalf("output = %q", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out := runCommand(t, "config", "init", "--path", target)
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("output = %q", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "watch_dir") {
		t.Fatalf("sample missing watch_dir: %s", data)
	}

	// A second init without --overwrite must refuse.
	cmd := newRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}
