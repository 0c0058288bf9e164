package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"sheetwatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WatchDir = filepath.Join(base, "sheets")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.DatabasePath = filepath.Join(base, "sheetwatch.db")
	cfgVal.LLM.APIKey = "test"
	cfgVal.Codegen.ToolPath = filepath.Join(base, "bin", "ldrc")
	cfgVal.Codegen.OutputDir = filepath.Join(base, "codegen")
	cfgVal.Analyzer.PollInterval = 1

	if err := os.MkdirAll(cfgVal.Paths.WatchDir, 0o755); err != nil {
		t.Fatalf("mkdir watch dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCodegenStub writes a stub code-generation tool that copies a canned
// snippet to the path given via -o, and points the config at it.
func WithCodegenStub() ConfigOption {
	return WithCodegenScript("#!/bin/sh\n" +
		"out=\"\"\nprev=\"\"\n" +
		"for a in \"$@\"; do\n" +
		"  if [ \"$prev\" = \"-o\" ]; then out=\"$a\"; fi\n" +
		"  prev=\"$a\"\n" +
		"done\n" +
		"printf 'print(\"check ok\")\\n' > \"$out\"\n")
}

// WithCodegenScript writes the provided shell script as the code-generation
// tool and points the config at it.
func WithCodegenScript(script string) ConfigOption {
	return func(b *configBuilder) {
		target := b.cfg.Codegen.ToolPath
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write codegen stub: %v", err)
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WatchDir)
}
