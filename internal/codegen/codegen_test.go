package codegen_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"sheetwatch/internal/codegen"
	"sheetwatch/internal/services"
	"sheetwatch/internal/testsupport"
)

func TestGenerateWithStubTool(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCodegenStub())
	runner := codegen.NewRunner(cfg.Codegen)

	code, err := runner.Generate(context.Background(), "LM317T", "Verify output voltage is 1.25V")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(code, "check ok") {
		t.Fatalf("code = %q", code)
	}
}

func TestGenerateBuildsExpectedInvocation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := codegen.NewRunner(cfg.Codegen)

	var gotName string
	var gotArgs []string
	runner.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return os.WriteFile(runner.OutputPath(), []byte("print('ok')"), 0o644)
	})

	code, err := runner.Generate(context.Background(), "NE555", "Check astable frequency")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if code != "print('ok')" {
		t.Fatalf("code = %q", code)
	}

	if gotName != cfg.Codegen.ToolPath {
		t.Fatalf("tool = %q, want %q", gotName, cfg.Codegen.ToolPath)
	}
	if len(gotArgs) != 5 || gotArgs[0] != "pythonPrompt" || gotArgs[1] != "-p" || gotArgs[3] != "-o" {
		t.Fatalf("args = %v", gotArgs)
	}
	prompt := gotArgs[2]
	if !strings.Contains(prompt, "VendorCode NE555") || !strings.Contains(prompt, "Check astable frequency") {
		t.Fatalf("prompt = %q", prompt)
	}
	if gotArgs[4] != runner.OutputPath() {
		t.Fatalf("output arg = %q, want %q", gotArgs[4], runner.OutputPath())
	}
	if !strings.HasSuffix(gotArgs[4], "checkpoint.py") {
		t.Fatalf("output path = %q", gotArgs[4])
	}
}

func TestGenerateRemovesStaleOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := codegen.NewRunner(cfg.Codegen)

	if err := os.MkdirAll(cfg.Codegen.OutputDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(runner.OutputPath(), []byte("stale"), 0o644); err != nil {
		t.Fatalf("seed stale output: %v", err)
	}

	// Tool exits 0 but writes nothing; the stale file must not leak through.
	runner.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return nil
	})
	_, err := runner.Generate(context.Background(), "LM317T", "req")
	if !errors.Is(err, services.ErrCodeSynthesis) {
		t.Fatalf("expected ErrCodeSynthesis, got %v", err)
	}
	if !strings.Contains(err.Error(), "no output file") {
		t.Fatalf("error = %v", err)
	}
}

func TestGenerateToolFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := codegen.NewRunner(cfg.Codegen)
	runner.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return errors.New("exit status 2")
	})

	_, err := runner.Generate(context.Background(), "LM317T", "req")
	if !errors.Is(err, services.ErrCodeSynthesis) {
		t.Fatalf("expected ErrCodeSynthesis, got %v", err)
	}
}

func TestGenerateEmptyRequirement(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner := codegen.NewRunner(cfg.Codegen)

	_, err := runner.Generate(context.Background(), "LM317T", "   ")
	if !errors.Is(err, services.ErrCodeSynthesis) {
		t.Fatalf("expected ErrCodeSynthesis, got %v", err)
	}
}
