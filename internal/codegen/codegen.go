// Package codegen invokes the external code synthesis tool that turns a
// checklist requirement into runnable Python verification code.
package codegen

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"sheetwatch/internal/config"
	"sheetwatch/internal/services"
)

const (
	// pythonPromptSubcommand is the tool subcommand for prompt-driven
	// Python generation.
	pythonPromptSubcommand = "pythonPrompt"
	// outputFilename is the fixed file the tool writes its result to.
	outputFilename = "checkpoint.py"
)

// Runner shells out to the synthesis tool once per checklist requirement.
type Runner struct {
	toolPath      string
	outputDir     string
	timeout       time.Duration
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewRunner builds a runner from the codegen configuration.
func NewRunner(cfg config.Codegen) *Runner {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Runner{
		toolPath:  cfg.ToolPath,
		outputDir: cfg.OutputDir,
		timeout:   timeout,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (r *Runner) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	r.commandRunner = runner
}

// OutputPath returns the fixed path the tool writes generated code to.
func (r *Runner) OutputPath() string {
	return filepath.Join(r.outputDir, outputFilename)
}

// Generate synthesizes Python code for one checklist requirement and returns
// the generated source. The tool writes to a fixed output path, so callers
// must not invoke Generate concurrently on the same runner.
func (r *Runner) Generate(ctx context.Context, vendorCode, requirement string) (string, error) {
	requirement = strings.TrimSpace(requirement)
	if requirement == "" {
		return "", services.Wrap(services.ErrCodeSynthesis, "codegen", "generate", "requirement required", nil)
	}
	if strings.TrimSpace(r.toolPath) == "" {
		return "", services.Wrap(services.ErrCodeSynthesis, "codegen", "generate", "tool path not configured", nil)
	}
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrCodeSynthesis, "codegen", "generate", "failed to create output directory", err)
	}

	outputPath := r.OutputPath()
	// Remove any stale result so a tool that exits 0 without writing
	// cannot pass off the previous run's code as this one's.
	if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
		return "", services.Wrap(services.ErrCodeSynthesis, "codegen", "generate", "failed to clear previous output", err)
	}

	prompt := buildPrompt(vendorCode, requirement)
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.run(runCtx, r.toolPath, pythonPromptSubcommand, "-p", prompt, "-o", outputPath); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return "", services.Wrap(services.ErrCodeSynthesis, "codegen", "generate",
				fmt.Sprintf("tool timed out after %s", r.timeout), err)
		}
		return "", services.Wrap(services.ErrCodeSynthesis, "codegen", "generate", "tool invocation failed", err)
	}

	code, err := os.ReadFile(outputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", services.Wrap(services.ErrCodeSynthesis, "codegen", "generate",
				"tool exited cleanly but produced no output file", nil)
		}
		return "", services.Wrap(services.ErrCodeSynthesis, "codegen", "generate", "failed to read output file", err)
	}
	return string(code), nil
}

func (r *Runner) run(ctx context.Context, name string, args ...string) error {
	if r.commandRunner != nil {
		return r.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, pythonPromptSubcommand, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func buildPrompt(vendorCode, requirement string) string {
	return "Create Python code for VendorCode " + vendorCode +
		". Requirement: " + requirement +
		". Output only python code."
}
