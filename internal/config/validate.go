package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateCodegen(); err != nil {
		return err
	}
	return c.validateAnalyzer()
}

func (c *Config) validatePaths() error {
	if c.Paths.WatchDir == "" {
		return errors.New("paths.watch_dir must be set")
	}
	if c.Paths.DatabasePath == "" {
		return errors.New("paths.database_path must be set")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/sheetwatch/config.toml"
		}
		return fmt.Errorf("llm.api_key is required. Set SHEETWATCH_LLM_KEY env var or edit %s (create with 'sheetwatch config init')", defaultPath)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateCodegen() error {
	if c.Codegen.ToolPath == "" {
		return errors.New("codegen.tool_path must be set")
	}
	if c.Codegen.OutputDir == "" {
		return errors.New("codegen.output_dir must be set")
	}
	if c.Codegen.TimeoutSeconds <= 0 {
		return errors.New("codegen.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateAnalyzer() error {
	if err := ensurePositiveMap(map[string]int{
		"analyzer.max_pages":     c.Analyzer.MaxPages,
		"analyzer.render_dpi":    c.Analyzer.RenderDPI,
		"analyzer.poll_interval": c.Analyzer.PollInterval,
	}); err != nil {
		return err
	}
	if len(c.Analyzer.Extensions) == 0 {
		return errors.New("analyzer.extensions must include at least one extension")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
