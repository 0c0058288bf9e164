package config

import (
	"os"
	"strings"
)

// normalize expands user paths, applies environment fallbacks, and cleans up
// user-supplied values so the rest of the system can rely on absolute paths
// and canonical extension spellings.
func (c *Config) normalize() error {
	var err error
	if c.Paths.WatchDir, err = expandPath(c.Paths.WatchDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Paths.DatabasePath, err = expandPath(c.Paths.DatabasePath); err != nil {
		return err
	}
	if c.Codegen.OutputDir, err = expandPath(c.Codegen.OutputDir); err != nil {
		return err
	}
	if trimmed := strings.TrimSpace(c.Codegen.ToolPath); strings.HasPrefix(trimmed, "~") {
		if c.Codegen.ToolPath, err = expandPath(trimmed); err != nil {
			return err
		}
	} else {
		c.Codegen.ToolPath = trimmed
	}

	c.Paths.ResultsSubdir = strings.TrimSpace(c.Paths.ResultsSubdir)
	if c.Paths.ResultsSubdir == "" {
		c.Paths.ResultsSubdir = defaultResultsSubdir
	}

	if key := strings.TrimSpace(os.Getenv("SHEETWATCH_LLM_KEY")); key != "" && strings.TrimSpace(c.LLM.APIKey) == "" {
		c.LLM.APIKey = key
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = DefaultLLMBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}

	if len(c.Analyzer.Extensions) == 0 {
		c.Analyzer.Extensions = defaultExtensions()
	}
	normalized := make([]string, 0, len(c.Analyzer.Extensions))
	for _, ext := range c.Analyzer.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	c.Analyzer.Extensions = normalized

	return nil
}
