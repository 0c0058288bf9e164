// Package config loads, normalizes, and validates sheetwatch configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SHEETWATCH_LLM_KEY. The Config type centralizes every knob the daemon and
// CLI need: watched folder layout, LLM connection settings, the external
// code-generation tool, analyzer scheduling, and logging.
package config
