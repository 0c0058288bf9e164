package config

// DefaultLLMBaseURL is the chat completion endpoint used when the config
// leaves base_url empty.
const DefaultLLMBaseURL = "https://api.openai.com/v1/chat/completions"

const (
	defaultWatchDir       = "~/datasheets"
	defaultResultsSubdir  = "results"
	defaultLogDir         = "~/.local/share/sheetwatch/logs"
	defaultDatabasePath   = "~/.local/share/sheetwatch/sheetwatch.db"
	defaultLLMModel       = "gpt-4o"
	defaultLLMTimeout     = 120
	defaultCodegenOutput  = "~/.cache/sheetwatch/codegen"
	defaultCodegenTimeout = 120
	defaultMaxPages       = 5
	defaultRenderDPI      = 150
	defaultPollInterval   = 60
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

func defaultExtensions() []string {
	return []string{".pdf", ".png", ".jpg", ".jpeg", ".bmp", ".gif", ".tiff"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WatchDir:      defaultWatchDir,
			ResultsSubdir: defaultResultsSubdir,
			LogDir:        defaultLogDir,
			DatabasePath:  defaultDatabasePath,
		},
		LLM: LLM{
			BaseURL:        DefaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Codegen: Codegen{
			OutputDir:      defaultCodegenOutput,
			TimeoutSeconds: defaultCodegenTimeout,
		},
		Analyzer: Analyzer{
			MaxPages:     defaultMaxPages,
			RenderDPI:    defaultRenderDPI,
			PollInterval: defaultPollInterval,
			Extensions:   defaultExtensions(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
