package config

const (
	defaultDataDir              = "~/.local/share/waymark/data"
	defaultOutputDir            = "~/.local/share/waymark/frontend"
	defaultLogDir               = "~/.local/share/waymark/logs"
	defaultHistoryPath          = "history.db"
	defaultWatchDebounceSeconds = 2
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Watch: Watch{
			DebounceSeconds: defaultWatchDebounceSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
