package config

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Log     LogConfig
	View    ViewConfig
	MCP     MCPConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

type ViewConfig struct {
	// DefaultMode is "grouped" or "flat".
	DefaultMode string
}

type MCPConfig struct {
	Enabled bool
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4100,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
		View: ViewConfig{
			DefaultMode: "grouped",
		},
	}
}

// Load reads configuration from the platform-native backend and environment
// variables.
//
// On macOS the backend is UserDefaults (domain: com.callhighlights.app).
// On Linux the backend is a JSON file at
// $XDG_CONFIG_HOME/callhighlights/config.json.
//
// Environment variables (CALLHL_*) override backend values on all platforms.
func Load() (Config, error) {
	return loadWith(newPlatformBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}
