package config

// Config is the full daemon configuration.
type Config struct {
	Server  ServerConfig      `mapstructure:"server"`
	Storage StorageConfig     `mapstructure:"storage"`
	Genesis GenesisConfig     `mapstructure:"genesis"`
	Log     LogConfig         `mapstructure:"log"`
	Targets map[string]string `mapstructure:"targets"`

	configPath string
}

// ServerConfig covers the HTTP surface.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// StorageConfig covers the on-disk layout.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// GenesisConfig seeds the storage document on first start. Ignored once a
// committed document exists in the data dir.
type GenesisConfig struct {
	Admin          string   `mapstructure:"admin"`
	Whitelist      []string `mapstructure:"whitelist"`
	SupportedPairs []string `mapstructure:"supported_pairs"`
	RequestPrice   uint64   `mapstructure:"request_price"`
}

// LogConfig covers logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// GetConfigPath returns the path the config was loaded from, empty when only
// defaults and environment were used.
func (c *Config) GetConfigPath() string {
	return c.configPath
}
