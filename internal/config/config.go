package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/young1lin/websearch-mcp/internal/models"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Search  SearchConfig  `mapstructure:"search"`
	Logging LoggingConfig `mapstructure:"logging"`
	History HistoryConfig `mapstructure:"history"`
}

// SearchConfig holds provider credentials and the default provider selector.
type SearchConfig struct {
	DefaultProvider string         `mapstructure:"default_provider"`
	Timeout         int            `mapstructure:"timeout"` // seconds; 0 leaves the transport default
	Tavily          ProviderConfig `mapstructure:"tavily"`
	SerpAPI         ProviderConfig `mapstructure:"serpapi"`
}

// ProviderConfig represents a single search provider
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HistoryConfig controls the optional search-history log.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from defaults, an optional YAML file, .env files
// and the environment, in increasing order of precedence.
func Load(cfgFile string) (*Config, error) {
	// Missing .env files are fine.
	_ = godotenv.Load()
	_ = godotenv.Load(".env.local")

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("WEBMCP")
	v.AutomaticEnv()

	// The well-known provider variables are read without the prefix.
	_ = v.BindEnv("search.tavily.api_key", "WEBMCP_SEARCH_TAVILY_API_KEY", "TAVILY_API_KEY")
	_ = v.BindEnv("search.serpapi.api_key", "WEBMCP_SEARCH_SERPAPI_API_KEY", "SERPAPI_KEY")
	_ = v.BindEnv("search.default_provider", "WEBMCP_SEARCH_DEFAULT_PROVIDER", "DEFAULT_PROVIDER")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8787)

	v.SetDefault("search.default_provider", "tavily")
	v.SetDefault("search.timeout", 0)
	v.SetDefault("search.tavily.base_url", "https://api.tavily.com/search")
	v.SetDefault("search.serpapi.base_url", "https://serpapi.com/search.json")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("history.enabled", false)
	v.SetDefault("history.path", "./data/history.db")
}

// APIKey returns the configured secret for a provider, or "" when unset.
func (c *Config) APIKey(p models.Provider) string {
	switch p {
	case models.ProviderTavily:
		return strings.TrimSpace(c.Search.Tavily.APIKey)
	case models.ProviderSerpAPI:
		return strings.TrimSpace(c.Search.SerpAPI.APIKey)
	}
	return ""
}
