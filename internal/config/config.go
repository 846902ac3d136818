package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Slack      SlackConfig      `yaml:"slack" mapstructure:"slack"`
	Kickfire   KickfireConfig   `yaml:"kickfire" mapstructure:"kickfire"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Dedupe     DedupeConfig     `yaml:"dedupe" mapstructure:"dedupe"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// SalesforceConfig holds Salesforce username-password OAuth settings.
type SalesforceConfig struct {
	Username        string  `yaml:"username" mapstructure:"username"`
	Password        string  `yaml:"password" mapstructure:"password"`
	SecurityToken   string  `yaml:"security_token" mapstructure:"security_token"`
	ConsumerKey     string  `yaml:"consumer_key" mapstructure:"consumer_key"`
	ConsumerSecret  string  `yaml:"consumer_secret" mapstructure:"consumer_secret"`
	LoginURL        string  `yaml:"login_url" mapstructure:"login_url"`
	ExternalIDField string  `yaml:"external_id_field" mapstructure:"external_id_field"`
	RateLimitRPS    float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
}

// SlackConfig holds the webhook shared secret and the Web API OAuth token.
type SlackConfig struct {
	SigningToken string `yaml:"signing_token" mapstructure:"signing_token"`
	OAuthToken   string `yaml:"oauth_token" mapstructure:"oauth_token"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
}

// KickfireConfig holds the domain classifier API settings.
type KickfireConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// DedupeConfig configures the recent-user deduper.
type DedupeConfig struct {
	Size int `yaml:"size" mapstructure:"size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("COMMSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv is not consulted by Unmarshal for keys that have no
	// default or file entry, so the credential keys are bound explicitly.
	for _, key := range []string{
		"salesforce.username",
		"salesforce.password",
		"salesforce.security_token",
		"salesforce.consumer_key",
		"salesforce.consumer_secret",
		"slack.signing_token",
		"slack.oauth_token",
		"kickfire.key",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrap(err, "config: bind env "+key)
		}
	}

	// Defaults
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.external_id_field", "Slack_User_ID__c")
	v.SetDefault("salesforce.rate_limit_rps", 5)
	v.SetDefault("kickfire.base_url", "https://api.kickfire.com")
	v.SetDefault("slack.base_url", "https://slack.com/api")
	v.SetDefault("server.port", 3000)
	v.SetDefault("dedupe.size", 128)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that required credentials are present before serving.
func (c *Config) Validate() error {
	if c.Salesforce.Username == "" {
		return eris.New("config: salesforce username is required (COMMSYNC_SALESFORCE_USERNAME)")
	}
	if c.Salesforce.Password == "" {
		return eris.New("config: salesforce password is required (COMMSYNC_SALESFORCE_PASSWORD)")
	}
	if c.Salesforce.ConsumerKey == "" || c.Salesforce.ConsumerSecret == "" {
		return eris.New("config: salesforce consumer key/secret are required")
	}
	if c.Slack.SigningToken == "" {
		return eris.New("config: slack signing token is required (COMMSYNC_SLACK_SIGNING_TOKEN)")
	}
	if c.Slack.OAuthToken == "" {
		return eris.New("config: slack oauth token is required (COMMSYNC_SLACK_OAUTH_TOKEN)")
	}
	if c.Kickfire.Key == "" {
		return eris.New("config: kickfire api key is required (COMMSYNC_KICKFIRE_KEY)")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
