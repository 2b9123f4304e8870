// Package config loads runtime settings from config.yaml, environment
// variables (SUBWEAVE_ prefix) and defaults, in that priority order.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Input  InputConfig  `mapstructure:"input"`
	Output OutputConfig `mapstructure:"output"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
	Rules  RulesConfig  `mapstructure:"rules"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	Log    LogConfig    `mapstructure:"log"`
}

type InputConfig struct {
	// Dir holds *.txt source-list files; each becomes one output document.
	Dir string `mapstructure:"dir"`
}

type OutputConfig struct {
	Dir        string `mapstructure:"dir"`
	MaxProxies int    `mapstructure:"max_proxies"`
}

type FetchConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	Delay    time.Duration `mapstructure:"delay"`
	Retries  uint64        `mapstructure:"retries"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	MaxBytes int64         `mapstructure:"max_bytes"`
}

type RulesConfig struct {
	// URL of a remote rule list; empty means the built-in plan.
	URL string `mapstructure:"url"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
	// Cron schedule for background regeneration in serve mode.
	RefreshCron string `mapstructure:"refresh_cron"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads config.yaml from the working directory or /etc/subweave/, then
// applies SUBWEAVE_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/subweave/")
	}

	v.SetEnvPrefix("SUBWEAVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.dir", "sources")
	v.SetDefault("output.dir", "out")
	v.SetDefault("output.max_proxies", 200)

	v.SetDefault("fetch.timeout", "15s")
	v.SetDefault("fetch.delay", "1s")
	v.SetDefault("fetch.retries", 2)
	v.SetDefault("fetch.cache_ttl", "0s")
	v.SetDefault("fetch.max_bytes", 5*1024*1024)

	v.SetDefault("rules.url", "")

	v.SetDefault("http.addr", "0.0.0.0:8080")
	v.SetDefault("http.refresh_cron", "0 */6 * * *")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}
