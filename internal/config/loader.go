package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. STAKE_CALC_SERVER_PORT
const EnvPrefix = "STAKE_CALC"

// Load reads configuration from an optional YAML file, environment variables and defaults.
// ${VAR} placeholders in the file are expanded before parsing. An empty path skips the file;
// a non-empty path that does not exist is an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Origins from the environment arrive comma separated
	cfg.Server.AllowedOrigins = splitList(strings.Join(cfg.Server.AllowedOrigins, ","))

	return cfg, nil
}

// LoadAndValidate loads the configuration and validates it
func LoadAndValidate(configPath string) (*Config, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "stake-calculator")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", 8084)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:3001"})

	v.SetDefault("calculator.default_bankroll", 50.0)
	v.SetDefault("calculator.default_cap_fraction", 0.25)
	v.SetDefault("calculator.min_stake", 0.10)

	v.SetDefault("empirical.alpha", 0.6)
	v.SetDefault("empirical.tau_days", 30.0)
	v.SetDefault("empirical.min_prob", 0.5)
	v.SetDefault("empirical.max_prob", 0.95)
	v.SetDefault("empirical.history_file", "")
	v.SetDefault("empirical.cache_ttl", "1m")
	v.SetDefault("empirical.remote_url", "")
	v.SetDefault("empirical.request_timeout", "5s")
	v.SetDefault("empirical.retry_max", 0)
	v.SetDefault("empirical.rate_limit", 10.0)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
