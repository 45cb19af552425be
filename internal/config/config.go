package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// PortAuto picks the first free port, like the desktop build did
const PortAuto = "auto"

type Config struct {
	Port          string   `mapstructure:"PORT"`
	Env           string   `mapstructure:"ENV"`
	LogLevel      string   `mapstructure:"LOG_LEVEL"`
	MaxUploadMB   int64    `mapstructure:"MAX_UPLOAD_MB"`
	TemplatesFile string   `mapstructure:"TEMPLATES_FILE"`
	CORSOrigins   []string `mapstructure:"CORS_ORIGINS"`
	DefaultMinAge int      `mapstructure:"DEFAULT_MIN_AGE"`
	DefaultMaxAge int      `mapstructure:"DEFAULT_MAX_AGE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_UPLOAD_MB", 50)
	v.SetDefault("TEMPLATES_FILE", "")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("DEFAULT_MIN_AGE", 18)
	v.SetDefault("DEFAULT_MAX_AGE", 80)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "MAX_UPLOAD_MB", "TEMPLATES_FILE",
		"CORS_ORIGINS", "DEFAULT_MIN_AGE", "DEFAULT_MAX_AGE",
	} {
		_ = v.BindEnv(key)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// env values arrive as one comma separated string
	cfg.CORSOrigins = splitList(strings.Join(cfg.CORSOrigins, ","))

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// MaxUploadBytes upload limit for the import endpoints
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty (use %q to pick a free port)", PortAuto)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	if c.DefaultMinAge < 0 {
		return fmt.Errorf("DEFAULT_MIN_AGE must not be negative, got %d", c.DefaultMinAge)
	}
	if c.DefaultMaxAge < c.DefaultMinAge {
		return fmt.Errorf("DEFAULT_MAX_AGE (%d) is below DEFAULT_MIN_AGE (%d)", c.DefaultMaxAge, c.DefaultMinAge)
	}
	return nil
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
