package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string   `mapstructure:"PORT"`
	Env           string   `mapstructure:"ENV"`
	DatabaseURL   string   `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32    `mapstructure:"DB_MIN_CONNS"`
	RedisURL      string   `mapstructure:"REDIS_URL"`
	CountryCode   string   `mapstructure:"COUNTRY_CODE"`
	DefaultLocale string   `mapstructure:"DEFAULT_LOCALE"`
	APIVersion    string   `mapstructure:"API_VERSION"`
	JWTSecret     string   `mapstructure:"JWT_SECRET"`
	JWTIssuer     string   `mapstructure:"JWT_ISSUER"`
	JWTAudience   string   `mapstructure:"JWT_AUDIENCE"`
	CORSOrigins   []string `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("COUNTRY_CODE", "TZ")
	v.SetDefault("DEFAULT_LOCALE", "sw")
	v.SetDefault("API_VERSION", "1.0.0")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("REDIS_URL")
	v.BindEnv("COUNTRY_CODE")
	v.BindEnv("DEFAULT_LOCALE")
	v.BindEnv("API_VERSION")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("JWT_ISSUER")
	v.BindEnv("JWT_AUDIENCE")
	v.BindEnv("CORS_ORIGINS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. Outside of
// development a JWT secret must be set so that real authentication is
// enforced, and the country code must be a two-letter uppercase code
// because it is baked into every generated case number.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf(
			"JWT_SECRET must be set when ENV is %q. "+
				"Refusing to start without authentication configuration", c.Env)
	}
	if len(c.CountryCode) != 2 || c.CountryCode != strings.ToUpper(c.CountryCode) {
		return fmt.Errorf("COUNTRY_CODE must be a two-letter uppercase ISO code, got %q", c.CountryCode)
	}
	return nil
}

// APIBasePath returns the versioned mount point for the HTTP surface,
// e.g. "/v1" for API_VERSION "1.0.0".
func (c *Config) APIBasePath() string {
	major := strings.SplitN(c.APIVersion, ".", 2)[0]
	if major == "" {
		major = "1"
	}
	return "/v" + major
}
