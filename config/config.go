package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
			Enabled           bool   `mapstructure:"enabled"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Geocoding struct {
		BaseURL      string        `mapstructure:"baseURL"`
		UserAgent    string        `mapstructure:"userAgent"`
		Timeout      time.Duration `mapstructure:"timeout"`
		CacheSize    int           `mapstructure:"cacheSize"`
		Limit        int           `mapstructure:"limit"`
		FallbackCity string        `mapstructure:"fallbackCity"`
		FallbackLat  float64       `mapstructure:"fallbackLat"`
		FallbackLng  float64       `mapstructure:"fallbackLng"`
		Concurrency  int           `mapstructure:"concurrency"`
	} `mapstructure:"geocoding"`
	Session struct {
		TTL             time.Duration `mapstructure:"ttl"`
		CleanupInterval time.Duration `mapstructure:"cleanupInterval"`
		EventBuffer     int           `mapstructure:"eventBuffer"`
	} `mapstructure:"session"`
	LLM struct {
		APIKey      string  `mapstructure:"apiKey"`
		Model       string  `mapstructure:"model"`
		Temperature float32 `mapstructure:"temperature"`
	} `mapstructure:"llm"`
	Auth struct {
		JWTSecret string `mapstructure:"jwtSecret"`
		Audience  string `mapstructure:"audience"`
	} `mapstructure:"auth"`
	Observability struct {
		ServiceName string `mapstructure:"serviceName"`
	} `mapstructure:"observability"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Secrets come from the environment, e.g. LLM_APIKEY or AUTH_JWTSECRET.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("llm.apiKey", "GOOGLE_GEMINI_API_KEY", "LLM_APIKEY")
	_ = v.BindEnv("auth.jwtSecret", "JWT_SECRET_KEY", "AUTH_JWTSECRET")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return config, nil
}
