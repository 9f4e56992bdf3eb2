package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider holds the endpoint and per-call timeout of one upstream provider.
type Provider struct {
	URL     string
	Timeout time.Duration
}

// CircuitBreaker configures the optional per-provider breaker. Disabled unless Enabled is set.
type CircuitBreaker struct {
	Enabled          bool
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

// Config holds service configuration loaded from YAML and env.
type Config struct {
	TestingMode bool

	ServerPort string

	Geocoding   Provider
	Overpass    Provider
	Weather     Provider
	Translation Provider
	UserAgent   string

	GeocodingLocaleSuffix string

	TranslationModelENVI string
	TranslationModelVIEN string
	HuggingFaceToken     string

	RequestTimeout time.Duration
	// ExploreTimeout bounds POST /api/explore, which chains geocoding, POI search and weather.
	ExploreTimeout time.Duration

	PlaceNameMinLen int
	PlaceNameMaxLen int
	TextMaxLen      int

	RateLimitRPS   int
	RateLimitBurst int
	CircuitBreaker CircuitBreaker

	ShutdownTimeout time.Duration

	DegradedWindow   time.Duration
	DegradedErrorPct int

	CORSAllowedOrigins []string
}

type providerFile struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

type fileConfig struct {
	TestingMode *bool `yaml:"testing_mode"`

	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Providers struct {
		UserAgent   string       `yaml:"user_agent"`
		Geocoding   providerFile `yaml:"geocoding"`
		Overpass    providerFile `yaml:"overpass"`
		Weather     providerFile `yaml:"weather"`
		Translation providerFile `yaml:"translation"`
	} `yaml:"providers"`

	Geocoding struct {
		LocaleSuffix *string `yaml:"locale_suffix"`
	} `yaml:"geocoding"`

	Translation struct {
		Models struct {
			ENVI string `yaml:"en_vi"`
			VIEN string `yaml:"vi_en"`
		} `yaml:"models"`
	} `yaml:"translation"`

	Request struct {
		Timeout         string `yaml:"timeout"`
		ExploreTimeout  string `yaml:"explore_timeout"`
		PlaceNameMinLen int    `yaml:"place_name_min_len"`
		PlaceNameMaxLen int    `yaml:"place_name_max_len"`
		TextMaxLen      int    `yaml:"text_max_len"`
	} `yaml:"request"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
		CircuitBreaker struct {
			Enabled          bool   `yaml:"enabled"`
			FailureThreshold int    `yaml:"failure_threshold"`
			SuccessThreshold int    `yaml:"success_threshold"`
			OpenTimeout      string `yaml:"open_timeout"`
		} `yaml:"circuit_breaker"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"shutdown"`

	Lifecycle struct {
		DegradedWindow   string `yaml:"degraded_window"`
		DegradedErrorPct int    `yaml:"degraded_error_pct"`
	} `yaml:"lifecycle"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

type secretsFile struct {
	HuggingFaceToken string `yaml:"huggingface_token"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) and config/secrets.yaml.
// A .env file in the working directory is loaded first when present; variables already
// set in the environment win. The translation token comes from HUGGINGFACE_TOKEN or the
// secrets file and may be empty. Call from project root.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	if err := godotenv.Load(filepath.Join(cwd, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}
	if fc.TestingMode != nil {
		cfg.TestingMode = *fc.TestingMode
	}

	cfg.ServerPort = strings.TrimSpace(os.Getenv("PORT"))
	if cfg.ServerPort == "" {
		cfg.ServerPort = fc.Server.Port
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8000"
	}

	cfg.Geocoding = loadProvider(fc.Providers.Geocoding, "https://nominatim.openstreetmap.org/search", 10*time.Second)
	cfg.Overpass = loadProvider(fc.Providers.Overpass, "https://overpass-api.de/api/interpreter", 30*time.Second)
	cfg.Weather = loadProvider(fc.Providers.Weather, "https://api.open-meteo.com/v1/forecast", 10*time.Second)
	cfg.Translation = loadProvider(fc.Providers.Translation, "https://api-inference.huggingface.co", 30*time.Second)
	cfg.UserAgent = strings.TrimSpace(fc.Providers.UserAgent)
	if cfg.UserAgent == "" {
		cfg.UserAgent = "vietnam-discovery-app"
	}

	cfg.GeocodingLocaleSuffix = ", Vietnam"
	if fc.Geocoding.LocaleSuffix != nil {
		cfg.GeocodingLocaleSuffix = *fc.Geocoding.LocaleSuffix
	}

	cfg.TranslationModelENVI = strings.TrimSpace(fc.Translation.Models.ENVI)
	cfg.TranslationModelVIEN = strings.TrimSpace(fc.Translation.Models.VIEN)

	cfg.HuggingFaceToken = strings.TrimSpace(os.Getenv("HUGGINGFACE_TOKEN"))
	if cfg.HuggingFaceToken == "" {
		token, err := loadTokenFromSecrets(filepath.Join(cwd, "config", "secrets.yaml"))
		if err != nil {
			return nil, err
		}
		cfg.HuggingFaceToken = token
	}

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 35*time.Second)
	cfg.ExploreTimeout = parseDuration(fc.Request.ExploreTimeout, 55*time.Second)
	cfg.PlaceNameMinLen = positiveOr(fc.Request.PlaceNameMinLen, 1)
	cfg.PlaceNameMaxLen = positiveOr(fc.Request.PlaceNameMaxLen, 200)
	cfg.TextMaxLen = positiveOr(fc.Request.TextMaxLen, 2000)

	cfg.RateLimitRPS = positiveOr(fc.Reliability.RateLimitRPS, 20)
	cfg.RateLimitBurst = positiveOr(fc.Reliability.RateLimitBurst, 40)
	cb := fc.Reliability.CircuitBreaker
	cfg.CircuitBreaker = CircuitBreaker{
		Enabled:          cb.Enabled,
		FailureThreshold: positiveOr(cb.FailureThreshold, 5),
		SuccessThreshold: positiveOr(cb.SuccessThreshold, 1),
		OpenTimeout:      parseDuration(cb.OpenTimeout, 30*time.Second),
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)

	cfg.DegradedWindow = parseDuration(fc.Lifecycle.DegradedWindow, 60*time.Second)
	cfg.DegradedErrorPct = positiveOr(fc.Lifecycle.DegradedErrorPct, 50)

	cfg.CORSAllowedOrigins = fc.CORS.AllowedOrigins
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadProvider(pf providerFile, defaultURL string, defaultTimeout time.Duration) Provider {
	p := Provider{
		URL:     strings.TrimSpace(pf.URL),
		Timeout: parseDurationOrZero(pf.Timeout, defaultTimeout),
	}
	if p.URL == "" {
		p.URL = defaultURL
	}
	return p
}

// loadTokenFromSecrets returns "" when the secrets file does not exist.
func loadTokenFromSecrets(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read secrets file: %w", err)
	}
	var sec secretsFile
	if err := yaml.Unmarshal(data, &sec); err != nil {
		return "", fmt.Errorf("parse secrets file: %w", err)
	}
	return strings.TrimSpace(sec.HuggingFaceToken), nil
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// parseDuration parses a duration string and returns defaultVal if parsing fails or result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty string or parse error.
// Returns zero or negative durations as-is so validate can reject them.
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// MaxProviderTimeout returns the largest per-call provider timeout.
func (c *Config) MaxProviderTimeout() time.Duration {
	max := c.Geocoding.Timeout
	for _, d := range []time.Duration{c.Overpass.Timeout, c.Weather.Timeout, c.Translation.Timeout} {
		if d > max {
			max = d
		}
	}
	return max
}

// ExploreChainTimeout returns the time explore needs when every provider in its chain
// (geocoding, then POI search, then the concurrent weather lookups) uses its full timeout.
func (c *Config) ExploreChainTimeout() time.Duration {
	return c.Geocoding.Timeout + c.Overpass.Timeout + c.Weather.Timeout
}

// validate rejects non-positive provider timeouts, raises RequestTimeout to at
// least 5s above the slowest provider and ExploreTimeout to at least 5s above the
// explore chain.
func validate(cfg *Config) error {
	named := []struct {
		name string
		p    Provider
	}{
		{"providers.geocoding", cfg.Geocoding},
		{"providers.overpass", cfg.Overpass},
		{"providers.weather", cfg.Weather},
		{"providers.translation", cfg.Translation},
	}
	for _, n := range named {
		if n.p.Timeout <= 0 {
			return fmt.Errorf("%s.timeout must be positive", n.name)
		}
	}
	if max := cfg.MaxProviderTimeout(); cfg.RequestTimeout <= max {
		cfg.RequestTimeout = max + 5*time.Second
	}
	if chain := cfg.ExploreChainTimeout(); cfg.ExploreTimeout <= chain {
		cfg.ExploreTimeout = chain + 5*time.Second
	}
	if cfg.PlaceNameMinLen > cfg.PlaceNameMaxLen {
		return fmt.Errorf("request.place_name_min_len (%d) exceeds place_name_max_len (%d)", cfg.PlaceNameMinLen, cfg.PlaceNameMaxLen)
	}
	if cfg.DegradedErrorPct > 100 {
		return fmt.Errorf("lifecycle.degraded_error_pct must be at most 100, got %d", cfg.DegradedErrorPct)
	}
	return nil
}
