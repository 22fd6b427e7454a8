package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMemory    = "memory"
	BackendMongo     = "mongo"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"

	ProviderVertex = "vertex"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

type Config struct {
	Port string

	StoreBackend     string
	MongoURI         string
	MongoDB          string
	PostgresURI      string
	FirestoreProject string

	RedisAddr       string
	SummaryCacheTTL time.Duration
	SummaryWorkers  int

	LLMProvider  string
	GCPProject   string
	GCPLocation  string
	GeminiAPIKey string
	LLMModel     string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	Log LogConfig
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// AuthEnabled reports whether bearer tokens are verified.
func (c *Config) AuthEnabled() bool { return c.JWTSecret != "" }

// SummaryRefreshEnabled reports whether journal saves feed the background
// summary workers. Off unless SUMMARY_WORKERS is set and redis is configured.
func (c *Config) SummaryRefreshEnabled() bool {
	return c.RedisAddr != "" && c.SummaryWorkers > 0
}

// Load reads the process environment. Callers load .env first if they want it.
func Load() (*Config, error) {
	c := &Config{
		Port:             getenv("PORT", "8080"),
		StoreBackend:     strings.ToLower(getenv("STORE_BACKEND", BackendMemory)),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getenv("MONGO_DB", "journai"),
		PostgresURI:      os.Getenv("POSTGRES_URI"),
		FirestoreProject: firstNonEmpty(os.Getenv("FIRESTORE_PROJECT"), os.Getenv("GCP_PROJECT")),
		RedisAddr:        firstNonEmpty(os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_URI"), os.Getenv("REDIS_URL")),

		LLMProvider:  strings.ToLower(getenv("LLM_PROVIDER", ProviderMock)),
		GCPProject:   os.Getenv("GCP_PROJECT"),
		GCPLocation:  getenv("GCP_LOCATION", "us-central1"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		LLMModel:     getenv("LLM_MODEL", "gemini-2.0-flash"),

		JWTSecret:   os.Getenv("AUTH_JWT_SECRET"),
		JWTIssuer:   os.Getenv("AUTH_JWT_ISSUER"),
		JWTAudience: os.Getenv("AUTH_JWT_AUDIENCE"),

		CORSAllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "*")),

		Log: LogConfig{
			Level: getenv("LOG_LEVEL", "info"),
			File:  os.Getenv("LOG_FILE"),
		},
	}

	var err error
	if c.SummaryCacheTTL, err = durationEnv("SUMMARY_CACHE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if c.SummaryWorkers, err = intEnv("SUMMARY_WORKERS", 0); err != nil {
		return nil, err
	}
	if c.RateLimitRPS, err = floatEnv("RATE_LIMIT_RPS", 2); err != nil {
		return nil, err
	}
	if c.RateLimitBurst, err = intEnv("RATE_LIMIT_BURST", 5); err != nil {
		return nil, err
	}
	if c.Log.MaxSizeMB, err = intEnv("LOG_MAX_SIZE_MB", 100); err != nil {
		return nil, err
	}
	if c.Log.MaxBackups, err = intEnv("LOG_MAX_BACKUPS", 3); err != nil {
		return nil, err
	}
	if c.Log.MaxAgeDays, err = intEnv("LOG_MAX_AGE_DAYS", 28); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI environment variable is not set")
		}
	case BackendPostgres:
		if c.PostgresURI == "" {
			return fmt.Errorf("POSTGRES_URI environment variable is not set")
		}
	case BackendFirestore:
		if c.FirestoreProject == "" {
			return fmt.Errorf("FIRESTORE_PROJECT (or GCP_PROJECT) environment variable is not set")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.LLMProvider {
	case ProviderMock:
	case ProviderVertex:
		if c.GCPProject == "" {
			return fmt.Errorf("GCP_PROJECT environment variable is required for vertex provider")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" && c.GCPProject == "" {
			return fmt.Errorf("GEMINI_API_KEY or GCP_PROJECT is required for gemini provider")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must be non-negative")
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
