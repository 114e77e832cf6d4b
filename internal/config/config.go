package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverMemory = "memory"
	DriverScylla = "scylla"
)

// Config holds application configuration
type Config struct {
	Port          string
	LogLevel      string
	DefaultRegion string

	StorageDriver  string
	ScyllaHosts    []string
	ScyllaKeyspace string
	ScyllaTimeout  time.Duration
	ScyllaMigrate  bool

	RedisAddr     string
	RedisPassword string

	S3Bucket            string
	S3PublicBaseURL     string
	AWSRegion           string
	AWSEndpointOverride string

	APIMasterKey string
	JWTSecret    string

	RateLimitRPS   float64
	RateLimitBurst int

	TracingEnabled bool
	ServiceName    string
}

// Load reads configuration from the environment.
func Load() *Config {
	return &Config{
		Port:          getEnv("HTTP_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DefaultRegion: strings.ToUpper(getEnv("DEFAULT_REGION", "US")),

		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", DriverMemory)),
		ScyllaHosts:    getEnvAsList("SCYLLA_HOSTS"),
		ScyllaKeyspace: getEnv("SCYLLA_KEYSPACE", "scamshield"),
		ScyllaTimeout:  getEnvAsDuration("SCYLLA_TIMEOUT", 5*time.Second),
		ScyllaMigrate:  getEnvAsBool("SCYLLA_MIGRATE", false),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3PublicBaseURL:     getEnv("S3_PUBLIC_BASE_URL", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		APIMasterKey: getEnv("API_MASTER_KEY", ""),
		JWTSecret:    getEnv("JWT_SECRET", ""),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 10),

		TracingEnabled: getEnvAsBool("OTEL_TRACES_ENABLED", false),
		ServiceName:    getEnv("OTEL_SERVICE_NAME", "scam-shield"),
	}
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case DriverMemory:
	case DriverScylla:
		if len(c.ScyllaHosts) == 0 {
			errs = append(errs, errors.New("SCYLLA_HOSTS is required when STORAGE_DRIVER=scylla"))
		}
		if c.ScyllaKeyspace == "" {
			errs = append(errs, errors.New("SCYLLA_KEYSPACE is required when STORAGE_DRIVER=scylla"))
		}
	default:
		errs = append(errs, errors.New("STORAGE_DRIVER must be memory or scylla"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("HTTP_PORT is required"))
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		errs = append(errs, errors.New("rate limits must not be negative"))
	}
	return errors.Join(errs...)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
