package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment string
	HTTPAddr    string

	DBDriver string // "postgres" or "sqlite"
	DBDSN    string

	RedisAddr     string // empty disables the resolver cache
	RedisPassword string

	JWTSecret         string
	JWTPreviousSecret string
	JWTIssuer         string
	JWTAudience       string
	IdentityTTL       time.Duration

	NegativeCacheTTL time.Duration

	APIRateLimitRPM  int
	AuthRateLimitRPM int

	ShutdownTimeout time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsEnabled        bool
	OTELTracesEnabled         bool
	OTELLogsEnabled           bool
	OTELMetricsExportInterval time.Duration
}

// Load reads configuration from SILENTAUTH_* environment variables, applying
// defaults and validating the result.
func Load(ctx context.Context) (*Config, error) {
	cfg := &Config{
		Environment: getString("SILENTAUTH_ENV", "development"),
		HTTPAddr:    getString("SILENTAUTH_HTTP_ADDR", ":8080"),

		DBDriver: getString("SILENTAUTH_DB_DRIVER", "postgres"),
		DBDSN:    getString("SILENTAUTH_DB_DSN", ""),

		RedisAddr:     getString("SILENTAUTH_REDIS_ADDR", ""),
		RedisPassword: getString("SILENTAUTH_REDIS_PASSWORD", ""),

		JWTSecret:         getString("SILENTAUTH_JWT_SECRET", ""),
		JWTPreviousSecret: getString("SILENTAUTH_JWT_PREVIOUS_SECRET", ""),
		JWTIssuer:         getString("SILENTAUTH_JWT_ISSUER", "silentauth"),
		JWTAudience:       getString("SILENTAUTH_JWT_AUDIENCE", "silentauth-dashboard"),
		IdentityTTL:       getDuration("SILENTAUTH_IDENTITY_TTL", 24*time.Hour),

		NegativeCacheTTL: getDuration("SILENTAUTH_NEGATIVE_CACHE_TTL", 5*time.Minute),

		APIRateLimitRPM:  getInt("SILENTAUTH_API_RATE_LIMIT_RPM", 300),
		AuthRateLimitRPM: getInt("SILENTAUTH_AUTH_RATE_LIMIT_RPM", 30),

		ShutdownTimeout: getDuration("SILENTAUTH_SHUTDOWN_TIMEOUT", 15*time.Second),

		OTELServiceName:           getString("OTEL_SERVICE_NAME", "silentauth"),
		OTELEnvironment:           getString("OTEL_ENVIRONMENT", "development"),
		OTELExporterOTLPEndpoint:  getString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure:  getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELMetricsEnabled:        getBool("SILENTAUTH_OTEL_METRICS_ENABLED", false),
		OTELTracesEnabled:         getBool("SILENTAUTH_OTEL_TRACES_ENABLED", false),
		OTELLogsEnabled:           getBool("SILENTAUTH_OTEL_LOGS_ENABLED", false),
		OTELMetricsExportInterval: getDuration("SILENTAUTH_OTEL_METRICS_EXPORT_INTERVAL", time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		err = fmt.Errorf("validate config: %w", err)
		recordConfigValidationEvent(ctx, cfg.Environment, "failure", classifyConfigLoadError(err))
		return nil, err
	}
	recordConfigValidationEvent(ctx, cfg.Environment, "success", "none")
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported db driver %q", c.DBDriver))
	}
	if c.DBDSN == "" {
		errs = append(errs, errors.New("SILENTAUTH_DB_DSN is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("SILENTAUTH_JWT_SECRET is required"))
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("SILENTAUTH_JWT_SECRET must be at least 32 bytes"))
	}
	if c.JWTPreviousSecret != "" && c.JWTPreviousSecret == c.JWTSecret {
		errs = append(errs, errors.New("previous JWT secret must differ from the current one"))
	}
	if c.IdentityTTL <= 0 {
		errs = append(errs, errors.New("identity TTL must be positive"))
	}
	if c.APIRateLimitRPM <= 0 || c.AuthRateLimitRPM <= 0 {
		errs = append(errs, errors.New("rate limits must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return d
}
