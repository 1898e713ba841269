package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	ServiceName string
	LoggerLevel string
	Environment string
	Port        string

	// DBDriver is "postgres" or "sqlite". SQLitePath is used by the latter.
	DBDriver   string
	SQLitePath string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisURL string

	JWTSecret    string
	JWTExpiresIn time.Duration

	// DriverStaleThreshold is how long an "available" status survives
	// without a refresh before it reads as offline.
	DriverStaleThreshold time.Duration
	ReviewWindow         time.Duration

	OTPTTL         time.Duration
	OTPMaxAttempts int
	DevOTPBypass   string
	AdminPhones    []string

	ClientURL string

	RateLimitWindow     time.Duration
	RateLimitMax        int
	AuthRateLimitWindow time.Duration
	AuthRateLimitMax    int

	ATUsername string
	ATAPIKey   string
	ATSenderID string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSS3Bucket        string
	UploadDir          string
	BaseURL            string

	FirebaseServiceAccountPath string
	SentryDSN                  string

	AdminBotToken string
	AdminChatID   int64
}

func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "tapride"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOG_LEVEL", "info"))
	cfg.Environment = cast.ToString(getOrReturnDefault("APP_ENV", "development"))
	cfg.Port = cast.ToString(getOrReturnDefault("PORT", "8080"))

	cfg.DBDriver = cast.ToString(getOrReturnDefault("DB_DRIVER", "postgres"))
	cfg.SQLitePath = cast.ToString(getOrReturnDefault("SQLITE_PATH", "tapride.db"))
	cfg.DBHost = cast.ToString(getOrReturnDefault("DB_HOST", "localhost"))
	cfg.DBPort = cast.ToString(getOrReturnDefault("DB_PORT", "5432"))
	cfg.DBUser = cast.ToString(getOrReturnDefault("DB_USER", "postgres"))
	cfg.DBPassword = cast.ToString(getOrReturnDefault("DB_PASSWORD", ""))
	cfg.DBName = cast.ToString(getOrReturnDefault("DB_NAME", "tapride"))
	cfg.DBSSLMode = cast.ToString(getOrReturnDefault("DB_SSLMODE", "disable"))

	cfg.RedisURL = cast.ToString(getOrReturnDefault("REDIS_URL", "redis://redis:6379"))

	cfg.JWTSecret = cast.ToString(getOrReturnDefault("JWT_SECRET", ""))
	cfg.JWTExpiresIn = cast.ToDuration(getOrReturnDefault("JWT_EXPIRES_IN", "168h"))

	cfg.DriverStaleThreshold = cast.ToDuration(getOrReturnDefault("DRIVER_STALE_THRESHOLD", "60m"))
	cfg.ReviewWindow = cast.ToDuration(getOrReturnDefault("REVIEW_WINDOW", "24h"))

	cfg.OTPTTL = cast.ToDuration(getOrReturnDefault("OTP_TTL", "10m"))
	cfg.OTPMaxAttempts = cast.ToInt(getOrReturnDefault("OTP_MAX_ATTEMPTS", 5))
	cfg.DevOTPBypass = cast.ToString(getOrReturnDefault("DEV_OTP_BYPASS", ""))
	cfg.AdminPhones = splitList(cast.ToString(getOrReturnDefault("ADMIN_PHONES", "")))

	cfg.ClientURL = cast.ToString(getOrReturnDefault("CLIENT_URL", "*"))

	cfg.RateLimitWindow = cast.ToDuration(getOrReturnDefault("RATE_LIMIT_WINDOW", "15m"))
	cfg.RateLimitMax = cast.ToInt(getOrReturnDefault("RATE_LIMIT_MAX", 200))
	cfg.AuthRateLimitWindow = cast.ToDuration(getOrReturnDefault("AUTH_RATE_LIMIT_WINDOW", "10m"))
	cfg.AuthRateLimitMax = cast.ToInt(getOrReturnDefault("AUTH_RATE_LIMIT_MAX", 10))

	cfg.ATUsername = cast.ToString(getOrReturnDefault("AT_USERNAME", ""))
	cfg.ATAPIKey = cast.ToString(getOrReturnDefault("AT_API_KEY", ""))
	cfg.ATSenderID = cast.ToString(getOrReturnDefault("AT_SENDER_ID", ""))

	cfg.AWSRegion = cast.ToString(getOrReturnDefault("AWS_REGION", ""))
	cfg.AWSAccessKeyID = cast.ToString(getOrReturnDefault("AWS_ACCESS_KEY_ID", ""))
	cfg.AWSSecretAccessKey = cast.ToString(getOrReturnDefault("AWS_SECRET_ACCESS_KEY", ""))
	cfg.AWSS3Bucket = cast.ToString(getOrReturnDefault("AWS_S3_BUCKET", ""))
	cfg.UploadDir = cast.ToString(getOrReturnDefault("UPLOAD_DIR", "/app/uploads"))
	cfg.BaseURL = cast.ToString(getOrReturnDefault("BASE_URL", "http://localhost:8080"))

	cfg.FirebaseServiceAccountPath = cast.ToString(getOrReturnDefault("FIREBASE_SERVICE_ACCOUNT_PATH", ""))
	cfg.SentryDSN = cast.ToString(getOrReturnDefault("SENTRY_DSN", ""))

	cfg.AdminBotToken = cast.ToString(getOrReturnDefault("ADMIN_BOT_TOKEN", ""))
	cfg.AdminChatID = cast.ToInt64(getOrReturnDefault("ADMIN_CHAT_ID", 0))

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.DriverStaleThreshold <= 0 {
		return fmt.Errorf("DRIVER_STALE_THRESHOLD must be positive, got %s", c.DriverStaleThreshold)
	}
	if c.ReviewWindow <= 0 {
		return fmt.Errorf("REVIEW_WINDOW must be positive, got %s", c.ReviewWindow)
	}
	return nil
}

// DSN returns the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// IsAdminPhone reports whether phone is listed in ADMIN_PHONES.
func (c Config) IsAdminPhone(phone string) bool {
	for _, p := range c.AdminPhones {
		if p == phone {
			return true
		}
	}
	return false
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
