package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTSecret            string
	VerificationTokenTTL time.Duration
	AccessTokenTTL       time.Duration
	RefreshTokenTTL      time.Duration

	BcryptCost        int
	OTPExpiry         time.Duration
	OTPCooldown       time.Duration
	MaxVerifyAttempts int

	SMSEnabled     bool
	SNSRegion      string
	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Otps     string
	Accounts string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Otps:     getEnv("DYNAMO_TABLE_OTPS", "otps"),
			Accounts: getEnv("DYNAMO_TABLE_ACCOUNTS", "accounts"),
		},

		JWTSecret:            getEnv("JWT_SECRET", ""),
		VerificationTokenTTL: getEnvDuration("VERIFICATION_TOKEN_TTL", 15*time.Minute),
		AccessTokenTTL:       getEnvDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:      getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		BcryptCost:        getEnvInt("BCRYPT_COST", 10),
		OTPExpiry:         getEnvDuration("OTP_EXPIRY", 5*time.Minute),
		OTPCooldown:       getEnvDuration("OTP_COOLDOWN", 60*time.Second),
		MaxVerifyAttempts: getEnvInt("MAX_VERIFY_ATTEMPTS", 5),

		SMSEnabled:     getEnvBool("SMS_ENABLED", false),
		SNSRegion:      getEnv("SNS_REGION", "us-east-1"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
