package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For durations

	"github.com/go-sql-driver/mysql" // For building the MySQL DSN
	"github.com/joho/godotenv"       // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort      string        // Application port
	DBUser       string        // Database user
	DBPassword   string        // Database password
	DBHost       string        // Database host
	DBPort       string        // Database port
	DBName       string        // Database name
	JWTSecret    string        // JWT secret key
	SessionTTL   time.Duration // Lifetime of a login session
	CookieSecure bool          // Mark the session cookie Secure
	RedisAddr    string        // Redis server address
	RedisPass    string        // Redis password
	RedisDB      int           // Redis database number
	Storage      StorageConfig // Image storage settings
	MaxUploadMB  int64         // Largest accepted image upload in megabytes
	IsProd       bool          // Is production environment
}

// StorageConfig holds S3-compatible object storage settings.
// An empty Bucket selects the in-memory image store.
type StorageConfig struct {
	Endpoint     string // S3 endpoint, e.g. http://localhost:9000
	Region       string // S3 region
	Bucket       string // Bucket holding uploaded images
	AccessKey    string // Access key ID
	SecretKey    string // Secret access key
	UsePathStyle bool   // Path-style addressing (MinIO and friends)
	PublicURL    string // Base URL images are served from
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:      getEnv("APP_PORT", "8080"),                         // Application port
		DBUser:       os.Getenv("DB_USER"),                               // Database user
		DBPassword:   os.Getenv("DB_PASSWORD"),                           // Database password
		DBHost:       getEnv("DB_HOST", "127.0.0.1"),                     // Database host
		DBPort:       getEnv("DB_PORT", "3306"),                          // Database port
		DBName:       os.Getenv("DB_NAME"),                               // Database name
		JWTSecret:    os.Getenv("JWT_SECRET"),                            // JWT secret key
		SessionTTL:   getDuration("SESSION_TTL", 24*time.Hour),           // Session lifetime
		CookieSecure: os.Getenv("COOKIE_SECURE") == "true",               // Secure cookie flag
		RedisAddr:    getEnv("REDIS_ADDR", "127.0.0.1:6379"),             // Redis server address
		RedisPass:    os.Getenv("REDIS_PASS"),                            // Redis password
		RedisDB:      redisDB,                                            // Redis database number
		MaxUploadMB:  int64(getInt("MAX_UPLOAD_MB", 5)),                  // Upload limit
		IsProd:       os.Getenv("IS_PROD") == "true",                     // Is production environment
		Storage: StorageConfig{
			Endpoint:     os.Getenv("S3_ENDPOINT"),
			Region:       getEnv("S3_REGION", "us-east-1"),
			Bucket:       os.Getenv("S3_BUCKET"),
			AccessKey:    os.Getenv("S3_ACCESS_KEY"),
			SecretKey:    os.Getenv("S3_SECRET_KEY"),
			UsePathStyle: os.Getenv("S3_USE_PATH_STYLE") != "false",
			PublicURL:    os.Getenv("S3_PUBLIC_URL"),
		},
	}
}

// DSN builds the MySQL data source name
func (c *Config) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.DBUser
	mc.Passwd = c.DBPassword
	mc.Net = "tcp"
	mc.Addr = c.DBHost + ":" + c.DBPort
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
