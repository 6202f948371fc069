package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting read from the environment.
type Config struct {
	Environment string
	GinMode     string
	ServerPort  string

	DBDriver   string // mysql, postgres or memory
	DBHost     string
	DBPort     string
	DBDatabase string
	DBUsername string
	DBPassword string
	DebugSQL   bool

	JWTSecret string
	JWTTTL    time.Duration

	AllowedOrigins []string
	FrontendURL    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AMQPURL string

	SMTP SMTPConfig

	LogFile              string
	LogToken             string
	DispatchWorkers      int
	SchedulerInterval    time.Duration
	ShutdownGracePeriod  time.Duration
	NotificationMailSend bool
}

type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string
	SkipTLSVerify bool
}

// Load reads .env (when present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Environment: strings.ToLower(getEnv("ENVIRONMENT", "development")),
		GinMode:     getEnv("GIN_MODE", "debug"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBDatabase: getEnv("DB_DATABASE", "iris"),
		DBUsername: getEnv("DB_USERNAME", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DebugSQL:   getEnvBool("DEBUG_SQL", false),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AMQPURL: os.Getenv("AMQP_URL"),

		SMTP: SMTPConfig{
			Host:          os.Getenv("SMTP_HOST"),
			Port:          getEnvInt("SMTP_PORT", 587),
			User:          os.Getenv("SMTP_USER"),
			Pass:          os.Getenv("SMTP_PASS"),
			From:          os.Getenv("SMTP_FROM"), // e.g. "IRIS <no-reply@your.org>"
			SkipTLSVerify: os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",
		},

		LogFile:              getEnv("LOG_FILE", "logs/iris-api.log"),
		LogToken:             os.Getenv("LOG_ACCESS_TOKEN"),
		DispatchWorkers:      getEnvInt("DISPATCH_WORKERS", 16),
		SchedulerInterval:    getEnvDuration("SCHEDULER_INTERVAL", 5*time.Minute),
		ShutdownGracePeriod:  getEnvDuration("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		NotificationMailSend: getEnvBool("NOTIFICATION_MAIL", false),
	}
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v == 0 {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
