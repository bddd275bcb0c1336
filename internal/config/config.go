package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server
	Port           int
	APIKey         string // API key for admin routes
	TrustedProxies []string

	// Logging
	LogLevel    string
	LogFormat   string
	LogDir      string
	Environment string
	Version     string
	ServiceName string

	// Storage
	Storage           string
	DBUser            string
	DBPassword        string
	DBHost            string
	DBPort            string
	DBName            string
	DBMaxConns        int
	DBMaxConnIdleTime time.Duration
	DBMaxConnLifetime time.Duration

	// Integrations; each is optional
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	KafkaBrokers       []string
	KafkaFeedTopic     string
	FCMCredentialsFile string

	// Engine
	MissionCatalogPath  string
	MissionSchemaPath   string // empty skips schema validation
	MissionRepeatPolicy string
	ChallengeGoalKg     float64
	ChallengeWindow     time.Duration
	PollutionDailyCap   int
	SweepInterval       time.Duration
	PrewarmInterval     time.Duration
	RateLimitRPS        float64
	RateLimitBurst      int

	// Event publishing
	EventMaxRetries     int
	EventRetryDelay     time.Duration
	EventDeadLetterPath string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:         getEnv("API_KEY", ""),
		TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "text")),
		LogDir:         getEnv("LOG_DIR", "logs"),
		Environment:    getEnv("ENVIRONMENT", "dev"),
		Version:        getEnv("VERSION", "dev"),
		ServiceName:    getEnv("SERVICE_NAME", "ecorewards"),

		Storage:           strings.ToLower(getEnv("STORAGE", StorageMemory)),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", "ecorewards"),
		DBMaxConns:        getEnvAsInt("DB_MAX_CONNS", 20),
		DBMaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
		DBMaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),

		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		KafkaBrokers:       getEnvAsList("KAFKA_BROKERS"),
		KafkaFeedTopic:     getEnv("KAFKA_FEED_TOPIC", "community-activity"),
		FCMCredentialsFile: getEnv("FCM_CREDENTIALS_FILE", ""),

		MissionCatalogPath:  getEnv("MISSION_CATALOG_PATH", ConfigPathMissionCatalog),
		MissionSchemaPath:   getEnv("MISSION_SCHEMA_PATH", ConfigPathMissionSchema),
		MissionRepeatPolicy: strings.ToLower(getEnv("MISSION_REPEAT_POLICY", RepeatPolicyOnce)),
		ChallengeGoalKg:     getEnvAsFloat("CHALLENGE_GOAL_KG", 1000),
		ChallengeWindow:     getEnvAsDuration("CHALLENGE_WINDOW", 30*24*time.Hour),
		PollutionDailyCap:   getEnvAsInt("POLLUTION_DAILY_CAP", 3),
		SweepInterval:       getEnvAsDuration("SWEEP_INTERVAL", time.Hour),
		RateLimitRPS:        getEnvAsFloat("RATE_LIMIT_RPS", 10),
		PrewarmInterval:     getEnvAsDuration("PREWARM_INTERVAL", 6*time.Hour),
		RateLimitBurst:      getEnvAsInt("RATE_LIMIT_BURST", 20),

		EventMaxRetries:     getEnvAsInt("EVENT_MAX_RETRIES", 5),
		EventRetryDelay:     getEnvAsDuration("EVENT_RETRY_DELAY", 2*time.Second),
		EventDeadLetterPath: getEnv("EVENT_DEADLETTER_PATH", "logs/event_deadletter.jsonl"),
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.Storage != StorageMemory && c.Storage != StoragePostgres {
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StorageMemory, StoragePostgres, c.Storage)
	}
	if c.MissionRepeatPolicy != RepeatPolicyOnce && c.MissionRepeatPolicy != RepeatPolicyDaily {
		return fmt.Errorf("MISSION_REPEAT_POLICY must be %q or %q, got %q", RepeatPolicyOnce, RepeatPolicyDaily, c.MissionRepeatPolicy)
	}
	if c.ChallengeGoalKg <= 0 {
		return fmt.Errorf("CHALLENGE_GOAL_KG must be positive, got %v", c.ChallengeGoalKg)
	}
	if c.ChallengeWindow <= 0 {
		return fmt.Errorf("CHALLENGE_WINDOW must be positive, got %s", c.ChallengeWindow)
	}
	if c.PollutionDailyCap < 1 {
		return fmt.Errorf("POLLUTION_DAILY_CAP must be at least 1, got %d", c.PollutionDailyCap)
	}
	if c.SweepInterval < time.Minute {
		return fmt.Errorf("SWEEP_INTERVAL must be at least 1m, got %s", c.SweepInterval)
	}
	if c.PrewarmInterval < time.Minute {
		return fmt.Errorf("PREWARM_INTERVAL must be at least 1m, got %s", c.PrewarmInterval)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated variable, dropping empty entries
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
