package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	StreamName    string
	ShardCount    int
	DynamoDBTable string
	S3Bucket      string

	// Simulation configuration
	NumUsers    int
	NumBooks    int
	TotalEvents int
	WindowStart time.Time
	WindowEnd   time.Time
	OutputFile  string
	RandomSeed  int64

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	windowStart := getEnvTime("WINDOW_START", time.Now().UTC().Truncate(time.Hour))
	windowEnd := getEnvTime("WINDOW_END", windowStart.Add(24*time.Hour))

	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		StreamName:    getEnv("KINESIS_STREAM", "audiobook-events"),
		ShardCount:    getEnvInt("KINESIS_SHARDS", 1),
		DynamoDBTable: getEnv("DYNAMODB_TABLE", "PlaybackEvents"),
		S3Bucket:      getEnv("S3_BUCKET", "audio-engagement-data"),

		// Simulation configuration
		NumUsers:    getEnvInt("NUM_USERS", 50),
		NumBooks:    getEnvInt("NUM_BOOKS", 100),
		TotalEvents: getEnvInt("TOTAL_EVENTS", 1000),
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		OutputFile:  getEnv("OUTPUT_FILE", "events/data/playback_events.json"),
		RandomSeed:  int64(getEnvInt("RANDOM_SEED", 0)),

		// Logging and features
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.NumUsers < 1 {
		return fmt.Errorf("NUM_USERS must be at least 1")
	}
	if c.NumBooks < 1 {
		return fmt.Errorf("NUM_BOOKS must be at least 1")
	}
	if c.TotalEvents < 1 {
		return fmt.Errorf("TOTAL_EVENTS must be at least 1")
	}
	if !c.WindowEnd.After(c.WindowStart) {
		return fmt.Errorf("WINDOW_END must be after WINDOW_START")
	}
	if c.Environment == "production" {
		if c.StreamName == "" {
			return fmt.Errorf("KINESIS_STREAM is required")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required")
		}
	}

	return nil
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvTime gets an RFC3339 timestamp environment variable with a
// default value
func getEnvTime(key string, defaultValue time.Time) time.Time {
	if value := os.Getenv(key); value != "" {
		if ts, err := time.Parse(time.RFC3339, value); err == nil {
			return ts
		}
	}
	return defaultValue
}
