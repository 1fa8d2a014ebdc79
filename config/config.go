package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	Port           int
	AppName        string
	GeminiAPIKey   string
	GeminiModel    string
	VoiceName      string
	StaticDir      string
	RedisURL       string
	RedisPassword  string
	MaxSessions    int
	SessionTimeout time.Duration
	AllowedOrigins []string

	// BigQuery persistence for the appliance inventory. Disabled when
	// BigQueryProject is empty; the inventory then lives only in session state.
	BigQueryProject string
	BigQueryDataset string
	BigQueryTable   string
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		Port:            8080,
		AppName:         "home-appliance-detector",
		GeminiModel:     "models/gemini-live-2.5-flash-native-audio",
		VoiceName:       "Aoede",
		StaticDir:       "static",
		RedisURL:        "localhost:6379",
		RedisPassword:   "",
		MaxSessions:     100,
		SessionTimeout:  30 * time.Minute,
		AllowedOrigins:  []string{"*"},
		BigQueryDataset: "appliances_v2",
		BigQueryTable:   "inventory",
	}

	// Required: GEMINI_API_KEY
	config.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if config.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	// Optional: PORT
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		config.Port = p
	}

	// Optional: APP_NAME
	if appName := os.Getenv("APP_NAME"); appName != "" {
		config.AppName = appName
	}

	// Optional: GEMINI_MODEL
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.GeminiModel = model
	}

	// Optional: VOICE_NAME
	if voice := os.Getenv("VOICE_NAME"); voice != "" {
		config.VoiceName = voice
	}

	// Optional: STATIC_DIR
	if staticDir := os.Getenv("STATIC_DIR"); staticDir != "" {
		config.StaticDir = staticDir
	}

	// Optional: REDIS_URL
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		config.RedisURL = redisURL
	}

	// Optional: REDIS_PASSWORD
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.RedisPassword = redisPassword
	}

	// Optional: MAX_SESSIONS
	if maxSessions := os.Getenv("MAX_SESSIONS"); maxSessions != "" {
		m, err := strconv.Atoi(maxSessions)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_SESSIONS: %w", err)
		}
		config.MaxSessions = m
	}

	// Optional: SESSION_TIMEOUT (in minutes)
	if timeout := os.Getenv("SESSION_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TIMEOUT: %w", err)
		}
		config.SessionTimeout = time.Duration(t) * time.Minute
	}

	// Optional: ALLOWED_ORIGINS (comma-separated)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	// Optional: GOOGLE_CLOUD_PROJECT (enables BigQuery persistence)
	if project := os.Getenv("GOOGLE_CLOUD_PROJECT"); project != "" {
		config.BigQueryProject = project
	}

	// Optional: BQ_DATASET
	if dataset := os.Getenv("BQ_DATASET"); dataset != "" {
		config.BigQueryDataset = dataset
	}

	// Optional: BQ_TABLE
	if table := os.Getenv("BQ_TABLE"); table != "" {
		config.BigQueryTable = table
	}

	return config, nil
}
