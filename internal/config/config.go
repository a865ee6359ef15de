package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBPath       string
	StatesDBPath string

	// Bounding region devices are confined to (defaults cover India)
	LatMin float64
	LatMax float64
	LngMin float64
	LngMax float64

	// Fleet
	DeviceCount int

	// Live simulation
	LiveInterval time.Duration
	LiveMaxDelta float64

	// Historical backfill
	BackfillMaxDelta   float64
	BackfillCadence    time.Duration
	BackfillWindowDays int
	BackfillOffsetDays int
	BackfillBatchSize  int

	// Reverse geocoding
	GeocodeURL        string
	GeocodeUserAgent  string
	GeocodeTimeout    time.Duration
	GeocodeMaxRetries int
	GeocodeRetryDelay time.Duration

	// Redis (optional, empty host disables)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MQTT (optional, empty broker disables)
	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string

	// HTTP server
	ServerPort    string
	SessionSecret string
	FiltersFile   string

	// Application
	LogLevel string
	LogFile  string
}

func Load() (*Config, error) {
	// .env is optional; environment variables win either way
	_ = godotenv.Load()

	return &Config{
		DBPath:       getEnv("DB_PATH", "locations.db"),
		StatesDBPath: getEnv("STATES_DB_PATH", "states_database.db"),

		LatMin: getEnvFloat("LAT_MIN", 10.4),
		LatMax: getEnvFloat("LAT_MAX", 30.5),
		LngMin: getEnvFloat("LNG_MIN", 72.7),
		LngMax: getEnvFloat("LNG_MAX", 85.25),

		DeviceCount: getEnvInt("DEVICE_COUNT", 35),

		LiveInterval: time.Duration(getEnvInt("LIVE_INTERVAL_SECONDS", 5)) * time.Second,
		LiveMaxDelta: getEnvFloat("LIVE_MAX_DELTA", 0.25),

		BackfillMaxDelta:   getEnvFloat("BACKFILL_MAX_DELTA", 0.01),
		BackfillCadence:    time.Duration(getEnvInt("BACKFILL_CADENCE_MINUTES", 20)) * time.Minute,
		BackfillWindowDays: getEnvInt("BACKFILL_WINDOW_DAYS", 360),
		BackfillOffsetDays: getEnvInt("BACKFILL_OFFSET_DAYS", 30),
		BackfillBatchSize:  getEnvInt("BACKFILL_BATCH_SIZE", 10000),

		GeocodeURL:        getEnv("GEOCODE_URL", "https://nominatim.openstreetmap.org/reverse"),
		GeocodeUserAgent:  getEnv("GEOCODE_USER_AGENT", "fleet-tracker/1.0"),
		GeocodeTimeout:    time.Duration(getEnvInt("GEOCODE_TIMEOUT_SECONDS", 10)) * time.Second,
		GeocodeMaxRetries: getEnvInt("GEOCODE_MAX_RETRIES", 3),
		GeocodeRetryDelay: time.Duration(getEnvInt("GEOCODE_RETRY_DELAY_SECONDS", 2)) * time.Second,

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MQTTBroker:      getEnv("MQTT_BROKER", ""),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", "fleet-tracker-simulator"),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "fleet/devices"),

		ServerPort:    getEnv("SERVER_PORT", "8080"),
		SessionSecret: getEnv("SESSION_SECRET", "fleet-tracker-session-secret"),
		FiltersFile:   getEnv("FILTERS_FILE", "filters.json"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}, nil
}

// BackfillWindow returns the simulated time range covered by a backfill
// run: the window ends BackfillOffsetDays before now and spans
// BackfillWindowDays.
func (c *Config) BackfillWindow(now time.Time) (start, end time.Time) {
	end = now.AddDate(0, 0, -c.BackfillOffsetDays)
	start = end.AddDate(0, 0, -c.BackfillWindowDays)
	return start, end
}

// RedisEnabled reports whether a redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// MQTTEnabled reports whether an MQTT broker is configured.
func (c *Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
