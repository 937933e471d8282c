package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	TCPPort        string
	HTTPPort       string
	MetricsPort    string
	MongoURI       string
	MongoDatabase  string
	RedisURL       string
	NATSURL        string
	TestMode       bool
	OverspeedLimit float64 // km/h
}

// Load reads configuration from the environment, with a .env file as optional
// bootstrap. Missing keys fall back to the documented defaults.
func Load() *Config {
	_ = godotenv.Load()

	// Both names are honored for the HTTP listener; PORT wins when set.
	httpPort := os.Getenv("PORT")
	if httpPort == "" {
		httpPort = getEnv("GPS_SERVER_PORT", "3001")
	}

	return &Config{
		TCPPort:        getEnv("GPS_TCP_PORT", "5023"),
		HTTPPort:       strings.TrimSpace(httpPort),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
		MongoURI:       getEnv("MONGODB_URI", ""),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "fleettrack"),
		RedisURL:       getEnv("REDIS_URL", ""),
		NATSURL:        getEnv("NATS_URL", ""),
		TestMode:       strings.ToLower(os.Getenv("TEST_MODE")) == "true",
		OverspeedLimit: getEnvFloat("OVERSPEED_LIMIT_KMH", 120),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.TrimSpace(value)
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return defaultValue
	}
	return f
}
