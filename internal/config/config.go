package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is everything the service reads from the environment.
type Config struct {
	Port     string
	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string

	RabbitURI      string
	RabbitExchange string

	RequestQuota    int
	SessionDuration time.Duration
	ItemBudget      int
}

// Load reads .env when present, then the process environment. MONGO_URI is
// the only hard requirement.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}

	return &Config{
		Port:     getEnv("PORT", "6060"),
		MongoURI: mongoURI,
		MongoDB:  getEnv("MONGO_DB", "practice_service"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		RabbitURI:      os.Getenv("RABBITMQ_URI"),
		RabbitExchange: os.Getenv("RABBITMQ_EXCHANGE"),

		RequestQuota:    getEnvInt("REQUEST_QUOTA_PER_MINUTE", 30),
		SessionDuration: time.Duration(getEnvInt("SESSION_DURATION_MINUTES", 25)) * time.Minute,
		ItemBudget:      getEnvInt("SESSION_ITEM_BUDGET", 40),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
