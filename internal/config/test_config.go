package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration used by integration tests.
// If TEST_MONGODB_URI is not set the returned Config has an empty Mongo.URI,
// which integration tests treat as a signal to skip.
func LoadTestConfig() *Config {
	// .env is optional for tests
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{Env: "development"}
	cfg.Mongo.URI = os.Getenv("TEST_MONGODB_URI")
	cfg.Mongo.Database = getEnv("TEST_MONGODB_DATABASE", "events_test")
	cfg.JWT.Secret = getEnv("TEST_JWT_SECRET", "integration-test-secret")

	return cfg
}
