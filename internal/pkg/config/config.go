package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds every runtime knob, populated from the environment. Backend
// sub-configs are only consulted when StorageBackend selects that medium.
type Config struct {
	Port      string `env:"PORT, default=8080"`
	Env       string `env:"ENV, default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	JWTSecret string `env:"JWT_SECRET"`

	// StorageBackend selects the persistent medium: memory, file, redis, mongo.
	StorageBackend string `env:"STORAGE_BACKEND, default=memory"`
	FileDir        string `env:"STORAGE_FILE_DIR, default=./data"`

	// NotificationWorkers sizes the async notification dispatcher.
	NotificationWorkers int `env:"NOTIFICATION_WORKERS, default=4"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB, default=pharmacy_delivery"`
}

type RedisConfig struct {
	Addr      string `env:"REDIS_ADDR, default=localhost:6379"`
	DB        int    `env:"REDIS_DB, default=0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX, default=pharmarun"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
