package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	LogLevel        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // minutes
	MaxConnIdleTime int // minutes
}

// CacheConfig holds Redis connection settings
type CacheConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	DialTimeout  int // seconds
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	PoolSize     int
	MinIdleConns int
}

// QueueConfig holds Asynq worker settings
type QueueConfig struct {
	Enabled        bool
	RedisHost      string
	RedisPort      int
	RedisPassword  string
	RedisDB        int
	DialTimeout    int // seconds
	ReadTimeout    int // seconds
	WriteTimeout   int // seconds
	Concurrency    int
	StrictPriority bool
}

// ImportConfig holds the import pipeline tuning knobs
type ImportConfig struct {
	ChunkSize    int
	ChunkDelay   time.Duration // backpressure pause between chunks
	JobRetention time.Duration // how long terminal jobs stay pollable
	MaxErrors    int           // cap on stored per-row errors, 0 = unlimited
}

type Config struct {
	Environment string
	ServerHost  string
	ServerPort  string

	Database DatabaseConfig
	Cache    CacheConfig
	Queue    QueueConfig
	Import   ImportConfig
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found, using environment variables only")
		}
	}

	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", "8080")

	// Database defaults
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_NAME", "sewadar")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_LOG_LEVEL", "silent")
	viper.SetDefault("DB_MAX_CONNECTIONS", 20)
	viper.SetDefault("DB_MIN_CONNECTIONS", 2)
	viper.SetDefault("DB_MAX_CONN_LIFETIME_MIN", 60)
	viper.SetDefault("DB_MAX_CONN_IDLE_MIN", 10)

	// Redis defaults
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_DIAL_TIMEOUT_SEC", 5)
	viper.SetDefault("REDIS_READ_TIMEOUT_SEC", 3)
	viper.SetDefault("REDIS_WRITE_TIMEOUT_SEC", 3)
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 2)

	// Worker defaults
	viper.SetDefault("QUEUE_ENABLED", false)
	viper.SetDefault("WORKER_CONCURRENCY", 4)
	viper.SetDefault("WORKER_STRICT_PRIORITY", false)

	// Import pipeline defaults
	viper.SetDefault("IMPORT_CHUNK_SIZE", 50)
	viper.SetDefault("IMPORT_CHUNK_DELAY_MS", 10)
	viper.SetDefault("IMPORT_JOB_RETENTION_MIN", 5)
	viper.SetDefault("IMPORT_MAX_ROW_ERRORS", 0)

	viper.AutomaticEnv()

	config := &Config{
		Environment: viper.GetString("ENV"),
		ServerHost:  viper.GetString("SERVER_HOST"),
		ServerPort:  viper.GetString("SERVER_PORT"),
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Database:        viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			LogLevel:        viper.GetString("DB_LOG_LEVEL"),
			MaxConnections:  viper.GetInt("DB_MAX_CONNECTIONS"),
			MinConnections:  viper.GetInt("DB_MIN_CONNECTIONS"),
			MaxConnLifetime: viper.GetInt("DB_MAX_CONN_LIFETIME_MIN"),
			MaxConnIdleTime: viper.GetInt("DB_MAX_CONN_IDLE_MIN"),
		},
		Cache: CacheConfig{
			Host:         viper.GetString("REDIS_HOST"),
			Port:         viper.GetInt("REDIS_PORT"),
			Password:     viper.GetString("REDIS_PASSWORD"),
			DB:           viper.GetInt("REDIS_DB"),
			DialTimeout:  viper.GetInt("REDIS_DIAL_TIMEOUT_SEC"),
			ReadTimeout:  viper.GetInt("REDIS_READ_TIMEOUT_SEC"),
			WriteTimeout: viper.GetInt("REDIS_WRITE_TIMEOUT_SEC"),
			PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
		},
		Queue: QueueConfig{
			Enabled:        viper.GetBool("QUEUE_ENABLED"),
			RedisHost:      viper.GetString("REDIS_HOST"),
			RedisPort:      viper.GetInt("REDIS_PORT"),
			RedisPassword:  viper.GetString("REDIS_PASSWORD"),
			RedisDB:        viper.GetInt("REDIS_DB"),
			DialTimeout:    viper.GetInt("REDIS_DIAL_TIMEOUT_SEC"),
			ReadTimeout:    viper.GetInt("REDIS_READ_TIMEOUT_SEC"),
			WriteTimeout:   viper.GetInt("REDIS_WRITE_TIMEOUT_SEC"),
			Concurrency:    viper.GetInt("WORKER_CONCURRENCY"),
			StrictPriority: viper.GetBool("WORKER_STRICT_PRIORITY"),
		},
		Import: ImportConfig{
			ChunkSize:    viper.GetInt("IMPORT_CHUNK_SIZE"),
			ChunkDelay:   time.Duration(viper.GetInt("IMPORT_CHUNK_DELAY_MS")) * time.Millisecond,
			JobRetention: time.Duration(viper.GetInt("IMPORT_JOB_RETENTION_MIN")) * time.Minute,
			MaxErrors:    viper.GetInt("IMPORT_MAX_ROW_ERRORS"),
		},
	}

	if config.Database.User == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	if config.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if config.Import.ChunkSize <= 0 {
		return nil, fmt.Errorf("IMPORT_CHUNK_SIZE must be positive")
	}

	return config, nil
}

// GetRedisAddr constructs the Redis address string
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Cache.Host, c.Cache.Port)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LogConfig logs the configuration (hiding sensitive data)
func (c *Config) LogConfig() {
	log.Printf("Configuration loaded:")
	log.Printf("  Environment: %s", c.Environment)
	log.Printf("  Server: %s:%s", c.ServerHost, c.ServerPort)
	log.Printf("  Database: %s:%d/%s", c.Database.Host, c.Database.Port, c.Database.Database)
	log.Printf("  Redis: %s:%d (DB: %d)", c.Cache.Host, c.Cache.Port, c.Cache.DB)
	log.Printf("  Import chunk size: %d", c.Import.ChunkSize)
	log.Printf("  Job retention: %s", c.Import.JobRetention)
	log.Printf("  Worker concurrency: %d", c.Queue.Concurrency)
}
