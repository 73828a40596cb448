package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	LogLevel   string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string    `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Storage    string    `yaml:"storage" env:"STORAGE" env-default:"redis"`
	Redis      Redis     `yaml:"redis"`
	Scheduler  Scheduler `yaml:"scheduler"`
	Game       Game      `yaml:"game"`
	WebSocket  WebSocket `yaml:"websocket"`
	Auth       Auth      `yaml:"auth"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	DB   int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Scheduler struct {
	PollInterval time.Duration `yaml:"poll-interval" env:"SCHEDULER_POLL_INTERVAL" env-default:"100ms"`
	BatchSize    int           `yaml:"batch-size" env:"SCHEDULER_BATCH_SIZE" env-default:"64"`
}

type Game struct {
	// TimeUnit - wall-clock length of one unit of the turn duration schedule.
	TimeUnit time.Duration `yaml:"time-unit" env:"GAME_TIME_UNIT" env-default:"1s"`
}

type WebSocket struct {
	RateLimit float64 `yaml:"rate-limit" env:"WEBSOCKET_RATE_LIMIT" env-default:"10"`
	RateBurst int     `yaml:"rate-burst" env:"WEBSOCKET_RATE_BURST" env-default:"20"`
}

type Auth struct {
	JWTSecretKey string        `yaml:"jwt-secret-key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token-ttl" env:"AUTH_TOKEN_TTL" env-default:"24h"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads path and applies env overrides and defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func (that *Config) validate() error {
	if that.Storage != StorageRedis && that.Storage != StorageMemory {
		return fmt.Errorf("unknown storage %q", that.Storage)
	}

	if that.Game.TimeUnit <= 0 {
		return fmt.Errorf("game time unit must be positive, got %s", that.Game.TimeUnit)
	}

	if that.Auth.JWTSecretKey == "" {
		return fmt.Errorf("auth jwt secret key is required")
	}

	if that.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth token ttl must be positive, got %s", that.Auth.TokenTTL)
	}

	if that.Scheduler.PollInterval <= 0 || that.Scheduler.BatchSize <= 0 {
		return fmt.Errorf("scheduler poll interval and batch size must be positive")
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
