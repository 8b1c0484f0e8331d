package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string           `yaml:"env" env-default:"development"` // environment
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Migrations MigrationsConfig `yaml:"migrations"`
	Redis      RedisConfig      `yaml:"redis"`
	Catalog    CatalogConfig    `yaml:"catalog"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// DatabaseConfig структура по работе с БД
type DatabaseConfig struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"-" env:"DB_PASSWORD" env-required:"true"`
	Name     string `yaml:"name" env-required:"true"`
}

// JWTConfig настройка jwt
type JWTConfig struct {
	Secret   string `yaml:"-" env:"JWT_SECRET" env-required:"true"`
	TokenTTL int    `yaml:"token_ttl" env-default:"60"`
}

type MigrationsConfig struct {
	Path string `yaml:"path" env-default:"./migrations"`
}

// RedisConfig настраивает хранилище сессий случайной витрины
type RedisConfig struct {
	Address    string        `yaml:"address" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password   string        `yaml:"-" env:"REDIS_PASSWORD"`
	DB         int           `yaml:"db" env-default:"0"`
	SessionTTL time.Duration `yaml:"session_ttl" env-default:"24h"`
}

// CatalogConfig содержит параметры выдачи каталога.
// Ноль в файле означает значение по умолчанию; отрицательные значения отклоняются.
type CatalogConfig struct {
	SearchShowFirst int `yaml:"search_show_first" env-default:"3"`
	RandomPageSize  int `yaml:"random_page_size" env-default:"10"`
}

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

// MustLoadByPath читает конфиг и паникует, если файла нет или он невалиден
func MustLoadByPath(configPath string) *Config {
	cfg, err := LoadByPath(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadByPath читает YAML-конфиг; переменные окружения перекрывают значения из файла
func LoadByPath(configPath string) (*Config, error) {
	const op = "config.LoadByPath"

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: config file not found: %s", op, configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: can't read config file %s: %w", op, configPath, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.JWT.TokenTTL <= 0:
		return fmt.Errorf("jwt.token_ttl must be positive, got %d", c.JWT.TokenTTL)
	case c.Catalog.SearchShowFirst <= 0:
		return fmt.Errorf("catalog.search_show_first must be positive, got %d", c.Catalog.SearchShowFirst)
	case c.Catalog.RandomPageSize <= 0:
		return fmt.Errorf("catalog.random_page_size must be positive, got %d", c.Catalog.RandomPageSize)
	case c.Redis.SessionTTL <= 0:
		return fmt.Errorf("redis.session_ttl must be positive, got %s", c.Redis.SessionTTL)
	}
	return nil
}
