package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	"github.com/linemk/storefront/internal/config"
	"github.com/linemk/storefront/internal/lib/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sql.DB
	// Gorm работает поверх того же пула соединений, что и DB
	Gorm  *gorm.DB
	Redis *redis.Client
}

// DSN собирает строку подключения к postgres
func DSN(dbCfg config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.Name,
	)
}

// NewApp создаёт новый экземпляр App
func NewApp(log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.NewApp"

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("%s: DB_PASSWORD environment variable is not set", op)
	}

	db, err := sql.Open("postgres", DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open database: %w", op, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: gormLogger(cfg.Env),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to open gorm: %w", op, err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		db.Close()
		rdb.Close()
		return nil, fmt.Errorf("%s: failed to ping redis: %w", op, err)
	}

	log.Info("storage connected",
		slog.String("database", cfg.Database.Name),
		slog.String("redis", cfg.Redis.Address))

	return &App{
		Config: cfg,
		Logger: log,
		DB:     db,
		Gorm:   gormDB,
		Redis:  rdb,
	}, nil
}

// Close закрывает соединения с postgres и redis
func (a *App) Close() error {
	return errors.Join(a.Redis.Close(), a.DB.Close())
}

// gormLogger печатает SQL только при локальной разработке
func gormLogger(env string) gormlogger.Interface {
	if env == logger.EnvLocal {
		return gormlogger.Default.LogMode(gormlogger.Info)
	}
	return gormlogger.Default.LogMode(gormlogger.Silent)
}
