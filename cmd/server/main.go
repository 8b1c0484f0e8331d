package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linemk/storefront/internal/app"
	"github.com/linemk/storefront/internal/config"
	"github.com/linemk/storefront/internal/lib/logger"
	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/session"
	"github.com/linemk/storefront/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения: конфиг, postgres, gorm и redis
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.Close()

	sessions, err := session.NewStore(application.Redis, cfg.Redis.SessionTTL)
	if err != nil {
		log.Error("failed to initialize sessions", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize sessions"))
	}

	// слои по работе с БД: заказы и склад через database/sql, каталог через gorm
	userRepo := storage.NewUserRepository(application.DB)
	stockRepo := storage.NewStockRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	lineRepo := storage.NewOrderLineRepository(application.DB)
	catalogRepo := storage.NewCatalogRepository(application.Gorm)

	router := app.NewRouter(application.Logger, app.Services{
		Auth:    service.NewAuthService(application.Logger, userRepo, time.Duration(cfg.JWT.TokenTTL)*time.Minute),
		Catalog: service.NewCatalogService(application.Logger, catalogRepo, cfg.Catalog.SearchShowFirst),
		Random:  service.NewRandomService(application.Logger, catalogRepo, sessions, cfg.Catalog.RandomPageSize),
		Basket:  service.NewBasketService(application.Logger, application.DB, stockRepo, orderRepo, lineRepo),
		Orders:  service.NewOrderService(application.Logger, application.DB, userRepo, orderRepo, lineRepo),
	}, sessions, cfg.Redis.SessionTTL)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
