package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/storefront/internal/domain/models"
	security "github.com/linemk/storefront/internal/jwt-new"
	"github.com/linemk/storefront/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials: пароль не совпал с сохраненным хэшем
var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
	tokenTTL time.Duration
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		log:      log,
		userRepo: userRepo,
		tokenTTL: tokenTTL,
	}
}

type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Login осуществляет аутентификацию покупателя.
// Если пользователь не найден, он создаётся с bcrypt-хэшем пароля.
// Если найден, введённый пароль сравнивается с сохранённым хэшем.
func (a *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	const op = "service.AuthService.Login"
	logger := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		logger.Info("user not found, creating new user")
		user, err = a.register(ctx, email, password)
		if errors.Is(err, storage.ErrUserExists) {
			// параллельная регистрация того же email: проверяем пароль как у существующего
			logger.Warn("user was created concurrently")
			user, err = a.userRepo.GetUserByEmail(ctx, email)
			if err == nil {
				err = a.checkPassword(user, password)
			}
		}
		if err != nil {
			logger.Error("failed to register user", slog.Any("error", err))
			return "", fmt.Errorf("%s: %w", op, err)
		}
	case err != nil:
		logger.Error("failed to get user", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to get user: %w", op, err)
	default:
		if err := a.checkPassword(user, password); err != nil {
			logger.Warn("invalid password")
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	// Секрет для подписи берется из JWT_SECRET
	token, err := security.NewToken(ctx, user, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return token, nil
}

func (a *AuthService) register(ctx context.Context, email, password string) (*models.User, error) {
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return a.userRepo.CreateUser(ctx, &models.User{Email: email, PassHash: passHash})
}

func (a *AuthService) checkPassword(user *models.User, password string) error {
	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
