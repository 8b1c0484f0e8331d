package security

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/linemk/storefront/internal/domain/models"
)

// Issuer — значение claim "iss" в токенах магазина
const Issuer = "storefront"

var (
	ErrNoSecret = errors.New("JWT_SECRET environment variable is not set")
	// подпись, срок действия или claims токена не прошли проверку
	ErrInvalidToken = errors.New("invalid token")
)

// Secret возвращает ключ подписи из окружения
func Secret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, ErrNoSecret
	}
	return []byte(secret), nil
}

// NewToken выпускает токен покупателя со сроком жизни ttl
func NewToken(ctx context.Context, user *models.User, ttl time.Duration) (string, error) {
	secret, err := Secret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(user.ID, 10),
		"email": user.Email,
		"iss":   Issuer,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseUserID проверяет токен и возвращает id покупателя из "sub".
// Принимаются только HMAC-подписи; истекший токен отклоняется.
func ParseUserID(tokenStr string, secret []byte) (int64, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("%w: unexpected claims type", ErrInvalidToken)
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, fmt.Errorf("%w: sub not found", ErrInvalidToken)
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid user id %q", ErrInvalidToken, sub)
	}
	return userID, nil
}
