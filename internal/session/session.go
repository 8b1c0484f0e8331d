// Package session хранит состояние анонимной сессии покупателя в redis.
// Сейчас это только зерно перемешивания для случайной витрины.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	gonanoid "github.com/jaevor/go-nanoid"
	"github.com/redis/go-redis/v9"
)

// CookieName: cookie, в которой лежит id сессии
const CookieName = "storefront_session"

const idLength = 21

// Store хранит зерна перемешивания по id сессии
type Store struct {
	client *redis.Client
	ttl    time.Duration
	newID  func() string
}

// NewStore создает хранилище; ttl продлевается при каждом обращении к сессии
func NewStore(client *redis.Client, ttl time.Duration) (*Store, error) {
	newID, err := gonanoid.Standard(idLength)
	if err != nil {
		return nil, fmt.Errorf("session.NewStore: failed to create id generator: %w", err)
	}
	return &Store{client: client, ttl: ttl, newID: newID}, nil
}

// NewID возвращает новый случайный id сессии
func (s *Store) NewID() string {
	return s.newID()
}

// SeedKey возвращает ключ redis для зерна сессии
func SeedKey(sessionID string) string {
	return fmt.Sprintf("session:%s:random_seed", sessionID)
}

// Seed возвращает зерно сессии, создавая его при первом обращении или при reset
func (s *Store) Seed(ctx context.Context, sessionID string, reset bool) (uint64, error) {
	key := SeedKey(sessionID)

	if !reset {
		seed, err := s.client.Get(ctx, key).Uint64()
		switch {
		case err == nil:
			if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
				return 0, fmt.Errorf("session.Seed: failed to extend ttl: %w", err)
			}
			return seed, nil
		case !errors.Is(err, redis.Nil):
			return 0, fmt.Errorf("session.Seed: failed to read seed: %w", err)
		}
	}

	seed := rand.Uint64()
	if err := s.client.Set(ctx, key, seed, s.ttl).Err(); err != nil {
		return 0, fmt.Errorf("session.Seed: failed to store seed: %w", err)
	}
	return seed, nil
}
