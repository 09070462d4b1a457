package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefixRefresh = "refresh:"
	keyPrefixReset   = "reset:"
)

// ResetTokenTTL bounds the validity of password reset links.
const ResetTokenTTL = 1 * time.Hour

var errTokenNotFound = errors.New("token not found")

// TokenStore keeps short-lived refresh and reset tokens.
type TokenStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}

// NewTokenStore returns a Redis store, or an in-process one when client is nil.
func NewTokenStore(client *redis.Client) TokenStore {
	if client == nil {
		return newMemoryTokenStore()
	}
	return &redisTokenStore{client: client}
}

type redisTokenStore struct {
	client *redis.Client
}

func (s *redisTokenStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisTokenStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", errTokenNotFound
	}
	return v, err
}

func (s *redisTokenStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

type memoryToken struct {
	value   string
	expires time.Time
}

type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
	now    func() time.Time
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: make(map[string]memoryToken), now: time.Now}
}

func (s *memoryTokenStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = memoryToken{value: value, expires: s.now().Add(ttl)}
	return nil
}

func (s *memoryTokenStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[key]
	if !ok || s.now().After(t.expires) {
		delete(s.tokens, key)
		return "", errTokenNotFound
	}
	return t.value, nil
}

func (s *memoryTokenStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, key)
	return nil
}
