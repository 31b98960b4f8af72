package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AccessTokenBlacklist marca access tokens como invalidados antes de su
// expiracion natural. El logout los registra aqui y el middleware los rechaza.
type AccessTokenBlacklist interface {
	Blacklist(jti string, expiresAt time.Time) error
	IsBlacklisted(jti string) (bool, error)
}

type memoryAccessBlacklist struct {
	mu    sync.Mutex
	items map[string]time.Time
}

func NewMemoryAccessBlacklist() AccessTokenBlacklist {
	return &memoryAccessBlacklist{items: make(map[string]time.Time)}
}

func (b *memoryAccessBlacklist) Blacklist(jti string, expiresAt time.Time) error {
	if strings.TrimSpace(jti) == "" {
		return nil
	}
	// Un token ya expirado no necesita entrar a la lista.
	if time.Until(expiresAt) <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[jti] = expiresAt
	return nil
}

func (b *memoryAccessBlacklist) IsBlacklisted(jti string) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.items[jti]
	if !ok {
		return false, nil
	}
	if time.Now().UTC().After(exp) {
		delete(b.items, jti)
		return false, nil
	}
	return true, nil
}

type redisAccessBlacklist struct {
	client redisKV
	prefix string
}

func NewRedisAccessBlacklist(client *redis.Client) AccessTokenBlacklist {
	if client == nil {
		return nil
	}
	return &redisAccessBlacklist{
		client: client,
		prefix: "session:blacklist:",
	}
}

func (b *redisAccessBlacklist) Blacklist(jti string, expiresAt time.Time) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return b.client.Set(ctx, b.prefix+jti, "1", ttl).Err()
}

func (b *redisAccessBlacklist) IsBlacklisted(jti string) (bool, error) {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	n, err := b.client.Exists(ctx, b.prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
