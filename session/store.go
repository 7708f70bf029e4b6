package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"github.com/patrickmn/go-cache"
)

// Store persists State between requests. Implementations do no locking; the
// last Save for a session wins.
type Store interface {
	Get(ctx context.Context, id string) (*State, bool, error)
	Save(ctx context.Context, s *State) error
	Delete(ctx context.Context, id string) error
}

type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: cache.New(ttl, 10*time.Minute)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*State, bool, error) {
	x, found := m.cache.Get(id)
	if !found {
		return nil, false, nil
	}
	// Hand out a copy so a half-finished request cannot leak into the stored state.
	st := *x.(*State)
	return &st, true, nil
}

func (m *MemoryStore) Save(_ context.Context, s *State) error {
	st := *s
	m.cache.Set(s.ID, &st, cache.DefaultExpiration)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "qna:session:" + id
}

func (r *RedisStore) Get(_ context.Context, id string) (*State, bool, error) {
	data, err := r.client.Get(sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get session: %w", err)
	}

	st, err := decodeState(data)
	if err != nil {
		return nil, false, err
	}
	return st, true, nil
}

func (r *RedisStore) Save(_ context.Context, s *State) error {
	data, err := encodeState(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(sessionKey(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(_ context.Context, id string) error {
	return r.client.Del(sessionKey(id)).Err()
}

func encodeState(s *State) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return data, nil
}

func decodeState(data []byte) (*State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &st, nil
}
