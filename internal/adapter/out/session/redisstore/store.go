// Package redisstore keeps the session in Redis so several machines can share it.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"feedctl/internal/model"
	"feedctl/internal/service"

	"github.com/go-redis/redis/v8"
)

type Store struct {
	client *redis.Client
	key    string
}

var _ service.TokenStore = (*Store)(nil)

// New stores the token under key and the profile under key+":profile".
func New(client *redis.Client, key string) *Store {
	return &Store{client: client, key: key}
}

func (s *Store) profileKey() string {
	return s.key + ":profile"
}

func (s *Store) AccessToken(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return token, nil
}

func (s *Store) Session(ctx context.Context) (model.Session, error) {
	token, err := s.AccessToken(ctx)
	if err != nil || token == "" {
		return model.Session{}, err
	}

	sess := model.Session{AccessToken: token}
	data, err := s.client.Get(ctx, s.profileKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return sess, nil
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("redis get %s: %w", s.profileKey(), err)
	}
	if err := json.Unmarshal(data, &sess.Profile); err != nil {
		return model.Session{}, fmt.Errorf("decode profile: %w", err)
	}
	return sess, nil
}

func (s *Store) SaveSession(ctx context.Context, sess model.Session) error {
	data, err := json.Marshal(sess.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key, sess.AccessToken, 0)
	pipe.Set(ctx, s.profileKey(), data, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key, s.profileKey()).Err(); err != nil {
		return fmt.Errorf("redis clear session: %w", err)
	}
	return nil
}
