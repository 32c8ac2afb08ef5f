/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrInvalidToken is returned for unknown, revoked, or expired tokens.
var ErrInvalidToken = errors.New("invalid or expired token")

// TokenStore issues opaque bearer tokens and maps them back to user ids.
type TokenStore interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Resolve(ctx context.Context, token string) (int64, error)
	Revoke(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, userID int64) error
}

// RedisTokenStore keeps tokens in Redis under "<prefix>:token:<token>" with
// a per-user set "<prefix>:user:<id>" used for bulk revocation.
type RedisTokenStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ TokenStore = (*RedisTokenStore)(nil)

// NewRedisTokenStore constructs a RedisTokenStore. Tokens expire after ttl.
func NewRedisTokenStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisTokenStore {
	if prefix == "" {
		prefix = "chirp"
	}
	return &RedisTokenStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisTokenStore) tokenKey(token string) string {
	return s.prefix + ":token:" + token
}

func (s *RedisTokenStore) userKey(userID int64) string {
	return s.prefix + ":user:" + strconv.FormatInt(userID, 10)
}

func (s *RedisTokenStore) Issue(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(token), userID, s.ttl)
		pipe.SAdd(ctx, s.userKey(userID), token)
		pipe.Expire(ctx, s.userKey(userID), s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

func (s *RedisTokenStore) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}
	userID, err := s.client.Get(ctx, s.tokenKey(token)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrInvalidToken
		}
		return 0, fmt.Errorf("resolve token: %w", err)
	}
	return userID, nil
}

func (s *RedisTokenStore) Revoke(ctx context.Context, token string) error {
	userID, err := s.Resolve(ctx, token)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.tokenKey(token))
		pipe.SRem(ctx, s.userKey(userID), token)
		return nil
	})
	return err
}

func (s *RedisTokenStore) RevokeAll(ctx context.Context, userID int64) error {
	tokens, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, s.tokenKey(token))
	}
	keys = append(keys, s.userKey(userID))
	return s.client.Del(ctx, keys...).Err()
}
