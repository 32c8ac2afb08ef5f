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

	"github.com/tomoncle/chirp/models"
	"github.com/tomoncle/chirp/repository"
)

// ErrInvalidCredentials is returned when email or password do not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserFinder looks up accounts by email.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service authenticates users and manages their bearer tokens.
type Service struct {
	users  UserFinder
	tokens TokenStore
}

// NewService constructs an authentication service.
func NewService(users UserFinder, tokens TokenStore) *Service {
	return &Service{users: users, tokens: tokens}
}

// Login checks the credentials and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !CheckPassword(user.Password, password) {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// IssueFor issues a token for an already verified user.
func (s *Service) IssueFor(ctx context.Context, user *models.User) (string, error) {
	return s.tokens.Issue(ctx, user.ID)
}

// Logout revokes token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// LogoutEverywhere revokes every token of userID.
func (s *Service) LogoutEverywhere(ctx context.Context, userID int64) error {
	return s.tokens.RevokeAll(ctx, userID)
}

// Tokens returns the underlying token store.
func (s *Service) Tokens() TokenStore {
	return s.tokens
}
