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
	"net/http"
	"strings"

	"github.com/tomoncle/chirp/api/httpx"
	"github.com/tomoncle/chirp/types"
	"github.com/tomoncle/chirp/utils"
)

type tokenKey struct{}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// TokenFromContext returns the bearer token the request was authenticated with.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Authenticate rejects requests without a valid bearer token and stores the
// resolved actor in the request context.
func Authenticate(tokens TokenStore) func(http.Handler) http.Handler {
	logger := utils.NewLogger("AUTH")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "Unauthenticated.")
				return
			}
			userID, err := tokens.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, ErrInvalidToken) {
					httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "Unauthenticated.")
					return
				}
				logger.WithError(err).Error("token lookup failed")
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			ctx := types.ContextWithActor(r.Context(), types.Actor{UserID: userID})
			ctx = context.WithValue(ctx, tokenKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
