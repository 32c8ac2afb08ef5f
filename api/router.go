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

package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomoncle/chirp/api/httpx"
	"github.com/tomoncle/chirp/auth"
	"github.com/tomoncle/chirp/database"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Middleware MiddlewareConfig
	Handler    *Handler
	Tokens     auth.TokenStore
	Metrics    *Metrics
	// Health reports database health, database.GetHealthStatus by default.
	Health func(ctx context.Context) *database.HealthStatus
	// Stats reports pool statistics, database.GetDatabaseStats by default.
	Stats func() *database.DBStats
}

type healthResponse struct {
	*database.HealthStatus
	Pool *database.DBStats `json:"pool"`
}

// NewRouter constructs the chi router with every chirp endpoint.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	cfg := params.Middleware
	if cfg.Metrics == nil {
		cfg.Metrics = params.Metrics
	}
	for _, mw := range MiddlewareStack(cfg) {
		r.Use(mw)
	}

	health := params.Health
	if health == nil {
		health = database.GetHealthStatus
	}
	stats := params.Stats
	if stats == nil {
		stats = database.GetDatabaseStats
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := health(r.Context())
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		httpx.JSON(w, code, healthResponse{HealthStatus: status, Pool: stats()})
	})
	r.Handle("/metrics", params.Metrics.Handler())

	h := params.Handler
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(params.Tokens))

		r.Get("/auth/user", h.currentUser)
		r.Post("/auth/logout", h.logout)
		r.Post("/auth/change-password", h.changePassword)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
			r.Post("/", h.createUser)
			r.Get("/all", h.allUsers)
			r.Get("/search", h.searchUsers)
			r.Get("/suggested-following", h.suggestedFollowing)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.showUser)
				r.Patch("/", h.updateUser)
				r.Delete("/", h.deleteUser)
				r.Post("/following", h.follow)
				r.Post("/unfollow", h.unfollow)
				r.Get("/following", h.following)
				r.Get("/followers", h.followers)
				r.Get("/tweets", h.userTweets)
			})
		})

		r.Route("/tweets", func(r chi.Router) {
			r.Get("/", h.listTweets)
			r.Post("/", h.createTweet)
			r.Get("/search", h.searchTweets)
			r.Get("/users-followed-tweets", h.followedTweets)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.showTweet)
				r.Patch("/", h.updateTweet)
				r.Delete("/", h.deleteTweet)
				r.Post("/restore", h.restoreTweet)
			})
		})
	})

	return r
}
