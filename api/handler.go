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
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomoncle/chirp/auth"
	"github.com/tomoncle/chirp/filter"
	"github.com/tomoncle/chirp/repository"
	"github.com/tomoncle/chirp/social"
	"github.com/tomoncle/chirp/types"
)

// Handler serves the auth, user and tweet endpoints.
type Handler struct {
	auth   *auth.Service
	users  *social.UserService
	tweets *social.TweetService
}

// NewHandler constructs a Handler.
func NewHandler(authService *auth.Service, users *social.UserService, tweets *social.TweetService) *Handler {
	return &Handler{auth: authService, users: users, tweets: tweets}
}

// listRequest reads the filter inputs of a listing call from the URL.
func listRequest(r *http.Request) *filter.Request {
	return filter.NewRequest(r.URL.Path, types.ParseQueryParams(r.URL.RawQuery))
}

func actorOf(r *http.Request) types.Actor {
	return types.ActorFromContext(r.Context())
}

// pathID parses the {id} route parameter. Malformed ids are reported as
// missing records.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, repository.ErrRecordNotFound
	}
	return id, nil
}
