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
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/tomoncle/chirp/api/httpx"
	"github.com/tomoncle/chirp/auth"
	"github.com/tomoncle/chirp/repository"
	"github.com/tomoncle/chirp/social"
	"github.com/tomoncle/chirp/utils"
)

var logger = utils.NewLogger("API")

// writeError maps service errors to problem responses. Unknown errors are
// logged and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *httpx.ValidationError
	switch {
	case errors.As(err, &invalid):
		httpx.ValidationProblem(w, invalid)
	case errors.Is(err, httpx.ErrBadRequest):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, repository.ErrRecordNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "No query results.")
	case errors.Is(err, auth.ErrInvalidCredentials):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "These credentials do not match our records.")
	case errors.Is(err, social.ErrUnauthenticated):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "Unauthenticated.")
	case errors.Is(err, social.ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "This action is unauthorized.")
	case errors.Is(err, social.ErrCannotFollowSelf), errors.Is(err, social.ErrCannotUnfollowSelf):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", err.Error())
	case errors.Is(err, social.ErrEmailTaken):
		httpx.ValidationProblem(w, &httpx.ValidationError{Fields: map[string]string{
			"email": "The email has already been taken.",
		}})
	case errors.Is(err, social.ErrWrongPassword):
		httpx.ValidationProblem(w, &httpx.ValidationError{Fields: map[string]string{
			"current_password": "The current password is incorrect.",
		}})
	default:
		logger.WithError(err).
			WithField("request_id", middleware.GetReqID(r.Context())).
			Errorf("%s %s failed", r.Method, r.URL.Path)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
