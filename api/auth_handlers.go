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

	"github.com/tomoncle/chirp/api/httpx"
	"github.com/tomoncle/chirp/auth"
	"github.com/tomoncle/chirp/models"
	"github.com/tomoncle/chirp/social"
)

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in social.RegisterInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, err := h.auth.IssueFor(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, tokenResponse{AccessToken: token, TokenType: "Bearer", User: user})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	token, user, err := h.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "Bearer", User: user})
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Find(r.Context(), actorOf(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, Resource[models.User]{Data: user})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), auth.TokenFromContext(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// changePassword revokes every other session of the user once the new
// password is stored, and hands back a fresh token.
func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var in social.ChangePasswordInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	actor := actorOf(r)
	if err := h.users.ChangePassword(r.Context(), actor, in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.auth.LogoutEverywhere(r.Context(), actor.UserID); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.Find(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	token, err := h.auth.IssueFor(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "Bearer", User: user})
}
