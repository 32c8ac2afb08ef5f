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

	"github.com/tomoncle/chirp/api/httpx"
	"github.com/tomoncle/chirp/models"
	"github.com/tomoncle/chirp/social"
	"github.com/tomoncle/chirp/types"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.users.Paginate(r.Context(), listRequest(r), actorOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewCollection(page))
}

func (h *Handler) searchUsers(w http.ResponseWriter, r *http.Request) {
	users, url, err := h.users.Search(r.Context(), listRequest(r), actorOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, SearchResult[models.User]{Data: nonNil(users), URL: url})
}

func (h *Handler) allUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.All(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, List[models.User]{Data: nonNil(users)})
}

func (h *Handler) suggestedFollowing(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.SuggestedFollowing(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, List[models.User]{Data: nonNil(users)})
}

// createUser registers an account without signing it in.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
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
	httpx.JSON(w, http.StatusCreated, Resource[models.User]{Data: user})
}

func (h *Handler) showUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.Find(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, Resource[models.User]{Data: user})
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in social.UpdateUserInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.Update(r.Context(), actorOf(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, Resource[models.User]{Data: user})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.users.Delete(r.Context(), actorOf(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) follow(w http.ResponseWriter, r *http.Request) {
	h.changeFollow(w, r, h.users.Follow)
}

func (h *Handler) unfollow(w http.ResponseWriter, r *http.Request) {
	h.changeFollow(w, r, h.users.Unfollow)
}

func (h *Handler) changeFollow(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, actor types.Actor, userID, followingID int64) error) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in social.FollowInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := apply(r.Context(), actorOf(r), id, in.FollowingID); err != nil {
		writeError(w, r, err)
		return
	}
	following, err := h.users.Following(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, List[models.User]{Data: following})
}

func (h *Handler) following(w http.ResponseWriter, r *http.Request) {
	h.relatedUsers(w, r, h.users.Following)
}

func (h *Handler) followers(w http.ResponseWriter, r *http.Request) {
	h.relatedUsers(w, r, h.users.Followers)
}

func (h *Handler) relatedUsers(w http.ResponseWriter, r *http.Request, load func(ctx context.Context, id int64) ([]*models.User, error)) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	users, err := load(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, List[models.User]{Data: users})
}

func (h *Handler) userTweets(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.tweets.UserTweets(r.Context(), listRequest(r), actorOf(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewCollection(page))
}
