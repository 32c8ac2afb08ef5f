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
	"github.com/tomoncle/chirp/models"
	"github.com/tomoncle/chirp/social"
)

func (h *Handler) listTweets(w http.ResponseWriter, r *http.Request) {
	page, err := h.tweets.Paginate(r.Context(), listRequest(r), actorOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewCollection(page))
}

func (h *Handler) searchTweets(w http.ResponseWriter, r *http.Request) {
	tweets, url, err := h.tweets.Search(r.Context(), listRequest(r), actorOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, SearchResult[models.Tweet]{Data: nonNil(tweets), URL: url})
}

func (h *Handler) followedTweets(w http.ResponseWriter, r *http.Request) {
	page, err := h.tweets.FollowedTweets(r.Context(), listRequest(r), actorOf(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewCollection(page))
}

func (h *Handler) createTweet(w http.ResponseWriter, r *http.Request) {
	var in social.CreateTweetInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	tweet, err := h.tweets.Create(r.Context(), actorOf(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, Resource[models.Tweet]{Data: tweet})
}

func (h *Handler) showTweet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tweet, err := h.tweets.Find(r.Context(), actorOf(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, Resource[models.Tweet]{Data: tweet})
}

func (h *Handler) updateTweet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in social.UpdateTweetInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	tweet, err := h.tweets.Update(r.Context(), actorOf(r), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, Resource[models.Tweet]{Data: tweet})
}

func (h *Handler) deleteTweet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.tweets.Delete(r.Context(), actorOf(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) restoreTweet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.tweets.Restore(r.Context(), actorOf(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	tweet, err := h.tweets.Find(r.Context(), actorOf(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, Resource[models.Tweet]{Data: tweet})
}
