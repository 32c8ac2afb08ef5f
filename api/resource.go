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
	"github.com/tomoncle/chirp/types"
)

// Resource wraps a single record.
type Resource[T any] struct {
	Data *T `json:"data"`
}

// Links point at neighbouring pages. Prev and Next are null at the ends.
type Links struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// Meta describes the page window.
type Meta struct {
	CurrentPage int    `json:"current_page"`
	LastPage    int    `json:"last_page"`
	PerPage     int    `json:"per_page"`
	Total       int    `json:"total"`
	Path        string `json:"path"`
}

// Collection is a paginated list of records.
type Collection[T any] struct {
	Data  []*T  `json:"data"`
	Links Links `json:"links"`
	Meta  Meta  `json:"meta"`
}

// SearchResult is an unpaginated filtered list with its canonical URL.
type SearchResult[T any] struct {
	Data []*T  `json:"data"`
	URL  string `json:"url"`
}

// List is an unpaginated list of records.
type List[T any] struct {
	Data []*T `json:"data"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil[T any](items []*T) []*T {
	if items == nil {
		return []*T{}
	}
	return items
}

// NewCollection renders a pagination as a collection.
func NewCollection[T any](p *types.Pagination[T]) Collection[T] {
	return Collection[T]{
		Data: nonNil(p.Items),
		Links: Links{
			First: p.FirstURL(),
			Last:  p.LastURL(),
			Prev:  optional(p.PrevURL()),
			Next:  optional(p.NextURL()),
		},
		Meta: Meta{
			CurrentPage: p.Page,
			LastPage:    p.LastPage(),
			PerPage:     p.PageSize,
			Total:       p.Total,
			Path:        p.Path,
		},
	}
}
