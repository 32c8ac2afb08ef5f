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

package types

import (
	"strconv"
	"strings"
)

const (
	// DefaultPageSize is used when a request does not ask for a page size.
	DefaultPageSize = 15
	// MaxPageSize caps the page size a client may request.
	MaxPageSize = 100
)

// PageRequest describes the window, ordering and canonical base URL of a
// paginated listing.
type PageRequest struct {
	page     int
	pageSize int
	order    OrderDirection
	path     string
}

func (p *PageRequest) GetPageSize() int {
	if p.pageSize < 1 {
		p.pageSize = DefaultPageSize
	}
	if p.pageSize > MaxPageSize {
		p.pageSize = MaxPageSize
	}
	return p.pageSize
}

func (p *PageRequest) GetPage() int {
	if p.page < 1 {
		p.page = 1
	}
	return p.page
}

func (p *PageRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

func (p *PageRequest) GetOrder() OrderDirection {
	if !p.order.IsValid() {
		p.order = OrderDesc
	}
	return p.order
}

// GetPath returns the canonical URL pages are linked from.
func (p *PageRequest) GetPath() string {
	return p.path
}

// NewPageRequest constructs a PageRequest.
func NewPageRequest(page int, pageSize int, order OrderDirection, path string) *PageRequest {
	return &PageRequest{page, pageSize, order, path}
}

// NewDefaultPageRequest constructs a newest-first PageRequest without a base URL.
func NewDefaultPageRequest(page int, pageSize int) *PageRequest {
	return NewPageRequest(page, pageSize, OrderDesc, "")
}

// Pagination holds paged result items along with pagination metadata.
type Pagination[T any] struct {
	Page     int
	PageSize int
	Total    int
	Items    []*T
	Path     string
}

// NewDefaultPagination constructs an empty pagination container.
func NewDefaultPagination[T any](page int, pageSize int) *Pagination[T] {
	return &Pagination[T]{Page: page, PageSize: pageSize, Items: make([]*T, 0)}
}

// LastPage is the number of the last page, never less than 1.
func (p *Pagination[T]) LastPage() int {
	if p.PageSize < 1 || p.Total <= p.PageSize {
		return 1
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// URL links to the given page of the listing. A page already present in
// Path is replaced.
func (p *Pagination[T]) URL(page int) string {
	if page < 1 {
		page = 1
	}
	base, rawQuery, _ := strings.Cut(p.Path, "?")
	return base + "?" + ParseQueryParams(rawQuery).With("page", strconv.Itoa(page)).Encode()
}

func (p *Pagination[T]) FirstURL() string {
	return p.URL(1)
}

func (p *Pagination[T]) LastURL() string {
	return p.URL(p.LastPage())
}

// NextURL returns "" on the last page.
func (p *Pagination[T]) NextURL() string {
	if p.Page >= p.LastPage() {
		return ""
	}
	return p.URL(p.Page + 1)
}

// PrevURL returns "" on the first page.
func (p *Pagination[T]) PrevURL() string {
	if p.Page <= 1 {
		return ""
	}
	return p.URL(p.Page - 1)
}
