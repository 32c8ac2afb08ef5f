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

package filter

import (
	"strconv"
	"strings"

	"github.com/tomoncle/chirp/types"
)

// Reserved request keys. They steer the listing and never filter it.
const (
	KeyIsStrict = "is_strict"
	KeyPage     = "page"
	KeyPerPage  = "per_page"
	KeyOrderBy  = "order_by"
	KeyLimit    = "limit"
	KeyMethod   = "_method"
	KeyToken    = "_token"
)

var controlKeys = map[string]struct{}{
	KeyIsStrict: {},
	KeyPage:     {},
	KeyPerPage:  {},
	KeyOrderBy:  {},
	KeyLimit:    {},
	KeyMethod:   {},
	KeyToken:    {},
}

// IsControlKey reports whether key is reserved.
func IsControlKey(key string) bool {
	_, ok := controlKeys[key]
	return ok
}

// Value is either a scalar string or an ordered list of strings.
type Value struct {
	scalar string
	list   []string
	isList bool
}

// Scalar builds a single-valued Value.
func Scalar(s string) Value {
	return Value{scalar: s}
}

// List builds a list Value.
func List(items ...string) Value {
	return Value{list: append([]string(nil), items...), isList: true}
}

func (v Value) IsList() bool { return v.isList }

// String returns the scalar, or the list joined by commas.
func (v Value) String() string {
	if v.isList {
		return strings.Join(v.list, ",")
	}
	return v.scalar
}

// Items returns the list elements, or the scalar as a one-element slice.
func (v Value) Items() []string {
	if v.isList {
		return v.list
	}
	return []string{v.scalar}
}

// IsEmpty reports whether the value carries no non-empty string.
func (v Value) IsEmpty() bool {
	for _, item := range v.Items() {
		if item != "" {
			return false
		}
	}
	return true
}

// Request is the ordered set of filter inputs of one listing call.
type Request struct {
	path   string
	params types.QueryParams
	keys   []string
	values map[string]Value
}

// ParseRequest builds a Request from a URL path and raw query string.
func ParseRequest(path, rawQuery string) *Request {
	return NewRequest(path, types.ParseQueryParams(rawQuery))
}

// NewRequest groups ordered query pairs into request values. Keys ending in
// "[]" or "[n]" collect into a list under the bare key; a repeated plain
// key keeps its first position and its last value.
func NewRequest(path string, params types.QueryParams) *Request {
	r := &Request{path: path, params: params, values: make(map[string]Value, len(params))}
	for _, p := range params {
		key, isList := splitArrayKey(p.Key)
		if key == "" {
			continue
		}
		current, seen := r.values[key]
		if !seen {
			r.keys = append(r.keys, key)
		}
		if isList {
			items := []string(nil)
			if current.isList {
				items = current.list
			}
			r.values[key] = Value{list: append(items, p.Value), isList: true}
			continue
		}
		r.values[key] = Scalar(p.Value)
	}
	return r
}

func splitArrayKey(key string) (string, bool) {
	if !strings.HasSuffix(key, "]") {
		return key, false
	}
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, false
	}
	return key[:open], true
}

// Path is the request path the listing was served from.
func (r *Request) Path() string { return r.path }

// Params returns the raw ordered query pairs.
func (r *Request) Params() types.QueryParams { return r.params }

// Keys returns the request keys in first-seen order.
func (r *Request) Keys() []string { return r.keys }

// Value returns the value stored under key.
func (r *Request) Value(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Get returns the string form of key, or "".
func (r *Request) Get(key string) string {
	return r.values[key].String()
}

// IsEmpty reports whether the request carries no keys at all.
func (r *Request) IsEmpty() bool { return len(r.keys) == 0 }

// IsStrict reports whether filters must all match. Only the exact string
// "true" enables strict mode.
func (r *Request) IsStrict() bool {
	return r.Get(KeyIsStrict) == "true"
}

// Page returns the requested page, or 1.
func (r *Request) Page() int {
	return positiveInt(r.Get(KeyPage), 1)
}

// PerPage returns the requested page size, or def.
func (r *Request) PerPage(def int) int {
	return positiveInt(r.Get(KeyPerPage), def)
}

// Limit returns the requested row limit, or def.
func (r *Request) Limit(def int) int {
	return positiveInt(r.Get(KeyLimit), def)
}

// Order returns the requested order direction, newest first by default.
func (r *Request) Order() types.OrderDirection {
	return types.ParseOrderDirection(r.Get(KeyOrderBy))
}

// PageRequest derives the pagination window from the request. The base URL
// is left for the caller to canonicalize.
func (r *Request) PageRequest(defaultPerPage int, path string) *types.PageRequest {
	return types.NewPageRequest(r.Page(), r.PerPage(defaultPerPage), r.Order(), path)
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}
