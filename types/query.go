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
	"net/url"
	"strings"
)

// QueryParam is a single key/value pair of a URL query string.
type QueryParam struct {
	Key   string
	Value string
}

// QueryParams keeps query string pairs in the order they were received.
type QueryParams []QueryParam

// ParseQueryParams splits a raw query string into ordered pairs. Malformed
// escapes are kept verbatim instead of failing the whole query.
func ParseQueryParams(raw string) QueryParams {
	raw = strings.TrimPrefix(raw, "?")
	if raw == "" {
		return QueryParams{}
	}
	params := make(QueryParams, 0, strings.Count(raw, "&")+1)
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		key = unescape(key)
		if key == "" {
			continue
		}
		params = append(params, QueryParam{Key: key, Value: unescape(value)})
	}
	return params
}

// Encode renders the pairs as a query string. Square brackets are left
// unescaped so array keys stay readable.
func (q QueryParams) Encode() string {
	var sb strings.Builder
	for i, p := range q {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(escape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(escape(p.Value))
	}
	return sb.String()
}

// Get returns the last value stored under key.
func (q QueryParams) Get(key string) (string, bool) {
	value, found := "", false
	for _, p := range q {
		if p.Key == key {
			value, found = p.Value, true
		}
	}
	return value, found
}

// Without returns a copy of q with every pair whose key is listed removed.
func (q QueryParams) Without(keys ...string) QueryParams {
	out := make(QueryParams, 0, len(q))
	for _, p := range q {
		drop := false
		for _, k := range keys {
			if p.Key == k {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, p)
		}
	}
	return out
}

// With returns a copy of q where key holds value, replacing earlier pairs
// with the same key in place or appending a new pair.
func (q QueryParams) With(key, value string) QueryParams {
	out := make(QueryParams, 0, len(q)+1)
	replaced := false
	for _, p := range q {
		if p.Key == key {
			if !replaced {
				out = append(out, QueryParam{Key: key, Value: value})
				replaced = true
			}
			continue
		}
		out = append(out, p)
	}
	if !replaced {
		out = append(out, QueryParam{Key: key, Value: value})
	}
	return out
}

func unescape(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	return s
}

var bracketRestorer = strings.NewReplacer("%5B", "[", "%5D", "]")

func escape(s string) string {
	return bracketRestorer.Replace(url.QueryEscape(s))
}
