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

// Package pagination builds the canonical base URL list responses link
// their pages from.
package pagination

import (
	"strings"

	"github.com/tomoncle/chirp/types"
)

var droppedKeys = []string{"_method", "_token"}

// Canonicalize returns path with a single leading slash followed by the
// canonical query of params: one pair per key holding its last value at
// its first position ("[]" keys keep every value), without form method or
// token fields, and, when removePage is set, without numeric page pairs.
// Canonicalize(Canonicalize(x)) == Canonicalize(x).
func Canonicalize(path string, params types.QueryParams, removePage bool) string {
	base := "/" + strings.TrimLeft(path, "/")
	if len(params) == 0 {
		return base
	}
	canonical := dedupe(params).Without(droppedKeys...)
	if removePage {
		canonical = withoutPage(canonical)
	}
	if len(canonical) == 0 {
		return base
	}
	return base + "?" + canonical.Encode()
}

func dedupe(params types.QueryParams) types.QueryParams {
	out := make(types.QueryParams, 0, len(params))
	index := make(map[string]int, len(params))
	for _, p := range params {
		if strings.HasSuffix(p.Key, "[]") {
			out = append(out, p)
			continue
		}
		if i, seen := index[p.Key]; seen {
			out[i].Value = p.Value
			continue
		}
		index[p.Key] = len(out)
		out = append(out, p)
	}
	return out
}

func withoutPage(params types.QueryParams) types.QueryParams {
	out := make(types.QueryParams, 0, len(params))
	for _, p := range params {
		if p.Key == "page" && isDigits(p.Value) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
