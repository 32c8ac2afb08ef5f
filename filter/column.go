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
	"regexp"
	"strings"
	"unicode"
)

// markerPattern matches the search and relation markers a client may wrap
// around a column name. Relation markers capture the relation text that
// follows them.
var markerPattern = regexp.MustCompile(`(?i)searchColumn|searchArrayColumn|searchArray|search|FromModel(.+)|Model(.+)|from_model_(.+)|from_(.+)`)

// Column is the outcome of resolving a filter key.
type Column struct {
	// Name is the storage column, snake_case. Empty when nothing is left
	// once markers are stripped.
	Name string
	// Relation is the snake_case text following a relation marker.
	Relation string
	// IsRelation marks keys that address a related entity rather than the
	// listed one.
	IsRelation bool
}

// ResolveColumn maps a raw request key to a storage column name.
//
//	"searchColumnFirstName"          -> first_name
//	"userID"                         -> user_id
//	"searchColumnEmailFromModelUser" -> email (relation "user")
func ResolveColumn(key string) Column {
	var c Column
	var sb strings.Builder
	last := 0
	for _, m := range markerPattern.FindAllStringSubmatchIndex(key, -1) {
		sb.WriteString(key[last:m[0]])
		last = m[1]
		for g := 2; g+1 < len(m); g += 2 {
			if m[g] >= 0 {
				c.IsRelation = true
				c.Relation = SnakeCase(key[m[g]:m[g+1]])
			}
		}
	}
	sb.WriteString(key[last:])
	c.Name = SnakeCase(sb.String())
	return c
}

// SnakeCase converts medial capitals to underscores and lowercases the
// result. Runs of capitals are kept together, so "ID" becomes "id" and
// "userID" becomes "user_id". One trailing underscore is trimmed.
func SnakeCase(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	sb.Grow(len(s) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && runes[i-1] != '_' {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				sb.WriteByte('_')
			}
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return strings.TrimSuffix(sb.String(), "_")
}
