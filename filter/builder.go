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

// AllowedColumns is the set of columns a listing may be filtered on.
type AllowedColumns map[string]struct{}

// Columns builds an AllowedColumns set.
func Columns(names ...string) AllowedColumns {
	set := make(AllowedColumns, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func (a AllowedColumns) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Build turns the request's filter keys into a predicate. Every scalar
// becomes a substring match, every list an OR of substring matches. The
// fields are joined with AND when the request is strict, OR otherwise, and
// the result is wrapped in a single AND group so later fragments can be
// appended. Keys that cannot be used are skipped silently.
func Build(req *Request, allowed AllowedColumns) Group {
	fields := make([]Predicate, 0, len(req.Keys()))
	for _, key := range req.Keys() {
		if IsControlKey(key) {
			continue
		}
		col := ResolveColumn(key)
		if col.Name == "" || col.IsRelation || !allowed.Has(col.Name) {
			continue
		}
		value, _ := req.Value(key)
		if p := likeValue(col.Name, value); p != nil {
			fields = append(fields, p)
		}
	}
	if len(fields) == 0 {
		return Group{Op: And}
	}
	op := Or
	if req.IsStrict() {
		op = And
	}
	return Group{Op: And, Items: []Predicate{Group{Op: op, Items: fields}}}
}

// likeValue returns the substring match for one field, or nil when the
// value holds nothing to match.
func likeValue(column string, value Value) Predicate {
	if value.IsEmpty() {
		return nil
	}
	if !value.IsList() {
		return Like{Column: column, Value: value.String()}
	}
	items := make([]Predicate, 0, len(value.Items()))
	for _, item := range value.Items() {
		if item == "" {
			continue
		}
		items = append(items, Like{Column: column, Value: item})
	}
	return Group{Op: Or, Items: items}
}
