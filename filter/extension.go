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
	"context"
	"strings"

	"github.com/tomoncle/chirp/types"
)

// Extension contributes an extra condition to a listing. It sees the same
// request and actor as the base filter and returns a fragment that is
// AND-ed onto the result, or nil to leave it unchanged. Extensions must
// not perform I/O.
type Extension interface {
	Extend(ctx context.Context, req *Request, actor types.Actor) Predicate
}

// ExtensionFunc adapts a function to Extension.
type ExtensionFunc func(ctx context.Context, req *Request, actor types.Actor) Predicate

func (f ExtensionFunc) Extend(ctx context.Context, req *Request, actor types.Actor) Predicate {
	return f(ctx, req, actor)
}

// Schema declares how one entity may be filtered: its allowed columns and
// the ordered extensions applied after the base filter.
type Schema struct {
	columns    AllowedColumns
	extensions []Extension
}

// NewSchema declares an entity whose listed columns may be filtered.
func NewSchema(columns ...string) *Schema {
	return &Schema{columns: Columns(columns...)}
}

// With returns a copy of s with ext appended to its extensions.
func (s *Schema) With(ext ...Extension) *Schema {
	out := &Schema{columns: s.columns}
	out.extensions = make([]Extension, 0, len(s.extensions)+len(ext))
	out.extensions = append(out.extensions, s.extensions...)
	out.extensions = append(out.extensions, ext...)
	return out
}

// Columns returns the allowed columns.
func (s *Schema) Columns() AllowedColumns { return s.columns }

// Predicate builds the base filter for req and then runs every extension
// in declaration order. Fragments can only narrow the result.
func (s *Schema) Predicate(ctx context.Context, req *Request, actor types.Actor) Group {
	result := Build(req, s.columns)
	for _, ext := range s.extensions {
		if fragment := ext.Extend(ctx, req, actor); fragment != nil && !fragment.Empty() {
			result = result.And(fragment)
		}
	}
	return result
}

// Relation declares a related entity reachable from the listed one:
// rows match when ForeignKey is found in Key of a Table row. SoftDelete
// names the deletion column of Table, if it has one.
type Relation struct {
	Name       string
	Table      string
	ForeignKey string
	Key        string
	Columns    AllowedColumns
	SoftDelete string
}

// RelationFilter interprets relation keys such as "nameFromModelUser",
// "from_user_name" or "searchColumnEmailFromModelUser" against the
// declared relations. Unknown relations and columns are ignored.
type RelationFilter struct {
	relations []Relation
}

// NewRelationFilter builds a RelationFilter over rels.
func NewRelationFilter(rels ...Relation) *RelationFilter {
	return &RelationFilter{relations: rels}
}

func (f *RelationFilter) Extend(_ context.Context, req *Request, _ types.Actor) Predicate {
	fields := make([]Predicate, 0)
	for _, key := range req.Keys() {
		col := ResolveColumn(key)
		if !col.IsRelation {
			continue
		}
		rel, column, ok := f.lookup(col)
		if !ok {
			continue
		}
		value, _ := req.Value(key)
		inner := likeValue(column, value)
		if inner == nil {
			continue
		}
		fields = append(fields, Related{
			Column:     rel.ForeignKey,
			Table:      rel.Table,
			Key:        rel.Key,
			Where:      inner,
			SoftDelete: rel.SoftDelete,
		})
	}
	if len(fields) == 0 {
		return nil
	}
	if req.IsStrict() {
		return AllOf(fields...)
	}
	return AnyOf(fields...)
}

// lookup finds the relation and column a resolved key addresses. Keys
// like "nameFromModelUser" carry the column before the marker; keys like
// "from_user_name" carry "<relation>_<column>" after it.
func (f *RelationFilter) lookup(col Column) (Relation, string, bool) {
	for _, rel := range f.relations {
		column := col.Name
		if column == "" {
			rest, found := strings.CutPrefix(col.Relation, rel.Name+"_")
			if !found {
				continue
			}
			column = rest
		} else if col.Relation != rel.Name {
			continue
		}
		if rel.Columns.Has(column) {
			return rel, column, true
		}
	}
	return Relation{}, "", false
}
