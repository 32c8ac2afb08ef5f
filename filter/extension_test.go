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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tomoncle/chirp/types"
)

var userRelation = Relation{
	Name:       "user",
	Table:      "users",
	ForeignKey: "user_id",
	Key:        "id",
	Columns:    Columns("name", "email", "username"),
}

func ownerOnly(_ context.Context, _ *Request, actor types.Actor) Predicate {
	return Equals{Column: "user_id", Value: actor.UserID}
}

func TestSchemaWithoutExtensionsEqualsBuild(t *testing.T) {
	req := ParseRequest("/tweets", "tweet=a&user_id=2")
	s := NewSchema("tweet", "user_id")
	assert.Equal(t, Build(req, s.Columns()).String(), s.Predicate(context.Background(), req, types.Actor{}).String())
}

func TestSchemaExtensionsOnlyNarrow(t *testing.T) {
	req := ParseRequest("/tweets", "tweet=a&user_id=2")
	s := NewSchema("tweet", "user_id").With(ExtensionFunc(ownerOnly))

	got := s.Predicate(context.Background(), req, types.Actor{UserID: 5})
	assert.Equal(t, "((tweet LIKE '%a%' OR user_id LIKE '%2%') AND user_id = 5)", got.String())
	assert.Equal(t, And, got.Op)
}

func TestSchemaExtensionsRunInOrder(t *testing.T) {
	first := ExtensionFunc(func(context.Context, *Request, types.Actor) Predicate {
		return Equals{Column: "a", Value: 1}
	})
	second := ExtensionFunc(func(context.Context, *Request, types.Actor) Predicate {
		return Equals{Column: "b", Value: 2}
	})
	none := ExtensionFunc(func(context.Context, *Request, types.Actor) Predicate { return nil })

	s := NewSchema("tweet").With(first, none, second)
	got := s.Predicate(context.Background(), ParseRequest("/tweets", ""), types.Actor{})
	assert.Equal(t, "(a = 1 AND b = 2)", got.String())
}

func TestSchemaWithCopies(t *testing.T) {
	base := NewSchema("tweet")
	_ = base.With(ExtensionFunc(ownerOnly))
	got := base.Predicate(context.Background(), ParseRequest("/tweets", ""), types.Actor{UserID: 1})
	assert.True(t, got.Empty())
}

func TestRelationFilter(t *testing.T) {
	f := NewRelationFilter(userRelation)
	cases := []struct {
		query string
		want  string
	}{
		{"nameFromModelUser=jo", "user_id IN (SELECT id FROM users WHERE name LIKE '%jo%')"},
		{"from_user_email=x.io", "user_id IN (SELECT id FROM users WHERE email LIKE '%x.io%')"},
		{"from_model_user_username=jd", "user_id IN (SELECT id FROM users WHERE username LIKE '%jd%')"},
		{"searchColumnEmailFromModelUser=x", "user_id IN (SELECT id FROM users WHERE email LIKE '%x%')"},
		{"nameFromModelUser[]=a&nameFromModelUser[]=b", "user_id IN (SELECT id FROM users WHERE (name LIKE '%a%' OR name LIKE '%b%'))"},
		{"passwordFromModelUser=x", ""},
		{"nameFromModelTeam=x", ""},
		{"nameFromModelUser=", ""},
		{"tweet=x", ""},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			got := f.Extend(context.Background(), ParseRequest("/tweets", tc.query), types.Actor{})
			if tc.want == "" {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestRelationFilterStrictness(t *testing.T) {
	f := NewRelationFilter(userRelation)
	q := "nameFromModelUser=a&emailFromModelUser=b"

	lenient := f.Extend(context.Background(), ParseRequest("/tweets", q), types.Actor{})
	assert.Contains(t, lenient.String(), ") OR user_id IN")

	strict := f.Extend(context.Background(), ParseRequest("/tweets", q+"&is_strict=true"), types.Actor{})
	assert.Contains(t, strict.String(), ") AND user_id IN")
}

func TestRelationFilterSkipsDeletedRows(t *testing.T) {
	rel := userRelation
	rel.SoftDelete = "deleted_at"
	got := NewRelationFilter(rel).Extend(context.Background(), ParseRequest("/tweets", "nameFromModelUser=jo"), types.Actor{})
	assert.Equal(t, "user_id IN (SELECT id FROM users WHERE deleted_at IS NULL AND name LIKE '%jo%')", got.String())
}
