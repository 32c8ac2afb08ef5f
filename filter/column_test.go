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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveColumn(t *testing.T) {
	cases := []struct {
		key  string
		want Column
	}{
		{"name", Column{Name: "name"}},
		{"firstName", Column{Name: "first_name"}},
		{"searchColumnFirstName", Column{Name: "first_name"}},
		{"searchArrayColumnTags", Column{Name: "tags"}},
		{"searchArrayTags", Column{Name: "tags"}},
		{"searchTweet", Column{Name: "tweet"}},
		{"SEARCHCOLUMNTweet", Column{Name: "tweet"}},
		{"user_id", Column{Name: "user_id"}},
		{"userID", Column{Name: "user_id"}},
		{"ID", Column{Name: "id"}},
		{"createdAt", Column{Name: "created_at"}},
		{"is_published_", Column{Name: "is_published"}},
		{"nameFromModelUser", Column{Name: "name", Relation: "user", IsRelation: true}},
		{"searchColumnEmailFromModelUser", Column{Name: "email", Relation: "user", IsRelation: true}},
		{"from_user_name", Column{Name: "", Relation: "user_name", IsRelation: true}},
		{"from_model_user_name", Column{Name: "", Relation: "user_name", IsRelation: true}},
		{"search", Column{Name: ""}},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveColumn(tc.key))
		})
	}
}

func TestResolveColumnIsPure(t *testing.T) {
	assert.Equal(t, ResolveColumn("searchColumnFirstName"), ResolveColumn("searchColumnFirstName"))
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "user_profile", SnakeCase("UserProfile"))
	assert.Equal(t, "html_body", SnakeCase("HTMLBody"))
	assert.Equal(t, "address2_line", SnakeCase("address2Line"))
	assert.Equal(t, "already_snake", SnakeCase("already_Snake"))
	assert.Equal(t, "", SnakeCase(""))
}
