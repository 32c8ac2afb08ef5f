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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequestDefaults(t *testing.T) {
	p := NewDefaultPageRequest(0, 0)
	assert.Equal(t, 1, p.GetPage())
	assert.Equal(t, DefaultPageSize, p.GetPageSize())
	assert.Equal(t, 0, p.GetOffset())
	assert.Equal(t, OrderDesc, p.GetOrder())

	p = NewPageRequest(3, 1000, OrderAsc, "/tweets")
	assert.Equal(t, MaxPageSize, p.GetPageSize())
	assert.Equal(t, 200, p.GetOffset())
	assert.Equal(t, OrderAsc, p.GetOrder())
	assert.Equal(t, "/tweets", p.GetPath())
}

func TestPaginationLinks(t *testing.T) {
	p := &Pagination[int]{Page: 2, PageSize: 10, Total: 25, Path: "/tweets"}
	assert.Equal(t, 3, p.LastPage())
	assert.Equal(t, "/tweets?page=1", p.FirstURL())
	assert.Equal(t, "/tweets?page=3", p.LastURL())
	assert.Equal(t, "/tweets?page=3", p.NextURL())
	assert.Equal(t, "/tweets?page=1", p.PrevURL())

	p.Path = "/tweets?user_id=4"
	p.Page = 3
	assert.Equal(t, "", p.NextURL())
	assert.Equal(t, "/tweets?user_id=4&page=2", p.PrevURL())

	p.Path = "/x?page=last&q=1"
	assert.Equal(t, "/x?page=2&q=1", p.PrevURL())
	assert.Equal(t, "/x?page=1&q=1", p.FirstURL())
}

func TestPaginationEmpty(t *testing.T) {
	p := NewDefaultPagination[int](1, 15)
	assert.Equal(t, 1, p.LastPage())
	assert.Equal(t, "", p.NextURL())
	assert.Equal(t, "", p.PrevURL())
	assert.NotNil(t, p.Items)
}

func TestOrderDirection(t *testing.T) {
	assert.Equal(t, OrderAsc, ParseOrderDirection("ASC"))
	assert.Equal(t, OrderAsc, ParseOrderDirection(" asc "))
	assert.Equal(t, OrderDesc, ParseOrderDirection(""))
	assert.Equal(t, OrderDesc, ParseOrderDirection("sideways"))
	assert.Equal(t, "DESC", OrderDesc.String())
	assert.Equal(t, "asc", OrderAsc.Name())
	assert.Equal(t, IllegalValue, OrderDirection(7).Number())
	assert.Equal(t, IllegalName, OrderDirection(7).String())
}

func TestActorContext(t *testing.T) {
	assert.True(t, ActorFromContext(t.Context()).IsAnonymous())
	ctx := ContextWithActor(t.Context(), Actor{UserID: 9})
	assert.Equal(t, int64(9), ActorFromContext(ctx).UserID)
}
