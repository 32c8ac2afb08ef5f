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
	"github.com/stretchr/testify/require"
)

func TestParseQueryParamsKeepsOrder(t *testing.T) {
	params := ParseQueryParams("?name=jo%20hn&tags%5B%5D=a&tags[]=b&&empty&=x")
	require.Len(t, params, 4)
	assert.Equal(t, QueryParam{"name", "jo hn"}, params[0])
	assert.Equal(t, QueryParam{"tags[]", "a"}, params[1])
	assert.Equal(t, QueryParam{"tags[]", "b"}, params[2])
	assert.Equal(t, QueryParam{"empty", ""}, params[3])
}

func TestParseQueryParamsBadEscape(t *testing.T) {
	params := ParseQueryParams("q=100%")
	require.Len(t, params, 1)
	assert.Equal(t, "100%", params[0].Value)
}

func TestQueryParamsEncodeRoundTrip(t *testing.T) {
	params := QueryParams{{"tags[]", "a b"}, {"q", "x&y=z"}}
	encoded := params.Encode()
	assert.Equal(t, "tags[]=a+b&q=x%26y%3Dz", encoded)
	assert.Equal(t, params, ParseQueryParams(encoded))
}

func TestQueryParamsGetWithWithout(t *testing.T) {
	params := QueryParams{{"a", "1"}, {"b", "2"}, {"a", "3"}}

	v, ok := params.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
	_, ok = params.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, QueryParams{{"b", "2"}}, params.Without("a"))
	assert.Equal(t, QueryParams{{"a", "9"}, {"b", "2"}}, params.With("a", "9"))
	assert.Equal(t, QueryParams{{"a", "1"}, {"b", "2"}, {"a", "3"}, {"c", "4"}}, params.With("c", "4"))
}
