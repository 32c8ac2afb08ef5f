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
	"github.com/stretchr/testify/require"
)

var tweetColumns = Columns("tweet", "user_id")

func TestBuildEmptyRequest(t *testing.T) {
	g := Build(ParseRequest("/tweets", ""), tweetColumns)
	assert.True(t, g.Empty())
	assert.Equal(t, And, g.Op)
	assert.Equal(t, "", g.String())
}

func TestBuildSingleScalar(t *testing.T) {
	g := Build(ParseRequest("/tweets", "tweet=hello"), tweetColumns)
	assert.Equal(t, "tweet LIKE '%hello%'", g.String())
	require.Len(t, g.Items, 1)
	inner, ok := g.Items[0].(Group)
	require.True(t, ok)
	assert.Equal(t, []Predicate{Like{Column: "tweet", Value: "hello"}}, inner.Items)
}

func TestBuildLenientJoinsWithOr(t *testing.T) {
	g := Build(ParseRequest("/tweets", "tweet=hi&userId=4"), tweetColumns)
	assert.Equal(t, "(tweet LIKE '%hi%' OR user_id LIKE '%4%')", g.String())
}

func TestBuildStrictJoinsWithAnd(t *testing.T) {
	g := Build(ParseRequest("/tweets", "tweet=hi&user_id=4&is_strict=true"), tweetColumns)
	assert.Equal(t, "(tweet LIKE '%hi%' AND user_id LIKE '%4%')", g.String())
}

func TestBuildListBecomesOrGroup(t *testing.T) {
	g := Build(ParseRequest("/tweets", "searchArrayTweet[]=a&searchArrayTweet[]=&searchArrayTweet[]=b&is_strict=true&user_id=1"), tweetColumns)
	assert.Equal(t, "((tweet LIKE '%a%' OR tweet LIKE '%b%') AND user_id LIKE '%1%')", g.String())
}

func TestBuildSkipsUnusableKeys(t *testing.T) {
	raw := "password=x&tweet=&nameFromModelUser=jo&from_user_name=jo&from_model_user_name=jo" +
		"&page=2&per_page=5&order_by=asc&is_strict=false&_token=t&search=q"
	g := Build(ParseRequest("/tweets", raw), Columns("tweet", "password_hash", "name", "user_name"))
	assert.True(t, g.Empty())
}

func TestBuildIgnoresUnknownColumns(t *testing.T) {
	with := Build(ParseRequest("/tweets", "tweet=a&bogus=1"), tweetColumns)
	without := Build(ParseRequest("/tweets", "tweet=a"), tweetColumns)
	assert.Equal(t, without.String(), with.String())
}

func TestGroupAndDoesNotMutate(t *testing.T) {
	base := Build(ParseRequest("/tweets", "tweet=a"), tweetColumns)
	before := base.String()
	narrowed := base.And(Equals{Column: "user_id", Value: 2})
	assert.Equal(t, before, base.String())
	assert.Equal(t, "(tweet LIKE '%a%' AND user_id = 2)", narrowed.String())

	or := AnyOf(Like{Column: "a", Value: "1"}, Like{Column: "b", Value: "2"})
	assert.Equal(t, "((a LIKE '%1%' OR b LIKE '%2%') AND c = 3)", or.And(Equals{Column: "c", Value: 3}).String())
}

func TestRelatedString(t *testing.T) {
	p := Related{Column: "user_id", Table: "followers", Key: "following_id", Where: Equals{Column: "follower_id", Value: int64(7)}}
	assert.Equal(t, "user_id IN (SELECT following_id FROM followers WHERE follower_id = 7)", p.String())
	assert.True(t, Related{Column: "user_id"}.Empty())
}
