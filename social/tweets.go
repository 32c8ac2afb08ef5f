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

package social

import (
	"context"
	"strings"

	"github.com/tomoncle/chirp"
	"github.com/tomoncle/chirp/filter"
	"github.com/tomoncle/chirp/models"
	"github.com/tomoncle/chirp/repository"
	"github.com/tomoncle/chirp/types"
	"github.com/uptrace/bun"
)

// TweetService manages tweets and the timelines built from them.
type TweetService struct {
	tweets   chirp.Service[models.Tweet]
	timeline chirp.Service[models.Tweet]
	users    chirp.Service[models.User]
}

// TweetSchema is the schema of tweet listings. Other users' drafts are
// hidden.
var TweetSchema = models.TweetSchema.With(VisibilityPolicy{})

// TimelineSchema lists published tweets of the users the actor follows.
var TimelineSchema = models.TweetSchema.With(FollowingPolicy{})

// NewTweetService returns a TweetService on db, or on the global database
// when db is nil.
func NewTweetService(db *bun.DB) *TweetService {
	if db == nil {
		return &TweetService{
			tweets:   chirp.NewService[models.Tweet](TweetSchema),
			timeline: chirp.NewService[models.Tweet](TimelineSchema),
			users:    chirp.NewService[models.User](models.UserSchema),
		}
	}
	return &TweetService{
		tweets:   chirp.NewServiceWithDB[models.Tweet](db, TweetSchema),
		timeline: chirp.NewServiceWithDB[models.Tweet](db, TimelineSchema),
		users:    chirp.NewServiceWithDB[models.User](db, models.UserSchema),
	}
}

func withAuthor() repository.QueryOption {
	return repository.WithRelation("User")
}

func visibleTo(ctx context.Context, actor types.Actor) repository.QueryOption {
	return repository.Where(VisibilityPolicy{}.Extend(ctx, nil, actor))
}

// Paginate lists tweets filtered by the request, with their authors.
func (s *TweetService) Paginate(ctx context.Context, req *filter.Request, actor types.Actor) (*types.Pagination[models.Tweet], error) {
	return s.tweets.Paginate(ctx, req, actor, withAuthor())
}

// Search returns a limited filtered list of tweets and the request's
// canonical URL.
func (s *TweetService) Search(ctx context.Context, req *filter.Request, actor types.Actor) ([]*models.Tweet, string, error) {
	tweets, err := s.tweets.Search(ctx, req, actor, withAuthor())
	if err != nil {
		return nil, "", err
	}
	return tweets, s.tweets.SearchURL(req), nil
}

// FollowedTweets lists published tweets of the users the actor follows.
func (s *TweetService) FollowedTweets(ctx context.Context, req *filter.Request, actor types.Actor) (*types.Pagination[models.Tweet], error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	return s.timeline.Paginate(ctx, req, actor, withAuthor(), repository.PublishedOnly())
}

// UserTweets lists the tweets of userID visible to the actor.
func (s *TweetService) UserTweets(ctx context.Context, req *filter.Request, actor types.Actor, userID int64) (*types.Pagination[models.Tweet], error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	byUser := repository.Where(filter.Equals{Column: "user_id", Value: userID})
	return s.tweets.Paginate(ctx, req, actor, withAuthor(), byUser)
}

// Create stores a tweet authored by the actor.
func (s *TweetService) Create(ctx context.Context, actor types.Actor, in CreateTweetInput) (*models.Tweet, error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthenticated
	}
	tweet := &models.Tweet{
		UserID:      actor.UserID,
		Tweet:       strings.TrimSpace(in.Tweet),
		IsPublished: in.IsPublished == nil || *in.IsPublished,
	}
	if err := s.tweets.Save(ctx, tweet); err != nil {
		return nil, err
	}
	return s.tweets.Get(ctx, tweet.ID, withAuthor())
}

// Find returns the tweet with id when the actor may see it.
func (s *TweetService) Find(ctx context.Context, actor types.Actor, id int64) (*models.Tweet, error) {
	return s.tweets.Get(ctx, id, withAuthor(), visibleTo(ctx, actor))
}

func (s *TweetService) owned(ctx context.Context, actor types.Actor, id int64) (*models.Tweet, error) {
	tweet, err := s.Find(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if tweet.UserID != actor.UserID {
		return nil, ErrForbidden
	}
	return tweet, nil
}

// Update changes a tweet of the actor.
func (s *TweetService) Update(ctx context.Context, actor types.Actor, id int64, in UpdateTweetInput) (*models.Tweet, error) {
	tweet, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	columns := []string{"updated_at"}
	if in.Tweet != nil {
		tweet.Tweet = strings.TrimSpace(*in.Tweet)
		columns = append(columns, "tweet")
	}
	if in.IsPublished != nil {
		tweet.IsPublished = *in.IsPublished
		columns = append(columns, "is_published")
	}
	if err := s.tweets.Update(ctx, tweet, columns...); err != nil {
		return nil, err
	}
	return s.Find(ctx, actor, id)
}

// Delete soft-deletes a tweet of the actor.
func (s *TweetService) Delete(ctx context.Context, actor types.Actor, id int64) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return s.tweets.Delete(ctx, id)
}

// Restore brings back a deleted tweet of the actor.
func (s *TweetService) Restore(ctx context.Context, actor types.Actor, id int64) error {
	tweet, err := s.tweets.Get(ctx, id, repository.OnlyTrashed())
	if err != nil {
		return err
	}
	if tweet.UserID != actor.UserID {
		return ErrForbidden
	}
	return s.tweets.Restore(ctx, id)
}
