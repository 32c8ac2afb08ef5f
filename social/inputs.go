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

// RegisterInput is the payload of a sign-up.
type RegisterInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// UpdateUserInput changes the profile fields that are present.
type UpdateUserInput struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=255"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
}

// ChangePasswordInput replaces the password after checking the current one.
type ChangePasswordInput struct {
	CurrentPassword         string `json:"current_password" validate:"required"`
	NewPassword             string `json:"new_password" validate:"required,min=8,max=72"`
	NewPasswordConfirmation string `json:"new_password_confirmation" validate:"required,eqfield=NewPassword"`
}

// FollowInput names the user to follow or unfollow.
type FollowInput struct {
	FollowingID int64 `json:"following_id" validate:"required,gt=0"`
}

// CreateTweetInput is the payload of a new tweet. Tweets are published
// unless IsPublished is false.
type CreateTweetInput struct {
	Tweet       string `json:"tweet" validate:"required,max=20000"`
	IsPublished *bool  `json:"is_published"`
}

// UpdateTweetInput changes the tweet fields that are present.
type UpdateTweetInput struct {
	Tweet       *string `json:"tweet" validate:"omitempty,min=1,max=20000"`
	IsPublished *bool   `json:"is_published"`
}
