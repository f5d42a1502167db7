package repository

import (
	"context"

	"quickchat/internal/auth/domain/model"
)

// UserRepository defines persistence operations for user records.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// UpdateProfile applies a partial update and returns the post-update record.
	UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error)
	// ListUsersExcept returns every user except the given one (sidebar listing).
	ListUsersExcept(ctx context.Context, id string) ([]*model.User, error)
}
