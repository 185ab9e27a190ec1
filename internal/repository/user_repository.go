package repository

import (
	"context"

	"lms/internal/domain/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, userID string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, user model.User) error
	Update(ctx context.Context, user model.User) error
	UpdateLastLogin(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context) ([]model.User, error)
}
