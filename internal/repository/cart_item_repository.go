package repository

import (
	"context"

	"lms/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID string) ([]model.CartItem, error)
	CountByCartID(ctx context.Context, cartID string) (int64, error)
	// 既にあれば false を返す（同じコースは1回まで）
	AddIfAbsent(ctx context.Context, item model.CartItem) (bool, error)
	DeleteByCartAndCourse(ctx context.Context, cartID string, courseID string) error
	DeleteByUserAndCourse(ctx context.Context, userID string, courseID string) error
	Clear(ctx context.Context, cartID string) error
}
