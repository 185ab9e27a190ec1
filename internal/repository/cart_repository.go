package repository

import (
	"context"

	"lms/internal/domain/model"
)

type CartRepository interface {
	// ユーザーのカートを取得し、無ければ作成する
	GetOrCreateByUserID(ctx context.Context, userID string, newID string) (model.Cart, error)
	FindByUserID(ctx context.Context, userID string) (model.Cart, error)
}
