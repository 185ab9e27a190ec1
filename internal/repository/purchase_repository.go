package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"lms/internal/domain/model"
)

type PurchaseRepository interface {
	FindByID(ctx context.Context, purchaseID string) (model.Purchase, error)
	Create(ctx context.Context, p model.Purchase) error
	Delete(ctx context.Context, purchaseID string) error

	// 同じ (user, course) で pending の行が残っているか
	ExistsActive(ctx context.Context, userID string, courseID string) (bool, error)

	// セッションIDは1回だけ設定できる
	AttachSession(ctx context.Context, purchaseID string, sessionID string) error

	ListBySession(ctx context.Context, sessionID string) ([]model.Purchase, error)

	// pending → completed の条件付きUPDATE。
	// 他の配信が先に確定していたら false（副作用なし）。
	MarkCompleted(ctx context.Context, purchaseID string, amount decimal.Decimal, at time.Time) (bool, error)
	MarkFailed(ctx context.Context, purchaseID string, at time.Time) (bool, error)

	HasCompleted(ctx context.Context, userID string, courseID string) (bool, error)
	CountByStatus(ctx context.Context, status model.PurchaseStatus) (int64, error)
	ListCompleted(ctx context.Context) ([]model.Purchase, error)
}
