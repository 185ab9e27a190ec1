package repository

import (
	"context"
	"time"

	"lms/internal/domain/model"
)

// TTL付きのワンタイムコード置き場
type OTPRepository interface {
	// 同じemailの既存行は上書き
	Upsert(ctx context.Context, otp model.PasswordResetOTP) error
	FindByEmail(ctx context.Context, email string) (model.PasswordResetOTP, error)
	Delete(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context, now time.Time) error
}
