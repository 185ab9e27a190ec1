package repository

import (
	"context"

	"lms/internal/domain/model"
)

type EnrollmentRepository interface {
	// set-add。既にあれば何もしない（再実行しても1行のまま）
	Add(ctx context.Context, e model.Enrollment) error
	Exists(ctx context.Context, userID string, courseID string) (bool, error)
	ListByUserID(ctx context.Context, userID string) ([]model.Enrollment, error)
	ListByCourseID(ctx context.Context, courseID string) ([]model.Enrollment, error)
	CountByCourseID(ctx context.Context, courseID string) (int64, error)
}
