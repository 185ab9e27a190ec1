package repository

import (
	"context"

	"lms/internal/domain/model"
)

type FeedbackRepository interface {
	FindByID(ctx context.Context, feedbackID string) (model.Feedback, error)
	List(ctx context.Context) ([]model.Feedback, error)
	Create(ctx context.Context, f model.Feedback) error
	Update(ctx context.Context, f model.Feedback) error
	Delete(ctx context.Context, feedbackID string) error
}
