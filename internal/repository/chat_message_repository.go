package repository

import (
	"context"

	"lms/internal/domain/model"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, msg model.ChatMessage) error
	ListByUserAndCourse(ctx context.Context, userID string, courseID string) ([]model.ChatMessage, error)
	DeleteByUserAndCourse(ctx context.Context, userID string, courseID string) error
}
