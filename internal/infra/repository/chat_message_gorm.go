package repository

import (
	"context"

	"gorm.io/gorm"

	"lms/internal/domain/model"
)

type ChatMessageGormRepository struct {
	db *gorm.DB
}

// DI
func NewChatMessageGormRepository(db *gorm.DB) *ChatMessageGormRepository {
	return &ChatMessageGormRepository{db: db}
}

func (r *ChatMessageGormRepository) Create(ctx context.Context, msg model.ChatMessage) error {
	return r.db.WithContext(ctx).Create(&msg).Error
}

func (r *ChatMessageGormRepository) ListByUserAndCourse(ctx context.Context, userID string, courseID string) ([]model.ChatMessage, error) {
	var items []model.ChatMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ChatMessageGormRepository) DeleteByUserAndCourse(ctx context.Context, userID string, courseID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&model.ChatMessage{}).Error
}
