package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lms/internal/domain/model"
	repo "lms/internal/repository"
)

type FeedbackGormRepository struct {
	db *gorm.DB
}

func NewFeedbackGormRepository(db *gorm.DB) *FeedbackGormRepository {
	return &FeedbackGormRepository{db: db}
}

func (r *FeedbackGormRepository) FindByID(ctx context.Context, feedbackID string) (model.Feedback, error) {
	var f model.Feedback
	err := r.db.WithContext(ctx).Where("id = ?", feedbackID).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Feedback{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Feedback{}, err
	}
	return f, nil
}

func (r *FeedbackGormRepository) List(ctx context.Context) ([]model.Feedback, error) {
	var items []model.Feedback
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *FeedbackGormRepository) Create(ctx context.Context, f model.Feedback) error {
	return r.db.WithContext(ctx).Create(&f).Error
}

func (r *FeedbackGormRepository) Update(ctx context.Context, f model.Feedback) error {
	res := r.db.WithContext(ctx).Model(&model.Feedback{}).
		Where("id = ?", f.ID).
		Updates(map[string]interface{}{
			"rating":  f.Rating,
			"comment": f.Comment,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *FeedbackGormRepository) Delete(ctx context.Context, feedbackID string) error {
	res := r.db.WithContext(ctx).Where("id = ?", feedbackID).Delete(&model.Feedback{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
