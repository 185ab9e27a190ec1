package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lms/internal/domain/model"
	repo "lms/internal/repository"
)

type LectureGormRepository struct {
	db *gorm.DB
}

func NewLectureGormRepository(db *gorm.DB) *LectureGormRepository {
	return &LectureGormRepository{db: db}
}

func (r *LectureGormRepository) FindByID(ctx context.Context, lectureID string) (model.Lecture, error) {
	var l model.Lecture
	err := r.db.WithContext(ctx).Where("id = ?", lectureID).First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Lecture{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Lecture{}, err
	}
	return l, nil
}

func (r *LectureGormRepository) ListByCourseID(ctx context.Context, courseID string) ([]model.Lecture, error) {
	var items []model.Lecture
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position asc, created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *LectureGormRepository) Create(ctx context.Context, lecture model.Lecture) error {
	return r.db.WithContext(ctx).Create(&lecture).Error
}

func (r *LectureGormRepository) Update(ctx context.Context, lecture model.Lecture) error {
	res := r.db.WithContext(ctx).Model(&model.Lecture{}).
		Where("id = ?", lecture.ID).
		Updates(map[string]interface{}{
			"title":           lecture.Title,
			"video_url":       lecture.VideoURL,
			"public_id":       lecture.PublicID,
			"is_preview_free": lecture.IsPreviewFree,
			"position":        lecture.Position,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *LectureGormRepository) Delete(ctx context.Context, lectureID string) error {
	res := r.db.WithContext(ctx).Where("id = ?", lectureID).Delete(&model.Lecture{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *LectureGormRepository) DeleteByCourseID(ctx context.Context, courseID string) error {
	return r.db.WithContext(ctx).Where("course_id = ?", courseID).Delete(&model.Lecture{}).Error
}
