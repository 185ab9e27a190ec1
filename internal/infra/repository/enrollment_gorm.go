package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lms/internal/domain/model"
)

type EnrollmentGormRepository struct {
	db *gorm.DB
}

func NewEnrollmentGormRepository(db *gorm.DB) *EnrollmentGormRepository {
	return &EnrollmentGormRepository{db: db}
}

// set-add。既に (user, course) があれば何もしない。
func (r *EnrollmentGormRepository) Add(ctx context.Context, e model.Enrollment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(&e).Error
}

func (r *EnrollmentGormRepository) Exists(ctx context.Context, userID string, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *EnrollmentGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.Enrollment, error) {
	var items []model.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *EnrollmentGormRepository) ListByCourseID(ctx context.Context, courseID string) ([]model.Enrollment, error) {
	var items []model.Enrollment
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *EnrollmentGormRepository) CountByCourseID(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
