package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"lms/internal/domain/model"
	repo "lms/internal/repository"
)

type CourseGormRepository struct {
	db *gorm.DB
}

func NewCourseGormRepository(db *gorm.DB) *CourseGormRepository {
	return &CourseGormRepository{db: db}
}

func (r *CourseGormRepository) FindByID(ctx context.Context, courseID string) (model.Course, error) {
	var c model.Course
	err := r.db.WithContext(ctx).Where("id = ?", courseID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Course{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Course{}, err
	}
	return c, nil
}

func (r *CourseGormRepository) FindByIDs(ctx context.Context, courseIDs []string) ([]model.Course, error) {
	var items []model.Course
	if err := r.db.WithContext(ctx).Where("id IN ?", courseIDs).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CourseGormRepository) ListPublished(ctx context.Context) ([]model.Course, error) {
	var items []model.Course
	err := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CourseGormRepository) ListByCreator(ctx context.Context, creatorID string) ([]model.Course, error) {
	var items []model.Course
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CourseGormRepository) Search(ctx context.Context, f repo.CourseSearchFilter) ([]model.Course, error) {
	q := r.db.WithContext(ctx).Model(&model.Course{}).Where("is_published = ?", true)

	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where("title ILIKE ? OR subtitle ILIKE ? OR category ILIKE ?", like, like, like)
	}
	if len(f.Categories) > 0 {
		q = q.Where("category IN ?", f.Categories)
	}

	switch f.SortByPrice {
	case "low":
		q = q.Order("price asc")
	case "high":
		q = q.Order("price desc")
	default:
		q = q.Order("created_at desc")
	}

	var items []model.Course
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CourseGormRepository) Create(ctx context.Context, course model.Course) error {
	return r.db.WithContext(ctx).Create(&course).Error
}

func (r *CourseGormRepository) Update(ctx context.Context, course model.Course) error {
	res := r.db.WithContext(ctx).Model(&model.Course{}).
		Where("id = ?", course.ID).
		Updates(map[string]interface{}{
			"title":         course.Title,
			"subtitle":      course.Subtitle,
			"description":   course.Description,
			"category":      course.Category,
			"level":         course.Level,
			"price":         course.Price,
			"thumbnail_url": course.ThumbnailURL,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CourseGormRepository) SetPublished(ctx context.Context, courseID string, published bool) error {
	res := r.db.WithContext(ctx).Model(&model.Course{}).
		Where("id = ?", courseID).
		Update("is_published", published)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CourseGormRepository) Delete(ctx context.Context, courseID string) error {
	res := r.db.WithContext(ctx).Where("id = ?", courseID).Delete(&model.Course{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
