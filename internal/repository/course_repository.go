package repository

import (
	"context"

	"lms/internal/domain/model"
)

type CourseSearchFilter struct {
	Query       string
	Categories  []string
	SortByPrice string // "low" / "high" / ""
}

type CourseRepository interface {
	FindByID(ctx context.Context, courseID string) (model.Course, error)
	FindByIDs(ctx context.Context, courseIDs []string) ([]model.Course, error)
	ListPublished(ctx context.Context) ([]model.Course, error)
	ListByCreator(ctx context.Context, creatorID string) ([]model.Course, error)
	Search(ctx context.Context, f CourseSearchFilter) ([]model.Course, error)
	Create(ctx context.Context, course model.Course) error
	Update(ctx context.Context, course model.Course) error
	SetPublished(ctx context.Context, courseID string, published bool) error
	Delete(ctx context.Context, courseID string) error
}
