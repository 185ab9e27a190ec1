package repository

import (
	"context"

	"lms/internal/domain/model"
)

type LectureRepository interface {
	FindByID(ctx context.Context, lectureID string) (model.Lecture, error)
	ListByCourseID(ctx context.Context, courseID string) ([]model.Lecture, error)
	Create(ctx context.Context, lecture model.Lecture) error
	Update(ctx context.Context, lecture model.Lecture) error
	Delete(ctx context.Context, lectureID string) error
	DeleteByCourseID(ctx context.Context, courseID string) error
}
