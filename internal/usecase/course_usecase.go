package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"lms/internal/domain/model"
	repo "lms/internal/repository"
)

// CourseUsecase はコースと講義のCRUDと検索。
// 講義動画の閲覧可否もここで判定する（無料プレビュー or 受講登録済み or 作成者）。
type CourseUsecase struct {
	courseRepo     repo.CourseRepository
	lectureRepo    repo.LectureRepository
	enrollmentRepo repo.EnrollmentRepository
	idGen          IDGenerator
	clock          Clock
}

func NewCourseUsecase(
	courseRepo repo.CourseRepository,
	lectureRepo repo.LectureRepository,
	enrollmentRepo repo.EnrollmentRepository,
	idGen IDGenerator,
	clock Clock,
) *CourseUsecase {
	return &CourseUsecase{
		courseRepo:     courseRepo,
		lectureRepo:    lectureRepo,
		enrollmentRepo: enrollmentRepo,
		idGen:          idGen,
		clock:          clock,
	}
}

type CreateCourseInput struct {
	Title        string
	Subtitle     string
	Description  string
	Category     string
	Level        string
	Price        decimal.Decimal
	ThumbnailURL string
}

type UpdateCourseInput struct {
	Title        *string
	Subtitle     *string
	Description  *string
	Category     *string
	Level        *string
	Price        *decimal.Decimal
	ThumbnailURL *string
}

func (u *CourseUsecase) CreateCourse(ctx context.Context, creatorID string, in CreateCourseInput) (model.Course, error) {
	if creatorID == "" {
		return model.Course{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Title) == "" {
		return model.Course{}, NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return model.Course{}, NewHTTPError(http.StatusBadRequest, "category is required")
	}
	if in.Price.IsNegative() {
		return model.Course{}, NewHTTPError(http.StatusBadRequest, "price must not be negative")
	}

	course := model.Course{
		ID:           u.idGen.NewID(),
		Title:        in.Title,
		Subtitle:     in.Subtitle,
		Description:  in.Description,
		Category:     in.Category,
		Level:        in.Level,
		Price:        in.Price,
		ThumbnailURL: in.ThumbnailURL,
		IsPublished:  false,
		CreatorID:    creatorID,
		CreatedAt:    u.clock.Now(),
	}
	if err := u.courseRepo.Create(ctx, course); err != nil {
		return model.Course{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return course, nil
}

func (u *CourseUsecase) UpdateCourse(ctx context.Context, userID string, courseID string, in UpdateCourseInput) (model.Course, error) {
	course, err := u.mustOwnCourse(ctx, userID, courseID)
	if err != nil {
		return model.Course{}, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return model.Course{}, NewHTTPError(http.StatusBadRequest, "title is required")
		}
		course.Title = *in.Title
	}
	if in.Subtitle != nil {
		course.Subtitle = *in.Subtitle
	}
	if in.Description != nil {
		course.Description = *in.Description
	}
	if in.Category != nil {
		if strings.TrimSpace(*in.Category) == "" {
			return model.Course{}, NewHTTPError(http.StatusBadRequest, "category is required")
		}
		course.Category = *in.Category
	}
	if in.Level != nil {
		course.Level = *in.Level
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return model.Course{}, NewHTTPError(http.StatusBadRequest, "price must not be negative")
		}
		course.Price = *in.Price
	}
	if in.ThumbnailURL != nil {
		course.ThumbnailURL = *in.ThumbnailURL
	}

	if err := u.courseRepo.Update(ctx, course); err != nil {
		return model.Course{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return course, nil
}

func (u *CourseUsecase) SetPublished(ctx context.Context, userID string, courseID string, published bool) error {
	if _, err := u.mustOwnCourse(ctx, userID, courseID); err != nil {
		return err
	}
	if err := u.courseRepo.SetPublished(ctx, courseID, published); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// DeleteCourse はコースと講義をまとめて消す（コース側はソフトデリート）。
func (u *CourseUsecase) DeleteCourse(ctx context.Context, userID string, courseID string) error {
	if _, err := u.mustOwnCourse(ctx, userID, courseID); err != nil {
		return err
	}
	if err := u.lectureRepo.DeleteByCourseID(ctx, courseID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.courseRepo.Delete(ctx, courseID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CourseUsecase) GetCourse(ctx context.Context, courseID string) (model.Course, []model.Lecture, error) {
	course, err := u.courseRepo.FindByID(ctx, courseID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Course{}, nil, NewHTTPError(http.StatusNotFound, "course not found")
	}
	if err != nil {
		return model.Course{}, nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	lectures, err := u.lectureRepo.ListByCourseID(ctx, courseID)
	if err != nil {
		return model.Course{}, nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return course, lectures, nil
}

func (u *CourseUsecase) ListPublished(ctx context.Context) ([]model.Course, error) {
	courses, err := u.courseRepo.ListPublished(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return courses, nil
}

func (u *CourseUsecase) ListByCreator(ctx context.Context, creatorID string) ([]model.Course, error) {
	if creatorID == "" {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	courses, err := u.courseRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return courses, nil
}

func (u *CourseUsecase) Search(ctx context.Context, f repo.CourseSearchFilter) ([]model.Course, error) {
	switch f.SortByPrice {
	case "", "low", "high":
	default:
		return nil, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}
	courses, err := u.courseRepo.Search(ctx, f)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return courses, nil
}

type CreateLectureInput struct {
	Title         string
	VideoURL      string
	PublicID      string
	IsPreviewFree bool
	Position      int
}

type UpdateLectureInput struct {
	Title         *string
	VideoURL      *string
	PublicID      *string
	IsPreviewFree *bool
	Position      *int
}

func (u *CourseUsecase) CreateLecture(ctx context.Context, userID string, courseID string, in CreateLectureInput) (model.Lecture, error) {
	if _, err := u.mustOwnCourse(ctx, userID, courseID); err != nil {
		return model.Lecture{}, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return model.Lecture{}, NewHTTPError(http.StatusBadRequest, "title is required")
	}

	lecture := model.Lecture{
		ID:            u.idGen.NewID(),
		CourseID:      courseID,
		Title:         in.Title,
		VideoURL:      in.VideoURL,
		PublicID:      in.PublicID,
		IsPreviewFree: in.IsPreviewFree,
		Position:      in.Position,
		CreatedAt:     u.clock.Now(),
	}
	if err := u.lectureRepo.Create(ctx, lecture); err != nil {
		return model.Lecture{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return lecture, nil
}

func (u *CourseUsecase) UpdateLecture(ctx context.Context, userID string, lectureID string, in UpdateLectureInput) (model.Lecture, error) {
	lecture, err := u.lectureRepo.FindByID(ctx, lectureID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Lecture{}, NewHTTPError(http.StatusNotFound, "lecture not found")
	}
	if err != nil {
		return model.Lecture{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if _, err := u.mustOwnCourse(ctx, userID, lecture.CourseID); err != nil {
		return model.Lecture{}, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return model.Lecture{}, NewHTTPError(http.StatusBadRequest, "title is required")
		}
		lecture.Title = *in.Title
	}
	if in.VideoURL != nil {
		lecture.VideoURL = *in.VideoURL
	}
	if in.PublicID != nil {
		lecture.PublicID = *in.PublicID
	}
	if in.IsPreviewFree != nil {
		lecture.IsPreviewFree = *in.IsPreviewFree
	}
	if in.Position != nil {
		lecture.Position = *in.Position
	}

	if err := u.lectureRepo.Update(ctx, lecture); err != nil {
		return model.Lecture{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return lecture, nil
}

func (u *CourseUsecase) DeleteLecture(ctx context.Context, userID string, lectureID string) error {
	lecture, err := u.lectureRepo.FindByID(ctx, lectureID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "lecture not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if _, err := u.mustOwnCourse(ctx, userID, lecture.CourseID); err != nil {
		return err
	}
	if err := u.lectureRepo.Delete(ctx, lectureID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// GetLecture は閲覧権を見てから講義を返す。
// 無料プレビューは誰でも、それ以外は受講登録済みか作成者のみ。
func (u *CourseUsecase) GetLecture(ctx context.Context, userID string, lectureID string) (model.Lecture, error) {
	lecture, err := u.lectureRepo.FindByID(ctx, lectureID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Lecture{}, NewHTTPError(http.StatusNotFound, "lecture not found")
	}
	if err != nil {
		return model.Lecture{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if lecture.IsPreviewFree {
		return lecture, nil
	}
	if userID == "" {
		return model.Lecture{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	course, err := u.courseRepo.FindByID(ctx, lecture.CourseID)
	if err == nil && course.CreatorID == userID {
		return lecture, nil
	}

	enrolled, err := u.enrollmentRepo.Exists(ctx, userID, lecture.CourseID)
	if err != nil {
		return model.Lecture{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !enrolled {
		return model.Lecture{}, NewHTTPError(http.StatusForbidden, "course not purchased")
	}
	return lecture, nil
}

// 存在確認＋作成者チェック
func (u *CourseUsecase) mustOwnCourse(ctx context.Context, userID string, courseID string) (model.Course, error) {
	if userID == "" {
		return model.Course{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	course, err := u.courseRepo.FindByID(ctx, courseID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Course{}, NewHTTPError(http.StatusNotFound, "course not found")
	}
	if err != nil {
		return model.Course{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if course.CreatorID != userID {
		return model.Course{}, NewHTTPError(http.StatusForbidden, "not the course creator")
	}
	return course, nil
}
