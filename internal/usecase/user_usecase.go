package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"lms/internal/domain/model"
	repo "lms/internal/repository"
)

type UserUsecase struct {
	userRepo       repo.UserRepository
	enrollmentRepo repo.EnrollmentRepository
	courseRepo     repo.CourseRepository
}

func NewUserUsecase(
	userRepo repo.UserRepository,
	enrollmentRepo repo.EnrollmentRepository,
	courseRepo repo.CourseRepository,
) *UserUsecase {
	return &UserUsecase{
		userRepo:       userRepo,
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
	}
}

type ProfileOutput struct {
	User            model.User     `json:"user"`
	EnrolledCourses []model.Course `json:"enrolled_courses"`
}

// GetProfile はユーザー情報と受講中のコースを返す。
func (u *UserUsecase) GetProfile(ctx context.Context, userID string) (ProfileOutput, error) {
	if userID == "" {
		return ProfileOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProfileOutput{}, NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return ProfileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	user.PasswordHash = ""

	enrollments, err := u.enrollmentRepo.ListByUserID(ctx, userID)
	if err != nil {
		return ProfileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	courses := []model.Course{}
	if len(enrollments) > 0 {
		ids := make([]string, 0, len(enrollments))
		for _, e := range enrollments {
			ids = append(ids, e.CourseID)
		}
		courses, err = u.courseRepo.FindByIDs(ctx, ids)
		if err != nil {
			return ProfileOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	return ProfileOutput{User: user, EnrolledCourses: courses}, nil
}

type UpdateProfileInput struct {
	Name     *string
	DOB      *time.Time
	Path     *string
	PhotoURL *string
}

func (u *UserUsecase) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (model.User, error) {
	if userID == "" {
		return model.User{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.User{}, NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return model.User{}, NewHTTPError(http.StatusBadRequest, "name is required")
		}
		user.Name = *in.Name
	}
	if in.DOB != nil {
		user.DOB = *in.DOB
	}
	if in.Path != nil {
		user.Path = *in.Path
	}
	if in.PhotoURL != nil {
		user.PhotoURL = *in.PhotoURL
	}

	if err := u.userRepo.Update(ctx, user); err != nil {
		return model.User{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	user.PasswordHash = ""
	return user, nil
}

// DeleteUser は本人または講師のみ。
func (u *UserUsecase) DeleteUser(ctx context.Context, actorID string, actorRole model.Role, targetID string) error {
	if actorID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if actorID != targetID && actorRole != model.RoleInstructor {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}

	err := u.userRepo.Delete(ctx, targetID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// ListUsers は管理画面用の一覧（講師のみ、呼び出し側でガード）。
func (u *UserUsecase) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := u.userRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}
