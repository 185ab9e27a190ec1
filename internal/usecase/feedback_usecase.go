package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"lms/internal/domain/model"
	repo "lms/internal/repository"
)

type FeedbackUsecase struct {
	feedbackRepo repo.FeedbackRepository
	idGen        IDGenerator
	clock        Clock
}

func NewFeedbackUsecase(feedbackRepo repo.FeedbackRepository, idGen IDGenerator, clock Clock) *FeedbackUsecase {
	return &FeedbackUsecase{feedbackRepo: feedbackRepo, idGen: idGen, clock: clock}
}

type FeedbackInput struct {
	Name    string
	Email   string
	Rating  int
	Comment string
}

func (u *FeedbackUsecase) Create(ctx context.Context, in FeedbackInput) (model.Feedback, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.Feedback{}, NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return model.Feedback{}, NewHTTPError(http.StatusBadRequest, "email is required")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return model.Feedback{}, NewHTTPError(http.StatusBadRequest, "rating must be 1 to 5")
	}

	f := model.Feedback{
		ID:        u.idGen.NewID(),
		Name:      in.Name,
		Email:     in.Email,
		Rating:    in.Rating,
		Comment:   in.Comment,
		CreatedAt: u.clock.Now(),
	}
	if err := u.feedbackRepo.Create(ctx, f); err != nil {
		return model.Feedback{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return f, nil
}

func (u *FeedbackUsecase) List(ctx context.Context) ([]model.Feedback, error) {
	list, err := u.feedbackRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

func (u *FeedbackUsecase) Get(ctx context.Context, id string) (model.Feedback, error) {
	f, err := u.feedbackRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Feedback{}, NewHTTPError(http.StatusNotFound, "feedback not found")
	}
	if err != nil {
		return model.Feedback{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return f, nil
}

func (u *FeedbackUsecase) Update(ctx context.Context, id string, in FeedbackInput) (model.Feedback, error) {
	f, err := u.feedbackRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Feedback{}, NewHTTPError(http.StatusNotFound, "feedback not found")
	}
	if err != nil {
		return model.Feedback{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if in.Rating < 1 || in.Rating > 5 {
		return model.Feedback{}, NewHTTPError(http.StatusBadRequest, "rating must be 1 to 5")
	}
	f.Rating = in.Rating
	f.Comment = in.Comment

	if err := u.feedbackRepo.Update(ctx, f); err != nil {
		return model.Feedback{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return f, nil
}

func (u *FeedbackUsecase) Delete(ctx context.Context, id string) error {
	err := u.feedbackRepo.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "feedback not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
