package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"lms/internal/domain/model"
	repo "lms/internal/repository"
)

// 購入まわりの参照系（コース詳細＋購入済みフラグ、管理ダッシュボード用の集計）
type PurchaseQueryUsecase struct {
	purchases repo.PurchaseRepository
	courses   repo.CourseRepository
	lectures  repo.LectureRepository
	gateway   PaymentGateway
}

func NewPurchaseQueryUsecase(
	purchases repo.PurchaseRepository,
	courses repo.CourseRepository,
	lectures repo.LectureRepository,
	gateway PaymentGateway,
) *PurchaseQueryUsecase {
	return &PurchaseQueryUsecase{
		purchases: purchases,
		courses:   courses,
		lectures:  lectures,
		gateway:   gateway,
	}
}

type CourseDetailWithStatusOutput struct {
	Course    model.Course    `json:"course"`
	Lectures  []model.Lecture `json:"lectures"`
	Purchased bool            `json:"purchased"`
}

// コース詳細と「このユーザーが購入済みか」を一緒に返す
func (u *PurchaseQueryUsecase) GetCourseDetailWithStatus(ctx context.Context, userID string, courseID string) (CourseDetailWithStatusOutput, error) {
	if userID == "" {
		return CourseDetailWithStatusOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if courseID == "" {
		return CourseDetailWithStatusOutput{}, NewHTTPError(http.StatusBadRequest, "invalid course id")
	}

	course, err := u.courses.FindByID(ctx, courseID)
	if errors.Is(err, repo.ErrNotFound) {
		return CourseDetailWithStatusOutput{}, NewHTTPError(http.StatusNotFound, "course not found")
	}
	if err != nil {
		return CourseDetailWithStatusOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	lectures, err := u.lectures.ListByCourseID(ctx, courseID)
	if err != nil {
		return CourseDetailWithStatusOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	purchased, err := u.purchases.HasCompleted(ctx, userID, courseID)
	if err != nil {
		return CourseDetailWithStatusOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return CourseDetailWithStatusOutput{
		Course:    course,
		Lectures:  lectures,
		Purchased: purchased,
	}, nil
}

type PurchasedCourseOutput struct {
	Purchase model.Purchase `json:"purchase"`
	Course   model.Course   `json:"course"`
}

// 完了した購入の一覧（管理画面用）
func (u *PurchaseQueryUsecase) ListPurchased(ctx context.Context) ([]PurchasedCourseOutput, error) {
	purchases, err := u.purchases.ListCompleted(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if len(purchases) == 0 {
		return []PurchasedCourseOutput{}, nil
	}

	ids := make([]string, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.CourseID)
	}
	courses, err := u.courses.FindByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	byID := make(map[string]model.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	out := make([]PurchasedCourseOutput, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, PurchasedCourseOutput{
			Purchase: p,
			Course:   byID[p.CourseID],
		})
	}
	return out, nil
}

func (u *PurchaseQueryUsecase) CountByStatus(ctx context.Context, status string) (int64, error) {
	s := model.PurchaseStatus(status)
	switch s {
	case model.PurchaseStatusPending, model.PurchaseStatusCompleted, model.PurchaseStatusFailed:
	default:
		return 0, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	count, err := u.purchases.CountByStatus(ctx, s)
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return count, nil
}

type BalanceOutput struct {
	Available float64 `json:"available"`
	Pending   float64 `json:"pending"`
	Currency  string  `json:"currency"`
}

func (u *PurchaseQueryUsecase) GetBalance(ctx context.Context) (BalanceOutput, error) {
	b, err := u.gateway.GetBalance(ctx)
	if err != nil {
		return BalanceOutput{}, NewHTTPError(http.StatusBadGateway, "payment gateway error")
	}
	return BalanceOutput{
		Available: float64(b.AvailableCents) / 100,
		Pending:   float64(b.PendingCents) / 100,
		Currency:  b.Currency,
	}, nil
}

type TransactionOutput struct {
	ID        string    `json:"id"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	UserEmail string    `json:"user_email"`
	Status    string    `json:"status"`
	Created   time.Time `json:"created"`
}

func (u *PurchaseQueryUsecase) ListTransactions(ctx context.Context, limit int64) ([]TransactionOutput, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	txns, err := u.gateway.ListTransactions(ctx, limit)
	if err != nil {
		return nil, NewHTTPError(http.StatusBadGateway, "payment gateway error")
	}

	out := make([]TransactionOutput, 0, len(txns))
	for _, t := range txns {
		out = append(out, TransactionOutput{
			ID:        t.SessionID,
			Amount:    float64(t.AmountCents) / 100,
			Currency:  t.Currency,
			UserEmail: t.CustomerEmail,
			Status:    t.PaymentStatus,
			Created:   t.CreatedAt,
		})
	}
	return out, nil
}
