package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"lms/internal/domain/model"
	repo "lms/internal/repository"
	"lms/internal/usecase"
)

// ボディのキー解釈の確認。コースIDがusecaseまで渡ればユーザー解決の404で
// 止まり、束縛に失敗して空のままだと400で止まる。

type stubUserRepo struct{}

func (stubUserRepo) FindByID(ctx context.Context, userID string) (model.User, error) {
	return model.User{}, repo.ErrNotFound
}

func (stubUserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return model.User{}, repo.ErrNotFound
}

func (stubUserRepo) Create(ctx context.Context, user model.User) error { return nil }

func (stubUserRepo) Update(ctx context.Context, user model.User) error { return nil }

func (stubUserRepo) UpdateLastLogin(ctx context.Context, userID string) error { return nil }

func (stubUserRepo) UpdatePassword(ctx context.Context, userID string, hash string) error { return nil }

func (stubUserRepo) Delete(ctx context.Context, userID string) error { return nil }

func (stubUserRepo) List(ctx context.Context) ([]model.User, error) { return nil, nil }

type stubCartRepo struct{}

func (stubCartRepo) GetOrCreateByUserID(ctx context.Context, userID string, newID string) (model.Cart, error) {
	return model.Cart{}, repo.ErrNotFound
}

func (stubCartRepo) FindByUserID(ctx context.Context, userID string) (model.Cart, error) {
	return model.Cart{}, repo.ErrNotFound
}

type stubIDGen struct{}

func (stubIDGen) NewID() string { return "id-1" }

type stubClock struct{}

func (stubClock) Now() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

func newBindCheckoutUsecase() *usecase.CheckoutUsecase {
	return usecase.NewCheckoutUsecase(
		nil, nil, nil, nil, stubUserRepo{}, nil,
		stubIDGen{}, stubClock{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		usecase.CheckoutURLs{}, "usd",
	)
}

func newJSONContext(method string, target string, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "user-1")
	return c, rec
}

func TestPurchaseHandler_CreateCheckoutSession_BindsCourseIdKey(t *testing.T) {
	h := NewPurchaseHandler(newBindCheckoutUsecase(), nil)

	c, rec := newJSONContext(http.MethodPost, "/purchase/checkout/create-checkout-session", `{"courseId":"course-1"}`)
	assert.NoError(t, h.createCheckoutSession(c))
	// IDが渡ればユーザー解決まで進む
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPurchaseHandler_CreateCheckoutSession_BindsCourseIdsKey(t *testing.T) {
	h := NewPurchaseHandler(newBindCheckoutUsecase(), nil)

	c, rec := newJSONContext(http.MethodPost, "/purchase/checkout/create-checkout-session", `{"courseIds":["course-1","course-2"]}`)
	assert.NoError(t, h.createCheckoutSession(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPurchaseHandler_CreateCheckoutSession_EmptyBody(t *testing.T) {
	h := NewPurchaseHandler(newBindCheckoutUsecase(), nil)

	c, rec := newJSONContext(http.MethodPost, "/purchase/checkout/create-checkout-session", `{}`)
	assert.NoError(t, h.createCheckoutSession(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandler_Checkout_BindsCourseIdsKey(t *testing.T) {
	uc := usecase.NewCartUsecase(stubCartRepo{}, nil, nil, newBindCheckoutUsecase(), stubIDGen{}, stubClock{})
	h := NewCartHandler(uc)

	c, rec := newJSONContext(http.MethodPost, "/cart/checkout", `{"courseIds":["course-1"]}`)
	assert.NoError(t, h.checkout(c))
	// 明示指定が束縛されればカートを見ずにユーザー解決の404まで進む
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartHandler_Checkout_EmptyBodyFallsBackToCart(t *testing.T) {
	uc := usecase.NewCartUsecase(stubCartRepo{}, nil, nil, newBindCheckoutUsecase(), stubIDGen{}, stubClock{})
	h := NewCartHandler(uc)

	c, rec := newJSONContext(http.MethodPost, "/cart/checkout", `{}`)
	assert.NoError(t, h.checkout(c))
	// カートが無ければ「cart is empty」の400
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
