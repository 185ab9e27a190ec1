package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"lms/internal/domain/model"
	repo "lms/internal/repository"
	"lms/internal/usecase"
)

// =====================
// Mocks（衝突回避の命名）
// =====================

type CartCartRepoMock struct{ mock.Mock }

func (m *CartCartRepoMock) GetOrCreateByUserID(ctx context.Context, userID string, newID string) (model.Cart, error) {
	args := m.Called(ctx, userID, newID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartCartRepoMock) FindByUserID(ctx context.Context, userID string) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID string) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) CountByCartID(ctx context.Context, cartID string) (int64, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CartItemRepoMock) AddIfAbsent(ctx context.Context, item model.CartItem) (bool, error) {
	args := m.Called(ctx, item)
	return args.Bool(0), args.Error(1)
}

func (m *CartItemRepoMock) DeleteByCartAndCourse(ctx context.Context, cartID string, courseID string) error {
	args := m.Called(ctx, cartID, courseID)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByUserAndCourse(ctx context.Context, userID string, courseID string) error {
	panic("not used in CartUsecase tests")
}

func (m *CartItemRepoMock) Clear(ctx context.Context, cartID string) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartCourseRepoMock struct{ mock.Mock }

func (m *CartCourseRepoMock) FindByID(ctx context.Context, id string) (model.Course, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Course)
	return c, args.Error(1)
}

func (m *CartCourseRepoMock) FindByIDs(ctx context.Context, ids []string) ([]model.Course, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartCourseRepoMock) ListPublished(ctx context.Context) ([]model.Course, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartCourseRepoMock) ListByCreator(ctx context.Context, creatorID string) ([]model.Course, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartCourseRepoMock) Search(ctx context.Context, f repo.CourseSearchFilter) ([]model.Course, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartCourseRepoMock) Create(ctx context.Context, course model.Course) error {
	panic("not used in CartUsecase tests")
}

func (m *CartCourseRepoMock) Update(ctx context.Context, course model.Course) error {
	panic("not used in CartUsecase tests")
}

func (m *CartCourseRepoMock) SetPublished(ctx context.Context, courseID string, published bool) error {
	panic("not used in CartUsecase tests")
}

func (m *CartCourseRepoMock) Delete(ctx context.Context, courseID string) error {
	panic("not used in CartUsecase tests")
}

// =====================
// Fixture
// =====================

type cartFixture struct {
	carts   *CartCartRepoMock
	items   *CartItemRepoMock
	courses *CartCourseRepoMock
	uc      *usecase.CartUsecase
}

func newCartFixture() *cartFixture {
	f := &cartFixture{
		carts:   new(CartCartRepoMock),
		items:   new(CartItemRepoMock),
		courses: new(CartCourseRepoMock),
	}
	// CheckoutCartの委譲は空カート判定の後なので、ここではnilでよい
	f.uc = usecase.NewCartUsecase(
		f.carts, f.items, f.courses, nil,
		&seqIDGen{}, fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	)
	return f
}

func TestCartUsecase_GetCart_CreatesWhenMissing(t *testing.T) {
	f := newCartFixture()

	f.carts.On("GetOrCreateByUserID", mock.Anything, "user-1", mock.Anything).
		Return(model.Cart{ID: "cart-1", UserID: "user-1"}, nil)
	f.items.On("ListByCartID", mock.Anything, "cart-1").Return([]model.CartItem{}, nil)

	out, err := f.uc.GetCart(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Empty(t, out.Items)
	assert.True(t, out.Total.IsZero())
}

func TestCartUsecase_AddToCart_Duplicate(t *testing.T) {
	f := newCartFixture()

	f.courses.On("FindByID", mock.Anything, "course-1").
		Return(model.Course{ID: "course-1", IsPublished: true, Price: decimal.NewFromInt(10)}, nil)
	f.carts.On("GetOrCreateByUserID", mock.Anything, "user-1", mock.Anything).
		Return(model.Cart{ID: "cart-1"}, nil)
	f.items.On("AddIfAbsent", mock.Anything, mock.Anything).Return(false, nil)

	_, err := f.uc.AddToCart(context.Background(), "user-1", usecase.AddCartInput{CourseID: "course-1"})
	assertHTTPStatus(t, err, 409)
}

func TestCartUsecase_AddToCart_UnpublishedCourseHidden(t *testing.T) {
	f := newCartFixture()

	f.courses.On("FindByID", mock.Anything, "course-1").
		Return(model.Course{ID: "course-1", IsPublished: false}, nil)

	_, err := f.uc.AddToCart(context.Background(), "user-1", usecase.AddCartInput{CourseID: "course-1"})
	assertHTTPStatus(t, err, 404)
}

func TestCartUsecase_AddToCart_TotalsSum(t *testing.T) {
	f := newCartFixture()

	f.courses.On("FindByID", mock.Anything, "course-1").
		Return(model.Course{ID: "course-1", Title: "Go", IsPublished: true, Price: decimal.NewFromFloat(19.99)}, nil)
	f.courses.On("FindByID", mock.Anything, "course-2").
		Return(model.Course{ID: "course-2", Title: "SQL", IsPublished: true, Price: decimal.NewFromInt(30)}, nil)
	f.carts.On("GetOrCreateByUserID", mock.Anything, "user-1", mock.Anything).
		Return(model.Cart{ID: "cart-1"}, nil)
	f.items.On("AddIfAbsent", mock.Anything, mock.Anything).Return(true, nil)
	f.items.On("ListByCartID", mock.Anything, "cart-1").Return([]model.CartItem{
		{CartID: "cart-1", CourseID: "course-1"},
		{CartID: "cart-1", CourseID: "course-2"},
	}, nil)

	out, err := f.uc.AddToCart(context.Background(), "user-1", usecase.AddCartInput{CourseID: "course-2"})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.True(t, out.Total.Equal(decimal.NewFromFloat(49.99)))
}

func TestCartUsecase_CountItems_NoCartIsZero(t *testing.T) {
	f := newCartFixture()

	f.carts.On("FindByUserID", mock.Anything, "user-1").Return(model.Cart{}, repo.ErrNotFound)

	n, err := f.uc.CountItems(context.Background(), "user-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCartUsecase_CheckoutCart_EmptyCart(t *testing.T) {
	f := newCartFixture()

	f.carts.On("FindByUserID", mock.Anything, "user-1").Return(model.Cart{ID: "cart-1"}, nil)
	f.items.On("ListByCartID", mock.Anything, "cart-1").Return([]model.CartItem{}, nil)

	_, err := f.uc.CheckoutCart(context.Background(), "user-1", nil)
	assertHTTPStatus(t, err, 400)
}
