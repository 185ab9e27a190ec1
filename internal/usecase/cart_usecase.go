package usecase

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"lms/internal/domain/model"
	repo "lms/internal/repository"
)

// CartUsecase は /cart の業務ロジック。
// カートの中身は checkout 完了時に台帳起点で消えるので、ここでは消さない。
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	courseRepo   repo.CourseRepository
	checkout     *CheckoutUsecase
	idGen        IDGenerator
	clock        Clock
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	courseRepo repo.CourseRepository,
	checkout *CheckoutUsecase,
	idGen IDGenerator,
	clock Clock,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		courseRepo:   courseRepo,
		checkout:     checkout,
		idGen:        idGen,
		clock:        clock,
	}
}

type CartItemResponse struct {
	CourseID     string          `json:"course_id"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	ThumbnailURL string          `json:"thumbnail_url"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

type AddCartInput struct {
	CourseID string
}

// GetCart はカート取得（無ければ作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, userID string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID, u.idGen.NewID())
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// AddToCart はカートに追加。同じコースの二重追加は 409。
func (u *CartUsecase) AddToCart(ctx context.Context, userID string, in AddCartInput) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.CourseID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid course_id")
	}

	// コースの存在チェック（公開のみ）
	course, err := u.courseRepo.FindByID(ctx, in.CourseID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "course not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !course.IsPublished {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "course not found")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, userID, u.idGen.NewID())
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	added, err := u.cartItemRepo.AddIfAbsent(ctx, model.CartItem{
		ID:       u.idGen.NewID(),
		CartID:   cart.ID,
		CourseID: in.CourseID,
		AddedAt:  u.clock.Now(),
	})
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !added {
		return CartResponse{}, NewHTTPError(http.StatusConflict, "course already in cart")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

func (u *CartUsecase) RemoveFromCart(ctx context.Context, userID string, courseID string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if courseID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid course_id")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartItemRepo.DeleteByCartAndCourse(ctx, cart.ID, courseID); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

func (u *CartUsecase) ClearCart(ctx context.Context, userID string) error {
	if userID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "cart not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartItemRepo.Clear(ctx, cart.ID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CartUsecase) CountItems(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.cartItemRepo.CountByCartID(ctx, cart.ID)
}

// CheckoutCart はカートをそのまま BeginCheckout に渡す橋渡し。
// courseIDs を明示されたらそちらを優先する（カート外からの直接購入と同じ扱い）。
func (u *CartUsecase) CheckoutCart(ctx context.Context, userID string, courseIDs []string) (BeginCheckoutOutput, error) {
	if userID == "" {
		return BeginCheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	ids := courseIDs
	if len(ids) == 0 {
		cart, err := u.cartRepo.FindByUserID(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return BeginCheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
		}
		if err != nil {
			return BeginCheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
		if err != nil {
			return BeginCheckoutOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(items) == 0 {
			return BeginCheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		for _, it := range items {
			ids = append(ids, it.CourseID)
		}
	}

	return u.checkout.BeginCheckout(ctx, userID, ids)
}

// cartIDの明細をまとめてCartResponseを作る。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID string) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	total := decimal.Zero

	for _, it := range items {
		c, err := u.courseRepo.FindByID(ctx, it.CourseID)
		if err != nil {
			// 消えたコースは表示しない
			continue
		}

		respItems = append(respItems, CartItemResponse{
			CourseID:     c.ID,
			Title:        c.Title,
			Price:        c.Price,
			ThumbnailURL: c.ThumbnailURL,
		})
		total = total.Add(c.Price)
	}

	return CartResponse{Items: respItems, Total: total}, nil
}
