package repository

import (
	"context"

	"gorm.io/gorm"

	repo "lms/internal/repository"
)

type txReposGorm struct {
	purchases   repo.PurchaseRepository
	enrollments repo.EnrollmentRepository
	carts       repo.CartRepository
	cartItems   repo.CartItemRepository
}

func (r *txReposGorm) Purchases() repo.PurchaseRepository     { return r.purchases }
func (r *txReposGorm) Enrollments() repo.EnrollmentRepository { return r.enrollments }
func (r *txReposGorm) Carts() repo.CartRepository             { return r.carts }
func (r *txReposGorm) CartItems() repo.CartItemRepository     { return r.cartItems }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			purchases:   NewPurchaseGormRepository(tx),
			enrollments: NewEnrollmentGormRepository(tx),
			carts:       NewCartGormRepository(tx),
			cartItems:   NewCartItemGormRepository(tx),
		}
		return fn(r)
	})
}
