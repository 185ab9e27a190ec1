package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lms/internal/domain/model"
)

type CartItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartItemGormRepository(db *gorm.DB) *CartItemGormRepository {
	return &CartItemGormRepository{db: db}
}

func (r *CartItemGormRepository) ListByCartID(ctx context.Context, cartID string) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("added_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CartItemGormRepository) CountByCartID(ctx context.Context, cartID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("cart_id = ?", cartID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// 既にあれば何もしないで false
func (r *CartItemGormRepository) AddIfAbsent(ctx context.Context, item model.CartItem) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(&item)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *CartItemGormRepository) DeleteByCartAndCourse(ctx context.Context, cartID string, courseID string) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND course_id = ?", cartID, courseID).
		Delete(&model.CartItem{}).Error
}

// 台帳起点のカート掃除用。購入完了したコースだけ消す。
func (r *CartItemGormRepository) DeleteByUserAndCourse(ctx context.Context, userID string, courseID string) error {
	return r.db.WithContext(ctx).
		Where("course_id = ? AND cart_id IN (?)",
			courseID,
			r.db.Model(&model.Cart{}).Select("id").Where("user_id = ?", userID),
		).
		Delete(&model.CartItem{}).Error
}

func (r *CartItemGormRepository) Clear(ctx context.Context, cartID string) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error
}
