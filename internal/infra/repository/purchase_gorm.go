package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lms/internal/domain/model"
	repo "lms/internal/repository"
)

type PurchaseGormRepository struct {
	db *gorm.DB
}

func NewPurchaseGormRepository(db *gorm.DB) *PurchaseGormRepository {
	return &PurchaseGormRepository{db: db}
}

func (r *PurchaseGormRepository) FindByID(ctx context.Context, purchaseID string) (model.Purchase, error) {
	var p model.Purchase
	err := r.db.WithContext(ctx).Where("id = ?", purchaseID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Purchase{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Purchase{}, err
	}
	return p, nil
}

func (r *PurchaseGormRepository) Create(ctx context.Context, p model.Purchase) error {
	return r.db.WithContext(ctx).Create(&p).Error
}

func (r *PurchaseGormRepository) Delete(ctx context.Context, purchaseID string) error {
	return r.db.WithContext(ctx).Where("id = ?", purchaseID).Delete(&model.Purchase{}).Error
}

func (r *PurchaseGormRepository) ExistsActive(ctx context.Context, userID string, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, model.PurchaseStatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// セッションIDは空の行にしか付けられない
func (r *PurchaseGormRepository) AttachSession(ctx context.Context, purchaseID string, sessionID string) error {
	res := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("id = ? AND gateway_session_id = ''", purchaseID).
		Update("gateway_session_id", sessionID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Purchase{}).
			Where("id = ?", purchaseID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return repo.ErrNotFound
		}
		return repo.ErrAlreadyAttached
	}
	return nil
}

func (r *PurchaseGormRepository) ListBySession(ctx context.Context, sessionID string) ([]model.Purchase, error) {
	var items []model.Purchase
	err := r.db.WithContext(ctx).
		Where("gateway_session_id = ?", sessionID).
		Order("created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// pending のときだけ completed に倒す条件付きUPDATE。
// 読み→書きの2段にしない（同時配信のレースを閉じる）。
func (r *PurchaseGormRepository) MarkCompleted(ctx context.Context, purchaseID string, amount decimal.Decimal, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("id = ? AND status = ?", purchaseID, model.PurchaseStatusPending).
		Updates(map[string]interface{}{
			"status":       model.PurchaseStatusCompleted,
			"amount":       amount,
			"completed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PurchaseGormRepository) MarkFailed(ctx context.Context, purchaseID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("id = ? AND status = ?", purchaseID, model.PurchaseStatusPending).
		Updates(map[string]interface{}{
			"status":       model.PurchaseStatusFailed,
			"completed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PurchaseGormRepository) HasCompleted(ctx context.Context, userID string, courseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, model.PurchaseStatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PurchaseGormRepository) CountByStatus(ctx context.Context, status model.PurchaseStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PurchaseGormRepository) ListCompleted(ctx context.Context) ([]model.Purchase, error) {
	var items []model.Purchase
	err := r.db.WithContext(ctx).
		Where("status = ?", model.PurchaseStatusCompleted).
		Order("completed_at desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
