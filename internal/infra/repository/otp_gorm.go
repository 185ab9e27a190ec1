package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lms/internal/domain/model"
	repo "lms/internal/repository"
)

type OTPGormRepository struct {
	db *gorm.DB
}

func NewOTPGormRepository(db *gorm.DB) *OTPGormRepository {
	return &OTPGormRepository{db: db}
}

// 同じemailには常に最新の1件だけ
func (r *OTPGormRepository) Upsert(ctx context.Context, otp model.PasswordResetOTP) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"code_hash", "expires_at", "created_at"}),
		}).
		Create(&otp).Error
}

func (r *OTPGormRepository) FindByEmail(ctx context.Context, email string) (model.PasswordResetOTP, error) {
	var otp model.PasswordResetOTP
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&otp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.PasswordResetOTP{}, repo.ErrNotFound
	}
	if err != nil {
		return model.PasswordResetOTP{}, err
	}
	return otp, nil
}

func (r *OTPGormRepository) Delete(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Where("email = ?", email).Delete(&model.PasswordResetOTP{}).Error
}

func (r *OTPGormRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	return r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&model.PasswordResetOTP{}).Error
}
