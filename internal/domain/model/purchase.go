package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusCompleted PurchaseStatus = "completed"
	// セッション失効（checkout.session.expired）で pending から遷移する
	PurchaseStatusFailed PurchaseStatus = "failed"
)

// Purchase は1コース分のチェックアウト試行の台帳。
// 複数コースの同時購入は1セッションに対してN行になる（session_id + course_id でユニーク）。
// Amount は主要単位の decimal で保持し、セント換算はゲートウェイ送信時だけ行う。
type Purchase struct {
	ID               string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CourseID         string          `gorm:"type:uuid;not null;index;uniqueIndex:idx_purchase_session_course" json:"course_id"`
	UserEmail        string          `gorm:"type:varchar(255)" json:"user_email"`
	Amount           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency         string          `gorm:"type:varchar(10);not null;default:'usd'" json:"currency"`
	GatewaySessionID string          `gorm:"type:varchar(255);index;uniqueIndex:idx_purchase_session_course,where:gateway_session_id <> ''" json:"gateway_session_id"`
	Status           PurchaseStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt        time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	CompletedAt      *time.Time      `json:"completed_at"`
}
