package model

import "time"

// PasswordResetOTP はパスワード再設定用のワンタイムコード。
// プロセス内のmapではなくDBに置く（再起動・複数インスタンスでも成立させる）。
// code は bcrypt ハッシュで保存し、expires_at を過ぎた行は無効。
type PasswordResetOTP struct {
	Email     string    `gorm:"type:varchar(255);primaryKey" json:"email"`
	CodeHash  string    `gorm:"column:code_hash;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
