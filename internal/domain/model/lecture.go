package model

import "time"

// IsPreviewFree は作成時に決める無料プレビュー用フラグ。
// 購入完了で書き換えない（閲覧権は enrollments で判定する）。
type Lecture struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID      string    `gorm:"type:uuid;not null;index" json:"course_id"`
	Title         string    `gorm:"type:varchar(255);not null" json:"title"`
	VideoURL      string    `gorm:"type:text" json:"video_url"`
	PublicID      string    `gorm:"type:varchar(255)" json:"public_id"`
	IsPreviewFree bool      `gorm:"not null;default:false" json:"is_preview_free"`
	Position      int       `gorm:"not null;default:0" json:"position"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
