package model

import "time"

// カート明細。同じコースは1カートに1回まで。
type CartItem struct {
	ID       string    `gorm:"type:uuid;primaryKey" json:"id"`
	CartID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_cart_course;index" json:"cart_id"`
	CourseID string    `gorm:"type:uuid;not null;uniqueIndex:idx_cart_course" json:"course_id"`
	AddedAt  time.Time `gorm:"not null;autoCreateTime" json:"added_at"`
}
