package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Course struct {
	ID           string          `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string          `gorm:"type:varchar(255);not null" json:"title"`
	Subtitle     string          `gorm:"type:varchar(255)" json:"subtitle"`
	Description  string          `gorm:"type:text" json:"description"`
	Category     string          `gorm:"type:varchar(64);not null;index" json:"category"`
	Level        string          `gorm:"type:varchar(32)" json:"level"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	ThumbnailURL string          `gorm:"type:text" json:"thumbnail_url"`
	IsPublished  bool            `gorm:"not null;default:false" json:"is_published"`
	CreatorID    string          `gorm:"type:uuid;not null;index" json:"creator_id"`
	CreatedAt    time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}
