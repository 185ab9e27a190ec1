package model

import "time"

type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
)

// 受講パス（登録時に選択）
const (
	PathWebDev        = "Web Developing"
	PathSoftwareEng   = "Software Engineering"
	PathGraphicDesign = "Graphic Designing"
	PathDataScience   = "Data Science"
	PathNetworkEng    = "Network Engineering"
	PathCybersecurity = "Cybersecurity"
	PathBusiness      = "Business Analyst"
	PathMobileDev     = "Mobile Application Developing"
)

type User struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	DOB          time.Time  `gorm:"not null" json:"dob"`
	Path         string     `gorm:"type:varchar(64);not null" json:"path"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'STUDENT'" json:"role"`
	PhotoURL     string     `gorm:"type:text" json:"photo_url"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
