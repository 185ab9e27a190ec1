package model

import "time"

type ChatRole string

const (
	ChatRoleUser   ChatRole = "user"
	ChatRoleSystem ChatRole = "system"
)

// サポートチャットの発言1件。履歴は (user, course) 単位で引く。
type ChatMessage struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index:idx_chat_user_course" json:"user_id"`
	CourseID  string    `gorm:"type:uuid;not null;index:idx_chat_user_course" json:"course_id"`
	LectureID string    `gorm:"type:uuid" json:"lecture_id,omitempty"`
	Role      ChatRole  `gorm:"type:varchar(10);not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
