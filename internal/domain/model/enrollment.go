package model

import "time"

// Enrollment はユーザーとコースの受講関係。
// (user_id, course_id) でユニークにして、再実行しても二重登録にならない。
// ユーザー側の enrolledCourses とコース側の enrolledStudents はこの1テーブルの両面。
type Enrollment struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course;index" json:"user_id"`
	CourseID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course;index" json:"course_id"`
	PurchaseID string    `gorm:"type:uuid;not null" json:"purchase_id"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
