package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment is a student's relationship to one course. At most one row per
// (user, course). is_completed flips forward exactly once, when the last
// lesson is completed, and never reverts.
type Enrollment struct {
	gorm.Model
	UserID      uint       `json:"user_id" gorm:"uniqueIndex:idx_user_course;not null"`
	CourseID    uint       `json:"course_id" gorm:"uniqueIndex:idx_user_course;not null"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	IsCompleted bool       `json:"is_completed" gorm:"default:false"`
	CompletedAt *time.Time `json:"completed_at"`
}

// LessonProgress records one lesson's completion inside one enrollment.
// At most one row per (enrollment, lesson); a non-null completed_at is
// terminal and is never cleared.
type LessonProgress struct {
	gorm.Model
	EnrollmentID uint       `json:"enrollment_id" gorm:"uniqueIndex:idx_enrollment_lesson;not null"`
	LessonID     uint       `json:"lesson_id" gorm:"uniqueIndex:idx_enrollment_lesson;not null"`
	CompletedAt  *time.Time `json:"completed_at"`
}
