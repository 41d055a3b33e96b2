package models

import "gorm.io/gorm"

// Lesson belongs to a course. Order values are 1-based and contiguous per
// course; lesson creation enforces this so the sequential completion gate
// can trust count+1 arithmetic.
type Lesson struct {
	gorm.Model
	CourseID uint   `json:"course_id" gorm:"index;not null"`
	Title    string `json:"title" gorm:"not null"`
	Content  string `json:"content" gorm:"type:text"`
	Order    int    `json:"order" gorm:"column:lesson_order;not null"`
}
