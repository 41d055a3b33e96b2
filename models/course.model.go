package models

import "gorm.io/gorm"

// Course is an instructor-authored course made of ordered lessons.
type Course struct {
	gorm.Model
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	IsPublished bool   `json:"is_published" gorm:"default:false"`
	UserID      uint   `json:"user_id" gorm:"index;not null"` // owning instructor
}

// CourseSummary is the nested course shape embedded in enrollment responses.
type CourseSummary struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPublished bool   `json:"is_published"`
}

// Summary returns the reduced view of the course.
func (c *Course) Summary() CourseSummary {
	return CourseSummary{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		IsPublished: c.IsPublished,
	}
}
