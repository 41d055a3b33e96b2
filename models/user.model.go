package models

import (
	"gorm.io/gorm"
)

// Role is a closed set of account roles. Authorization checkpoints switch
// on this type instead of comparing raw strings.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	Email    string `json:"email" gorm:"unique;not null"`
	FullName string `json:"full_name" gorm:"default:''"`
	Role     Role   `json:"role" gorm:"type:varchar(20);default:'student'"`
	Password string `json:"-" gorm:"not null"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}
