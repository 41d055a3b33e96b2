package main

import (
	"learnify/config"
	"learnify/database"
	"learnify/models"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeds demo accounts, a published course with ordered lessons and a draft
// course. Safe to run repeatedly; existing rows are left alone.
func main() {
	// Load config and connect to database
	config.LoadConfig()
	database.ConnectDb()

	db := database.Database.Db

	seedUser(db, "admin@learnify.local", "Site Admin", models.RoleAdmin)
	instructor := seedUser(db, "instructor@learnify.local", "Ada Instructor", models.RoleInstructor)
	seedUser(db, "student1@learnify.local", "Sam Student", models.RoleStudent)
	seedUser(db, "student2@learnify.local", "Riley Student", models.RoleStudent)

	published := seedCourse(db, instructor.ID, "Go for Beginners", "An introduction to the Go programming language.", true)
	seedLessons(db, published.ID, []string{
		"Getting started",
		"Types and control flow",
		"Functions and methods",
		"Goroutines and channels",
	})

	seedCourse(db, instructor.ID, "Advanced Go Patterns", "Work in progress, not yet published.", false)

	log.Println("Seed data complete.")
}

func seedUser(db *gorm.DB, email, name string, role models.Role) models.User {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err == nil {
		return user
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("changeme123"), config.AppConfig.SaltRound)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	user = models.User{
		Email:    email,
		FullName: name,
		Role:     role,
		Password: string(hashed),
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("Failed to seed user %s: %v", email, err)
	}

	log.Printf("Seeded user %s (%s)", email, role)
	return user
}

func seedCourse(db *gorm.DB, instructorID uint, title, description string, published bool) models.Course {
	var course models.Course
	if err := db.Where("title = ? AND user_id = ?", title, instructorID).First(&course).Error; err == nil {
		return course
	}

	course = models.Course{
		Title:       title,
		Description: description,
		IsPublished: published,
		UserID:      instructorID,
	}
	if err := db.Create(&course).Error; err != nil {
		log.Fatalf("Failed to seed course %q: %v", title, err)
	}

	log.Printf("Seeded course %q (published=%v)", title, published)
	return course
}

func seedLessons(db *gorm.DB, courseID uint, titles []string) {
	var count int64
	db.Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&count)
	if count > 0 {
		return
	}

	for i, title := range titles {
		lesson := models.Lesson{
			CourseID: courseID,
			Title:    title,
			Content:  "Lesson content for: " + title,
			Order:    i + 1,
		}
		if err := db.Create(&lesson).Error; err != nil {
			log.Fatalf("Failed to seed lesson %q: %v", title, err)
		}
	}

	log.Printf("Seeded %d lessons for course %d", len(titles), courseID)
}
