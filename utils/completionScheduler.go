package utils

import (
	"learnify/database"
	"learnify/models"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// InitializeCompletionScheduler sets up the daily completion reconciliation job
func InitializeCompletionScheduler() *cron.Cron {
	log.Println("[COMPLETION-SCHEDULER] Initializing completion scheduler...")

	c := cron.New()

	// Run daily at 3 AM to repair completion flags
	c.AddFunc("0 3 * * *", func() {
		log.Println("[COMPLETION-SCHEDULER] Running daily completion reconciliation...")
		ReconcileCompletions()
	})

	c.Start()
	log.Println("[COMPLETION-SCHEDULER] Completion scheduler started - runs daily at 3 AM")
	return c
}

// ReconcileCompletions flips forward enrollments whose completed-lesson
// count already equals the course's lesson count but whose flag was never
// set (e.g. a crash between progress write and flag update on an older
// deployment). Completion is monotonic: flags are never cleared here.
func ReconcileCompletions() {
	db := database.Database.Db

	var enrollments []models.Enrollment
	if err := db.Where("is_completed = ?", false).Find(&enrollments).Error; err != nil {
		log.Printf("[COMPLETION-SCHEDULER] Error fetching enrollments: %v", err)
		return
	}

	repaired := 0
	for _, enr := range enrollments {
		var totalLessons int64
		db.Model(&models.Lesson{}).Where("course_id = ?", enr.CourseID).Count(&totalLessons)
		if totalLessons == 0 {
			continue
		}

		var completedLessons int64
		db.Model(&models.LessonProgress{}).
			Where("enrollment_id = ? AND completed_at IS NOT NULL", enr.ID).
			Count(&completedLessons)

		if completedLessons != totalLessons {
			continue
		}

		now := time.Now()
		if err := db.Model(&enr).Updates(map[string]interface{}{
			"is_completed": true,
			"completed_at": &now,
		}).Error; err != nil {
			log.Printf("[COMPLETION-SCHEDULER] Error repairing enrollment %d: %v", enr.ID, err)
			continue
		}

		log.Printf("[COMPLETION-SCHEDULER] Repaired completion flag for enrollment %d (user %d, course %d)", enr.ID, enr.UserID, enr.CourseID)
		repaired++
	}

	if repaired > 0 {
		log.Printf("[COMPLETION-SCHEDULER] Reconciliation done, %d enrollment(s) repaired", repaired)
	}
}
