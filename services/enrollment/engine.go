package enrollment

import (
	"errors"
	"fmt"
	"learnify/models"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Engine owns enrollment creation, sequential lesson completion and
// progress computation. It is stateless between calls; all state lives in
// the injected database handle.
type Engine struct {
	db       *gorm.DB
	notifier Notifier

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewEngine builds an engine on top of db. notifier may be nil, in which
// case course completions are only logged.
func NewEngine(db *gorm.DB, notifier Notifier) *Engine {
	return &Engine{
		db:       db,
		notifier: notifier,
		locks:    make(map[uint]*sync.Mutex),
	}
}

// isDuplicateKey reports whether err is a unique index violation. Covers
// both the translated gorm error and the raw postgres/sqlite messages,
// which both mention the violated unique constraint.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}

// lockFor returns the mutex serializing completion requests for one
// enrollment. Together with the transaction this is equivalent to holding a
// row lock on the enrollment for the duration of the operation.
func (e *Engine) lockFor(enrollmentID uint) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.locks[enrollmentID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[enrollmentID] = l
	}
	return l
}

// dropLock forgets the mutex for a completed enrollment so the map does not
// grow with every enrollment ever touched. Callers still queued on the old
// mutex serialize against the holder as usual; anyone arriving later gets a
// fresh mutex, which is fine because no completion can succeed on a
// completed enrollment and the unique index on (enrollment_id, lesson_id)
// guards the rows regardless.
func (e *Engine) dropLock(enrollmentID uint) {
	e.mu.Lock()
	delete(e.locks, enrollmentID)
	e.mu.Unlock()
}

// Progress is the on-demand progress snapshot for one enrollment.
type Progress struct {
	TotalLessons     int64   `json:"total_lessons"`
	CompletedLessons int64   `json:"completed_lessons"`
	Progress         float64 `json:"progress"`
}

// View is an enrollment record with its nested course summary and computed
// progress, as exposed to clients.
type View struct {
	ID          uint                 `json:"id"`
	Course      models.CourseSummary `json:"course"`
	EnrolledAt  time.Time            `json:"enrolled_at"`
	IsCompleted bool                 `json:"is_completed"`
	CompletedAt *time.Time           `json:"completed_at"`
	Progress    Progress             `json:"progress"`
}

// Enroll creates an enrollment for userID in courseID.
// Fails with NotFound if the course is absent or unpublished, Forbidden if
// the requester is the owning instructor, and Conflict if an enrollment for
// (user, course) already exists. Nothing is written on a failure path.
func (e *Engine) Enroll(userID uint, role models.Role, courseID uint) (*View, error) {
	var course models.Course
	if err := e.db.Where("id = ? AND is_published = ?", courseID, true).First(&course).Error; err != nil {
		return nil, notFound("Course does not exist.")
	}

	if role == models.RoleInstructor && course.UserID == userID {
		return nil, forbidden("Instructors cannot enroll in their own courses.")
	}

	enrollment := models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now(),
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Enrollment
		if err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error; err == nil {
			return conflict("User is already enrolled in this course.")
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			// The unique index on (user_id, course_id) catches inserts that
			// raced past the check above. Anything else is an infrastructure
			// failure and surfaces as-is.
			if isDuplicateKey(err) {
				return conflict("User is already enrolled in this course.")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := e.view(enrollment, course)
	return &view, nil
}

// CompleteLesson marks lessonID completed inside the enrollment, enforcing
// the sequential gate, and flips the enrollment to completed when the last
// lesson lands. The whole operation runs under the per-enrollment lock in a
// single transaction; the completion notification is dispatched only after
// a successful commit.
func (e *Engine) CompleteLesson(enrollmentID, userID, lessonID uint) (string, error) {
	lock := e.lockFor(enrollmentID)
	lock.Lock()
	defer lock.Unlock()

	var lessonTitle string
	var completed *models.Enrollment

	err := e.db.Transaction(func(tx *gorm.DB) error {
		var enr models.Enrollment
		if err := tx.Where("id = ? AND user_id = ?", enrollmentID, userID).First(&enr).Error; err != nil {
			// NotFound rather than Forbidden so enrollment ids of other
			// users are not confirmed to exist.
			return notFound("Enrollment not found.")
		}

		var lesson models.Lesson
		if err := tx.First(&lesson, lessonID).Error; err != nil {
			return notFound("Lesson does not exist.")
		}

		if lesson.CourseID != enr.CourseID {
			return invalid("Lesson does not belong to this course.")
		}

		var done int64
		tx.Model(&models.LessonProgress{}).
			Where("enrollment_id = ? AND lesson_id = ? AND completed_at IS NOT NULL", enr.ID, lesson.ID).
			Count(&done)
		if done > 0 {
			return conflict("This lesson has already been completed.")
		}

		// Sequential gate: the requested lesson must be the next one after
		// everything completed so far.
		var completedCount int64
		tx.Model(&models.LessonProgress{}).
			Where("enrollment_id = ? AND completed_at IS NOT NULL", enr.ID).
			Count(&completedCount)

		expectedOrder := int(completedCount) + 1
		if lesson.Order != expectedOrder {
			return invalid(fmt.Sprintf("You must complete lesson %d first.", expectedOrder))
		}

		now := time.Now()
		var progress models.LessonProgress
		if err := tx.Where("enrollment_id = ? AND lesson_id = ?", enr.ID, lesson.ID).First(&progress).Error; err == nil {
			if err := tx.Model(&progress).Update("completed_at", &now).Error; err != nil {
				return err
			}
		} else {
			progress = models.LessonProgress{
				EnrollmentID: enr.ID,
				LessonID:     lesson.ID,
				CompletedAt:  &now,
			}
			if err := tx.Create(&progress).Error; err != nil {
				return err
			}
		}

		var totalLessons int64
		tx.Model(&models.Lesson{}).Where("course_id = ?", enr.CourseID).Count(&totalLessons)

		var completedLessons int64
		tx.Model(&models.LessonProgress{}).
			Where("enrollment_id = ? AND completed_at IS NOT NULL", enr.ID).
			Count(&completedLessons)

		if totalLessons > 0 && totalLessons == completedLessons && !enr.IsCompleted {
			if err := tx.Model(&enr).Updates(map[string]interface{}{
				"is_completed": true,
				"completed_at": &now,
			}).Error; err != nil {
				return err
			}
			enr.IsCompleted = true
			enr.CompletedAt = &now
			completed = &enr
		}

		lessonTitle = lesson.Title
		return nil
	})
	if err != nil {
		return "", err
	}

	if completed != nil {
		e.dropLock(enrollmentID)
		go e.notifyCompleted(completed.EnrolledAt, *completed.CompletedAt)
	}

	return lessonTitle, nil
}

// notifyCompleted runs off the request path; failures are logged only.
func (e *Engine) notifyCompleted(enrolledAt, completedAt time.Time) {
	if e.notifier == nil {
		log.Printf("Course completed in %s (no notifier configured)", completedAt.Sub(enrolledAt))
		return
	}
	if err := e.notifier.NotifyCompleted(enrolledAt, completedAt); err != nil {
		log.Printf("Completion notification failed: %v", err)
	}
}

// GetProgress returns the progress snapshot for the caller's enrollment.
func (e *Engine) GetProgress(enrollmentID, userID uint) (*Progress, error) {
	var enr models.Enrollment
	if err := e.db.Where("id = ? AND user_id = ?", enrollmentID, userID).First(&enr).Error; err != nil {
		return nil, notFound("Enrollment not found.")
	}

	p := e.computeProgress(enr)
	return &p, nil
}

// ListEnrollments returns all of the user's enrollments with nested course
// summaries and computed progress.
func (e *Engine) ListEnrollments(userID uint) ([]View, error) {
	var enrollments []models.Enrollment
	if err := e.db.Where("user_id = ?", userID).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return nil, err
	}

	views := make([]View, 0, len(enrollments))
	for _, enr := range enrollments {
		var course models.Course
		if err := e.db.First(&course, enr.CourseID).Error; err != nil {
			continue
		}
		views = append(views, e.view(enr, course))
	}
	return views, nil
}

// computeProgress recomputes progress from current store state; nothing is
// cached.
func (e *Engine) computeProgress(enr models.Enrollment) Progress {
	var totalLessons int64
	e.db.Model(&models.Lesson{}).Where("course_id = ?", enr.CourseID).Count(&totalLessons)

	var completedLessons int64
	e.db.Model(&models.LessonProgress{}).
		Where("enrollment_id = ? AND completed_at IS NOT NULL", enr.ID).
		Count(&completedLessons)

	progress := 0.0
	if totalLessons > 0 {
		progress = math.Round(float64(completedLessons)/float64(totalLessons)*100*100) / 100
	}

	return Progress{
		TotalLessons:     totalLessons,
		CompletedLessons: completedLessons,
		Progress:         progress,
	}
}

func (e *Engine) view(enr models.Enrollment, course models.Course) View {
	return View{
		ID:          enr.ID,
		Course:      course.Summary(),
		EnrolledAt:  enr.EnrolledAt,
		IsCompleted: enr.IsCompleted,
		CompletedAt: enr.CompletedAt,
		Progress:    e.computeProgress(enr),
	}
}
