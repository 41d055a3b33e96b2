package enrollment

import (
	"fmt"
	"learnify/models"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Lesson{},
		&models.Enrollment{},
		&models.LessonProgress{},
	))
	return db
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls [][2]time.Time
	err   error
	done  chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{done: make(chan struct{}, 8)}
}

func (f *fakeNotifier) NotifyCompleted(enrolledAt, completedAt time.Time) error {
	f.mu.Lock()
	f.calls = append(f.calls, [2]time.Time{enrolledAt, completedAt})
	f.mu.Unlock()
	f.done <- struct{}{}
	return f.err
}

func (f *fakeNotifier) waitForCall(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a completion notification")
	}
}

func (f *fakeNotifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func seedUser(t *testing.T, db *gorm.DB, email string, role models.Role) models.User {
	t.Helper()
	user := models.User{Email: email, FullName: email, Role: role, Password: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCourse(t *testing.T, db *gorm.DB, owner uint, published bool, lessonCount int) (models.Course, []models.Lesson) {
	t.Helper()
	course := models.Course{Title: "Go Basics", Description: "desc", IsPublished: published, UserID: owner}
	require.NoError(t, db.Create(&course).Error)

	lessons := make([]models.Lesson, 0, lessonCount)
	for i := 1; i <= lessonCount; i++ {
		lesson := models.Lesson{CourseID: course.ID, Title: fmt.Sprintf("Lesson %d", i), Content: "c", Order: i}
		require.NoError(t, db.Create(&lesson).Error)
		lessons = append(lessons, lesson)
	}
	return course, lessons
}

func TestEnroll(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, nil)

	instructor := seedUser(t, db, "teach@example.com", models.RoleInstructor)
	student := seedUser(t, db, "student@example.com", models.RoleStudent)
	course, _ := seedCourse(t, db, instructor.ID, true, 3)

	view, err := engine.Enroll(student.ID, models.RoleStudent, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, view.Course.ID)
	assert.Equal(t, course.Title, view.Course.Title)
	assert.False(t, view.IsCompleted)
	assert.Nil(t, view.CompletedAt)
	assert.False(t, view.EnrolledAt.IsZero())

	// Second attempt conflicts and must not add a row
	_, err = engine.Enroll(student.ID, models.RoleStudent, course.ID)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.EqualError(t, err, "User is already enrolled in this course.")

	var count int64
	db.Model(&models.Enrollment{}).Where("user_id = ? AND course_id = ?", student.ID, course.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEnrollOwnCourseForbidden(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, nil)

	instructor := seedUser(t, db, "teach@example.com", models.RoleInstructor)
	course, _ := seedCourse(t, db, instructor.ID, true, 2)

	_, err := engine.Enroll(instructor.ID, models.RoleInstructor, course.ID)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.EqualError(t, err, "Instructors cannot enroll in their own courses.")

	var count int64
	db.Model(&models.Enrollment{}).Count(&count)
	assert.Zero(t, count)
}

func TestEnrollMissingOrUnpublishedCourse(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, nil)

	instructor := seedUser(t, db, "teach@example.com", models.RoleInstructor)
	student := seedUser(t, db, "student@example.com", models.RoleStudent)
	draft, _ := seedCourse(t, db, instructor.ID, false, 2)

	_, err := engine.Enroll(student.ID, models.RoleStudent, draft.ID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = engine.Enroll(student.ID, models.RoleStudent, 9999)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func enrollStudent(t *testing.T, engine *Engine, db *gorm.DB, student models.User, course models.Course) models.Enrollment {
	t.Helper()
	_, err := engine.Enroll(student.ID, models.RoleStudent, course.ID)
	require.NoError(t, err)

	var enr models.Enrollment
	require.NoError(t, db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&enr).Error)
	return enr
}

func TestCompleteLessonSequentialGate(t *testing.T) {
	db := newTestDB(t)
	notifier := newFakeNotifier()
	engine := NewEngine(db, notifier)

	instructor := seedUser(t, db, "teach@example.com", models.RoleInstructor)
	student := seedUser(t, db, "student@example.com", models.RoleStudent)
	course, lessons := seedCourse(t, db, instructor.ID, true, 3)
	enr := enrollStudent(t, engine, db, student, course)

	// Lesson 2 before lesson 1
	_, err := engine.CompleteLesson(enr.ID, student.ID, lessons[1].ID)
	require.Error(t, err)
	assert.Equal(t, KindInvalid, KindOf(err))
	assert.EqualError(t, err, "You must complete lesson 1 first.")

	// Lesson 1 passes
	title, err := engine.CompleteLesson(enr.ID, student.ID, lessons[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Lesson 1", title)

	// Lesson 3 before lesson 2
	_, err = engine.CompleteLesson(enr.ID, student.ID, lessons[2].ID)
	require.Error(t, err)
	assert.Equal(t, KindInvalid, KindOf(err))
	assert.EqualError(t, err, "You must complete lesson 2 first.")

	// 2 then 3 in order
	_, err = engine.CompleteLesson(enr.ID, student.ID, lessons[1].ID)
	require.NoError(t, err)
	_, err = engine.CompleteLesson(enr.ID, student.ID, lessons[2].ID)
	require.NoError(t, err)

	var updated models.Enrollment
	require.NoError(t, db.First(&updated, enr.ID).Error)
	assert.True(t, updated.IsCompleted)
	require.NotNil(t, updated.CompletedAt)

	notifier.waitForCall(t)
	assert.Equal(t, 1, notifier.callCount())

	// Notification carries the stored timestamps
	notifier.mu.Lock()
	call := notifier.calls[0]
	notifier.mu.Unlock()
	assert.WithinDuration(t, updated.EnrolledAt, call[0], time.Second)
	assert.WithinDuration(t, *updated.CompletedAt, call[1], time.Second)
}

func TestCompleteLessonTwiceConflicts(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, nil)

	instructor := seedUser(t, db, "teach@example.com", models.RoleInstructor)
	student := seedUser(t, db, "student@example.com", models.RoleStudent)
	course, lessons := seedCourse(t, db, instructor.ID, true, 3)
	enr := enrollStudent(t, engine, db, student, course)

	_, err := engine.CompleteLesson(enr.ID, student.ID, lessons[0].ID)
	require.NoError(t, err)

	_, err = engine.CompleteLesson(enr.ID, student.ID, lessons[0].ID)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.EqualError(t, err, "This lesson has already been completed.")

	var count int64
	db.Model(&models.LessonProgress{}).Where("enrollment_id = ? AND lesson_id = ?", enr.ID, lessons[0].ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCompleteLessonValidationOrder(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, nil)

	instructor := seedUser(t, db, "teach@example.com", models.RoleInstructor)
	student := seedUser(t, db, "student@example.com", models.RoleStudent)
	other := seedUser(t, db, "other@example.com", models.RoleStudent)
	course, lessons := seedCourse(t, db, instructor.ID, true, 2)
	enr := enrollStudent(t, engine, db, student, course)

	// Another course's lesson
	otherCourse := models.Course{Title: "Other", Description: "d", IsPublished: true, UserID: instructor.ID}
	require.NoError(t, db.Create(&otherCourse).Error)
	foreign := models.Lesson{CourseID: otherCourse.ID, Title: "Foreign", Content: "c", Order: 1}
	require.NoError(t, db.Create(&foreign).Error)

	// Enrollment of another user looks like it does not exist
	_, err := engine.CompleteLesson(enr.ID, other.ID, lessons[0].ID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.EqualError(t, err, "Enrollment not found.")

	// Unknown lesson
	_, err = engine.CompleteLesson(enr.ID, student.ID, 9999)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.EqualError(t, err, "Lesson does not exist.")

	// Lesson from another course
	_, err = engine.CompleteLesson(enr.ID, student.ID, foreign.ID)
	require.Error(t, err)
	assert.Equal(t, KindInvalid, KindOf(err))
	assert.EqualError(t, err, "Lesson does not belong to this course.")

	// No progress rows were written by any failure path
	var count int64
	db.Model(&models.LessonProgress{}).Count(&count)
	assert.Zero(t, count)
}

func TestGetProgress(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, nil)

	instructor := seedUser(t, db, "teach@example.com", models.RoleInstructor)
	student := seedUser(t, db, "student@example.com", models.RoleStudent)
	course, lessons := seedCourse(t, db, instructor.ID, true, 4)
	enr := enrollStudent(t, engine, db, student, course)

	p, err := engine.GetProgress(enr.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.TotalLessons)
	assert.Equal(t, int64(0), p.CompletedLessons)
	assert.Equal(t, 0.0, p.Progress)

	_, err = engine.CompleteLesson(enr.ID, student.ID, lessons[0].ID)
	require.NoError(t, err)

	p, err = engine.GetProgress(enr.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.TotalLessons)
	assert.Equal(t, int64(1), p.CompletedLessons)
	assert.Equal(t, 25.0, p.Progress)

	// Ownership is checked before anything is computed
	_, err = engine.GetProgress(enr.ID, instructor.ID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestProgressEmptyCourse(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, nil)

	instructor := seedUser(t, db, "teach@example.com", models.RoleInstructor)
	student := seedUser(t, db, "student@example.com", models.RoleStudent)
	course, _ := seedCourse(t, db, instructor.ID, true, 0)
	enr := enrollStudent(t, engine, db, student, course)

	p, err := engine.GetProgress(enr.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.TotalLessons)
	assert.Equal(t, int64(0), p.CompletedLessons)
	assert.Equal(t, 0.0, p.Progress)
}

func TestListEnrollments(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, nil)

	instructor := seedUser(t, db, "teach@example.com", models.RoleInstructor)
	student := seedUser(t, db, "student@example.com", models.RoleStudent)
	course, lessons := seedCourse(t, db, instructor.ID, true, 2)
	enr := enrollStudent(t, engine, db, student, course)

	_, err := engine.CompleteLesson(enr.ID, student.ID, lessons[0].ID)
	require.NoError(t, err)

	views, err := engine.ListEnrollments(student.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, enr.ID, views[0].ID)
	assert.Equal(t, course.Title, views[0].Course.Title)
	assert.Equal(t, int64(2), views[0].Progress.TotalLessons)
	assert.Equal(t, int64(1), views[0].Progress.CompletedLessons)
	assert.Equal(t, 50.0, views[0].Progress.Progress)

	// Other users see nothing
	views, err = engine.ListEnrollments(instructor.ID)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestConcurrentCompletionsRespectGate(t *testing.T) {
	db := newTestDB(t)
	notifier := newFakeNotifier()
	engine := NewEngine(db, notifier)

	instructor := seedUser(t, db, "teach@example.com", models.RoleInstructor)
	student := seedUser(t, db, "student@example.com", models.RoleStudent)
	course, lessons := seedCourse(t, db, instructor.ID, true, 3)
	enr := enrollStudent(t, engine, db, student, course)

	// One goroutine per lesson, fired simultaneously. A request rejected by
	// the gate retries until its turn comes; anything else would be a bug.
	var wg sync.WaitGroup
	for _, lesson := range lessons {
		wg.Add(1)
		go func(lessonID uint) {
			defer wg.Done()
			for {
				_, err := engine.CompleteLesson(enr.ID, student.ID, lessonID)
				if err == nil {
					return
				}
				if KindOf(err) == KindInvalid {
					time.Sleep(time.Millisecond)
					continue
				}
				t.Errorf("unexpected completion error: %v", err)
				return
			}
		}(lesson.ID)
	}
	wg.Wait()

	// Exactly one completed row per lesson, no double counting
	var count int64
	db.Model(&models.LessonProgress{}).Where("enrollment_id = ? AND completed_at IS NOT NULL", enr.ID).Count(&count)
	assert.Equal(t, int64(3), count)

	var rows int64
	db.Model(&models.LessonProgress{}).Where("enrollment_id = ?", enr.ID).Count(&rows)
	assert.Equal(t, int64(3), rows)

	var updated models.Enrollment
	require.NoError(t, db.First(&updated, enr.ID).Error)
	assert.True(t, updated.IsCompleted)

	notifier.waitForCall(t)
	assert.Equal(t, 1, notifier.callCount())
}

func TestNotifierFailureDoesNotAffectCompletion(t *testing.T) {
	db := newTestDB(t)
	notifier := newFakeNotifier()
	notifier.err = fmt.Errorf("smtp down")
	engine := NewEngine(db, notifier)

	instructor := seedUser(t, db, "teach@example.com", models.RoleInstructor)
	student := seedUser(t, db, "student@example.com", models.RoleStudent)
	course, lessons := seedCourse(t, db, instructor.ID, true, 1)
	enr := enrollStudent(t, engine, db, student, course)

	_, err := engine.CompleteLesson(enr.ID, student.ID, lessons[0].ID)
	require.NoError(t, err)

	notifier.waitForCall(t)

	var updated models.Enrollment
	require.NoError(t, db.First(&updated, enr.ID).Error)
	assert.True(t, updated.IsCompleted)
	assert.NotNil(t, updated.CompletedAt)
}

func TestEnrollInfrastructureFailureIsNotAConflict(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, nil)

	instructor := seedUser(t, db, "teach@example.com", models.RoleInstructor)
	student := seedUser(t, db, "student@example.com", models.RoleStudent)
	course, _ := seedCourse(t, db, instructor.ID, true, 1)

	// With the enrollments table gone the insert fails for a reason that has
	// nothing to do with duplicate enrollment, and must not read like one.
	require.NoError(t, db.Migrator().DropTable(&models.Enrollment{}))

	_, err := engine.Enroll(student.ID, student.Role, course.ID)
	require.Error(t, err)
	assert.Equal(t, KindUnknown, KindOf(err))
}

func TestCompletionLockEvictedAfterCourseCompletes(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db, nil)

	instructor := seedUser(t, db, "teach@example.com", models.RoleInstructor)
	student := seedUser(t, db, "student@example.com", models.RoleStudent)
	course, lessons := seedCourse(t, db, instructor.ID, true, 2)
	enr := enrollStudent(t, engine, db, student, course)

	_, err := engine.CompleteLesson(enr.ID, student.ID, lessons[0].ID)
	require.NoError(t, err)

	engine.mu.Lock()
	_, held := engine.locks[enr.ID]
	engine.mu.Unlock()
	assert.True(t, held)

	_, err = engine.CompleteLesson(enr.ID, student.ID, lessons[1].ID)
	require.NoError(t, err)

	engine.mu.Lock()
	_, held = engine.locks[enr.ID]
	engine.mu.Unlock()
	assert.False(t, held)

	// Retrying after completion still fails cleanly through a fresh mutex.
	_, err = engine.CompleteLesson(enr.ID, student.ID, lessons[1].ID)
	assert.Equal(t, KindConflict, KindOf(err))
}
