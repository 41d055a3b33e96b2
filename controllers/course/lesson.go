package courseController

import (
	"fmt"
	"learnify/database"
	"learnify/middleware"
	"learnify/models"

	"github.com/gofiber/fiber/v2"
)

// GetAllLessons lists lessons. Instructors see lessons of their own courses,
// everyone else sees lessons of published courses. Supports course_id and
// title filters plus pagination.
func GetAllLessons(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("userRole").(models.Role)

	reqData, ok := c.Locals("validatedLessonList").(*struct {
		Page     *int    `json:"page"`
		Limit    *int    `json:"limit"`
		CourseID *int    `json:"course_id"`
		Title    *string `json:"title"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
	}

	db := database.Database.Db.Model(&models.Lesson{}).
		Select("lessons.*").
		Joins("JOIN courses ON courses.id = lessons.course_id")
	if role == models.RoleInstructor {
		db = db.Where("courses.user_id = ?", userID)
	} else {
		db = db.Where("courses.is_published = ?", true)
	}

	if reqData.CourseID != nil {
		db = db.Where("lessons.course_id = ?", *reqData.CourseID)
	}
	if reqData.Title != nil && *reqData.Title != "" {
		db = db.Where("LOWER(lessons.title) LIKE LOWER(?)", "%"+*reqData.Title+"%")
	}

	// Set default pagination
	page := 1
	limit := 10
	if reqData.Page != nil {
		page = *reqData.Page
	}
	if reqData.Limit != nil {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	// Get total count
	var total int64
	db.Count(&total)

	// Fetch paginated data
	var lessons []models.Lesson
	if err := db.Offset(offset).Limit(limit).Order("lessons.course_id asc, lessons.lesson_order asc").Find(&lessons).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lessons!", nil)
	}

	response := map[string]interface{}{
		"lessons": lessons,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", response)
}

// CreateLesson adds a lesson to a course owned by the requesting instructor.
// The lesson's order must extend the course's contiguous 1-based sequence,
// which is what lets the completion gate trust count+1 arithmetic later.
func CreateLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedLesson").(*struct {
		CourseID uint   `json:"course" validate:"required"`
		Title    string `json:"title" validate:"required,min=3"`
		Content  string `json:"content" validate:"required"`
		Order    int    `json:"order" validate:"required,min=1"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course models.Course
	if err := database.Database.Db.Where("id = ? AND user_id = ?", reqData.CourseID, userID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var lessonCount int64
	database.Database.Db.Model(&models.Lesson{}).Where("course_id = ?", course.ID).Count(&lessonCount)

	if reqData.Order != int(lessonCount)+1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
			fmt.Sprintf("Lesson order must be %d to keep the sequence contiguous!", lessonCount+1), nil)
	}

	lesson := models.Lesson{
		CourseID: course.ID,
		Title:    reqData.Title,
		Content:  reqData.Content,
		Order:    reqData.Order,
	}

	if err := database.Database.Db.Create(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson has been added!", lesson)
}

// GetLessonDetails returns one lesson with its course summary.
func GetLessonDetails(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	lessonID := c.Locals("lessonID").(int)

	var lesson models.Lesson
	if err := database.Database.Db.First(&lesson, lessonID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	var course models.Course
	if err := database.Database.Db.First(&course, lesson.CourseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if !course.IsPublished && course.UserID != userID {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson details retrieved successfully!", fiber.Map{
		"lesson": lesson,
		"course": course.Summary(),
	})
}

// UpdateLesson partially updates a lesson of a course owned by the
// requesting instructor. Order is immutable here so the per-course sequence
// stays contiguous.
func UpdateLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	lessonID := c.Locals("lessonID").(int)

	var lesson models.Lesson
	if err := database.Database.Db.
		Select("lessons.*").
		Joins("JOIN courses ON courses.id = lessons.course_id").
		Where("lessons.id = ? AND courses.user_id = ?", lessonID, userID).
		First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	reqData := new(struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.Title != nil {
		lesson.Title = *reqData.Title
	}
	if reqData.Content != nil {
		lesson.Content = *reqData.Content
	}

	if err := database.Database.Db.Save(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson has been updated!", lesson)
}
