package courseController

import (
	"learnify/database"
	"learnify/middleware"
	"learnify/models"

	"github.com/gofiber/fiber/v2"
)

// courseWithLessons is the detail shape returned for a single course.
type courseWithLessons struct {
	models.Course
	LessonList []models.Lesson `json:"lesson_list"`
}

// GetAllCourses lists courses. Instructors see their own courses, everyone
// else sees published ones. Supports is_published/title/date filters and
// pagination.
func GetAllCourses(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("userRole").(models.Role)

	reqData, ok := c.Locals("validatedCourseList").(*struct {
		Page        *int    `json:"page"`
		Limit       *int    `json:"limit"`
		IsPublished *bool   `json:"is_published"`
		Title       *string `json:"title"`
		FromDate    *string `json:"from_date"`
		ToDate      *string `json:"to_date"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
	}

	db := database.Database.Db.Model(&models.Course{})
	if role == models.RoleInstructor {
		db = db.Where("user_id = ?", userID)
	} else {
		db = db.Where("is_published = ?", true)
	}

	if reqData.IsPublished != nil {
		db = db.Where("is_published = ?", *reqData.IsPublished)
	}
	if reqData.Title != nil && *reqData.Title != "" {
		db = db.Where("LOWER(title) LIKE LOWER(?)", "%"+*reqData.Title+"%")
	}
	if reqData.FromDate != nil && *reqData.FromDate != "" {
		db = db.Where("created_at >= ?", *reqData.FromDate)
	}
	if reqData.ToDate != nil && *reqData.ToDate != "" {
		db = db.Where("created_at <= ?", *reqData.ToDate)
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
	var courses []models.Course
	if err := db.Offset(offset).Limit(limit).Order("updated_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	response := map[string]interface{}{
		"courses": courses,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", response)
}

// CreateCourse adds a course owned by the requesting instructor.
func CreateCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*struct {
		Title       string `json:"title" validate:"required,min=3"`
		Description string `json:"description" validate:"required,min=5"`
		IsPublished bool   `json:"is_published"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := models.Course{
		Title:       reqData.Title,
		Description: reqData.Description,
		IsPublished: reqData.IsPublished,
		UserID:      userID,
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course has been added!", course)
}

// GetCourseDetails returns one course with its ordered lessons. Unpublished
// courses are visible to their owner only.
func GetCourseDetails(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(int)

	var course models.Course
	if err := database.Database.Db.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !course.IsPublished && course.UserID != userID {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var lessons []models.Lesson
	database.Database.Db.Where("course_id = ?", course.ID).Order("lesson_order asc").Find(&lessons)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details retrieved successfully!", courseWithLessons{
		Course:     course,
		LessonList: lessons,
	})
}

// UpdateCourse partially updates a course owned by the requesting instructor.
func UpdateCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(int)

	var course models.Course
	if err := database.Database.Db.Where("id = ? AND user_id = ?", courseID, userID).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	reqData := new(struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		IsPublished *bool   `json:"is_published"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if reqData.Title != nil {
		course.Title = *reqData.Title
	}
	if reqData.Description != nil {
		course.Description = *reqData.Description
	}
	if reqData.IsPublished != nil {
		course.IsPublished = *reqData.IsPublished
	}

	if err := database.Database.Db.Save(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course has been updated!", course)
}
