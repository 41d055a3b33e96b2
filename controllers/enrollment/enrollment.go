package enrollmentController

import (
	"fmt"
	"learnify/middleware"
	"learnify/models"
	"learnify/services/enrollment"

	"github.com/gofiber/fiber/v2"
)

// Controller exposes the enrollment engine over HTTP. The engine is built
// in main and injected here; the controller owns no state of its own.
type Controller struct {
	Engine *enrollment.Engine
}

func NewController(engine *enrollment.Engine) *Controller {
	return &Controller{Engine: engine}
}

// statusFor maps engine failure kinds onto HTTP status codes.
func statusFor(err error) int {
	switch enrollment.KindOf(err) {
	case enrollment.KindNotFound:
		return fiber.StatusNotFound
	case enrollment.KindForbidden:
		return fiber.StatusForbidden
	case enrollment.KindConflict:
		return fiber.StatusConflict
	case enrollment.KindInvalid:
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// Enroll creates an enrollment for the authenticated user.
func (ctl *Controller) Enroll(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	role, _ := c.Locals("userRole").(models.Role)

	reqData, ok := c.Locals("validatedEnrollment").(*struct {
		CourseID uint `json:"course_id" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	view, err := ctl.Engine.Enroll(userID, role, reqData.CourseID)
	if err != nil {
		return middleware.JsonResponse(c, statusFor(err), false, err.Error(), nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment successful!", view)
}

// ListEnrollments returns the caller's enrollments with nested course
// summaries and computed progress.
func (ctl *Controller) ListEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	views, err := ctl.Engine.ListEnrollments(userID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments retrieved successfully!", views)
}

// CompleteLesson marks one lesson completed inside the caller's enrollment.
func (ctl *Controller) CompleteLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	enrollmentID := c.Locals("enrollmentID").(int)

	reqData, ok := c.Locals("validatedCompletion").(*struct {
		Lesson uint `json:"lesson" validate:"required"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	title, err := ctl.Engine.CompleteLesson(uint(enrollmentID), userID, reqData.Lesson)
	if err != nil {
		return middleware.JsonResponse(c, statusFor(err), false, err.Error(), nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, fmt.Sprintf("Lesson '%s' marked as completed.", title), nil)
}

// GetProgress returns the progress snapshot for the caller's enrollment.
func (ctl *Controller) GetProgress(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	enrollmentID := c.Locals("enrollmentID").(int)

	progress, err := ctl.Engine.GetProgress(uint(enrollmentID), userID)
	if err != nil {
		return middleware.JsonResponse(c, statusFor(err), false, err.Error(), nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment progress retrieved successfully!", progress)
}
