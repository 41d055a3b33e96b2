package enrollmentRoutes

import (
	controllers "learnify/controllers/enrollment"
	"learnify/middleware"
	validators "learnify/validators/enrollment"

	"github.com/gofiber/fiber/v2"
)

// SetupEnrollmentRoutes sets up enrollment, completion and progress routes.
// The controller carries the enrollment engine built in main.
func SetupEnrollmentRoutes(app *fiber.App, ctl *controllers.Controller) {
	enrollGroup := app.Group("/enrollments", middleware.JWTMiddleware)

	enrollGroup.Post("/", validators.Enroll(), ctl.Enroll)
	enrollGroup.Get("/", ctl.ListEnrollments)
	enrollGroup.Patch("/:id/complete", validators.CompleteLesson(), ctl.CompleteLesson)
	enrollGroup.Get("/:id/progress", validators.GetProgress(), ctl.GetProgress)
}
