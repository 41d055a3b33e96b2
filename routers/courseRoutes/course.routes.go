package courseRoutes

import (
	controllers "learnify/controllers/course"
	"learnify/middleware"
	"learnify/models"
	validators "learnify/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up course and lesson routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/courses", middleware.JWTMiddleware)

	courseGroup.Get("/", validators.CourseList(), controllers.GetAllCourses)
	courseGroup.Post("/", middleware.RequireRole(models.RoleInstructor), validators.CreateCourse(), controllers.CreateCourse)
	courseGroup.Get("/:id", validators.GetCourseDetail(), controllers.GetCourseDetails)
	courseGroup.Patch("/:id", middleware.RequireRole(models.RoleInstructor), validators.GetCourseDetail(), controllers.UpdateCourse)

	lessonGroup := app.Group("/lessons", middleware.JWTMiddleware)

	lessonGroup.Get("/", validators.LessonList(), controllers.GetAllLessons)
	lessonGroup.Post("/", middleware.RequireRole(models.RoleInstructor), validators.CreateLesson(), controllers.CreateLesson)
	lessonGroup.Get("/:id", validators.GetLessonDetail(), controllers.GetLessonDetails)
	lessonGroup.Patch("/:id", middleware.RequireRole(models.RoleInstructor), validators.GetLessonDetail(), controllers.UpdateLesson)
}
