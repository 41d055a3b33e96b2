package userRoutes

import (
	controllers "learnify/controllers/user"
	"learnify/middleware"
	"learnify/models"
	validators "learnify/validators/user"

	"github.com/gofiber/fiber/v2"
)

// SetupUserRoutes sets up admin-only user management routes
func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))

	userGroup.Get("/", validators.UserList(), controllers.GetAllUsers)
	userGroup.Get("/:id", controllers.GetUser)
	userGroup.Put("/:id", controllers.UpdateUser)
	userGroup.Delete("/:id", controllers.DeleteUser)
}
