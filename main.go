package main

import (
	"learnify/config"
	enrollmentController "learnify/controllers/enrollment"
	"learnify/database"
	authRoutes "learnify/routers/authRoutes"
	courseRoutes "learnify/routers/courseRoutes"
	enrollmentRoutes "learnify/routers/enrollmentRoutes"
	userRoutes "learnify/routers/userRoutes"
	"learnify/services/enrollment"
	"learnify/utils"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",  // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// The completion notifier runs off the request path; its failures are
	// logged and never affect enrollment state.
	notifier := utils.MultiNotifier{
		utils.LogNotifier{},
		utils.WebhookNotifier{URL: config.AppConfig.CompletionWebhookURL},
	}

	engine := enrollment.NewEngine(database.Database.Db, notifier)

	authRoutes.SetupAuthRoutes(app)
	userRoutes.SetupUserRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	enrollmentRoutes.SetupEnrollmentRoutes(app, enrollmentController.NewController(engine))

	utils.InitializeCompletionScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
