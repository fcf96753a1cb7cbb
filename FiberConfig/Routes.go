package FiberConfig

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"

	"Culina/Controllers"
	"Culina/Models"
	"Culina/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize handlers
	departmentController := Controllers.NewDepartmentController(db)
	cleaningItemController := Controllers.NewCleaningItemController(db)
	taskInstanceController := Controllers.NewTaskInstanceController(db)
	recipeController := Controllers.NewRecipeController(db)
	productionTaskController := Controllers.NewProductionTaskController(db)
	thermometerController := Controllers.NewThermometerController(db)
	assignmentController := Controllers.NewVerificationAssignmentController(db)
	reportController := Controllers.NewReportController(db)

	// Public auth endpoints
	app.Post("/api/Login", Controllers.Login)
	app.Post("/api/RequestPasswordReset", Controllers.RequestPasswordReset)
	app.Post("/api/ConfirmPasswordReset", Controllers.ConfirmPasswordReset)

	// Everything below requires a valid session
	api := app.Group("/api", middleware.Protected())
	api.Post("/Logout", Controllers.Logout)
	api.Get("/User", Controllers.User)
	api.Get("/validate-token", Controllers.ValidateToken)

	// User management - managers provision within their department,
	// superusers everywhere
	users := api.Group("/users")
	users.Get("/", Controllers.FetchUsers)
	users.Post("/", middleware.RequireManager(), Controllers.RegisterUser)
	users.Patch("/:id", middleware.RequireManager(), Controllers.UpdateUser)
	users.Delete("/:id", middleware.RequireManager(), Controllers.DeleteUser)

	// Department administration is superuser-only; reads are scoped per user
	departments := api.Group("/departments")
	departments.Get("/", departmentController.GetDepartments)
	departments.Get("/:id", departmentController.GetDepartment)
	departments.Post("/", middleware.RequireSuperuser(), departmentController.CreateDepartment)
	departments.Put("/:id", middleware.RequireSuperuser(), departmentController.UpdateDepartment)
	departments.Delete("/:id", middleware.RequireSuperuser(), departmentController.DeleteDepartment)

	areaUnits := api.Group("/area-units")
	areaUnits.Get("/", departmentController.GetAreaUnits)
	areaUnits.Post("/", middleware.RequireManager(), departmentController.CreateAreaUnit)

	// Cleaning schedule
	cleaningItems := api.Group("/cleaning-items")
	cleaningItems.Get("/", cleaningItemController.GetCleaningItems)
	cleaningItems.Get("/:id", cleaningItemController.GetCleaningItem)
	cleaningItems.Post("/", middleware.RequireManager(), cleaningItemController.CreateCleaningItem)
	cleaningItems.Put("/:id", middleware.RequireManager(), cleaningItemController.UpdateCleaningItem)
	cleaningItems.Delete("/:id", middleware.RequireManager(), cleaningItemController.DeleteCleaningItem)

	// Task instances - status changes run through the workflow engine, so
	// staff reach the PATCH route too
	tasks := api.Group("/tasks")
	tasks.Get("/", taskInstanceController.GetTaskInstances)
	tasks.Get("/:id", taskInstanceController.GetTaskInstance)
	tasks.Patch("/:id", taskInstanceController.UpdateTaskInstance)
	tasks.Get("/:id/history", taskInstanceController.GetTaskHistory)

	// Recipes and production
	recipes := api.Group("/recipes")
	recipes.Get("/", recipeController.GetRecipes)
	recipes.Get("/:id", recipeController.GetRecipe)
	recipes.Post("/", middleware.RequireManager(), recipeController.CreateRecipe)
	recipes.Put("/:id", middleware.RequireManager(), recipeController.UpdateRecipe)
	recipes.Delete("/:id", middleware.RequireManager(), recipeController.DeleteRecipe)

	production := api.Group("/production-tasks")
	production.Get("/", productionTaskController.GetProductionTasks)
	production.Get("/:id", productionTaskController.GetProductionTask)
	production.Post("/", middleware.RequireManager(), productionTaskController.CreateProductionTask)
	production.Patch("/:id", productionTaskController.UpdateProductionTask)
	production.Delete("/:id", middleware.RequireManager(), productionTaskController.DeleteProductionTask)

	// Thermometers, verification and temperature logging
	thermometers := api.Group("/thermometers")
	thermometers.Get("/", thermometerController.GetThermometers)
	thermometers.Post("/", middleware.RequireManager(), thermometerController.CreateThermometer)
	thermometers.Delete("/:id", middleware.RequireManager(), thermometerController.DeleteThermometer)

	api.Get("/verification-records", thermometerController.GetVerificationRecords)
	api.Post("/verification-records", thermometerController.CreateVerificationRecord)

	api.Get("/verification-assignments", assignmentController.GetAssignments)
	api.Post("/verification-assignments", middleware.RequireManager(), assignmentController.CreateAssignment)

	api.Get("/temperature-logs", thermometerController.GetTemperatureLogs)
	api.Post("/temperature-logs", thermometerController.CreateTemperatureLog)

	// Reports
	reports := api.Group("/reports", middleware.RequireManager())
	reports.Get("/temperature-logs", reportController.ExportTemperatureLogs)
	reports.Get("/cleaning-compliance", reportController.ExportTaskCompliance)
}

func FiberConfig() {
	fmt.Println("Server Up...")
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(middleware.ErrorLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupRoutes(app, Models.DB)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	app.Listen(":" + port)
}
