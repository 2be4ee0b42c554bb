package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/scholarhub/internal/app/controllers"
	"github.com/yigit/scholarhub/internal/app/models"
	"github.com/yigit/scholarhub/internal/middleware"
	"github.com/yigit/scholarhub/internal/pkg/metrics"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	applicationController *controllers.ApplicationController,
	reviewController *controllers.ReviewController,
	scholarshipController *controllers.ScholarshipController,
	studentController *controllers.StudentController,
	healthController *controllers.HealthController,
	authMiddleware *middleware.AuthMiddleware,
	metricsPath string,
) {
	if metricsPath != "" {
		router.GET(metricsPath, gin.WrapH(metrics.Handler()))
	}

	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", healthController.Health)

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		// Catalog is readable by every signed-in user
		authenticated.GET("/scholarships", scholarshipController.ListCatalog)
		authenticated.GET("/scholarships/:id", scholarshipController.GetScholarship)

		// Owner or admin, checked in the service
		authenticated.GET("/files/:id", applicationController.ServeSubmissionFile)
	}

	// Student self-service
	student := authenticated.Group("/student")
	student.Use(authMiddleware.RoleRequired(models.RoleStudent))
	{
		student.GET("/profile", studentController.GetProfile)
		student.GET("/dashboard", studentController.StudentDashboard)

		applications := student.Group("/applications")
		{
			applications.POST("", applicationController.CreateApplication)
			applications.GET("/:id", applicationController.GetApplication)
			applications.POST("/:id/requirements/:requirementId/upload", applicationController.UploadRequirement)
			applications.POST("/:id/submit", applicationController.SubmitApplication)
		}
	}

	// Admin review and catalog management
	admin := authenticated.Group("/admin")
	admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
	{
		admin.GET("/dashboard", studentController.AdminDashboard)

		students := admin.Group("/students")
		{
			students.GET("", studentController.ListStudents)
			students.GET("/:id", studentController.GetStudent)
			students.PUT("/:id", studentController.UpdateStudent)
			students.DELETE("/:id", studentController.DeleteStudent)
		}

		applications := admin.Group("/applications")
		{
			applications.GET("", reviewController.ListApplications)
			applications.GET("/:id", reviewController.GetApplication)
			applications.PUT("/:id/status", reviewController.UpdateApplicationStatus)
			applications.DELETE("/:id", reviewController.DeleteApplication)
			applications.GET("/:id/evaluations", reviewController.ListEvaluations)
		}

		evaluations := admin.Group("/evaluations")
		{
			evaluations.POST("", reviewController.CreateEvaluation)
			evaluations.PUT("/:id", reviewController.UpdateEvaluation)
		}

		scholarships := admin.Group("/scholarships")
		{
			scholarships.GET("", scholarshipController.ListSummaries)
			scholarships.POST("", scholarshipController.CreateScholarship)
			scholarships.PUT("/:id", scholarshipController.UpdateScholarship)
			scholarships.DELETE("/:id", scholarshipController.DeleteScholarship)
		}

		requirements := admin.Group("/requirements")
		{
			requirements.GET("", scholarshipController.ListRequirements)
			requirements.POST("", scholarshipController.CreateRequirement)
			requirements.PUT("/:id", scholarshipController.UpdateRequirement)
			requirements.DELETE("/:id", scholarshipController.DeleteRequirement)
		}
	}
}
