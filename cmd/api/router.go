package api

import (
	"net/http"

	"coachly-backend/internal/auth/delivery"
	authdomain "coachly-backend/internal/auth/domain"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	authHandler := delivery.NewAuthHandler(h.authUsecase)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// SSE endpoint
		api.GET("/events", delivery.AuthMiddleware(h.authUsecase), func(c *gin.Context) {
			userID := c.GetString("userID")
			h.sseManager.ServeHTTP(c, userID)
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/google", authHandler.GoogleSignIn)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(h.authUsecase), authHandler.Me)
			auth.POST("/set-password", delivery.AuthMiddleware(h.authUsecase), authHandler.SetPassword)
		}

		// Admin routes (user and roster management)
		admin := api.Group("/admin")
		admin.Use(delivery.AuthMiddleware(h.authUsecase), delivery.RequireRole(authdomain.RoleAdmin))
		{
			admin.GET("/users", authHandler.ListUsers)
			admin.PUT("/users/:id/roles", authHandler.UpdateRoles)
			admin.POST("/coach-links", authHandler.AssignCoach)
			admin.DELETE("/coach-links/:id", authHandler.RemoveCoach)
		}

		// Coach roster (protected)
		coach := api.Group("/coach")
		coach.Use(delivery.AuthMiddleware(h.authUsecase), delivery.RequireRole(authdomain.RoleCoach, authdomain.RoleAdmin))
		{
			coach.GET("/students", authHandler.MyStudents)
		}

		me := api.Group("/me")
		me.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			me.GET("/coaches", authHandler.MyCoaches)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			tasks.GET("", h.taskHandler.ListByDate)
			tasks.GET("/range", h.taskHandler.ListRange)
			tasks.GET("/search", h.taskHandler.SearchTasks)
			tasks.POST("", h.taskHandler.CreateTask)
			tasks.GET("/:id", h.taskHandler.GetTask)
			tasks.PUT("/:id", h.taskHandler.UpdateTask)
			tasks.DELETE("/:id", h.taskHandler.DeleteTask)
			tasks.PATCH("/:id/complete", h.taskHandler.CompleteTask)
			tasks.PATCH("/:id/reorder", h.taskHandler.ReorderTask)
			tasks.PATCH("/:id/parent", h.taskHandler.ReparentTask)
		}

		// Board drag sessions (protected)
		drag := api.Group("/board/drag")
		drag.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			drag.POST("/start", h.boardHandler.StartDrag)
			drag.POST("/move", h.boardHandler.MoveDrag)
			drag.POST("/drop", h.boardHandler.DropDrag)
			drag.POST("/cancel", h.boardHandler.CancelDrag)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			projects.POST("", h.projectHandler.CreateProject)
			projects.GET("", h.projectHandler.ListProjects)
			projects.GET("/:id", h.projectHandler.GetProject)
			projects.PUT("/:id", h.projectHandler.UpdateProject)
			projects.DELETE("/:id", h.projectHandler.DeleteProject)
			projects.POST("/:id/progress", h.projectHandler.RefreshProgress)
			projects.GET("/:id/tasks", h.taskHandler.ListByProject)
		}

		// Habit routes (protected)
		habits := api.Group("/habits")
		habits.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			habits.POST("", h.habitHandler.CreateHabit)
			habits.GET("", h.habitHandler.ListHabits)
			habits.GET("/stats", h.habitHandler.HabitStats)
			habits.POST("/hydrate", h.habitHandler.Hydrate)
			habits.GET("/:id", h.habitHandler.GetHabit)
			habits.PUT("/:id", h.habitHandler.UpdateHabit)
			habits.DELETE("/:id", h.habitHandler.DeleteHabit)
			habits.PATCH("/:id/reorder", h.habitHandler.ReorderHabit)
			habits.POST("/:id/completions", h.habitHandler.CompleteHabit)
			habits.GET("/:id/completions", h.habitHandler.ListCompletions)
			habits.DELETE("/:id/completions/:date", h.habitHandler.UncompleteHabit)
		}

		// Exam routes (protected)
		exams := api.Group("/exams")
		exams.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			exams.POST("/templates", h.examHandler.CreateTemplate)
			exams.GET("/templates", h.examHandler.ListTemplates)
			exams.GET("/templates/:id", h.examHandler.GetTemplate)
			exams.DELETE("/templates/:id", h.examHandler.DeleteTemplate)
			exams.POST("/results", h.examHandler.SubmitResult)
			exams.GET("/results", h.examHandler.ListResults)
			exams.DELETE("/results/:id", h.examHandler.DeleteResult)
			exams.GET("/averages", h.examHandler.Averages)
		}

		// Program template routes (protected; authoring is for coaches)
		programs := api.Group("/programs")
		programs.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			programs.GET("", h.programHandler.ListPrograms)
			programs.GET("/:id", h.programHandler.GetProgram)
			programs.POST("/:id/apply", h.programHandler.ApplyProgram)
			programs.POST("", delivery.RequireRole(authdomain.RoleCoach, authdomain.RoleAdmin), h.programHandler.CreateProgram)
			programs.DELETE("/:id", delivery.RequireRole(authdomain.RoleCoach, authdomain.RoleAdmin), h.programHandler.DeleteProgram)
		}

		// AI analysis reports (protected)
		analysis := api.Group("/analysis")
		analysis.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			analysis.POST("/reports", h.analysisHandler.RequestReport)
			analysis.GET("/reports", h.analysisHandler.ListReports)
			analysis.GET("/reports/:id", h.analysisHandler.GetReport)
		}

		// Shared study resources (protected; uploads are for coaches)
		resources := api.Group("/resources")
		resources.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			resources.GET("", h.resourceHandler.List)
			resources.POST("", delivery.RequireRole(authdomain.RoleCoach, authdomain.RoleAdmin), h.resourceHandler.Upload)
			resources.DELETE("/:id", h.resourceHandler.Delete)
		}

		// Push notification tokens (protected)
		notifications := api.Group("/notifications")
		notifications.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			notifications.POST("/token", h.notificationHandler.RegisterToken)
			notifications.DELETE("/token", h.notificationHandler.UnregisterToken)
		}
	}
}
