package api

import (
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth          service.AuthService
	Relationships service.RelationshipService
	Suggestions   service.SuggestionService
	Tasks         service.TaskService
	Plans         service.PlanService
	Presence      service.PresenceService
	Messages      service.MessageService
	Feed          service.FeedService
	Media         service.MediaService
	Admin         service.AdminService
	Sweeper       Sweeper
}

func isStudent(c domain.Capabilities) bool { return c.Level() == domain.LevelStudent }

func SetupRoutes(router *gin.Engine, jwtSecret string, svc Services, logger *zap.Logger) {
	authHandler := NewAuthHandler(svc.Auth, logger)
	relationshipHandler := NewRelationshipHandler(svc.Relationships, logger)
	suggestionHandler := NewSuggestionHandler(svc.Suggestions, logger)
	taskHandler := NewTaskHandler(svc.Tasks, logger)
	planHandler := NewPlanHandler(svc.Plans, logger)
	socialHandler := NewSocialHandler(svc.Presence, svc.Messages, svc.Feed, logger)
	mediaHandler := NewMediaHandler(svc.Media, logger)
	adminHandler := NewAdminHandler(svc.Admin, svc.Sweeper, logger)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", authHandler.Me)
		protected.PATCH("/me", authHandler.UpdateProfile)

		protected.PATCH("/suggestions/:suggestionId", suggestionHandler.UpdateSuggestionStatus)
		protected.GET("/students/:studentId/workouts", planHandler.GetStudentWorkouts)
		protected.GET("/students/:studentId/diets", planHandler.GetStudentDiets)

		// --- Presence, messaging, feed ---
		protected.POST("/presence/heartbeat", socialHandler.Heartbeat)
		protected.POST("/presence/offline", socialHandler.GoOffline)
		protected.GET("/users/:userId/presence", socialHandler.GetPresence)

		protected.GET("/messages/:userId", socialHandler.GetConversation)
		protected.POST("/messages/:userId", socialHandler.SendMessage)
		protected.POST("/messages/:userId/read", socialHandler.MarkRead)

		protected.GET("/feed", socialHandler.GetFeed)
		protected.POST("/feed", socialHandler.CreatePost)
		protected.POST("/feed/:postId/like", socialHandler.ToggleLike)
		protected.DELETE("/feed/:postId", socialHandler.DeletePost)

		// --- Media ---
		protected.POST("/media/upload-url", mediaHandler.RequestUploadURL)
		protected.POST("/media/confirm", mediaHandler.ConfirmUpload)
		protected.DELETE("/media/:uploadId", mediaHandler.DeleteUpload)

		// --- Student Specific Routes ---
		studentGroup := protected.Group("/student")
		studentGroup.Use(RequireCapability(isStudent))
		{
			studentGroup.POST("/trainer", relationshipHandler.RequestLink)
			studentGroup.GET("/suggestions", suggestionHandler.GetStudentSuggestions)
			studentGroup.POST("/workouts/:planId/complete", planHandler.CompleteWorkout)
			studentGroup.POST("/diets/:planId/complete", planHandler.CompleteDiet)

			requests := studentGroup.Group("")
			requests.Use(RequireCapability(domain.Capabilities.RequestEvaluations))
			for path, kind := range map[string]domain.TaskKind{"/tasks": domain.KindTask, "/evaluations": domain.KindEvaluation} {
				requests.POST(path, taskHandler.Create(kind))
				requests.GET(path, taskHandler.ListForStudent(kind))
			}
		}

		// --- Trainer Specific Routes ---
		trainerGroup := protected.Group("/trainer")
		trainerGroup.Use(RequireCapability(domain.Capabilities.ManageStudents))
		{
			trainerGroup.GET("/students", relationshipHandler.GetRoster)
			trainerGroup.DELETE("/students/:studentId", relationshipHandler.RemoveStudent)
			trainerGroup.GET("/requests", relationshipHandler.GetPendingRequests)
			trainerGroup.POST("/requests/:studentId/approve", relationshipHandler.ApproveRequest)
			trainerGroup.POST("/requests/:studentId/reject", relationshipHandler.RejectRequest)
			trainerGroup.POST("/code", relationshipHandler.RegenerateCode)

			trainerGroup.POST("/suggestions", RequireCapability(domain.Capabilities.SendSuggestions), suggestionHandler.SendSuggestion)
			trainerGroup.GET("/suggestions", suggestionHandler.GetTrainerSuggestions)

			trainerGroup.POST("/workouts", planHandler.CreateWorkout)
			trainerGroup.GET("/workouts", planHandler.GetTrainerWorkouts)
			trainerGroup.DELETE("/workouts/:planId", planHandler.DeleteWorkout)
			trainerGroup.POST("/diets", planHandler.CreateDiet)
			trainerGroup.GET("/diets", planHandler.GetTrainerDiets)
			trainerGroup.DELETE("/diets/:planId", planHandler.DeleteDiet)

			queues := trainerGroup.Group("")
			queues.Use(RequireCapability(domain.Capabilities.ManageTasks))
			for path, kind := range map[string]domain.TaskKind{"/tasks": domain.KindTask, "/evaluations": domain.KindEvaluation} {
				queues.GET(path, taskHandler.ListForTrainer(kind))
				queues.POST(path+"/:taskId/schedule", taskHandler.Schedule(kind))
				queues.POST(path+"/:taskId/reject", taskHandler.Reject(kind))
				queues.POST(path+"/:taskId/complete", taskHandler.Complete(kind))
			}
		}

		// --- Admin Routes ---
		adminGroup := protected.Group("/admin")
		{
			adminGroup.POST("/students", RequireCapability(domain.Capabilities.CreateStudentAccounts), adminHandler.CreateStudent)
			adminGroup.GET("/dashboard", RequireCapability(domain.Capabilities.ViewDashboard), adminHandler.GetDashboard)
			adminGroup.POST("/sweep", RequireCapability(domain.Capabilities.ViewDashboard), adminHandler.SweepExpiredWorkouts)
		}
	}
}
