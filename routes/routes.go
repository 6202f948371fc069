package routes

import (
	"net/http"

	"iris-api/controllers"
	"iris-api/middleware"
	"iris-api/pubsub"
	"iris-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Services *services.Registry
	Tokens   *middleware.TokenIssuer
	Users    middleware.UserLookup
	Hub      pubsub.Hub
	Logger   *zap.Logger
}

func SetupRoutes(router *gin.Engine, d Deps) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	authCtl := controllers.NewAuthController(d.Services.Users, d.Tokens, logger)
	catalogCtl := controllers.NewCatalogController(d.Services.Catalog)
	ideaCtl := controllers.NewIdeaController(d.Services.Ideas)
	challengeCtl := controllers.NewChallengeController(d.Services.Challenges)
	submissionCtl := controllers.NewChallengeIdeaController(d.Services.Submissions)
	notificationCtl := controllers.NewNotificationController(d.Services.Notifications, d.Hub)
	dashboardCtl := controllers.NewDashboardController(d.Services.Dashboard)
	reportCtl := controllers.NewReportController(d.Services.Reports)

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			public.POST("/users/login", authCtl.Login)
			public.GET("/stats", dashboardCtl.GetStats)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"status":  "ok",
					"message": "IRIS API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(d.Tokens, d.Users))
		{
			protected.GET("/users", authCtl.FindUsers)
			protected.GET("/profile", authCtl.Profile)

			// Reference data
			protected.GET("/improvement-categories", catalogCtl.GetCategories)
			protected.GET("/improvement-subcategories", catalogCtl.GetSubCategories)
			protected.GET("/review-parameters", catalogCtl.GetReviewParameters)

			// Grassroot ideas
			ideas := protected.Group("/grassroot-ideas")
			{
				ideas.POST("", ideaCtl.CreateIdea)
				ideas.GET("", ideaCtl.GetIdeas)
				ideas.GET("/:id", ideaCtl.GetIdea)
				ideas.PATCH("/:id", ideaCtl.UpdateIdeaStatus)
				ideas.POST("/:id/evaluate", ideaCtl.EvaluateIdea)
				ideas.GET("/:id/evaluations", ideaCtl.GetEvaluations)
				ideas.GET("/:id/history", ideaCtl.GetHistory)
			}

			// Challenge wizard
			challenges := protected.Group("/challenges")
			{
				challenges.POST("", challengeCtl.CreateChallenge)
				challenges.GET("", challengeCtl.GetChallenges)
				challenges.GET("/featured", challengeCtl.GetFeatured)
				challenges.GET("/:id", challengeCtl.GetChallenge)
				challenges.PATCH("/:id", challengeCtl.UpdateChallengeStatus)
				challenges.PUT("/:id/review-parameters", challengeCtl.SetReviewParameters)
				challenges.GET("/:id/history", challengeCtl.GetHistory)
				challenges.POST("/:id/ideas", submissionCtl.SubmitIdea)
				challenges.GET("/:id/ideas", submissionCtl.GetChallengeIdeas)
			}
			protected.GET("/challenge-ideas/:id", submissionCtl.GetIdea)
			protected.GET("/my-ideas", submissionCtl.GetMyIdeas)
			protected.POST("/challenge-panels", challengeCtl.CreatePanel)
			protected.GET("/challenge-panels", challengeCtl.GetPanels)
			protected.POST("/challenge-mentors", challengeCtl.AssignMentor)
			protected.GET("/challenge-mentors", challengeCtl.GetMentors)

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", notificationCtl.GetNotifications)
				notifications.GET("/unread-count", notificationCtl.GetUnreadCount)
				notifications.GET("/stream", notificationCtl.Stream)
				notifications.POST("/:id/mark_as_read", notificationCtl.MarkAsRead)
			}

			// Dashboard
			protected.GET("/dashboard/active-challenges", dashboardCtl.GetActiveChallenges)

			// Reports
			protected.GET("/reports/export", reportCtl.ExportReport)
		}
	}

	// Handle 404
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Endpoint not found",
			"code":    controllers.CodeNotFound,
		})
	})
}
