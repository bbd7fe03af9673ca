package api

import (
	"github.com/gin-gonic/gin"

	"github.com/timmy/musicmatch/internal/api/handler"
	"github.com/timmy/musicmatch/internal/api/middleware"
	"github.com/timmy/musicmatch/internal/config"
	"github.com/timmy/musicmatch/internal/logger"
	"github.com/timmy/musicmatch/internal/service"
)

// Services bundles what the HTTP layer serves.
type Services struct {
	Snapshots       *service.SnapshotHolder
	Recommendations *service.RecommendationService
	Training        *service.TrainingService
}

// SetupRouter configures the Gin router with all routes.
func SetupRouter(svc Services, cfg config.ServerConfig, log *logger.Logger) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cfg.CORS))

	healthHandler := handler.NewHealthHandler(svc.Snapshots)
	quizHandler := handler.NewQuizHandler(svc.Recommendations)
	clusterHandler := handler.NewClusterHandler(svc.Recommendations)
	songHandler := handler.NewSongHandler(svc.Recommendations)
	adminHandler := handler.NewAdminHandler(svc.Training, svc.Recommendations)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		v1.GET("/quiz/questions", quizHandler.Questions)
		v1.POST("/quiz/submit", quizHandler.Submit)

		v1.GET("/clusters", clusterHandler.List)
		v1.GET("/clusters/visualization", clusterHandler.Visualization)
		v1.GET("/clusters/:id", clusterHandler.Get)
		v1.GET("/recommendations/:cluster_id", clusterHandler.Recommendations)

		v1.GET("/songs/:id", songHandler.Get)
		v1.GET("/songs/:id/similar", songHandler.Similar)

		admin := v1.Group("/admin")
		admin.POST("/train", adminHandler.Train)
		admin.GET("/train/status", adminHandler.Status)
	}

	return r
}
