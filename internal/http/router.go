package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/cliplab/annotation-backend/internal/http/handlers"
	httpMW "github.com/cliplab/annotation-backend/internal/http/middleware"
	"github.com/cliplab/annotation-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	VideoHandler      *httpH.VideoHandler
	QueryHandler      *httpH.QueryHandler
	AnnotationHandler *httpH.AnnotationHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("annotation-backend"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.Index)
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.HealthHandler != nil {
			api.GET("/health", cfg.HealthHandler.HealthCheck)
		}

		if cfg.VideoHandler != nil {
			api.POST("/submit_video", cfg.VideoHandler.SubmitVideo)
			api.POST("/submit_videos", cfg.VideoHandler.SubmitBatch)

			api.GET("/videos", cfg.VideoHandler.ListVideos)
			api.GET("/videos/:id", cfg.VideoHandler.GetVideo)
			api.PUT("/videos/:id", cfg.VideoHandler.UpdateVideo)
			api.PATCH("/videos/:id/status", cfg.VideoHandler.SetVideoStatus)
			api.DELETE("/videos/:id", cfg.VideoHandler.DeleteVideo)
		}

		if cfg.QueryHandler != nil {
			api.POST("/videos/:id/queries", cfg.QueryHandler.CreateQuery)
			api.GET("/videos/:id/queries", cfg.QueryHandler.ListVideoQueries)

			api.GET("/queries/:id", cfg.QueryHandler.GetQuery)
			api.PUT("/queries/:id", cfg.QueryHandler.UpdateQuery)
			api.PATCH("/queries/:id/status", cfg.QueryHandler.SetQueryStatus)
			api.DELETE("/queries/:id", cfg.QueryHandler.DeleteQuery)
		}

		if cfg.AnnotationHandler != nil {
			api.POST("/queries/:id/annotations", cfg.AnnotationHandler.CreateAnnotation)
			api.GET("/queries/:id/annotations", cfg.AnnotationHandler.ListQueryAnnotations)

			api.GET("/annotations/:id", cfg.AnnotationHandler.GetAnnotation)
			api.PUT("/annotations/:id", cfg.AnnotationHandler.UpdateAnnotation)
			api.DELETE("/annotations/:id", cfg.AnnotationHandler.DeleteAnnotation)
		}
	}

	return r
}
