package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"docqa/internal/handler"
	"docqa/internal/metrics"
	"docqa/internal/middleware"
	"docqa/internal/service"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Session    *handler.SessionHandler
	Question   *handler.QuestionHandler
	Corpus     *handler.CorpusHandler
	Extraction *handler.ExtractionHandler
	Result     *handler.ResultHandler
	Health     *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware. gatherer
// backs /metrics; m may be nil to disable request metrics.
func Setup(
	sessionSvc service.SessionService,
	h Handlers,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(m))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks and operations
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public routes
	v1.POST("/sessions", h.Session.Create)
	v1.GET("/models", h.Extraction.Models)

	// Session routes - require a valid session token
	protected := v1.Group("")
	protected.Use(middleware.SessionAuth(sessionSvc))

	protected.DELETE("/sessions/current", h.Session.End)

	questions := protected.Group("/questions")
	questions.GET("", h.Question.List)
	questions.POST("/import", h.Question.Import)
	questions.GET("/export", h.Question.Export)
	questions.POST("/categories", h.Question.CreateCategory)
	questions.DELETE("/categories/:name", h.Question.DeleteCategory)
	questions.GET("/categories/:name/records", h.Question.ListRecords)
	questions.POST("/categories/:name/records", h.Question.AddRecord)
	questions.POST("/categories/:name/records/remove", h.Question.RemoveRecords)

	corpus := protected.Group("/corpus")
	corpus.POST("", h.Corpus.Upload)
	corpus.GET("", h.Corpus.Get)
	corpus.GET("/export", h.Corpus.Export)

	extractions := protected.Group("/extractions")
	extractions.POST("", h.Extraction.Start)
	extractions.GET("/progress", h.Extraction.Progress)
	extractions.POST("/cancel", h.Extraction.Cancel)
	extractions.GET("/:run_id/events", h.Extraction.Events)

	results := protected.Group("/results")
	results.GET("", h.Result.Get)
	results.GET("/export", h.Result.Export)
	results.POST("/publish", h.Result.Publish)

	return r
}
