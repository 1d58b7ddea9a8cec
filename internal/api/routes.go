package api

import (
	_ "studyassistant/docs" // registers the OpenAPI document

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options configures the middleware SetupRoutes installs.
type Options struct {
	AllowedOrigin      string
	JWTSecret          []byte
	RateLimitPerMinute int
}

// SetupRoutes sets up the API routes
func SetupRoutes(router *gin.Engine, handler *Handler, opts Options) {
	router.Use(CORSMiddleware(opts.AllowedOrigin))
	handler.upgrader.CheckOrigin = originChecker(opts.AllowedOrigin)

	router.GET("/healthz", handler.HandleHealth)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	identity := Identity(opts.JWTSecret)
	limited := RateLimit(opts.RateLimitPerMinute)

	api := router.Group("/api")
	api.Use(identity)
	{
		// AI backed routes share the per-client rate limit.
		ai := api.Group("/")
		ai.Use(limited)
		{
			ai.POST("/analyze", handler.HandleAnalyze)
			ai.POST("/quick-quiz", handler.HandleQuickQuiz)
			ai.POST("/questions", handler.HandleGenerateQuestions)
			ai.POST("/documents/:id/analyze", handler.HandleAnalyzeDocument)
			ai.POST("/documents/:id/pages/:page/analyze", handler.HandleAnalyzePage)
			ai.POST("/documents/:id/comprehensive", handler.HandleComprehensive)
			ai.POST("/documents/:id/questions", handler.HandleDocumentQuestions)
		}

		api.POST("/documents", handler.HandleUploadDocument)
		api.DELETE("/documents/:id", handler.HandleCloseDocument)
		api.POST("/quiz/grade", handler.HandleGradeQuiz)
		api.POST("/reports", handler.HandleReport)

		authorized := api.Group("/history")
		authorized.Use(AuthRequired())
		{
			authorized.GET("", handler.HandleListHistory)
			authorized.POST("", handler.HandleSaveHistory)
			authorized.GET("/:id", handler.HandleGetHistory)
			authorized.DELETE("/:id", handler.HandleDeleteHistory)
			authorized.GET("/:id/report", handler.HandleHistoryReport)
		}
	}

	ws := router.Group("/ws")
	ws.Use(identity, limited)
	ws.GET("/documents/:id/comprehensive", handler.HandleComprehensiveStream)
}
