package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"intake/internal/handler"
	"intake/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	prefillH *handler.PrefillHandler,
	healthH *handler.HealthHandler,
	corsOrigins []string,
	multipartMemory int64,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()
	if multipartMemory > 0 {
		r.MaxMultipartMemory = multipartMemory
	}

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.POST("/prefill", prefillH.Prefill)
	v1.GET("/questions", prefillH.ListQuestions)

	return r
}
