package api

import (
	"embed"
	"html/template"

	"DocRAG/backend/go/pkg/httpmiddleware"
	"DocRAG/backend/go/pkg/logger"
	"DocRAG/backend/go/pkg/ratelimiter"

	"github.com/gin-gonic/gin"
)

//go:embed templates/index.html
var templatesFS embed.FS

// NewRouter 创建 gin 引擎并注册所有路由。limiter 为 nil 时不限流。
func NewRouter(api *API, limiter ratelimiter.RateLimiter, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), httpmiddleware.RequestLogger(log))
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/index.html")))
	RegisterRoutes(router, api, limiter)
	return router
}

// RegisterRoutes registers all the routes for the DocRAG service.
func RegisterRoutes(router *gin.Engine, api *API, limiter ratelimiter.RateLimiter) {
	router.GET("/", api.IndexHandler)
	router.GET("/healthz", api.HealthHandler)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/documents", api.UploadHandler)
		v1.GET("/models", api.ModelsHandler)
		v1.POST("/runs", httpmiddleware.RateLimit(limiter), api.RunHandler)
	}
}
