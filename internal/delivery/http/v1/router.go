package v1

import (
	"net/http"

	"contact-form-service/config"
	"contact-form-service/internal/delivery/http/middleware"
	"contact-form-service/internal/delivery/http/response"
	"contact-form-service/internal/delivery/http/web"
	"contact-form-service/internal/domain"
	"contact-form-service/internal/usecase"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ContactFormUC domain.ContactFormUsecase
	HealthUC      usecase.HealthUsecase
	// Redis backs the rate limiter when set; nil means in-memory limits
	Redis  *goredis.Client
	Config *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	window := cfg.RateLimitWindow()

	r := gin.New()
	r.SetHTMLTemplate(web.Templates())

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(middleware.CORSConfig{
		AllowedOrigins: append([]string{cfg.FrontendURL}, cfg.AllowedOrigins...),
		AllowLocalhost: !cfg.IsProduction(),
	})) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())

	// Swagger UI needs inline scripts, so it sits outside the security headers
	if !cfg.IsProduction() {
		r.GET("/v1/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	secured := r.Group("")
	secured.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	secured.Use(middleware.RateLimitMiddleware(
		middleware.DefaultRateLimitConfig(cfg.RateLimitGlobalThreshold, window), deps.Redis))

	submitLimiter := middleware.RateLimitMiddleware(
		middleware.SubmitRateLimitConfig(cfg.RateLimitSubmitThreshold, window), deps.Redis)

	v1 := secured.Group("/v1")

	// Health Check
	v1.GET("/health", func(c *gin.Context) {
		status := deps.HealthUC.Check(c.Request.Context())
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Public routes
	NewContactHandler(v1, deps.ContactFormUC, submitLimiter)

	// Server-rendered page, protected by the double-submit cookie
	page := secured.Group("")
	page.Use(middleware.CSRFMiddleware(cfg.IsProduction()))
	NewContactPageHandler(page, deps.ContactFormUC, cfg.SessionTTL, cfg.IsProduction(), submitLimiter)

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/contact")
	})

	return r
}
