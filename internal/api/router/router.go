package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ketr501215/Ray-Cloud-Web/config"
	"github.com/ketr501215/Ray-Cloud-Web/internal/api/handler"
	"github.com/ketr501215/Ray-Cloud-Web/internal/api/middleware"
)

const (
	jsonBodyLimit = 1 << 20 // 1MB

	uploadRateLimit   = 30
	importRateLimit   = 10
	rateLimitWindow   = time.Minute
	healthPingTimeout = 2 * time.Second
)

// HealthChecker 健康检查依赖（由 repository.Repository 实现）
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时上传与导入接口不做限流
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.RateLimiter, health HealthChecker, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		if err := health.Ping(ctx); err != nil {
			logger.Warn("健康检查失败", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── 本地存储对象 ──
	if cfg.Storage.Driver == config.StorageLocal {
		r.Static(config.LocalBlobRoute, cfg.Storage.LocalDir)
	}

	uploadLimit := cfg.Server.MaxUploadMB << 20
	if uploadLimit <= 0 {
		uploadLimit = 50 << 20
	}
	uploadRL := middleware.RateLimit(limiter, uploadRateLimit, rateLimitWindow)
	importRL := middleware.RateLimit(limiter, importRateLimit, rateLimitWindow)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 上传接口使用单独的请求体上限
		uploads := v1.Group("/files")
		uploads.Use(middleware.BodyLimit(uploadLimit), uploadRL)
		{
			uploads.POST("/upload", h.File.UploadFiles)
			uploads.PUT("/blob", h.File.UploadWithToken)
		}

		api := v1.Group("")
		api.Use(middleware.BodyLimit(jsonBodyLimit))
		{
			// 学期模块
			semesters := api.Group("/semesters")
			{
				semesters.GET("/current", h.Semester.GetCurrentSemester)
				semesters.GET("/progress", h.Semester.GetSemesterProgress)
				semesters.GET("/:id/range", h.Semester.GetSemesterRange)
			}

			// 内容模块
			contents := api.Group("/contents")
			{
				contents.GET("", h.Content.ListContents)
				contents.POST("", h.Content.CreateContent)
				contents.GET("/:id", h.Content.GetContent)
				contents.PUT("/:id/progress", h.Content.UpdateProgress)
				contents.PUT("/:id/deadline", h.Content.UpdateDeadline)
				contents.DELETE("/:id", h.Content.DeleteContent)
			}

			// 文件模块
			files := api.Group("/files")
			{
				files.GET("", h.File.ListFiles)
				files.POST("/upload/token", uploadRL, h.File.IssueUploadToken)
				files.POST("/confirm", h.File.ConfirmFiles)
				files.GET("/category/:name", h.File.ListByCategory)
				files.PUT("/:id/category", h.File.UpdateCategory)
				files.PUT("/:id/deadline", h.File.UpdateDeadline)
				files.DELETE("/:id", h.File.DeleteFile)
				files.POST("/:id/link", h.File.CreateDownloadLink)
				files.GET("/:id/download", h.File.DownloadFile)
				files.POST("/:id/import", importRL, h.Import.ImportFromFile)
			}

			api.GET("/categories/stats", h.File.CategoryStats)

			// 截止日期模块
			deadlines := api.Group("/deadlines")
			{
				deadlines.GET("/upcoming", h.Deadline.ListUpcoming)
				deadlines.GET("/suggestion", h.Deadline.GetSuggestion)
				deadlines.GET("/calendar.ics", h.Deadline.Calendar)
				deadlines.PUT("", h.Deadline.SetDeadline)
			}

			api.GET("/dashboard", h.Dashboard.GetDashboard)
		}
	}

	return r
}
