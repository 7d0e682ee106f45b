package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ketr501215/Ray-Cloud-Web/pkg/semester"
)

// Logger 请求日志中间件（基于 Zap 结构化日志）
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.Int("status", statusCode),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", latency),
			zap.Int("size", c.Writer.Size()),
		}
		fields = append(fields, semesterFields(c.Query("now"), start)...)

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		if statusCode >= 500 {
			logger.Error("请求处理失败", fields...)
		} else if statusCode >= 400 {
			logger.Warn("客户端错误", fields...)
		} else {
			logger.Info("请求完成", fields...)
		}
	}
}

// semesterFields 记录请求换算所用的学期，带 ?now= 时以其为准
func semesterFields(rawNow string, start time.Time) []zap.Field {
	if rawNow == "" {
		return []zap.Field{zap.String("semester", string(semester.Current(start)))}
	}
	ref, err := semester.ParseDate(rawNow)
	if err != nil {
		return []zap.Field{zap.String("now", rawNow)}
	}
	return []zap.Field{
		zap.String("now", rawNow),
		zap.String("semester", string(semester.Current(ref))),
	}
}
