package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ketr501215/Ray-Cloud-Web/config"
	"github.com/ketr501215/Ray-Cloud-Web/internal/api/handler"
	"github.com/ketr501215/Ray-Cloud-Web/internal/api/middleware"
	"github.com/ketr501215/Ray-Cloud-Web/internal/api/router"
	"github.com/ketr501215/Ray-Cloud-Web/internal/repository"
	"github.com/ketr501215/Ray-Cloud-Web/internal/service"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/database"
	applogger "github.com/ketr501215/Ray-Cloud-Web/pkg/logger"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/redis"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/semester"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/signer"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/storage"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("RAYCLOUD_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	// 3. 学期时区
	if err := semester.SetLocation(cfg.Semester.Timezone); err != nil {
		logger.Fatal("学期时区无效", zap.String("timezone", cfg.Semester.Timezone), zap.Error(err))
	}

	// 4. 连接数据库并迁移
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	if err := database.RunMigrations(db, cfg.Database.Driver, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 5. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var (
		cache   service.Cache
		limiter middleware.RateLimiter
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，统计缓存与限流将不可用", zap.Error(err))
		rdb = nil
	} else {
		cache = rdb
		limiter = rdb
	}

	// 6. 对象存储
	ctx := context.Background()
	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		logger.Fatal("对象存储初始化失败", zap.Error(err))
	}

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, store, signer.New(&cfg.Signer), cache, logger)
	h := handler.NewHandler(svc)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, limiter, repo, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if sqlDB, _ := db.DB(); sqlDB != nil {
		sqlDB.Close()
	}

	if rdb != nil {
		rdb.Close()
	}

	if closeStore != nil {
		closeStore.Close()
	}

	logger.Info("服务器已关闭")
}

// newStore 按 storage.driver 选择对象存储实现
func newStore(ctx context.Context, cfg *config.Config) (storage.Store, io.Closer, error) {
	switch cfg.Storage.Driver {
	case config.StorageLocal:
		s, err := storage.NewLocalStore(cfg.Storage.LocalDir, strings.TrimRight(cfg.Server.BaseURL, "/")+config.LocalBlobRoute)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	default:
		s, err := storage.NewGCSStore(ctx, &cfg.Storage)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
}
