package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ketr501215/Ray-Cloud-Web/config"
	"github.com/ketr501215/Ray-Cloud-Web/internal/repository"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/signer"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/storage"
)

// Cache 服务层使用的 JSON 缓存；为 nil 时直接查库
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Service 所有 Service 的聚合入口
type Service struct {
	Semester  SemesterService
	Content   ContentService
	File      FileService
	Deadline  DeadlineService
	Import    ImportService
	Dashboard DashboardService
	Calendar  CalendarService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	store storage.Store,
	sign *signer.Signer,
	cache Cache,
	logger *zap.Logger,
) *Service {
	semesterSvc := NewSemesterService()
	contentSvc := NewContentService(repo, logger)
	fileSvc := NewFileService(repo, store, sign, cache, cfg.Server.BaseURL, logger)
	deadlineSvc := NewDeadlineService(repo, logger)

	return &Service{
		Semester:  semesterSvc,
		Content:   contentSvc,
		File:      fileSvc,
		Deadline:  deadlineSvc,
		Import:    NewImportService(repo, store, cfg.Import.DefaultCategory, logger),
		Dashboard: NewDashboardService(contentSvc, fileSvc, deadlineSvc, logger),
		Calendar:  NewCalendarService(deadlineSvc, logger),
	}
}
