package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ketr501215/Ray-Cloud-Web/internal/dto"
)

// RecentFileLimit 首页最近文件（文件夹）条数
const RecentFileLimit = 6

// DashboardService 首页概览接口
type DashboardService interface {
	Summary(ctx context.Context, now time.Time) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	contentSvc  ContentService
	fileSvc     FileService
	deadlineSvc DeadlineService
	logger      *zap.Logger
}

// NewDashboardService 创建 DashboardService 实例
func NewDashboardService(contentSvc ContentService, fileSvc FileService, deadlineSvc DeadlineService, logger *zap.Logger) DashboardService {
	return &dashboardService{
		contentSvc:  contentSvc,
		fileSvc:     fileSvc,
		deadlineSvc: deadlineSvc,
		logger:      logger,
	}
}

// Summary 同一 now 快照下汇总学期、最近内容、最近文件、分类统计与截止提醒
func (s *dashboardService) Summary(ctx context.Context, now time.Time) (*dto.DashboardResponse, error) {
	contents, err := s.contentSvc.Recent(ctx, RecentContentLimit, now)
	if err != nil {
		return nil, err
	}

	files, err := s.fileSvc.ListGrouped(ctx, RecentFileLimit, now)
	if err != nil {
		return nil, err
	}

	stats, err := s.fileSvc.CategoryStats(ctx)
	if err != nil {
		return nil, err
	}

	deadlines, err := s.deadlineSvc.Upcoming(ctx, now)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardResponse{
		Semester:          *buildSemesterResponse(now),
		RecentContents:    contents,
		RecentFiles:       files,
		CategoryStats:     stats,
		UpcomingDeadlines: deadlines,
		GeneratedAt:       now.Format(time.RFC3339),
	}, nil
}
