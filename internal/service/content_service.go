package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ketr501215/Ray-Cloud-Web/internal/dto"
	"github.com/ketr501215/Ray-Cloud-Web/internal/model"
	"github.com/ketr501215/Ray-Cloud-Web/internal/repository"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/semester"
)

// ── 内容模块业务错误 ──

var (
	ErrContentNotFound        = errors.New("内容不存在")
	ErrContentInvalid         = errors.New("内容参数无效")
	ErrContentDeadlineInvalid = errors.New("截止日期格式无效")
	ErrContentSemesterInvalid = errors.New("学期编号无效")
)

// RecentContentLimit 首页最近内容条数
const RecentContentLimit = 6

// ContentService 内容追踪业务接口
type ContentService interface {
	Create(ctx context.Context, req *dto.CreateContentRequest, now time.Time) (*dto.ContentResponse, error)
	Get(ctx context.Context, id int64, now time.Time) (*dto.ContentResponse, error)
	List(ctx context.Context, req *dto.ListContentRequest, now time.Time) ([]dto.ContentResponse, int64, error)
	Recent(ctx context.Context, limit int, now time.Time) ([]dto.ContentResponse, error)
	UpdateProgress(ctx context.Context, id int64, req *dto.UpdateProgressRequest, now time.Time) (*dto.ContentResponse, error)
	UpdateDeadline(ctx context.Context, id int64, deadline *string, now time.Time) (*dto.ContentResponse, error)
	Delete(ctx context.Context, id int64) error
}

type contentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewContentService 创建 ContentService 实例
func NewContentService(repo *repository.Repository, logger *zap.Logger) ContentService {
	return &contentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *contentService) Create(ctx context.Context, req *dto.CreateContentRequest, now time.Time) (*dto.ContentResponse, error) {
	title := strings.TrimSpace(req.Title)
	typ := strings.TrimSpace(req.Type)
	if title == "" || typ == "" {
		return nil, ErrContentInvalid
	}

	status := req.Status
	if status == "" {
		status = model.ContentStatusDraft
	}
	if !model.IsValidContentStatus(status) {
		return nil, ErrContentInvalid
	}

	progress := 0
	if req.Progress != nil {
		if *req.Progress < 0 || *req.Progress > 100 {
			return nil, ErrContentInvalid
		}
		progress = *req.Progress
	}

	sem := semester.Current(now).String()
	if req.Semester != nil && strings.TrimSpace(*req.Semester) != "" {
		id, err := semester.Parse(strings.TrimSpace(*req.Semester))
		if err != nil {
			return nil, ErrContentSemesterInvalid
		}
		sem = id.String()
	}

	var deadline *time.Time
	if req.Deadline != nil {
		d, err := semester.ParseOptionalDate(*req.Deadline)
		if err != nil {
			return nil, ErrContentDeadlineInvalid
		}
		deadline = d
	}

	content := &model.Content{
		Title:       title,
		Type:        typ,
		Description: req.Description,
		Content:     req.Content,
		Status:      status,
		Progress:    progress,
		Tracked:     model.Tracked{Semester: &sem, Deadline: deadline},
		BaseModel:   model.BaseModel{CreatedAt: now, UpdatedAt: now},
	}

	if err := s.repo.Content.Create(ctx, content); err != nil {
		s.logger.Error("创建内容失败", zap.Error(err))
		return nil, err
	}

	return toContentResponse(content, now), nil
}

// ────────────────────── Get / List ──────────────────────

func (s *contentService) Get(ctx context.Context, id int64, now time.Time) (*dto.ContentResponse, error) {
	content, err := s.getContent(ctx, id)
	if err != nil {
		return nil, err
	}
	return toContentResponse(content, now), nil
}

func (s *contentService) List(ctx context.Context, req *dto.ListContentRequest, now time.Time) ([]dto.ContentResponse, int64, error) {
	contents, total, err := s.repo.Content.List(ctx, repository.ContentFilter{
		Type:            req.Type,
		Status:          req.Status,
		Semester:        req.Semester,
		IncludeArchived: req.IncludeArchived,
		Offset:          req.GetOffset(),
		Limit:           req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("列出内容失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ContentResponse, 0, len(contents))
	for i := range contents {
		result = append(result, *toContentResponse(&contents[i], now))
	}
	return result, total, nil
}

func (s *contentService) Recent(ctx context.Context, limit int, now time.Time) ([]dto.ContentResponse, error) {
	if limit <= 0 {
		limit = RecentContentLimit
	}
	contents, err := s.repo.Content.Recent(ctx, limit)
	if err != nil {
		s.logger.Error("查询最近内容失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ContentResponse, 0, len(contents))
	for i := range contents {
		result = append(result, *toContentResponse(&contents[i], now))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *contentService) UpdateProgress(ctx context.Context, id int64, req *dto.UpdateProgressRequest, now time.Time) (*dto.ContentResponse, error) {
	if req.Progress == nil || *req.Progress < 0 || *req.Progress > 100 {
		return nil, ErrContentInvalid
	}
	if req.Status != nil && !model.IsValidContentStatus(*req.Status) {
		return nil, ErrContentInvalid
	}

	content, err := s.getContent(ctx, id)
	if err != nil {
		return nil, err
	}

	content.Progress = *req.Progress
	if req.Status != nil {
		content.Status = *req.Status
	}

	if err := s.repo.Content.Update(ctx, content); err != nil {
		s.logger.Error("更新内容进度失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return toContentResponse(content, now), nil
}

func (s *contentService) UpdateDeadline(ctx context.Context, id int64, deadline *string, now time.Time) (*dto.ContentResponse, error) {
	var parsed *time.Time
	if deadline != nil {
		d, err := semester.ParseOptionalDate(*deadline)
		if err != nil {
			return nil, ErrContentDeadlineInvalid
		}
		parsed = d
	}

	content, err := s.getContent(ctx, id)
	if err != nil {
		return nil, err
	}

	content.Deadline = parsed
	if err := s.repo.Content.Update(ctx, content); err != nil {
		s.logger.Error("更新内容截止日期失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return toContentResponse(content, now), nil
}

// ────────────────────── Delete ──────────────────────

func (s *contentService) Delete(ctx context.Context, id int64) error {
	rows, err := s.repo.Content.Delete(ctx, id)
	if err != nil {
		s.logger.Error("删除内容失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	if rows == 0 {
		return ErrContentNotFound
	}
	return nil
}

func (s *contentService) getContent(ctx context.Context, id int64) (*model.Content, error) {
	content, err := s.repo.Content.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		s.logger.Error("查询内容失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return content, nil
}

// ── 转换 ──

func toContentResponse(c *model.Content, now time.Time) *dto.ContentResponse {
	return &dto.ContentResponse{
		ID:          c.ID,
		Title:       c.Title,
		Type:        c.Type,
		Description: c.Description,
		Content:     c.Content,
		Status:      c.Status,
		Progress:    c.Progress,
		Semester:    derefString(c.Semester),
		Deadline:    formatOptionalDate(c.Deadline),
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
		UpdatedAgo:  humanize.RelTime(c.UpdatedAt, now, "ago", "from now"),
	}
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return semester.FormatDate(*t)
}
