package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ketr501215/Ray-Cloud-Web/internal/dto"
	"github.com/ketr501215/Ray-Cloud-Web/internal/model"
	"github.com/ketr501215/Ray-Cloud-Web/internal/repository"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/semester"
)

// ── 截止日期模块业务错误 ──

var (
	ErrDeadlineSourceInvalid  = errors.New("截止日期来源类型无效")
	ErrDeadlineTargetNotFound = errors.New("截止日期目标不存在")
	ErrDeadlineInvalid        = errors.New("截止日期格式无效")
)

// DeadlineService 截止日期业务接口
type DeadlineService interface {
	Upcoming(ctx context.Context, now time.Time) ([]dto.DeadlineItem, error)
	SemesterEndSuggestion(now time.Time) *dto.DeadlineSuggestionResponse
	Set(ctx context.Context, sourceType string, id int64, deadline *string) error
}

type deadlineService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDeadlineService 创建 DeadlineService 实例
func NewDeadlineService(repo *repository.Repository, logger *zap.Logger) DeadlineService {
	return &deadlineService{repo: repo, logger: logger}
}

// Upcoming 即将截止与近期逾期的文件 / 内容
//
// 查询层只取 now-7 天之后的记录，展示层只保留 3 天内（含逾期）的记录。
func (s *deadlineService) Upcoming(ctx context.Context, now time.Time) ([]dto.DeadlineItem, error) {
	records, err := s.repo.Deadline.ListSince(ctx, semester.LookbackCutoff(now))
	if err != nil {
		s.logger.Error("查询截止日期失败", zap.Error(err))
		return nil, err
	}

	items := make([]dto.DeadlineItem, 0, len(records))
	for _, r := range records {
		d := semester.Classify(r.Deadline, now)
		if !d.Visible() {
			continue
		}
		items = append(items, dto.DeadlineItem{
			SourceType: r.SourceType,
			ID:         r.ID,
			Title:      r.Title,
			Category:   r.Category,
			Semester:   derefString(r.Semester),
			Deadline:   semester.FormatDate(r.Deadline),
			DaysUntil:  d.DaysUntil,
			IsUrgent:   d.IsUrgent,
			IsOverdue:  d.IsOverdue,
		})
	}
	return items, nil
}

// SemesterEndSuggestion 当前学期的最后一天
func (s *deadlineService) SemesterEndSuggestion(now time.Time) *dto.DeadlineSuggestionResponse {
	id := semester.Current(now)
	resp := &dto.DeadlineSuggestionResponse{Semester: id.String()}
	if r, ok := semester.DateRange(id.String()); ok {
		resp.Deadline = r.EndString()
	}
	return resp
}

// Set 按来源类型更新截止日期；deadline 为空表示清除
func (s *deadlineService) Set(ctx context.Context, sourceType string, id int64, deadline *string) error {
	var parsed *time.Time
	if deadline != nil {
		d, err := semester.ParseOptionalDate(*deadline)
		if err != nil {
			return ErrDeadlineInvalid
		}
		parsed = d
	}

	switch sourceType {
	case model.SourceFile:
		rows, err := s.repo.File.UpdateDeadline(ctx, id, parsed)
		if err != nil {
			s.logger.Error("更新文件截止日期失败", zap.Int64("id", id), zap.Error(err))
			return err
		}
		if rows == 0 {
			return ErrDeadlineTargetNotFound
		}
		return nil

	case model.SourceContent:
		content, err := s.repo.Content.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDeadlineTargetNotFound
			}
			s.logger.Error("查询内容失败", zap.Int64("id", id), zap.Error(err))
			return err
		}
		content.Deadline = parsed
		if err := s.repo.Content.Update(ctx, content); err != nil {
			s.logger.Error("更新内容截止日期失败", zap.Int64("id", id), zap.Error(err))
			return err
		}
		return nil

	default:
		return ErrDeadlineSourceInvalid
	}
}
