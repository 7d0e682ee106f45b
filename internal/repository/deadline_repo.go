package repository

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/ketr501215/Ray-Cloud-Web/internal/model"
)

// DeadlineRepository 截止日期查询接口（文件 + 内容）
type DeadlineRepository interface {
	// ListSince 返回 deadline >= since 的全部记录，按截止日期升序
	ListSince(ctx context.Context, since time.Time) ([]model.DeadlineRecord, error)
}

type deadlineRepo struct {
	db *gorm.DB
}

// NewDeadlineRepo 创建 DeadlineRepository 实例
func NewDeadlineRepo(db *gorm.DB) DeadlineRepository {
	return &deadlineRepo{db: db}
}

func (r *deadlineRepo) ListSince(ctx context.Context, since time.Time) ([]model.DeadlineRecord, error) {
	since = since.UTC()

	var files []model.File
	if err := r.db.WithContext(ctx).
		Where("deadline IS NOT NULL AND deadline >= ?", since).
		Find(&files).Error; err != nil {
		return nil, err
	}

	var contents []model.Content
	if err := r.db.WithContext(ctx).
		Where("deadline IS NOT NULL AND deadline >= ?", since).
		Where("status <> ?", model.ContentStatusArchived).
		Find(&contents).Error; err != nil {
		return nil, err
	}

	records := make([]model.DeadlineRecord, 0, len(files)+len(contents))
	for _, f := range files {
		records = append(records, model.DeadlineRecord{
			SourceType: model.SourceFile,
			ID:         f.ID,
			Title:      f.OriginalName,
			Category:   f.Category,
			Semester:   f.Semester,
			Deadline:   *f.Deadline,
		})
	}
	for _, c := range contents {
		records = append(records, model.DeadlineRecord{
			SourceType: model.SourceContent,
			ID:         c.ID,
			Title:      c.Title,
			Category:   c.Type,
			Semester:   c.Semester,
			Deadline:   *c.Deadline,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Deadline.Before(records[j].Deadline)
	})
	return records, nil
}
