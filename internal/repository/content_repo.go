package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ketr501215/Ray-Cloud-Web/internal/model"
)

// ContentFilter 内容列表筛选条件
type ContentFilter struct {
	Type            string
	Status          string
	Semester        string
	IncludeArchived bool
	Offset          int
	Limit           int
}

// ContentRepository 内容数据访问接口
type ContentRepository interface {
	Create(ctx context.Context, content *model.Content) error
	CreateBatch(ctx context.Context, contents []model.Content) error
	GetByID(ctx context.Context, id int64) (*model.Content, error)
	List(ctx context.Context, filter ContentFilter) ([]model.Content, int64, error)
	Recent(ctx context.Context, limit int) ([]model.Content, error)
	Update(ctx context.Context, content *model.Content) error
	Delete(ctx context.Context, id int64) (int64, error)
}

type contentRepo struct {
	db *gorm.DB
}

// NewContentRepo 创建 ContentRepository 实例
func NewContentRepo(db *gorm.DB) ContentRepository {
	return &contentRepo{db: db}
}

func (r *contentRepo) Create(ctx context.Context, content *model.Content) error {
	return r.db.WithContext(ctx).Create(content).Error
}

// CreateBatch 批量写入；需要原子性时在 WithTx 返回的仓储上调用
func (r *contentRepo) CreateBatch(ctx context.Context, contents []model.Content) error {
	if len(contents) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&contents, 100).Error
}

func (r *contentRepo) GetByID(ctx context.Context, id int64) (*model.Content, error) {
	var content model.Content
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&content).Error
	if err != nil {
		return nil, err
	}
	return &content, nil
}

func (r *contentRepo) List(ctx context.Context, filter ContentFilter) ([]model.Content, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Content{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	} else if !filter.IncludeArchived {
		query = query.Where("status <> ?", model.ContentStatusArchived)
	}
	if filter.Semester != "" {
		query = query.Where("semester = ?", filter.Semester)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contents []model.Content
	q := query.Order("updated_at DESC").Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&contents).Error; err != nil {
		return nil, 0, err
	}
	return contents, total, nil
}

func (r *contentRepo) Recent(ctx context.Context, limit int) ([]model.Content, error) {
	var contents []model.Content
	err := r.db.WithContext(ctx).
		Where("status <> ?", model.ContentStatusArchived).
		Order("updated_at DESC").
		Limit(limit).
		Find(&contents).Error
	return contents, err
}

func (r *contentRepo) Update(ctx context.Context, content *model.Content) error {
	content.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(content).Error
}

func (r *contentRepo) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Content{})
	return result.RowsAffected, result.Error
}
