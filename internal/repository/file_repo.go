package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ketr501215/Ray-Cloud-Web/internal/model"
)

// FileRepository 文件数据访问接口
type FileRepository interface {
	CreateBatch(ctx context.Context, files []model.File) error
	GetByID(ctx context.Context, id int64) (*model.File, error)
	ListAll(ctx context.Context) ([]model.File, error)
	ListByCategory(ctx context.Context, category string) ([]model.File, error)
	CategoryStats(ctx context.Context) ([]model.CategoryStat, error)
	UpdateCategory(ctx context.Context, id int64, category string) (int64, error)
	UpdateDeadline(ctx context.Context, id int64, deadline *time.Time) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type fileRepo struct {
	db *gorm.DB
}

// NewFileRepo 创建 FileRepository 实例
func NewFileRepo(db *gorm.DB) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) CreateBatch(ctx context.Context, files []model.File) error {
	if len(files) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&files, 100).Error
}

func (r *fileRepo) GetByID(ctx context.Context, id int64) (*model.File, error) {
	var file model.File
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&file).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// ListAll 按上传时间倒序返回全部文件（文件夹聚合在 Service 层完成）
func (r *fileRepo) ListAll(ctx context.Context) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&files).Error
	return files, err
}

func (r *fileRepo) ListByCategory(ctx context.Context, category string) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

func (r *fileRepo) CategoryStats(ctx context.Context) ([]model.CategoryStat, error) {
	var stats []model.CategoryStat
	err := r.db.WithContext(ctx).
		Model(&model.File{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC").
		Scan(&stats).Error
	return stats, err
}

func (r *fileRepo) UpdateCategory(ctx context.Context, id int64, category string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.File{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"category":   category,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *fileRepo) UpdateDeadline(ctx context.Context, id int64, deadline *time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.File{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deadline":   model.UTCPtr(deadline),
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *fileRepo) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.File{})
	return result.RowsAffected, result.Error
}
