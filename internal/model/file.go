package model

import "time"

// UncategorizedCategory 未分类文件的默认分类
const UncategorizedCategory = "未分類"

// File 已上传文件，对应 files 表
type File struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"                         json:"id"`
	Filename     string  `gorm:"type:varchar(512);not null;uniqueIndex"           json:"filename"`
	OriginalName string  `gorm:"type:varchar(512);not null"                       json:"original_name"`
	MimeType     string  `gorm:"type:varchar(255);not null"                       json:"mime_type"`
	Size         int64   `gorm:"not null;default:0"                               json:"size"`
	URL          string  `gorm:"type:text;not null"                               json:"url"`
	Category     string  `gorm:"type:varchar(100);not null;default:'未分類';index"   json:"category"`
	Description  string  `gorm:"type:text;not null;default:''"                    json:"description"`
	FolderName   *string `gorm:"type:varchar(255);index"                          json:"folder_name,omitempty"`
	Tracked
	BaseModel
}

// TableName 指定表名
func (File) TableName() string { return "files" }

// FileBundle 按文件夹聚合后的文件（无文件夹的单文件自成一组）
type FileBundle struct {
	ID           int64     `json:"id"`
	OriginalName string    `json:"original_name"`
	URL          string    `json:"url"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	FolderName   *string   `json:"folder_name"`
	FileCount    int64     `json:"file_count"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}

// CategoryStat 分类文件数统计
type CategoryStat struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}
