package model

import "time"

// 截止日期来源
const (
	SourceFile    = "file"
	SourceContent = "content"
)

// DeadlineRecord 带截止日期的文件或内容（只读投影）
type DeadlineRecord struct {
	SourceType string    `json:"source_type"`
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Semester   *string   `json:"semester,omitempty"`
	Deadline   time.Time `json:"deadline"`
}
