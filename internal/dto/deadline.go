package dto

// ── 截止日期模块 DTO ──

// DeadlineItem 即将截止的文件或内容
type DeadlineItem struct {
	SourceType string `json:"source_type"` // file | content
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Semester   string `json:"semester,omitempty"`
	Deadline   string `json:"deadline"`
	DaysUntil  int    `json:"days_until"`
	IsUrgent   bool   `json:"is_urgent"`
	IsOverdue  bool   `json:"is_overdue"`
}

// SetDeadlineRequest 统一设置截止日期
type SetDeadlineRequest struct {
	SourceType string  `json:"source_type" binding:"required,oneof=file content"`
	ID         int64   `json:"id"          binding:"required,min=1"`
	Deadline   *string `json:"deadline"`
}

// DeadlineSuggestionResponse 学期末截止日期建议
type DeadlineSuggestionResponse struct {
	Semester string `json:"semester"`
	Deadline string `json:"deadline"`
}
