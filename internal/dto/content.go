package dto

// ── 内容模块 DTO ──

// CreateContentRequest 创建内容请求
type CreateContentRequest struct {
	Title       string  `json:"title"       binding:"required,min=1,max=255"`
	Type        string  `json:"type"        binding:"required,min=1,max=100"`
	Description string  `json:"description"`
	Content     string  `json:"content"`
	Status      string  `json:"status"      binding:"omitempty,oneof=draft active completed archived"`
	Progress    *int    `json:"progress"    binding:"omitempty,min=0,max=100"`
	Semester    *string `json:"semester"    binding:"omitempty,max=10"` // 缺省时按创建时间推算
	Deadline    *string `json:"deadline"`                               // "2026-05-01"
}

// ListContentRequest 内容列表查询参数
type ListContentRequest struct {
	PaginationRequest
	Type            string `form:"type"`
	Status          string `form:"status"           binding:"omitempty,oneof=draft active completed archived"`
	Semester        string `form:"semester"`
	IncludeArchived bool   `form:"include_archived"`
}

// UpdateProgressRequest 更新进度请求
type UpdateProgressRequest struct {
	Progress *int    `json:"progress" binding:"required,min=0,max=100"`
	Status   *string `json:"status"   binding:"omitempty,oneof=draft active completed archived"`
}

// UpdateDeadlineRequest 设置截止日期；deadline 为空或缺省表示清除
type UpdateDeadlineRequest struct {
	Deadline *string `json:"deadline"`
}

// ContentResponse 内容信息响应
type ContentResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	Semester    string `json:"semester,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	UpdatedAgo  string `json:"updated_ago"` // "3 days ago"
}
