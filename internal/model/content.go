package model

// 内容状态
const (
	ContentStatusDraft     = "draft"
	ContentStatusActive    = "active"
	ContentStatusCompleted = "completed"
	ContentStatusArchived  = "archived"
)

// Content 追踪项（项目 / 教程 / 笔记），对应 content 表
type Content struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"                      json:"id"`
	Title       string `gorm:"type:varchar(255);not null"                    json:"title"`
	Type        string `gorm:"type:varchar(100);not null;index"              json:"type"`
	Description string `gorm:"type:text;not null;default:''"                 json:"description"`
	Content     string `gorm:"type:text;not null;default:''"                 json:"content"`
	Status      string `gorm:"type:varchar(20);not null;default:'draft'"     json:"status"`
	Progress    int    `gorm:"not null;default:0"                            json:"progress"`
	Tracked
	BaseModel
}

// TableName 指定表名
func (Content) TableName() string { return "content" }

// IsValidContentStatus 状态是否合法
func IsValidContentStatus(s string) bool {
	switch s {
	case ContentStatusDraft, ContentStatusActive, ContentStatusCompleted, ContentStatusArchived:
		return true
	}
	return false
}
