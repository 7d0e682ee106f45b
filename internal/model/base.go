package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 通用时间戳字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"updated_at"`
}

// Tracked 带学期标记与截止日期的记录（内容与文件共用）
type Tracked struct {
	Semester *string    `gorm:"type:varchar(10);index" json:"semester,omitempty"`
	Deadline *time.Time `gorm:"index"                  json:"deadline,omitempty"`
}

// UTCPtr 返回 t 的 UTC 副本，nil 原样返回
//
// SQLite 以带偏移量的文本保存时间并按字符串比较，入库时间必须统一为 UTC。
func UTCPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func normalizeTimes(b *BaseModel, tr *Tracked) {
	if !b.CreatedAt.IsZero() {
		b.CreatedAt = b.CreatedAt.UTC()
	}
	if !b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.UpdatedAt.UTC()
	}
	tr.Deadline = UTCPtr(tr.Deadline)
}

// BeforeSave 写库前统一转为 UTC
func (c *Content) BeforeSave(*gorm.DB) error {
	normalizeTimes(&c.BaseModel, &c.Tracked)
	return nil
}

// BeforeSave 写库前统一转为 UTC
func (f *File) BeforeSave(*gorm.DB) error {
	normalizeTimes(&f.BaseModel, &f.Tracked)
	return nil
}
