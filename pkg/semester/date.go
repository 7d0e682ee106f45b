package semester

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultTimezone 学期换算使用的默认时区
const DefaultTimezone = "Asia/Taipei"

var location atomic.Pointer[time.Location]

func init() {
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	location.Store(loc)
}

// Location 当前用于日期换算的时区
func Location() *time.Location {
	return location.Load()
}

// SetLocation 按时区名设置换算时区，应在启动阶段调用一次
func SetLocation(name string) error {
	if name == "" {
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("加载时区 %q 失败: %w", name, err)
	}
	location.Store(loc)
	return nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseDate 解析 ISO-8601 日期或日期时间
//
// 纯日期与不带时区的日期时间按 Location() 解释。
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: 空字符串", ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// MustParseDate 同 ParseDate，失败时 panic；仅用于常量与测试
func MustParseDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatDate 按 YYYY-MM-DD 输出（以 Location() 为准）
func FormatDate(t time.Time) string {
	return t.In(Location()).Format(DateLayout)
}

// ParseOptionalDate 空字符串表示清除日期，返回 nil
func ParseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
