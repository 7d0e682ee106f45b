// Package semester 台湾学年度学期换算引擎
//
// 学期编号格式为 "<民国学年><学期>"，例如 "1142"：
//   - 上学期（1）：8 月 1 日 ~ 次年 1 月 31 日，学年 = 西元年 - 1911
//   - 下学期（2）：2 月 1 日 ~ 7 月 31 日，学年 = 西元年 - 1912
//
// 包内函数均为纯函数：不持有状态、不做 I/O，可被任意并发请求直接调用。
// "现在" 一律由调用方传入；带 Now 后缀的便捷函数每次调用都重新读取系统时钟。
package semester

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

var (
	// ErrInvalidSemester 学期编号格式无效
	ErrInvalidSemester = errors.New("学期编号格式无效")
	// ErrInvalidDate 日期无法解析（调用方参数错误）
	ErrInvalidDate = errors.New("日期格式无效")
)

const (
	// FirstHalf 上学期（8 月 ~ 次年 1 月）
	FirstHalf = 1
	// SecondHalf 下学期（2 月 ~ 7 月）
	SecondHalf = 2

	// UrgentHorizonDays 紧急截止的天数上限（含）
	UrgentHorizonDays = 3
	// OverdueLookbackDays 查询层保留的逾期天数
	OverdueLookbackDays = 7

	// DateLayout 对外交换的日期格式
	DateLayout = "2006-01-02"

	minIDLength = 4
	maxIDLength = 7 // 学年最多 6 位
	dayMillis   = int64(24 * time.Hour / time.Millisecond)
	yearOffset1 = 1911
	yearOffset2 = 1912
)

// ID 学期编号，如 "1142"
type ID string

// NewID 由民国学年与学期组装编号
func NewID(year, half int) ID {
	return ID(strconv.Itoa(year) + strconv.Itoa(half))
}

// Parse 校验并解析学期编号
func Parse(s string) (ID, error) {
	if _, _, ok := split(s); !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidSemester, s)
	}
	return ID(s), nil
}

// split 拆出学年与学期；格式不符时 ok=false
func split(s string) (year, half int, ok bool) {
	if len(s) < minIDLength || len(s) > maxIDLength {
		return 0, 0, false
	}
	prefix := s[:len(s)-1]
	for _, r := range prefix {
		if r < '0' || r > '9' {
			return 0, 0, false
		}
	}
	year, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, 0, false
	}
	switch s[len(s)-1] {
	case '1':
		half = FirstHalf
	case '2':
		half = SecondHalf
	default:
		return 0, 0, false
	}
	return year, half, true
}

// Year 民国学年；编号无效时返回 0
func (id ID) Year() int {
	y, _, _ := split(string(id))
	return y
}

// Half 学期（1 或 2）；编号无效时返回 0
func (id ID) Half() int {
	_, h, _ := split(string(id))
	return h
}

// Valid 编号是否可解析
func (id ID) Valid() bool {
	_, _, ok := split(string(id))
	return ok
}

func (id ID) String() string { return string(id) }

// Compare 按 (学年, 学期) 数值比较，返回 -1 / 0 / 1
func (id ID) Compare(other ID) int {
	y1, h1, _ := split(string(id))
	y2, h2, _ := split(string(other))
	switch {
	case y1 < y2:
		return -1
	case y1 > y2:
		return 1
	case h1 < h2:
		return -1
	case h1 > h2:
		return 1
	}
	return 0
}

// Next 紧随其后的学期
func (id ID) Next() ID {
	y, h, _ := split(string(id))
	if h == FirstHalf {
		return NewID(y, SecondHalf)
	}
	return NewID(y+1, FirstHalf)
}

// Prev 紧邻的上一个学期
func (id ID) Prev() ID {
	y, h, _ := split(string(id))
	if h == SecondHalf {
		return NewID(y, FirstHalf)
	}
	return NewID(y-1, SecondHalf)
}

// Range 学期起止日期（含首尾，精度为天）
type Range struct {
	Start time.Time
	End   time.Time
}

// StartString 起始日期 YYYY-MM-DD
func (r Range) StartString() string { return r.Start.Format(DateLayout) }

// EndString 结束日期 YYYY-MM-DD
func (r Range) EndString() string { return r.End.Format(DateLayout) }

// Contains t 所在日期是否落在区间内
func (r Range) Contains(t time.Time) bool {
	d := truncateDay(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days 区间包含的天数
func (r Range) Days() int {
	n := 0
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// Current 返回 date 所属的学期编号
//
// 1 月份归属上一年 8 月开始的学年。
func Current(date time.Time) ID {
	d := date.In(Location())
	year := d.Year()
	month := int(d.Month())

	if month >= 2 && month <= 7 {
		return NewID(year-yearOffset2, SecondHalf)
	}
	if month == 1 {
		year--
	}
	return NewID(year-yearOffset1, FirstHalf)
}

// CurrentNow 以当前系统时间计算学期编号
func CurrentNow() ID {
	return Current(time.Now())
}

// CurrentString 解析日期字符串后计算学期编号
func CurrentString(s string) (ID, error) {
	d, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return Current(d), nil
}

// DateRange 返回学期起止日期；编号无法解析时 ok=false
func DateRange(id string) (Range, bool) {
	year, half, ok := split(id)
	if !ok {
		return Range{}, false
	}
	loc := Location()
	if half == FirstHalf {
		return Range{
			Start: time.Date(year+yearOffset1, time.August, 1, 0, 0, 0, 0, loc),
			End:   time.Date(year+yearOffset2, time.January, 31, 0, 0, 0, 0, loc),
		}, true
	}
	return Range{
		Start: time.Date(year+yearOffset2, time.February, 1, 0, 0, 0, 0, loc),
		End:   time.Date(year+yearOffset2, time.July, 31, 0, 0, 0, 0, loc),
	}, true
}

// Progress 学期进度百分比（0~100）
func Progress(date time.Time) int {
	r, ok := DateRange(string(Current(date)))
	if !ok {
		return 0
	}

	current := date.UnixMilli()
	start := r.Start.UnixMilli()
	end := r.End.UnixMilli()

	if current <= start {
		return 0
	}
	if current >= end {
		return 100
	}
	return int(math.Round(float64(current-start) / float64(end-start) * 100))
}

// ProgressNow 当前时间的学期进度
func ProgressNow() int {
	return Progress(time.Now())
}

// Week 学期第几周（从 1 开始）；学期无法解析时返回 0
func Week(date time.Time) int {
	r, ok := DateRange(string(Current(date)))
	if !ok {
		return 0
	}

	current := date.UnixMilli()
	start := r.Start.UnixMilli()
	if current <= start {
		return 1
	}

	diffDays := (current - start) / dayMillis
	return int(diffDays/7) + 1
}

// WeekNow 当前时间的学期周次
func WeekNow() int {
	return Week(time.Now())
}

// Deadline 截止日期分类结果
type Deadline struct {
	DaysUntil int  `json:"days_until"`
	IsUrgent  bool `json:"is_urgent"`
	IsOverdue bool `json:"is_overdue"`
}

// Classify 计算距截止日的天数并判定紧急 / 逾期
//
// 调用方展示时只保留 DaysUntil <= UrgentHorizonDays 的记录（含逾期），
// 查询层另外过滤掉早于 now - OverdueLookbackDays 的截止日期。
func Classify(deadline, now time.Time) Deadline {
	diff := deadline.UnixMilli() - now.UnixMilli()
	days := int(math.Ceil(float64(diff) / float64(dayMillis)))
	return Deadline{
		DaysUntil: days,
		IsUrgent:  days >= 0 && days <= UrgentHorizonDays,
		IsOverdue: days < 0,
	}
}

// ClassifyString 解析两个日期字符串后分类
func ClassifyString(deadline, now string) (Deadline, error) {
	d, err := ParseDate(deadline)
	if err != nil {
		return Deadline{}, err
	}
	n, err := ParseDate(now)
	if err != nil {
		return Deadline{}, err
	}
	return Classify(d, n), nil
}

// Visible 是否属于"即将截止"展示窗口
func (d Deadline) Visible() bool {
	return d.DaysUntil <= UrgentHorizonDays
}

// LookbackCutoff 查询层截止日期下限
func LookbackCutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -OverdueLookbackDays)
}

func truncateDay(t time.Time) time.Time {
	t = t.In(Location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
