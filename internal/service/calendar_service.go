package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/ketr501215/Ray-Cloud-Web/pkg/semester"
)

const calendarProductID = "-//Ray Cloud//Deadlines//ZH"

// CalendarService 截止日期日历订阅（iCalendar）
type CalendarService interface {
	DeadlineFeed(ctx context.Context, now time.Time) (string, error)
}

type calendarService struct {
	deadlineSvc DeadlineService
	logger      *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(deadlineSvc DeadlineService, logger *zap.Logger) CalendarService {
	return &calendarService{deadlineSvc: deadlineSvc, logger: logger}
}

// DeadlineFeed 每个即将截止的项目一个全天事件，另加当前学期结束日
func (s *calendarService) DeadlineFeed(ctx context.Context, now time.Time) (string, error) {
	items, err := s.deadlineSvc.Upcoming(ctx, now)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName("Ray Cloud 截止日期")
	cal.SetXWRTimezone(semester.Location().String())

	for _, item := range items {
		day, err := semester.ParseDate(item.Deadline)
		if err != nil {
			s.logger.Warn("跳过无法解析的截止日期",
				zap.String("source_type", item.SourceType),
				zap.Int64("id", item.ID),
				zap.String("deadline", item.Deadline),
			)
			continue
		}

		event := cal.AddEvent(fmt.Sprintf("%s-%d@ray-cloud", item.SourceType, item.ID))
		event.SetDtStampTime(now)
		event.SetSummary(item.Title)
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		if item.Category != "" {
			event.AddProperty(ics.ComponentPropertyCategories, item.Category)
		}
		event.SetDescription(deadlineDescription(item.DaysUntil))
	}

	id := semester.Current(now)
	if r, ok := semester.DateRange(id.String()); ok {
		event := cal.AddEvent(fmt.Sprintf("semester-end-%s@ray-cloud", id))
		event.SetDtStampTime(now)
		event.SetSummary(fmt.Sprintf("%s 學期結束", semesterLabel(id)))
		event.SetAllDayStartAt(r.End)
		event.SetAllDayEndAt(r.End.AddDate(0, 0, 1))
	}

	return cal.Serialize(), nil
}

func deadlineDescription(daysUntil int) string {
	switch {
	case daysUntil < 0:
		return fmt.Sprintf("已逾期 %d 天", -daysUntil)
	case daysUntil == 0:
		return "今天截止"
	default:
		return fmt.Sprintf("%d 天後截止", daysUntil)
	}
}
