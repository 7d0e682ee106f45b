package service

import (
	"context"
	"strings"
	"testing"

	"github.com/ketr501215/Ray-Cloud-Web/pkg/semester"
)

func TestCalendarService_DeadlineFeed(t *testing.T) {
	env := newTestEnv()
	seedDeadlines(env)
	svc := NewCalendarService(NewDeadlineService(env.repo, env.logger), env.logger)

	feed, err := svc.DeadlineFeed(context.Background(), semester.MustParseDate("2026-03-15T12:00:00"))
	if err != nil {
		t.Fatalf("DeadlineFeed 应成功: %v", err)
	}

	if !strings.HasPrefix(feed, "BEGIN:VCALENDAR") {
		t.Errorf("应以 BEGIN:VCALENDAR 开头")
	}
	// 3 个截止提醒 + 1 个学期结束
	if n := strings.Count(feed, "BEGIN:VEVENT"); n != 4 {
		t.Errorf("期望 4 个事件，实际=%d", n)
	}
	for _, want := range []string{
		"UID:content-1@ray-cloud",
		"UID:semester-end-1142@ray-cloud",
		"DTSTART;VALUE=DATE:20260316",
		"DTSTART;VALUE=DATE:20260731",
		"DTEND;VALUE=DATE:20260801",
		"SUMMARY:明天",
	} {
		if !strings.Contains(feed, want) {
			t.Errorf("日历缺少 %q", want)
		}
	}
}

func TestDeadlineDescription(t *testing.T) {
	tests := map[int]string{-2: "已逾期 2 天", 0: "今天截止", 3: "3 天後截止"}
	for days, want := range tests {
		if got := deadlineDescription(days); got != want {
			t.Errorf("%d 期望 %s，实际 %s", days, want, got)
		}
	}
}
