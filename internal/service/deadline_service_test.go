package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ketr501215/Ray-Cloud-Web/internal/model"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/semester"
)

func setupTestDeadlineService() (DeadlineService, *testEnv) {
	env := newTestEnv()
	return NewDeadlineService(env.repo, env.logger), env
}

func trackedBy(date string) model.Tracked {
	return model.Tracked{Deadline: timePtr(semester.MustParseDate(date))}
}

// seedDeadlines 以 2026-03-15 12:00 为基准准备截止日期数据
func seedDeadlines(env *testEnv) {
	ctx := context.Background()
	env.contents.Create(ctx, &model.Content{Title: "明天", Type: "Project", Status: model.ContentStatusActive, Tracked: trackedBy("2026-03-16")})
	env.files.add(model.File{Filename: "f1", OriginalName: "三天後.pdf", Category: "Project", Tracked: trackedBy("2026-03-18")})
	env.contents.Create(ctx, &model.Content{Title: "五天後", Type: "Project", Status: model.ContentStatusActive, Tracked: trackedBy("2026-03-20")})
	env.files.add(model.File{Filename: "f2", OriginalName: "逾期.pdf", Category: "Note", Tracked: trackedBy("2026-03-10")})
	env.contents.Create(ctx, &model.Content{Title: "太久以前", Type: "Project", Status: model.ContentStatusActive, Tracked: trackedBy("2026-03-05")})
	env.contents.Create(ctx, &model.Content{Title: "已歸檔", Type: "Project", Status: model.ContentStatusArchived, Tracked: trackedBy("2026-03-16")})
}

// ── Upcoming 测试 ──

func TestDeadlineService_Upcoming(t *testing.T) {
	svc, env := setupTestDeadlineService()
	seedDeadlines(env)
	now := semester.MustParseDate("2026-03-15T12:00:00")

	items, err := svc.Upcoming(context.Background(), now)
	if err != nil {
		t.Fatalf("Upcoming 应成功: %v", err)
	}

	want := []struct {
		title   string
		source  string
		days    int
		urgent  bool
		overdue bool
	}{
		{"逾期.pdf", model.SourceFile, -5, false, true},
		{"明天", model.SourceContent, 1, true, false},
		{"三天後.pdf", model.SourceFile, 3, true, false},
	}
	if len(items) != len(want) {
		t.Fatalf("期望 %d 条，实际=%d: %+v", len(want), len(items), items)
	}
	for i, w := range want {
		got := items[i]
		if got.Title != w.title || got.SourceType != w.source {
			t.Errorf("第 %d 条期望 %s/%s，实际 %s/%s", i, w.title, w.source, got.Title, got.SourceType)
		}
		if got.DaysUntil != w.days || got.IsUrgent != w.urgent || got.IsOverdue != w.overdue {
			t.Errorf("%s 期望 days=%d urgent=%v overdue=%v，实际 %d/%v/%v",
				w.title, w.days, w.urgent, w.overdue, got.DaysUntil, got.IsUrgent, got.IsOverdue)
		}
	}
}

func TestDeadlineService_Upcoming_Empty(t *testing.T) {
	svc, _ := setupTestDeadlineService()

	items, err := svc.Upcoming(context.Background(), semester.MustParseDate("2026-03-15"))
	if err != nil {
		t.Fatalf("Upcoming 应成功: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("期望空列表，实际=%d", len(items))
	}
}

// ── SemesterEndSuggestion 测试 ──

func TestDeadlineService_SemesterEndSuggestion(t *testing.T) {
	svc, _ := setupTestDeadlineService()

	tests := []struct {
		now      string
		semester string
		deadline string
	}{
		{"2026-03-15", "1142", "2026-07-31"},
		{"2026-10-01", "1151", "2027-01-31"},
		{"2027-01-15", "1151", "2027-01-31"},
	}
	for _, tt := range tests {
		got := svc.SemesterEndSuggestion(semester.MustParseDate(tt.now))
		if got.Semester != tt.semester || got.Deadline != tt.deadline {
			t.Errorf("%s: 期望 %s/%s，实际 %s/%s", tt.now, tt.semester, tt.deadline, got.Semester, got.Deadline)
		}
	}
}

// ── Set 测试 ──

func TestDeadlineService_Set(t *testing.T) {
	svc, env := setupTestDeadlineService()
	ctx := context.Background()
	f := env.files.add(model.File{Filename: "a"})
	c := model.Content{Title: "b", Type: "Project"}
	env.contents.Create(ctx, &c)

	if err := svc.Set(ctx, model.SourceFile, f.ID, strPtr("2026-07-31")); err != nil {
		t.Fatalf("设置文件截止日期应成功: %v", err)
	}
	if env.files.files[f.ID].Deadline == nil {
		t.Error("文件截止日期未写入")
	}

	if err := svc.Set(ctx, model.SourceContent, c.ID, strPtr("2026-07-31")); err != nil {
		t.Fatalf("设置内容截止日期应成功: %v", err)
	}
	if got := semester.FormatDate(*env.contents.contents[c.ID].Deadline); got != "2026-07-31" {
		t.Errorf("期望 2026-07-31，实际=%s", got)
	}

	if err := svc.Set(ctx, model.SourceContent, c.ID, nil); err != nil {
		t.Fatalf("清除内容截止日期应成功: %v", err)
	}
	if env.contents.contents[c.ID].Deadline != nil {
		t.Error("内容截止日期应被清除")
	}
}

func TestDeadlineService_Set_Errors(t *testing.T) {
	svc, _ := setupTestDeadlineService()
	ctx := context.Background()

	tests := []struct {
		name   string
		source string
		id     int64
		date   *string
		want   error
	}{
		{"未知来源", "folder", 1, nil, ErrDeadlineSourceInvalid},
		{"文件不存在", model.SourceFile, 99, strPtr("2026-01-01"), ErrDeadlineTargetNotFound},
		{"内容不存在", model.SourceContent, 99, strPtr("2026-01-01"), ErrDeadlineTargetNotFound},
		{"日期无效", model.SourceFile, 1, strPtr("2026/13/01"), ErrDeadlineInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Set(ctx, tt.source, tt.id, tt.date); !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
}
