package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ketr501215/Ray-Cloud-Web/pkg/semester"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSemesterCurrent(t *testing.T) {
	out, err := runCmd(t, "semester", "current", "--date", "2026-03-15")
	if err != nil {
		t.Fatalf("命令执行失败: %v", err)
	}
	if !strings.Contains(out, "1142") || !strings.Contains(out, "2026-02-01 ~ 2026-07-31") {
		t.Errorf("输出不符合预期: %q", out)
	}
}

func TestSemesterCurrent_BadDate(t *testing.T) {
	if _, err := runCmd(t, "semester", "current", "--date", "2026/13/40"); err == nil {
		t.Error("无效日期应返回错误")
	}
}

func TestSemesterRange_JSON(t *testing.T) {
	out, err := runCmd(t, "semester", "range", "1141", "--json")
	if err != nil {
		t.Fatalf("命令执行失败: %v", err)
	}
	var got struct {
		ID        string `json:"id"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("输出不是合法 JSON: %v, out=%q", err, out)
	}
	if got.StartDate != "2025-08-01" || got.EndDate != "2026-01-31" {
		t.Errorf("期望 2025-08-01 ~ 2026-01-31，实际=%s ~ %s", got.StartDate, got.EndDate)
	}
}

func TestSemesterRange_Invalid(t *testing.T) {
	if _, err := runCmd(t, "semester", "range", "1143"); err == nil {
		t.Error("非法学期编号应返回错误")
	}
}

func TestSemesterProgress(t *testing.T) {
	out, err := runCmd(t, "semester", "progress", "--date", "2026-02-01")
	if err != nil {
		t.Fatalf("命令执行失败: %v", err)
	}
	if !strings.HasPrefix(out, "1142\t0%\t第1週") {
		t.Errorf("学期首日进度应为 0%%、第 1 週，实际=%q", out)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return path
}

func TestSemesterCurrent_ConfiguredTimezone(t *testing.T) {
	t.Cleanup(func() { _ = semester.SetLocation("Asia/Taipei") })

	// 2026-01-31T20:00Z 在台北已是 2 月 1 日，在洛杉矶仍是 1 月 31 日
	const instant = "2026-01-31T20:00:00Z"

	out, err := runCmd(t, "semester", "current", "--date", instant)
	if err != nil {
		t.Fatalf("命令执行失败: %v", err)
	}
	if !strings.HasPrefix(out, "1142") {
		t.Errorf("默认时区下期望 1142，实际=%q", out)
	}

	cfgPath := writeConfig(t, "semester:\n  timezone: \"America/Los_Angeles\"\n")
	out, err = runCmd(t, "--config", cfgPath, "semester", "current", "--date", instant)
	if err != nil {
		t.Fatalf("命令执行失败: %v", err)
	}
	if !strings.HasPrefix(out, "1141") {
		t.Errorf("配置时区下期望 1141，实际=%q", out)
	}
	if semester.Location().String() != "America/Los_Angeles" {
		t.Errorf("期望时区 America/Los_Angeles，实际=%s", semester.Location())
	}
}

func TestSemesterCurrent_InvalidTimezone(t *testing.T) {
	t.Cleanup(func() { _ = semester.SetLocation("Asia/Taipei") })

	cfgPath := writeConfig(t, "semester:\n  timezone: \"Mars/Olympus\"\n")
	if _, err := runCmd(t, "--config", cfgPath, "semester", "current"); err == nil {
		t.Error("无效时区应返回错误")
	}
}

func TestMigrate_SQLite(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := "signer:\n  secret: \"abcdefghijklmnopqrstuvwxyz\"\n" +
		"db:\n  driver: sqlite\n  sqlite_path: \"" + filepath.ToSlash(filepath.Join(dir, "cloud.db")) + "\"\n" +
		"storage:\n  driver: local\n  local_dir: \"" + filepath.ToSlash(filepath.Join(dir, "blobs")) + "\"\n" +
		"log:\n  level: error\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}

	out, err := runCmd(t, "--config", cfgPath, "migrate")
	if err != nil {
		t.Fatalf("迁移失败: %v", err)
	}
	if !strings.Contains(out, "migrated (sqlite)") {
		t.Errorf("输出不符合预期: %q", out)
	}
}
