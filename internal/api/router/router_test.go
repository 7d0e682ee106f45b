package router

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ketr501215/Ray-Cloud-Web/config"
	"github.com/ketr501215/Ray-Cloud-Web/internal/api/handler"
	"github.com/ketr501215/Ray-Cloud-Web/internal/repository"
	"github.com/ketr501215/Ray-Cloud-Web/internal/service"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/database"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/signer"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/storage"
)

const testBaseURL = "http://localhost:8080"

type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
}

// newTestServer 以 SQLite + 本地存储组装完整服务，不依赖 Redis
func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:        8080,
			BaseURL:     testBaseURL,
			MaxUploadMB: 1,
			CORS:        config.CORSConfig{AllowOrigins: []string{"*"}},
		},
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(dir, "cloud.db")},
		Storage:  config.StorageConfig{Driver: config.StorageLocal, LocalDir: filepath.Join(dir, "blobs")},
		Signer: config.SignerConfig{
			Secret:           "router-test-secret-0123456789",
			UploadTokenTTL:   30 * time.Minute,
			DownloadTokenTTL: 10 * time.Minute,
		},
		Import: config.ImportConfig{DefaultCategory: "校內計畫"},
	}
	logger := zap.NewNop()

	db, err := database.NewDB(&cfg.Database, "error", logger)
	if err != nil {
		t.Fatalf("打开 SQLite 失败: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	})
	if err := database.RunMigrations(db, cfg.Database.Driver, logger); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}

	store, err := storage.NewLocalStore(cfg.Storage.LocalDir, testBaseURL+config.LocalBlobRoute)
	if err != nil {
		t.Fatalf("创建本地存储失败: %v", err)
	}

	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, store, signer.New(&cfg.Signer), nil, logger)
	return Setup(cfg, handler.NewHandler(svc), nil, repo, logger)
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("响应不是合法 JSON: %v, body=%s", err, w.Body.String())
		}
	}
	return w, env
}

func jsonRequest(method, path string, v interface{}) *http.Request {
	b, _ := json.Marshal(v)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, path, name, content string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	fw, err := mw.CreateFormFile("files", name)
	if err != nil {
		t.Fatalf("创建表单文件失败: %v", err)
	}
	io.WriteString(fw, content)
	mw.Close()

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	w, _ := do(t, srv, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际=%d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("期望响应带 X-Request-ID")
	}
}

func TestLocalStoreURLServed(t *testing.T) {
	srv := newTestServer(t)

	w, _ := do(t, srv, uploadRequest(t, "/api/v1/files/upload?now=2026-03-15", "notes.txt", "hello ray",
		map[string]string{"category": "報告", "confirm": "true"}))
	if w.Code != http.StatusCreated {
		t.Fatalf("上传期望 201，实际=%d body=%s", w.Code, w.Body.String())
	}

	w, env := do(t, srv, httptest.NewRequest("GET", "/api/v1/files", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("列出文件期望 200，实际=%d", w.Code)
	}
	var listed struct {
		List []struct {
			URL string `json:"url"`
		} `json:"list"`
	}
	json.Unmarshal(env.Data, &listed)
	if len(listed.List) != 1 {
		t.Fatalf("期望 1 个文件，实际=%+v", listed.List)
	}
	url := listed.List[0].URL
	if !strings.HasPrefix(url, testBaseURL+config.LocalBlobRoute+"/") {
		t.Fatalf("对象地址格式不符: %s", url)
	}

	w, _ = do(t, srv, httptest.NewRequest("GET", strings.TrimPrefix(url, testBaseURL), nil))
	if w.Code != http.StatusOK || w.Body.String() != "hello ray" {
		t.Errorf("对象地址不可访问: code=%d body=%q", w.Code, w.Body.String())
	}

	w, _ = do(t, srv, httptest.NewRequest("GET", config.LocalBlobRoute+"/missing.txt", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("不存在的对象期望 404，实际=%d", w.Code)
	}
}

func TestFileLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// 上传并确认
	w, env := do(t, srv, uploadRequest(t, "/api/v1/files/upload?now=2026-03-15", "notes.txt", "hello ray",
		map[string]string{"category": "報告", "confirm": "true"}))
	if w.Code != http.StatusCreated {
		t.Fatalf("上传期望 201，实际=%d body=%s", w.Code, w.Body.String())
	}
	var confirmed struct {
		Count int `json:"count"`
		Files []struct {
			ID       int64  `json:"id"`
			Semester string `json:"semester"`
		} `json:"files"`
	}
	json.Unmarshal(env.Data, &confirmed)
	if confirmed.Count != 1 || confirmed.Files[0].Semester != "1142" {
		t.Fatalf("确认结果不符合预期: %+v", confirmed)
	}

	// 下载链接
	w, env = do(t, srv, httptest.NewRequest("POST", "/api/v1/files/1/link", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("生成下载链接期望 200，实际=%d", w.Code)
	}
	var link struct {
		URL string `json:"url"`
	}
	json.Unmarshal(env.Data, &link)
	if !strings.HasPrefix(link.URL, testBaseURL+"/api/v1/files/1/download?token=") {
		t.Fatalf("下载链接格式不符: %s", link.URL)
	}

	w, _ = do(t, srv, httptest.NewRequest("GET", strings.TrimPrefix(link.URL, testBaseURL), nil))
	if w.Code != http.StatusOK || w.Body.String() != "hello ray" {
		t.Fatalf("下载失败: code=%d body=%q", w.Code, w.Body.String())
	}

	// 伪造令牌
	w, _ = do(t, srv, httptest.NewRequest("GET", "/api/v1/files/1/download?token=forged", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("伪造令牌期望 401，实际=%d", w.Code)
	}

	// 截止日期 + 即将截止列表
	w, _ = do(t, srv, jsonRequest("PUT", "/api/v1/deadlines", map[string]interface{}{
		"source_type": "file", "id": 1, "deadline": "2026-03-17",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("设置截止日期期望 200，实际=%d body=%s", w.Code, w.Body.String())
	}

	w, env = do(t, srv, httptest.NewRequest("GET", "/api/v1/deadlines/upcoming?now=2026-03-15", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("查询截止日期期望 200，实际=%d", w.Code)
	}
	var upcoming struct {
		List []struct {
			ID        int64 `json:"id"`
			DaysUntil int   `json:"days_until"`
			IsUrgent  bool  `json:"is_urgent"`
		} `json:"list"`
	}
	json.Unmarshal(env.Data, &upcoming)
	if len(upcoming.List) != 1 || upcoming.List[0].DaysUntil != 2 || !upcoming.List[0].IsUrgent {
		t.Errorf("即将截止列表不符合预期: %+v", upcoming.List)
	}

	// 日历订阅
	w, _ = do(t, srv, httptest.NewRequest("GET", "/api/v1/deadlines/calendar.ics?now=2026-03-15", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "BEGIN:VEVENT") {
		t.Errorf("日历订阅不符合预期: code=%d", w.Code)
	}

	// 删除
	w, _ = do(t, srv, httptest.NewRequest("DELETE", "/api/v1/files/1", nil))
	if w.Code != http.StatusOK {
		t.Errorf("删除期望 200，实际=%d", w.Code)
	}
	w, _ = do(t, srv, httptest.NewRequest("POST", "/api/v1/files/1/link", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("删除后期望 404，实际=%d", w.Code)
	}
}

func TestContentAndDashboard(t *testing.T) {
	srv := newTestServer(t)

	w, _ := do(t, srv, jsonRequest("POST", "/api/v1/contents?now=2026-03-15", map[string]interface{}{
		"title": "期末報告", "type": "Project", "progress": 40, "deadline": "2026-03-16",
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("创建内容期望 201，实际=%d body=%s", w.Code, w.Body.String())
	}

	w, env := do(t, srv, httptest.NewRequest("GET", "/api/v1/dashboard?now=2026-03-15", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("仪表盘期望 200，实际=%d", w.Code)
	}
	var dash struct {
		Semester struct {
			ID string `json:"id"`
		} `json:"semester"`
		RecentContents    []json.RawMessage `json:"recent_contents"`
		UpcomingDeadlines []json.RawMessage `json:"upcoming_deadlines"`
	}
	json.Unmarshal(env.Data, &dash)
	if dash.Semester.ID != "1142" || len(dash.RecentContents) != 1 || len(dash.UpcomingDeadlines) != 1 {
		t.Errorf("仪表盘内容不符合预期: %+v", dash)
	}
}

func TestUploadTooLarge(t *testing.T) {
	srv := newTestServer(t)
	big := strings.Repeat("x", 2<<20)

	w, env := do(t, srv, uploadRequest(t, "/api/v1/files/upload", "big.bin", big, nil))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("期望 413，实际=%d", w.Code)
	}
	if env.Code != 10003 {
		t.Errorf("期望错误码 10003，实际=%d", env.Code)
	}
}

func TestJSONBodyLimit(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest("POST", "/api/v1/contents", strings.NewReader(strings.Repeat(" ", 2<<20)))
	req.Header.Set("Content-Type", "application/json")

	w, _ := do(t, srv, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("期望 413，实际=%d", w.Code)
	}
}
