package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ketr501215/Ray-Cloud-Web/internal/dto"
	"github.com/ketr501215/Ray-Cloud-Web/internal/model"
	"github.com/ketr501215/Ray-Cloud-Web/internal/repository"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/storage"
)

// ── Mock ContentRepository ──

type mockContentRepo struct {
	contents map[int64]*model.Content
	nextID   int64
	batchErr error
}

func newMockContentRepo() *mockContentRepo {
	return &mockContentRepo{contents: make(map[int64]*model.Content)}
}

func (m *mockContentRepo) Create(_ context.Context, content *model.Content) error {
	m.nextID++
	content.ID = m.nextID
	c := *content
	m.contents[c.ID] = &c
	return nil
}

func (m *mockContentRepo) CreateBatch(ctx context.Context, contents []model.Content) error {
	if m.batchErr != nil {
		return m.batchErr
	}
	for i := range contents {
		if err := m.Create(ctx, &contents[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockContentRepo) GetByID(_ context.Context, id int64) (*model.Content, error) {
	if c, ok := m.contents[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockContentRepo) List(_ context.Context, filter repository.ContentFilter) ([]model.Content, int64, error) {
	var result []model.Content
	for _, c := range m.sorted() {
		if filter.Type != "" && c.Type != filter.Type {
			continue
		}
		if filter.Status != "" {
			if c.Status != filter.Status {
				continue
			}
		} else if !filter.IncludeArchived && c.Status == model.ContentStatusArchived {
			continue
		}
		if filter.Semester != "" && (c.Semester == nil || *c.Semester != filter.Semester) {
			continue
		}
		result = append(result, c)
	}

	total := int64(len(result))
	if filter.Offset >= len(result) {
		return nil, total, nil
	}
	result = result[filter.Offset:]
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, total, nil
}

func (m *mockContentRepo) Recent(_ context.Context, limit int) ([]model.Content, error) {
	var result []model.Content
	for _, c := range m.sorted() {
		if c.Status == model.ContentStatusArchived {
			continue
		}
		result = append(result, c)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (m *mockContentRepo) Update(_ context.Context, content *model.Content) error {
	if _, ok := m.contents[content.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c := *content
	m.contents[c.ID] = &c
	return nil
}

func (m *mockContentRepo) Delete(_ context.Context, id int64) (int64, error) {
	if _, ok := m.contents[id]; !ok {
		return 0, nil
	}
	delete(m.contents, id)
	return 1, nil
}

// sorted 按 updated_at 倒序
func (m *mockContentRepo) sorted() []model.Content {
	list := make([]model.Content, 0, len(m.contents))
	for _, c := range m.contents {
		list = append(list, *c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
	return list
}

// ── Mock FileRepository ──

type mockFileRepo struct {
	files    map[int64]*model.File
	nextID   int64
	batchErr error
}

func newMockFileRepo() *mockFileRepo {
	return &mockFileRepo{files: make(map[int64]*model.File)}
}

func (m *mockFileRepo) add(f model.File) *model.File {
	m.nextID++
	f.ID = m.nextID
	m.files[f.ID] = &f
	return &f
}

func (m *mockFileRepo) CreateBatch(_ context.Context, files []model.File) error {
	if m.batchErr != nil {
		return m.batchErr
	}
	for i := range files {
		files[i].ID = m.add(files[i]).ID
	}
	return nil
}

func (m *mockFileRepo) GetByID(_ context.Context, id int64) (*model.File, error) {
	if f, ok := m.files[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFileRepo) ListAll(_ context.Context) ([]model.File, error) {
	list := make([]model.File, 0, len(m.files))
	for _, f := range m.files {
		list = append(list, *f)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

func (m *mockFileRepo) ListByCategory(ctx context.Context, category string) ([]model.File, error) {
	all, _ := m.ListAll(ctx)
	var result []model.File
	for _, f := range all {
		if f.Category == category {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *mockFileRepo) CategoryStats(_ context.Context) ([]model.CategoryStat, error) {
	counts := make(map[string]int64)
	for _, f := range m.files {
		counts[f.Category]++
	}
	stats := make([]model.CategoryStat, 0, len(counts))
	for cat, n := range counts {
		stats = append(stats, model.CategoryStat{Category: cat, Count: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count == stats[j].Count {
			return stats[i].Category < stats[j].Category
		}
		return stats[i].Count > stats[j].Count
	})
	return stats, nil
}

func (m *mockFileRepo) UpdateCategory(_ context.Context, id int64, category string) (int64, error) {
	f, ok := m.files[id]
	if !ok {
		return 0, nil
	}
	f.Category = category
	return 1, nil
}

func (m *mockFileRepo) UpdateDeadline(_ context.Context, id int64, deadline *time.Time) (int64, error) {
	f, ok := m.files[id]
	if !ok {
		return 0, nil
	}
	f.Deadline = deadline
	return 1, nil
}

func (m *mockFileRepo) Delete(_ context.Context, id int64) (int64, error) {
	if _, ok := m.files[id]; !ok {
		return 0, nil
	}
	delete(m.files, id)
	return 1, nil
}

// ── Mock DeadlineRepository（基于文件与内容 mock 实时计算） ──

type mockDeadlineRepo struct {
	files    *mockFileRepo
	contents *mockContentRepo
}

func (m *mockDeadlineRepo) ListSince(_ context.Context, since time.Time) ([]model.DeadlineRecord, error) {
	var records []model.DeadlineRecord
	for _, f := range m.files.files {
		if f.Deadline == nil || f.Deadline.Before(since) {
			continue
		}
		records = append(records, model.DeadlineRecord{
			SourceType: model.SourceFile, ID: f.ID, Title: f.OriginalName,
			Category: f.Category, Semester: f.Semester, Deadline: *f.Deadline,
		})
	}
	for _, c := range m.contents.contents {
		if c.Deadline == nil || c.Deadline.Before(since) || c.Status == model.ContentStatusArchived {
			continue
		}
		records = append(records, model.DeadlineRecord{
			SourceType: model.SourceContent, ID: c.ID, Title: c.Title,
			Category: c.Type, Semester: c.Semester, Deadline: *c.Deadline,
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Deadline.Before(records[j].Deadline)
	})
	return records, nil
}

// ── Mock Store ──

type mockStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	deleteErr error
	deleted   []string
}

func newMockStore() *mockStore {
	return &mockStore{objects: make(map[string][]byte)}
}

func (m *mockStore) Put(_ context.Context, name string, r io.Reader, contentType string) (*storage.Object, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[name] = data
	return &storage.Object{
		Name:        name,
		URL:         "https://blob.test/" + name,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

func (m *mockStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, name)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.objects[name]; !ok {
		return storage.ErrNotFound
	}
	delete(m.objects, name)
	return nil
}

// ── Mock Cache ──

type mockCache struct {
	data    map[string]interface{}
	gets    int
	hits    int
	deletes int
	getErr  error
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]interface{})}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	m.gets++
	if m.getErr != nil {
		return false, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return false, nil
	}
	stats, ok := v.([]dto.CategoryStatResponse)
	if !ok {
		return false, errors.New("unexpected cache value")
	}
	if p, ok := dst.(*[]dto.CategoryStatResponse); ok {
		*p = stats
	}
	m.hits++
	return true, nil
}

func (m *mockCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	m.data[key] = v
	return nil
}

func (m *mockCache) Delete(_ context.Context, keys ...string) error {
	m.deletes++
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// ── 测试辅助 ──

type testEnv struct {
	repo     *repository.Repository
	contents *mockContentRepo
	files    *mockFileRepo
	store    *mockStore
	logger   *zap.Logger
}

func newTestEnv() *testEnv {
	contents := newMockContentRepo()
	files := newMockFileRepo()
	return &testEnv{
		repo: &repository.Repository{
			Content:  contents,
			File:     files,
			Deadline: &mockDeadlineRepo{files: files, contents: contents},
		},
		contents: contents,
		files:    files,
		store:    newMockStore(),
		logger:   zap.NewNop(),
	}
}
