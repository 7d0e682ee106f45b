package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ketr501215/Ray-Cloud-Web/internal/dto"
	"github.com/ketr501215/Ray-Cloud-Web/internal/model"
	"github.com/ketr501215/Ray-Cloud-Web/internal/repository"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/semester"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/signer"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/storage"
)

// ── 文件模块业务错误 ──

var (
	ErrFileNotFound         = errors.New("文件不存在")
	ErrFileInvalid          = errors.New("文件参数无效")
	ErrFileEmptyBatch       = errors.New("没有需要保存的文件")
	ErrFileDeadlineInvalid  = errors.New("截止日期格式无效")
	ErrFileStorage          = errors.New("对象存储读写失败")
	ErrDownloadTokenInvalid = errors.New("下载令牌无效")
	ErrDownloadTokenExpired = errors.New("下载令牌已过期")
	ErrUploadTokenInvalid   = errors.New("上传令牌无效")
)

const (
	categoryStatsCacheKey = "ray-cloud:stats:categories"
	categoryStatsCacheTTL = 60 * time.Second
	defaultMimeType       = "application/octet-stream"
)

// UploadInput 单个待上传文件
type UploadInput struct {
	Reader       io.Reader
	OriginalName string // 文件夹上传时可能带相对路径
	Size         int64
	ContentType  string
	FolderName   *string
	Category     string
}

// FileDownload 下载流及响应头信息，调用方负责关闭 Body
type FileDownload struct {
	Body               io.ReadCloser
	ContentType        string
	ContentDisposition string
	Size               int64
}

// FileService 文件与文件夹业务接口
type FileService interface {
	Stage(ctx context.Context, in *UploadInput, now time.Time) (*dto.StagedFile, error)
	IssueUploadToken(pathname string, now time.Time) (*dto.UploadTokenResponse, error)
	UploadWithToken(ctx context.Context, token string, in *UploadInput) (*dto.StagedFile, error)
	Confirm(ctx context.Context, files []dto.StagedFile, now time.Time) ([]dto.FileResponse, error)
	UpdateCategory(ctx context.Context, id int64, category string) error
	UpdateDeadline(ctx context.Context, id int64, deadline *string) error
	Delete(ctx context.Context, id int64) error
	DownloadLink(ctx context.Context, id int64) (*dto.DownloadLinkResponse, error)
	VerifyDownload(token string, id int64) error
	Open(ctx context.Context, id int64) (*FileDownload, error)
	ListGrouped(ctx context.Context, limit int, now time.Time) ([]dto.FileBundleResponse, error)
	ListByCategory(ctx context.Context, category string, now time.Time) ([]dto.FileResponse, error)
	CategoryStats(ctx context.Context) ([]dto.CategoryStatResponse, error)
}

type fileService struct {
	repo    *repository.Repository
	store   storage.Store
	signer  *signer.Signer
	cache   Cache
	baseURL string
	logger  *zap.Logger
}

// NewFileService 创建 FileService 实例；cache 可为 nil
func NewFileService(
	repo *repository.Repository,
	store storage.Store,
	sign *signer.Signer,
	cache Cache,
	baseURL string,
	logger *zap.Logger,
) FileService {
	return &fileService{
		repo:    repo,
		store:   store,
		signer:  sign,
		cache:   cache,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// ────────────────────── 上传 ──────────────────────

// Stage 写入对象存储并返回待确认记录（不入库）
func (s *fileService) Stage(ctx context.Context, in *UploadInput, now time.Time) (*dto.StagedFile, error) {
	if in == nil || in.Reader == nil || strings.TrimSpace(in.OriginalName) == "" {
		return nil, ErrFileInvalid
	}

	name := storage.ObjectName(in.OriginalName, now)
	return s.put(ctx, name, in)
}

func (s *fileService) IssueUploadToken(pathname string, now time.Time) (*dto.UploadTokenResponse, error) {
	if strings.TrimSpace(pathname) == "" {
		return nil, ErrFileInvalid
	}

	name := storage.ObjectName(pathname, now)
	token, expires, err := s.signer.UploadToken(name)
	if err != nil {
		s.logger.Error("签发上传令牌失败", zap.Error(err))
		return nil, err
	}

	return &dto.UploadTokenResponse{
		Token:     token,
		Pathname:  name,
		ExpiresAt: expires.Format(time.RFC3339),
	}, nil
}

// UploadWithToken 客户端持上传令牌直传，对象名以令牌中的为准
func (s *fileService) UploadWithToken(ctx context.Context, token string, in *UploadInput) (*dto.StagedFile, error) {
	if in == nil || in.Reader == nil {
		return nil, ErrFileInvalid
	}

	claims, err := s.signer.Parse(token, signer.PurposeUpload)
	if err != nil {
		return nil, ErrUploadTokenInvalid
	}
	if strings.TrimSpace(in.OriginalName) == "" {
		in.OriginalName = claims.Pathname
	}
	return s.put(ctx, claims.Pathname, in)
}

func (s *fileService) put(ctx context.Context, name string, in *UploadInput) (*dto.StagedFile, error) {
	contentType := in.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(in.OriginalName)))
	}
	if contentType == "" {
		contentType = defaultMimeType
	}

	obj, err := s.store.Put(ctx, name, in.Reader, contentType)
	if err != nil {
		s.logger.Error("写入对象存储失败", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFileStorage, err)
	}

	size := obj.Size
	if size <= 0 {
		size = in.Size
	}

	return &dto.StagedFile{
		Filename:     obj.Name,
		OriginalName: filepath.Base(filepath.ToSlash(in.OriginalName)),
		MimeType:     contentType,
		Size:         size,
		URL:          obj.URL,
		Category:     in.Category,
		FolderName:   normalizeFolder(in.FolderName),
	}, nil
}

// Confirm 在同一事务内批量写入已上传文件
func (s *fileService) Confirm(ctx context.Context, staged []dto.StagedFile, now time.Time) ([]dto.FileResponse, error) {
	if len(staged) == 0 {
		return nil, ErrFileEmptyBatch
	}

	sem := semester.Current(now).String()
	files := make([]model.File, 0, len(staged))
	for _, f := range staged {
		if strings.TrimSpace(f.Filename) == "" || strings.TrimSpace(f.URL) == "" {
			return nil, ErrFileInvalid
		}

		var deadline *time.Time
		if f.Deadline != nil {
			d, err := semester.ParseOptionalDate(*f.Deadline)
			if err != nil {
				return nil, ErrFileDeadlineInvalid
			}
			deadline = d
		}

		category := strings.TrimSpace(f.Category)
		if category == "" {
			category = model.UncategorizedCategory
		}
		mimeType := f.MimeType
		if mimeType == "" {
			mimeType = defaultMimeType
		}
		original := f.OriginalName
		if original == "" {
			original = f.Filename
		}

		semCopy := sem
		files = append(files, model.File{
			Filename:     f.Filename,
			OriginalName: original,
			MimeType:     mimeType,
			Size:         f.Size,
			URL:          f.URL,
			Category:     category,
			Description:  f.Description,
			FolderName:   normalizeFolder(f.FolderName),
			Tracked:      model.Tracked{Semester: &semCopy, Deadline: deadline},
			BaseModel:    model.BaseModel{CreatedAt: now, UpdatedAt: now},
		})
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	if err := s.repo.WithTx(tx).File.CreateBatch(ctx, files); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("批量保存文件失败", zap.Int("count", len(files)), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.invalidateStats(ctx)

	result := make([]dto.FileResponse, 0, len(files))
	for i := range files {
		result = append(result, *toFileResponse(&files[i], now))
	}
	return result, nil
}

// ────────────────────── 修改 / 删除 ──────────────────────

func (s *fileService) UpdateCategory(ctx context.Context, id int64, category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return ErrFileInvalid
	}

	rows, err := s.repo.File.UpdateCategory(ctx, id, category)
	if err != nil {
		s.logger.Error("更新文件分类失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	if rows == 0 {
		return ErrFileNotFound
	}

	s.invalidateStats(ctx)
	return nil
}

func (s *fileService) UpdateDeadline(ctx context.Context, id int64, deadline *string) error {
	var parsed *time.Time
	if deadline != nil {
		d, err := semester.ParseOptionalDate(*deadline)
		if err != nil {
			return ErrFileDeadlineInvalid
		}
		parsed = d
	}

	rows, err := s.repo.File.UpdateDeadline(ctx, id, parsed)
	if err != nil {
		s.logger.Error("更新文件截止日期失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	if rows == 0 {
		return ErrFileNotFound
	}
	return nil
}

// Delete 先删对象再删记录；对象删除失败只记录日志
func (s *fileService) Delete(ctx context.Context, id int64) error {
	file, err := s.getFile(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, file.Filename); err != nil {
		s.logger.Warn("删除存储对象失败，继续删除记录",
			zap.Int64("id", id),
			zap.String("filename", file.Filename),
			zap.Error(err),
		)
	}

	rows, err := s.repo.File.Delete(ctx, id)
	if err != nil {
		s.logger.Error("删除文件记录失败", zap.Int64("id", id), zap.Error(err))
		return err
	}
	if rows == 0 {
		return ErrFileNotFound
	}

	s.invalidateStats(ctx)
	return nil
}

// ────────────────────── 下载 ──────────────────────

func (s *fileService) DownloadLink(ctx context.Context, id int64) (*dto.DownloadLinkResponse, error) {
	if _, err := s.getFile(ctx, id); err != nil {
		return nil, err
	}

	token, expires, err := s.signer.DownloadToken(id)
	if err != nil {
		s.logger.Error("签发下载令牌失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}

	link := fmt.Sprintf("%s/api/v1/files/%d/download?token=%s", s.baseURL, id, url.QueryEscape(token))
	return &dto.DownloadLinkResponse{URL: link, ExpiresAt: expires.Format(time.RFC3339)}, nil
}

func (s *fileService) VerifyDownload(token string, id int64) error {
	err := s.signer.VerifyDownload(token, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, signer.ErrTokenExpired):
		return ErrDownloadTokenExpired
	default:
		return ErrDownloadTokenInvalid
	}
}

func (s *fileService) Open(ctx context.Context, id int64) (*FileDownload, error) {
	file, err := s.getFile(ctx, id)
	if err != nil {
		return nil, err
	}

	body, err := s.store.Open(ctx, file.Filename)
	if err != nil {
		s.logger.Error("读取存储对象失败", zap.Int64("id", id), zap.String("filename", file.Filename), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrFileStorage, err)
	}

	contentType := file.MimeType
	if contentType == "" {
		contentType = defaultMimeType
	}

	return &FileDownload{
		Body:               body,
		ContentType:        contentType,
		ContentDisposition: ContentDisposition(file.OriginalName),
		Size:               file.Size,
	}, nil
}

var nonASCIIFilename = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// ContentDisposition 生成附件下载头，兼容中文文件名（RFC 5987）
func ContentDisposition(name string) string {
	ascii := nonASCIIFilename.ReplaceAllString(name, "_")
	encoded := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, ascii, encoded)
}

// ────────────────────── 查询 ──────────────────────

func (s *fileService) ListGrouped(ctx context.Context, limit int, now time.Time) ([]dto.FileBundleResponse, error) {
	files, err := s.repo.File.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询文件列表失败", zap.Error(err))
		return nil, err
	}

	bundles := GroupBundles(files)
	if limit > 0 && len(bundles) > limit {
		bundles = bundles[:limit]
	}

	result := make([]dto.FileBundleResponse, 0, len(bundles))
	for i := range bundles {
		result = append(result, toBundleResponse(&bundles[i], now))
	}
	return result, nil
}

func (s *fileService) ListByCategory(ctx context.Context, category string, now time.Time) ([]dto.FileResponse, error) {
	files, err := s.repo.File.ListByCategory(ctx, category)
	if err != nil {
		s.logger.Error("按分类查询文件失败", zap.String("category", category), zap.Error(err))
		return nil, err
	}

	result := make([]dto.FileResponse, 0, len(files))
	for i := range files {
		result = append(result, *toFileResponse(&files[i], now))
	}
	return result, nil
}

// CategoryStats 分类统计，优先读缓存；缓存异常时回退到直接查询
func (s *fileService) CategoryStats(ctx context.Context) ([]dto.CategoryStatResponse, error) {
	if s.cache != nil {
		var cached []dto.CategoryStatResponse
		hit, err := s.cache.GetJSON(ctx, categoryStatsCacheKey, &cached)
		if err != nil {
			s.logger.Warn("读取分类统计缓存失败", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	stats, err := s.repo.File.CategoryStats(ctx)
	if err != nil {
		s.logger.Error("查询分类统计失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CategoryStatResponse, 0, len(stats))
	for _, st := range stats {
		result = append(result, dto.CategoryStatResponse{Category: st.Category, Count: st.Count})
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, categoryStatsCacheKey, result, categoryStatsCacheTTL); err != nil {
			s.logger.Warn("写入分类统计缓存失败", zap.Error(err))
		}
	}
	return result, nil
}

func (s *fileService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, categoryStatsCacheKey); err != nil {
		s.logger.Warn("清除分类统计缓存失败", zap.Error(err))
	}
}

func (s *fileService) getFile(ctx context.Context, id int64) (*model.File, error) {
	file, err := s.repo.File.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFileNotFound
		}
		s.logger.Error("查询文件失败", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return file, nil
}

// ── 文件夹聚合 ──

// GroupBundles 按 COALESCE(folder_name, id) 聚合文件
//
// 每组取各列最大值、文件数与总大小，按最新上传时间倒序。
func GroupBundles(files []model.File) []model.FileBundle {
	index := make(map[string]int)
	bundles := make([]model.FileBundle, 0, len(files))

	for i := range files {
		f := &files[i]
		key := "id:" + strconv.FormatInt(f.ID, 10)
		if f.FolderName != nil {
			key = "folder:" + *f.FolderName
		}

		pos, ok := index[key]
		if !ok {
			index[key] = len(bundles)
			bundles = append(bundles, model.FileBundle{
				ID:           f.ID,
				OriginalName: f.OriginalName,
				URL:          f.URL,
				Description:  f.Description,
				Category:     f.Category,
				FolderName:   f.FolderName,
				FileCount:    1,
				Size:         f.Size,
				CreatedAt:    f.CreatedAt,
			})
			continue
		}

		b := &bundles[pos]
		b.FileCount++
		b.Size += f.Size
		if f.ID > b.ID {
			b.ID = f.ID
		}
		b.OriginalName = maxString(b.OriginalName, f.OriginalName)
		b.URL = maxString(b.URL, f.URL)
		b.Description = maxString(b.Description, f.Description)
		b.Category = maxString(b.Category, f.Category)
		if f.CreatedAt.After(b.CreatedAt) {
			b.CreatedAt = f.CreatedAt
		}
	}

	sort.SliceStable(bundles, func(i, j int) bool {
		return bundles[i].CreatedAt.After(bundles[j].CreatedAt)
	})
	return bundles
}

func maxString(a, b string) string {
	if b > a {
		return b
	}
	return a
}

func normalizeFolder(folder *string) *string {
	if folder == nil {
		return nil
	}
	name := strings.Trim(strings.TrimSpace(*folder), "/")
	if name == "" {
		return nil
	}
	return &name
}

// ── 转换 ──

func toFileResponse(f *model.File, now time.Time) *dto.FileResponse {
	return &dto.FileResponse{
		ID:           f.ID,
		Filename:     f.Filename,
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		Size:         f.Size,
		SizeHuman:    humanize.Bytes(uint64(max64(f.Size, 0))),
		URL:          f.URL,
		Category:     f.Category,
		Description:  f.Description,
		FolderName:   f.FolderName,
		Semester:     derefString(f.Semester),
		Deadline:     formatOptionalDate(f.Deadline),
		CreatedAt:    f.CreatedAt.Format(time.RFC3339),
		CreatedAgo:   humanize.RelTime(f.CreatedAt, now, "ago", "from now"),
	}
}

func toBundleResponse(b *model.FileBundle, now time.Time) dto.FileBundleResponse {
	return dto.FileBundleResponse{
		ID:           b.ID,
		OriginalName: b.OriginalName,
		URL:          b.URL,
		Description:  b.Description,
		Category:     b.Category,
		FolderName:   b.FolderName,
		IsFolder:     b.FolderName != nil,
		FileCount:    b.FileCount,
		Size:         b.Size,
		SizeHuman:    humanize.Bytes(uint64(max64(b.Size, 0))),
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
		CreatedAgo:   humanize.RelTime(b.CreatedAt, now, "ago", "from now"),
	}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
