package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ketr501215/Ray-Cloud-Web/internal/api/middleware"
	"github.com/ketr501215/Ray-Cloud-Web/internal/dto"
	"github.com/ketr501215/Ray-Cloud-Web/internal/service"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/response"
)

// FileHandler 文件模块 HTTP 处理器
type FileHandler struct {
	fileSvc service.FileService
}

// NewFileHandler 创建 FileHandler
func NewFileHandler(fileSvc service.FileService) *FileHandler {
	return &FileHandler{fileSvc: fileSvc}
}

// UploadFiles 上传文件到对象存储
// POST /api/v1/files/upload  (multipart: files[], folder, category, confirm)
// confirm=true 时直接入库，否则返回待确认记录
func (h *FileHandler) UploadFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.TooLarge(c, "上传文件过大")
			return
		}
		response.BadRequest(c, 10001, "无效的上传表单")
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		response.BadRequest(c, 21002, "未选择文件")
		return
	}

	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	var folder *string
	if v := strings.TrimSpace(c.PostForm("folder")); v != "" {
		folder = &v
	}
	category := c.PostForm("category")

	staged := make([]dto.StagedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			response.BadRequest(c, 21002, "无法读取上传文件")
			return
		}
		item, err := h.fileSvc.Stage(c.Request.Context(), &service.UploadInput{
			Reader:       f,
			OriginalName: fh.Filename,
			Size:         fh.Size,
			ContentType:  fh.Header.Get("Content-Type"),
			FolderName:   folder,
			Category:     category,
		}, now)
		f.Close()
		if err != nil {
			h.handleFileError(c, err)
			return
		}
		staged = append(staged, *item)
	}

	if c.PostForm("confirm") != "true" {
		response.Created(c, gin.H{"files": staged})
		return
	}

	files, err := h.fileSvc.Confirm(c.Request.Context(), staged, now)
	if err != nil {
		h.handleFileError(c, err)
		return
	}

	response.Created(c, dto.ConfirmFilesResponse{Count: len(files), Files: files})
}

// IssueUploadToken 申请前端直传令牌
// POST /api/v1/files/upload/token
func (h *FileHandler) IssueUploadToken(c *gin.Context) {
	var req dto.UploadTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	token, err := h.fileSvc.IssueUploadToken(req.Pathname, now)
	if err != nil {
		h.handleFileError(c, err)
		return
	}

	response.OK(c, token)
}

// UploadWithToken 持令牌直传文件内容（请求体即文件）
// PUT /api/v1/files/blob?token=xxx&name=原始文件名
func (h *FileHandler) UploadWithToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Unauthorized(c, 21008, "缺少上传令牌")
		return
	}

	staged, err := h.fileSvc.UploadWithToken(c.Request.Context(), token, &service.UploadInput{
		Reader:       c.Request.Body,
		OriginalName: c.Query("name"),
		Size:         c.Request.ContentLength,
		ContentType:  c.ContentType(),
	})
	if err != nil {
		h.handleFileError(c, err)
		return
	}

	response.Created(c, staged)
}

// ConfirmFiles 批量确认已上传的文件
// POST /api/v1/files/confirm
func (h *FileHandler) ConfirmFiles(c *gin.Context) {
	var req dto.ConfirmFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	files, err := h.fileSvc.Confirm(c.Request.Context(), req.Files, now)
	if err != nil {
		h.handleFileError(c, err)
		return
	}

	response.Created(c, dto.ConfirmFilesResponse{Count: len(files), Files: files})
}

// ListFiles 按文件夹聚合的文件列表
// GET /api/v1/files?limit=6
func (h *FileHandler) ListFiles(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.BadRequest(c, 10001, "limit 参数无效")
			return
		}
		limit = n
	}

	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	bundles, err := h.fileSvc.ListGrouped(c.Request.Context(), limit, now)
	if err != nil {
		h.handleFileError(c, err)
		return
	}

	response.OK(c, gin.H{"list": bundles})
}

// ListByCategory 按分类列出文件
// GET /api/v1/files/category/:name
func (h *FileHandler) ListByCategory(c *gin.Context) {
	category := c.Param("name")
	if category == "" {
		response.BadRequest(c, 10001, "分类不能为空")
		return
	}

	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	files, err := h.fileSvc.ListByCategory(c.Request.Context(), category, now)
	if err != nil {
		h.handleFileError(c, err)
		return
	}

	response.OK(c, gin.H{"category": category, "list": files})
}

// CategoryStats 分类统计
// GET /api/v1/categories/stats
func (h *FileHandler) CategoryStats(c *gin.Context) {
	stats, err := h.fileSvc.CategoryStats(c.Request.Context())
	if err != nil {
		h.handleFileError(c, err)
		return
	}

	response.OK(c, gin.H{"list": stats})
}

// UpdateCategory 修改文件分类
// PUT /api/v1/files/:id/category
func (h *FileHandler) UpdateCategory(c *gin.Context) {
	id, ok := MustGetID(c)
	if !ok {
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.fileSvc.UpdateCategory(c.Request.Context(), id, req.Category); err != nil {
		h.handleFileError(c, err)
		return
	}

	response.OK(c, nil)
}

// UpdateDeadline 设置 / 清除文件截止日期
// PUT /api/v1/files/:id/deadline
func (h *FileHandler) UpdateDeadline(c *gin.Context) {
	id, ok := MustGetID(c)
	if !ok {
		return
	}

	var req dto.UpdateDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.fileSvc.UpdateDeadline(c.Request.Context(), id, req.Deadline); err != nil {
		h.handleFileError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteFile 删除文件（对象与记录）
// DELETE /api/v1/files/:id
func (h *FileHandler) DeleteFile(c *gin.Context) {
	id, ok := MustGetID(c)
	if !ok {
		return
	}

	if err := h.fileSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleFileError(c, err)
		return
	}

	response.OK(c, nil)
}

// CreateDownloadLink 生成带签名的下载链接
// POST /api/v1/files/:id/link
func (h *FileHandler) CreateDownloadLink(c *gin.Context) {
	id, ok := MustGetID(c)
	if !ok {
		return
	}

	link, err := h.fileSvc.DownloadLink(c.Request.Context(), id)
	if err != nil {
		h.handleFileError(c, err)
		return
	}

	response.OK(c, link)
}

// DownloadFile 下载文件（需下载令牌）
// GET /api/v1/files/:id/download?token=xxx
func (h *FileHandler) DownloadFile(c *gin.Context) {
	id, ok := MustGetID(c)
	if !ok {
		return
	}

	if err := h.fileSvc.VerifyDownload(c.Query("token"), id); err != nil {
		h.handleFileError(c, err)
		return
	}

	dl, err := h.fileSvc.Open(c.Request.Context(), id)
	if err != nil {
		h.handleFileError(c, err)
		return
	}
	defer dl.Body.Close()

	c.Header("Content-Description", "File Transfer")
	c.DataFromReader(http.StatusOK, dl.Size, dl.ContentType, dl.Body, map[string]string{
		"Content-Disposition": dl.ContentDisposition,
	})
}

// handleFileError 统一处理文件模块业务错误
func (h *FileHandler) handleFileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFileNotFound):
		response.NotFound(c, 21001, "文件不存在")
	case errors.Is(err, service.ErrFileInvalid):
		response.BadRequest(c, 21002, "文件参数无效")
	case errors.Is(err, service.ErrFileEmptyBatch):
		response.BadRequest(c, 21003, "没有需要保存的文件")
	case errors.Is(err, service.ErrFileDeadlineInvalid):
		response.BadRequest(c, 21004, "截止日期格式无效")
	case errors.Is(err, service.ErrFileStorage):
		response.Error(c, http.StatusBadGateway, 21005, "对象存储读写失败")
	case errors.Is(err, service.ErrDownloadTokenInvalid):
		response.Unauthorized(c, 21006, "下载链接无效")
	case errors.Is(err, service.ErrDownloadTokenExpired):
		response.Unauthorized(c, 21007, "下载链接已过期")
	case errors.Is(err, service.ErrUploadTokenInvalid):
		response.Unauthorized(c, 21008, "上传令牌无效")
	case middleware.IsBodyTooLarge(err):
		response.TooLarge(c, "上传文件过大")
	default:
		response.InternalError(c)
	}
}
