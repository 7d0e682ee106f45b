package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ketr501215/Ray-Cloud-Web/internal/dto"
	"github.com/ketr501215/Ray-Cloud-Web/internal/service"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/response"
)

// ContentHandler 内容模块 HTTP 处理器
type ContentHandler struct {
	contentSvc service.ContentService
}

// NewContentHandler 创建 ContentHandler
func NewContentHandler(contentSvc service.ContentService) *ContentHandler {
	return &ContentHandler{contentSvc: contentSvc}
}

// CreateContent 创建内容
// POST /api/v1/contents
func (h *ContentHandler) CreateContent(c *gin.Context) {
	var req dto.CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	content, err := h.contentSvc.Create(c.Request.Context(), &req, now)
	if err != nil {
		h.handleContentError(c, err)
		return
	}

	response.Created(c, content)
}

// ListContents 获取内容列表
// GET /api/v1/contents?type=Project&status=active&page=1&page_size=20
func (h *ContentHandler) ListContents(c *gin.Context) {
	var req dto.ListContentRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	list, total, err := h.contentSvc.List(c.Request.Context(), &req, now)
	if err != nil {
		h.handleContentError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetContent 获取内容详情
// GET /api/v1/contents/:id
func (h *ContentHandler) GetContent(c *gin.Context) {
	id, ok := MustGetID(c)
	if !ok {
		return
	}
	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	content, err := h.contentSvc.Get(c.Request.Context(), id, now)
	if err != nil {
		h.handleContentError(c, err)
		return
	}

	response.OK(c, content)
}

// UpdateProgress 更新进度
// PUT /api/v1/contents/:id/progress
func (h *ContentHandler) UpdateProgress(c *gin.Context) {
	id, ok := MustGetID(c)
	if !ok {
		return
	}

	var req dto.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	content, err := h.contentSvc.UpdateProgress(c.Request.Context(), id, &req, now)
	if err != nil {
		h.handleContentError(c, err)
		return
	}

	response.OK(c, content)
}

// UpdateDeadline 设置 / 清除截止日期
// PUT /api/v1/contents/:id/deadline
func (h *ContentHandler) UpdateDeadline(c *gin.Context) {
	id, ok := MustGetID(c)
	if !ok {
		return
	}

	var req dto.UpdateDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	content, err := h.contentSvc.UpdateDeadline(c.Request.Context(), id, req.Deadline, now)
	if err != nil {
		h.handleContentError(c, err)
		return
	}

	response.OK(c, content)
}

// DeleteContent 删除内容
// DELETE /api/v1/contents/:id
func (h *ContentHandler) DeleteContent(c *gin.Context) {
	id, ok := MustGetID(c)
	if !ok {
		return
	}

	if err := h.contentSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleContentError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleContentError 统一处理内容模块业务错误
func (h *ContentHandler) handleContentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrContentNotFound):
		response.NotFound(c, 20001, "内容不存在")
	case errors.Is(err, service.ErrContentInvalid):
		response.BadRequest(c, 20002, "内容参数无效")
	case errors.Is(err, service.ErrContentDeadlineInvalid):
		response.BadRequest(c, 20003, "截止日期格式无效")
	case errors.Is(err, service.ErrContentSemesterInvalid):
		response.BadRequest(c, 20004, "学期编号无效")
	default:
		response.InternalError(c)
	}
}
