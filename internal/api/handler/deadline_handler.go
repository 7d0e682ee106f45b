package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ketr501215/Ray-Cloud-Web/internal/dto"
	"github.com/ketr501215/Ray-Cloud-Web/internal/service"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/response"
)

// DeadlineHandler 截止日期模块 HTTP 处理器
type DeadlineHandler struct {
	deadlineSvc service.DeadlineService
	calendarSvc service.CalendarService
}

// NewDeadlineHandler 创建 DeadlineHandler
func NewDeadlineHandler(deadlineSvc service.DeadlineService, calendarSvc service.CalendarService) *DeadlineHandler {
	return &DeadlineHandler{deadlineSvc: deadlineSvc, calendarSvc: calendarSvc}
}

// ListUpcoming 即将截止的文件与内容
// GET /api/v1/deadlines
func (h *DeadlineHandler) ListUpcoming(c *gin.Context) {
	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	items, err := h.deadlineSvc.Upcoming(c.Request.Context(), now)
	if err != nil {
		h.handleDeadlineError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// GetSuggestion 以当前学期结束日作为建议截止日期
// GET /api/v1/deadlines/suggestion
func (h *DeadlineHandler) GetSuggestion(c *gin.Context) {
	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	response.OK(c, h.deadlineSvc.SemesterEndSuggestion(now))
}

// SetDeadline 统一设置 / 清除截止日期
// PUT /api/v1/deadlines
func (h *DeadlineHandler) SetDeadline(c *gin.Context) {
	var req dto.SetDeadlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.deadlineSvc.Set(c.Request.Context(), req.SourceType, req.ID, req.Deadline); err != nil {
		h.handleDeadlineError(c, err)
		return
	}

	response.OK(c, nil)
}

// Calendar iCalendar 订阅源
// GET /api/v1/deadlines/calendar.ics
func (h *DeadlineHandler) Calendar(c *gin.Context) {
	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	feed, err := h.calendarSvc.DeadlineFeed(c.Request.Context(), now)
	if err != nil {
		h.handleDeadlineError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="deadlines.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

func (h *DeadlineHandler) handleDeadlineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDeadlineSourceInvalid):
		response.BadRequest(c, 22001, "来源类型仅支持 file 或 content")
	case errors.Is(err, service.ErrDeadlineTargetNotFound):
		response.NotFound(c, 22002, "截止日期目标不存在")
	case errors.Is(err, service.ErrDeadlineInvalid):
		response.BadRequest(c, 22003, "截止日期格式无效")
	default:
		response.InternalError(c)
	}
}
