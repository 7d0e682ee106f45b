package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ketr501215/Ray-Cloud-Web/internal/service"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/response"
)

// SemesterHandler 学期模块 HTTP 处理器
type SemesterHandler struct {
	semesterSvc service.SemesterService
}

// NewSemesterHandler 创建 SemesterHandler
func NewSemesterHandler(semesterSvc service.SemesterService) *SemesterHandler {
	return &SemesterHandler{semesterSvc: semesterSvc}
}

// GetCurrentSemester 获取当前学期
// GET /api/v1/semesters/current?now=2026-03-15
func (h *SemesterHandler) GetCurrentSemester(c *gin.Context) {
	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	response.OK(c, h.semesterSvc.Current(now))
}

// GetSemesterRange 获取学期起止日期
// GET /api/v1/semesters/:id/range
func (h *SemesterHandler) GetSemesterRange(c *gin.Context) {
	r, err := h.semesterSvc.Range(c.Param("id"))
	if err != nil {
		h.handleSemesterError(c, err)
		return
	}

	response.OK(c, r)
}

// GetSemesterProgress 获取学期进度与周次
// GET /api/v1/semesters/progress?now=2026-03-15
func (h *SemesterHandler) GetSemesterProgress(c *gin.Context) {
	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	response.OK(c, h.semesterSvc.Progress(now))
}

// handleSemesterError 统一处理学期模块业务错误
func (h *SemesterHandler) handleSemesterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSemesterInvalid):
		response.BadRequest(c, 24001, "学期编号无效")
	default:
		response.InternalError(c)
	}
}
