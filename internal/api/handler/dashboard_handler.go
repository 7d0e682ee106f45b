package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ketr501215/Ray-Cloud-Web/internal/service"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/response"
)

// DashboardHandler 首页仪表盘处理器
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// GetDashboard 学期进度、最近内容与文件、分类统计和即将截止项目
// GET /api/v1/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	summary, err := h.dashboardSvc.Summary(c.Request.Context(), now)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, summary)
}
