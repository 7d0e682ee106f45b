package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ketr501215/Ray-Cloud-Web/internal/service"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/response"
)

// ImportHandler Excel 导入处理器
type ImportHandler struct {
	importSvc service.ImportService
}

// NewImportHandler 创建 ImportHandler
func NewImportHandler(importSvc service.ImportService) *ImportHandler {
	return &ImportHandler{importSvc: importSvc}
}

// ImportFromFile 将已上传的 Excel 里程碑表导入为内容
// POST /api/v1/files/:id/import
func (h *ImportHandler) ImportFromFile(c *gin.Context) {
	id, ok := MustGetID(c)
	if !ok {
		return
	}

	now, ok := MustGetNow(c)
	if !ok {
		return
	}

	resp, err := h.importSvc.ImportFromFile(c.Request.Context(), id, now)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImportFileNotFound):
			response.NotFound(c, 23001, "导入文件不存在")
		case errors.Is(err, service.ErrImportFetchFailed):
			response.Error(c, http.StatusBadGateway, 23002, "读取导入文件失败")
		case errors.Is(err, service.ErrImportWorkbookInvalid):
			response.BadRequest(c, 23003, "无法解析 Excel 文件")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, resp)
}
