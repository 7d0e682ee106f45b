package handler

import "github.com/ketr501215/Ray-Cloud-Web/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Semester  *SemesterHandler
	Content   *ContentHandler
	File      *FileHandler
	Deadline  *DeadlineHandler
	Import    *ImportHandler
	Dashboard *DashboardHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Semester:  NewSemesterHandler(svc.Semester),
		Content:   NewContentHandler(svc.Content),
		File:      NewFileHandler(svc.File),
		Deadline:  NewDeadlineHandler(svc.Deadline, svc.Calendar),
		Import:    NewImportHandler(svc.Import),
		Dashboard: NewDashboardHandler(svc.Dashboard),
	}
}
