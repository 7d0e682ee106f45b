package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/ketr501215/Ray-Cloud-Web/internal/dto"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/semester"
)

// ── 学期模块业务错误 ──

var (
	ErrSemesterInvalid = errors.New("学期编号无效")
)

// SemesterService 学期换算接口（纯计算，不访问数据库）
type SemesterService interface {
	Current(now time.Time) *dto.SemesterResponse
	Range(id string) (*dto.SemesterRangeResponse, error)
	Progress(now time.Time) *dto.SemesterProgressResponse
}

type semesterService struct{}

// NewSemesterService 创建 SemesterService 实例
func NewSemesterService() SemesterService {
	return &semesterService{}
}

func (s *semesterService) Current(now time.Time) *dto.SemesterResponse {
	return buildSemesterResponse(now)
}

func (s *semesterService) Range(id string) (*dto.SemesterRangeResponse, error) {
	r, ok := semester.DateRange(id)
	if !ok {
		return nil, ErrSemesterInvalid
	}
	return &dto.SemesterRangeResponse{
		ID:        id,
		StartDate: r.StartString(),
		EndDate:   r.EndString(),
		Days:      r.Days(),
	}, nil
}

func (s *semesterService) Progress(now time.Time) *dto.SemesterProgressResponse {
	return &dto.SemesterProgressResponse{
		ID:       semester.Current(now).String(),
		Progress: semester.Progress(now),
		Week:     semester.Week(now),
		Today:    semester.FormatDate(now),
	}
}

// buildSemesterResponse 同一个 now 快照计算学期、进度与周次
func buildSemesterResponse(now time.Time) *dto.SemesterResponse {
	id := semester.Current(now)
	resp := &dto.SemesterResponse{
		ID:       id.String(),
		Label:    semesterLabel(id),
		Year:     id.Year(),
		Half:     id.Half(),
		Progress: semester.Progress(now),
		Week:     semester.Week(now),
		Today:    semester.FormatDate(now),
	}
	if r, ok := semester.DateRange(id.String()); ok {
		resp.StartDate = r.StartString()
		resp.EndDate = r.EndString()
		resp.Days = r.Days()
	}
	return resp
}

func semesterLabel(id semester.ID) string {
	return fmt.Sprintf("%d學年度第%d學期", id.Year(), id.Half())
}
