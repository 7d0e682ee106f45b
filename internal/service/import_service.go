package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ketr501215/Ray-Cloud-Web/internal/dto"
	"github.com/ketr501215/Ray-Cloud-Web/internal/model"
	"github.com/ketr501215/Ray-Cloud-Web/internal/repository"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/semester"
	"github.com/ketr501215/Ray-Cloud-Web/pkg/storage"
)

// ── 导入模块业务错误 ──

var (
	ErrImportFileNotFound    = errors.New("导入文件不存在")
	ErrImportFetchFailed     = errors.New("读取导入文件失败")
	ErrImportWorkbookInvalid = errors.New("无法解析 Excel 文件")
)

// 表头关键字（去除空白后做子串匹配）
const (
	headerProject       = "計畫名稱"
	headerMidterm       = "期中成果報告"
	headerFinal         = "期末成果報告"
	headerReimbursement = "核銷要求"
	headerContact       = "承辦人員"
	headerContactShort  = "承辦人"
)

// 每个计划生成的里程碑
var milestones = []struct {
	header string
	suffix string
}{
	{headerMidterm, "期中報告"},
	{headerFinal, "期末報告"},
	{headerReimbursement, "核銷截止"},
}

// ImportService Excel 计划表导入接口
type ImportService interface {
	ImportFromFile(ctx context.Context, fileID int64, now time.Time) (*dto.ImportResponse, error)
}

type importService struct {
	repo            *repository.Repository
	store           storage.Store
	defaultCategory string
	logger          *zap.Logger
}

// NewImportService 创建 ImportService 实例
func NewImportService(repo *repository.Repository, store storage.Store, defaultCategory string, logger *zap.Logger) ImportService {
	return &importService{
		repo:            repo,
		store:           store,
		defaultCategory: defaultCategory,
		logger:          logger,
	}
}

// ImportFromFile 读取已上传的 Excel，把每个计划的期中 / 期末 / 核销节点写成内容
func (s *importService) ImportFromFile(ctx context.Context, fileID int64, now time.Time) (*dto.ImportResponse, error) {
	file, err := s.repo.File.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImportFileNotFound
		}
		s.logger.Error("查询导入文件失败", zap.Int64("file_id", fileID), zap.Error(err))
		return nil, err
	}

	body, err := s.store.Open(ctx, file.Filename)
	if err != nil {
		s.logger.Error("读取导入文件失败", zap.Int64("file_id", fileID), zap.String("filename", file.Filename), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrImportFetchFailed, err)
	}
	defer body.Close()

	category := file.Category
	if strings.TrimSpace(category) == "" || category == model.UncategorizedCategory {
		category = s.defaultCategory
	}

	contents, err := ParseMilestones(body, category, semester.Current(now), now)
	if err != nil {
		s.logger.Warn("解析 Excel 失败", zap.Int64("file_id", fileID), zap.Error(err))
		return nil, err
	}

	if len(contents) == 0 {
		return &dto.ImportResponse{Count: 0}, nil
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

	if err := s.repo.WithTx(tx).Content.CreateBatch(ctx, contents); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("批量写入导入内容失败", zap.Int("count", len(contents)), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("Excel 导入完成",
		zap.Int64("file_id", fileID),
		zap.String("category", category),
		zap.Int("count", len(contents)),
	)
	return &dto.ImportResponse{Count: len(contents)}, nil
}

// ParseMilestones 解析工作簿第一个工作表，首行为表头
//
// 计划名称为空的行跳过；里程碑单元格非空即生成一条内容，日期无法识别时截止日期为空。
func ParseMilestones(r io.Reader, category string, sem semester.ID, now time.Time) ([]model.Content, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportWorkbookInvalid, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrImportWorkbookInvalid
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportWorkbookInvalid, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := rows[0]
	projectCol := findColumn(headers, headerProject)
	if projectCol < 0 {
		return nil, nil
	}
	contactCol := findColumn(headers, headerContact)
	if contactCol < 0 {
		contactCol = findColumn(headers, headerContactShort)
	}
	milestoneCols := make([]int, len(milestones))
	for i, m := range milestones {
		milestoneCols[i] = findColumn(headers, m.header)
	}

	semID := sem.String()
	var contents []model.Content
	for _, row := range rows[1:] {
		project := strings.TrimSpace(cell(row, projectCol))
		if project == "" {
			continue
		}

		description := ""
		if contact := strings.TrimSpace(cell(row, contactCol)); contact != "" {
			description = "聯絡窗口: " + contact
		}

		for i, m := range milestones {
			raw := strings.TrimSpace(cell(row, milestoneCols[i]))
			if raw == "" {
				continue
			}
			semCopy := semID
			contents = append(contents, model.Content{
				Title:       fmt.Sprintf("[%s] - %s", project, m.suffix),
				Type:        category,
				Description: description,
				Status:      model.ContentStatusDraft,
				Progress:    0,
				Tracked: model.Tracked{
					Semester: &semCopy,
					Deadline: ParseSheetDate(raw),
				},
				BaseModel: model.BaseModel{CreatedAt: now, UpdatedAt: now},
			})
		}
	}
	return contents, nil
}

// findColumn 返回第一个（去空白后）包含关键字的表头列号，找不到返回 -1
func findColumn(headers []string, keyword string) int {
	for i, h := range headers {
		if strings.Contains(stripSpace(h), keyword) {
			return i
		}
	}
	return -1
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

var sheetDateLayouts = []string{
	"2006/1/2",
	"1/2/2006",
	"1/2/06",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
}

var embeddedDate = regexp.MustCompile(`(\d{4})/(\d{1,2})/(\d{1,2})`)

// ParseSheetDate 解析 Excel 中的日期文本，无法识别时返回 nil
//
// 支持 YYYY/MM/DD、YYYY-MM-DD、MM/DD/YYYY、MM-DD-YY（excelize 默认日期格式），
// 以及文本中嵌入的 YYYY/M/D。
func ParseSheetDate(raw string) *time.Time {
	norm := strings.ReplaceAll(strings.TrimSpace(raw), "-", "/")
	if norm == "" {
		return nil
	}

	loc := semester.Location()
	for _, layout := range sheetDateLayouts {
		if t, err := time.ParseInLocation(layout, norm, loc); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
			return &d
		}
	}

	m := embeddedDate.FindStringSubmatch(norm)
	if m == nil {
		return nil
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if d.Day() != day {
		return nil
	}
	return &d
}
