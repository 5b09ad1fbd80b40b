package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/rioanand02/education-scheduler-api/internal/dto"
	"github.com/rioanand02/education-scheduler-api/internal/model"
	"github.com/rioanand02/education-scheduler-api/internal/policy"
	"github.com/rioanand02/education-scheduler-api/internal/repository"
	pkgerrors "github.com/rioanand02/education-scheduler-api/pkg/errors"
)

// MaxExportRows 单次导出的最大课表数
const MaxExportRows = 5000

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = pkgerrors.New(pkgerrors.KindStorage, 40001, "生成导出文件失败")

// ExportService 导出业务接口
//
// 导出与列表使用同一套过滤与可见性规则，但不分页（上限 MaxExportRows 条）。
// 导出以 ExportFile 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportXLSX 导出为 Excel，仅教职工/管理员
	ExportXLSX(ctx context.Context, actor policy.Actor, req dto.ScheduleFilterRequest) (*ExportFile, error)
	// ExportICS 导出为 iCalendar 订阅，任何已认证用户
	ExportICS(ctx context.Context, actor policy.Actor, req dto.ScheduleFilterRequest) (*ExportFile, error)
}

// ExportFile 导出结果
type ExportFile struct {
	Content  *bytes.Buffer
	Filename string
	// Truncated 匹配的课表超过 Limit 条，仅导出了前 Limit 条
	Truncated bool
	Limit     int
}

type exportService struct {
	repo    *repository.Repository
	index   ScheduleIndex
	logger  *zap.Logger
	maxRows int
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, index ScheduleIndex, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, index: index, logger: logger, maxRows: MaxExportRows}
}

// visibleSchedules 多取一条用于判断是否截断
func (s *exportService) visibleSchedules(ctx context.Context, actor policy.Actor, req dto.ScheduleFilterRequest) ([]model.Schedule, bool, error) {
	filter, err := buildScheduleFilter(ctx, actor, req, s.index, s.logger)
	if err != nil {
		return nil, false, err
	}
	schedules, err := s.repo.Schedule.ListAll(ctx, filter, s.maxRows+1)
	if err != nil {
		s.logger.Error("查询导出课表失败", zap.Error(err))
		return nil, false, pkgerrors.Storage(err)
	}
	if len(schedules) > s.maxRows {
		s.logger.Warn("导出结果已截断", zap.Int("limit", s.maxRows), zap.String("operator", actor.ID))
		return schedules[:s.maxRows], true, nil
	}
	return schedules, false, nil
}

// ═══════════════════════════════════════════════════════════
// ExportXLSX — 导出课表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：单个 Sheet，一行一条课表，按开始时间升序
// | 标题 | 年级 | 学期 | 批次 | 开始 | 结束 | 创建者 | 参与人数 | 描述 |

var xlsxHeaders = []string{"标题", "年级", "学期", "批次", "开始时间", "结束时间", "创建者", "参与人数", "描述"}

func (s *exportService) ExportXLSX(ctx context.Context, actor policy.Actor, req dto.ScheduleFilterRequest) (*ExportFile, error) {
	if !policy.CanCreateSchedule(actor) {
		return nil, pkgerrors.ErrForbidden
	}
	schedules, truncated, err := s.visibleSchedules(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "课表"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽
	widths := []float64{28, 8, 8, 10, 20, 20, 16, 10, 40}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头
	for i, h := range xlsxHeaders {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(xlsxHeaders)-1), 1), headerStyle)
	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	// 数据行
	for i := range schedules {
		sc := &schedules[i]
		row := i + 2
		creator := "-"
		if sc.Creator != nil {
			creator = sc.Creator.Name
		}
		values := []interface{}{
			sc.Title,
			sc.YearNo,
			sc.SemesterNo,
			sc.Batch,
			sc.StartAt.UTC().Format(time.DateTime),
			sc.EndAt.UTC().Format(time.DateTime),
			creator,
			len(sc.Attendees),
			sc.Description,
		}
		for col, v := range values {
			f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, ErrExportGenerateFail
	}

	return s.file(buf, exportFilename(req, "xlsx"), truncated), nil
}

// ═══════════════════════════════════════════════════════════
// ExportICS — 导出课表为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每条课表一个 VEVENT，UID 为 schedule_id，不生成重复规则

const icsDomain = "education-scheduler"

func (s *exportService) ExportICS(ctx context.Context, actor policy.Actor, req dto.ScheduleFilterRequest) (*ExportFile, error) {
	schedules, truncated, err := s.visibleSchedules(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//" + icsDomain + "//schedules//ZH")
	cal.SetName("课表")

	now := time.Now().UTC()
	for i := range schedules {
		sc := &schedules[i]
		event := cal.AddEvent(sc.ScheduleID + "@" + icsDomain)
		event.SetDtStampTime(now)
		event.SetCreatedTime(sc.CreatedAt)
		event.SetModifiedAt(sc.UpdatedAt)
		event.SetStartAt(sc.StartAt)
		event.SetEndAt(sc.EndAt)
		event.SetSummary(sc.Title)
		if sc.Description != "" {
			event.SetDescription(sc.Description)
		}
		event.SetProperty(ics.ComponentPropertyCategories, fmt.Sprintf("Y%d-S%d-%s", sc.YearNo, sc.SemesterNo, sc.Batch))
		event.SetProperty(ics.ComponentPropertySequence, fmt.Sprintf("%d", sc.Version-1))
		if sc.Creator != nil && sc.Creator.Email != "" {
			event.SetOrganizer("mailto:"+sc.Creator.Email, ics.WithCN(sc.Creator.Name))
		}
	}

	return s.file(bytes.NewBufferString(cal.Serialize()), exportFilename(req, "ics"), truncated), nil
}

// ── 辅助函数 ──

func (s *exportService) file(content *bytes.Buffer, filename string, truncated bool) *ExportFile {
	return &ExportFile{Content: content, Filename: filename, Truncated: truncated, Limit: s.maxRows}
}

// exportFilename 按过滤条件生成文件名，如 schedules_Y2_S3_A.xlsx；批次仅保留字母数字
func exportFilename(req dto.ScheduleFilterRequest, ext string) string {
	parts := []string{"schedules"}
	if req.YearNo != nil {
		parts = append(parts, fmt.Sprintf("Y%d", *req.YearNo))
	}
	if req.SemesterNo != nil {
		parts = append(parts, fmt.Sprintf("S%d", *req.SemesterNo))
	}
	if b := strings.Map(keepAlnum, strings.TrimSpace(req.Batch)); b != "" {
		parts = append(parts, b)
	}
	return strings.Join(parts, "_") + "." + ext
}

func keepAlnum(r rune) rune {
	if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
		return r
	}
	return -1
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
