package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rioanand02/education-scheduler-api/internal/dto"
	"github.com/rioanand02/education-scheduler-api/internal/policy"
	"github.com/rioanand02/education-scheduler-api/internal/service"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

type exportFunc func(ctx context.Context, actor policy.Actor, req dto.ScheduleFilterRequest) (*service.ExportFile, error)

// ExportXLSX 导出课表 Excel（教职工/管理员）
// GET /api/v1/schedules/export.xlsx
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	h.export(c, h.exportSvc.ExportXLSX, contentTypeXLSX)
}

// ExportICS 导出课表 iCalendar
// GET /api/v1/schedules/export.ics
func (h *ExportHandler) ExportICS(c *gin.Context) {
	h.export(c, h.exportSvc.ExportICS, contentTypeICS)
}

func (h *ExportHandler) export(c *gin.Context, fn exportFunc, contentType string) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ScheduleFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	file, err := fn(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(file.Filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	if file.Truncated {
		c.Header("X-Export-Truncated", "true")
		c.Header("X-Export-Limit", strconv.Itoa(file.Limit))
	}
	c.Data(http.StatusOK, contentType, file.Content.Bytes())
}
