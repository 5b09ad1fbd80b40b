package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/rioanand02/education-scheduler-api/pkg/errors"
	"github.com/rioanand02/education-scheduler-api/pkg/response"
	"github.com/rioanand02/education-scheduler-api/pkg/validator"
)

// kindStatus 错误类别 → HTTP 状态码（唯一映射点）
var kindStatus = map[pkgerrors.Kind]int{
	pkgerrors.KindValidation:      http.StatusBadRequest,
	pkgerrors.KindConflict:        http.StatusBadRequest,
	pkgerrors.KindUnauthenticated: http.StatusUnauthorized,
	pkgerrors.KindPermission:      http.StatusForbidden,
	pkgerrors.KindNotFound:        http.StatusNotFound,
	pkgerrors.KindRateLimited:     http.StatusTooManyRequests,
	pkgerrors.KindStorage:         http.StatusInternalServerError,
}

// StatusOf 返回错误对应的 HTTP 状态码
func StatusOf(err error) int {
	if status, ok := kindStatus[pkgerrors.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError 将服务层错误写为统一响应
// 存储类错误只返回通用提示，底层错误经 c.Error 交给日志中间件记录
func respondError(c *gin.Context, err error) {
	var appErr *pkgerrors.AppError
	if !errors.As(err, &appErr) {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}
	if appErr.Kind == pkgerrors.KindStorage {
		_ = c.Error(err)
	}
	response.Error(c, StatusOf(appErr), appErr.Code, appErr.Message)
}

// respondBindError 请求绑定失败：请求体超限返回 413，其余返回字段级校验详情
func respondBindError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		response.Error(c, http.StatusRequestEntityTooLarge, 10007, "请求体过大")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest,
		pkgerrors.ErrInvalidParams.Code, pkgerrors.ErrInvalidParams.Message,
		validator.FormatValidationError(err))
}
