package service

import (
	pkgerrors "github.com/rioanand02/education-scheduler-api/pkg/errors"
)

// ── 认证 ──

var (
	ErrInvalidCredentials = pkgerrors.New(pkgerrors.KindUnauthenticated, 10005, "邮箱或密码错误")
	ErrTokenRevoked       = pkgerrors.New(pkgerrors.KindUnauthenticated, 10006, "Token 已失效")
)

// ── 用户 ──

var (
	ErrUserNotFound   = pkgerrors.New(pkgerrors.KindNotFound, 20001, "用户不存在")
	ErrEmailExists    = pkgerrors.New(pkgerrors.KindConflict, 20002, "邮箱已被注册")
	ErrUserSelfDelete = pkgerrors.New(pkgerrors.KindPermission, 20003, "不能删除自己")
	ErrUserSelfRole   = pkgerrors.New(pkgerrors.KindPermission, 20004, "不能修改自己的角色")
	ErrInvalidRole    = pkgerrors.New(pkgerrors.KindValidation, 20005, "角色不合法")
)

// ── 课表 ──

var (
	ErrScheduleNotFound  = pkgerrors.New(pkgerrors.KindNotFound, 30001, "课表不存在")
	ErrScheduleForbidden = pkgerrors.New(pkgerrors.KindPermission, 30002, "无权操作该课表")
	ErrInvalidTimeRange  = pkgerrors.New(pkgerrors.KindValidation, 30003, "start_at 必须早于 end_at")
	ErrUnknownAttendees  = pkgerrors.New(pkgerrors.KindValidation, 30004, "参与者不存在")
	ErrInvalidDateRange  = pkgerrors.New(pkgerrors.KindValidation, 30005, "from 不能晚于 to")
	ErrScheduleConflict  = pkgerrors.ErrOptimisticLock
)

// invalidParams 字段级参数错误
func invalidParams(format string, args ...interface{}) error {
	return pkgerrors.ErrInvalidParams.WithMessage(format, args...)
}
