package errors

import (
	"errors"
	"fmt"
)

// Kind 错误类别，每个类别对应唯一的对外状态分类
type Kind string

const (
	KindValidation      Kind = "validation"
	KindPermission      Kind = "permission"
	KindNotFound        Kind = "not_found"
	KindUnauthenticated Kind = "unauthenticated"
	KindConflict        Kind = "conflict"
	KindStorage         Kind = "storage"
	KindRateLimited     Kind = "rate_limited"
)

// AppError 业务错误：稳定的 Kind + 业务码 + 可读信息
type AppError struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

// New 创建业务错误（通常作为包级哨兵变量）
func New(kind Kind, code int, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is 同 Kind + Code 视为同一错误，便于对包装后的哨兵使用 errors.Is
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Wrap 以哨兵为模板包装底层错误，保留 Kind/Code/Message
func (e *AppError) Wrap(err error) *AppError {
	return &AppError{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: err}
}

// WithMessage 以哨兵为模板替换可读信息（如字段级校验详情）
func (e *AppError) WithMessage(format string, args ...interface{}) *AppError {
	return &AppError{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

// KindOf 提取错误类别；非 AppError 一律视为存储/内部错误
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}

// ── 通用哨兵 ──

var (
	// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
	ErrOptimisticLock = New(KindConflict, 10009, "数据已被其他操作修改，请刷新后重试")
	// ErrStorage 存储层不可用或返回非预期错误
	ErrStorage = New(KindStorage, 50000, "服务器内部错误")
	// ErrUnauthenticated 缺少或无效的凭证
	ErrUnauthenticated = New(KindUnauthenticated, 10002, "未认证")
	// ErrForbidden 已认证但无权操作
	ErrForbidden = New(KindPermission, 10003, "无权限访问")
	// ErrInvalidParams 请求参数校验失败
	ErrInvalidParams = New(KindValidation, 10001, "参数校验失败")
	// ErrTooManyRequests 请求过于频繁
	ErrTooManyRequests = New(KindRateLimited, 10004, "请求过于频繁，请稍后再试")
)

// Storage 将底层存储错误包装为 KindStorage
func Storage(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return ErrStorage.Wrap(err)
}
