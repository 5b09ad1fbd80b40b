package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormatValidationError 将 gin 绑定错误转为可读的中文提示
func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			messages = append(messages, fieldErrorMessage(fe))
		}
		return strings.Join(messages, "; ")
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("%s 类型错误", typeErr.Field)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "请求体不是合法的 JSON"
	}
	return err.Error()
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := fieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s 不能为空", field)
	case "email":
		return fmt.Sprintf("%s 必须是合法的邮箱地址", field)
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s 长度不能少于 %s", field, fe.Param())
		}
		return fmt.Sprintf("%s 不能小于 %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s 长度不能超过 %s", field, fe.Param())
		}
		return fmt.Sprintf("%s 不能大于 %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s 必须是 [%s] 之一", field, fe.Param())
	case "uuid":
		return fmt.Sprintf("%s 必须是合法的 UUID", field)
	case "dive":
		return fmt.Sprintf("%s 中包含非法元素", field)
	default:
		return fmt.Sprintf("%s 不合法", field)
	}
}

var fieldNames = map[string]string{
	"Email":      "email",
	"Password":   "password",
	"Name":       "name",
	"Role":       "role",
	"Title":      "title",
	"YearNo":     "year_no",
	"SemesterNo": "semester_no",
	"Batch":      "batch",
	"StartAt":    "start_at",
	"EndAt":      "end_at",
	"Attendees":  "attendees",
	"Page":       "page",
	"Limit":      "limit",
}

func fieldName(field string) string {
	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
