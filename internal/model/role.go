package model

// Role 用户角色（封闭枚举）
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleStudent Role = "student"
)

// Roles 全部合法角色
var Roles = []Role{RoleAdmin, RoleStaff, RoleStudent}

// Valid 是否为合法角色
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleStudent:
		return true
	default:
		return false
	}
}

// ParseRole 解析角色字符串，非法值返回 false
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

func (r Role) String() string { return string(r) }
