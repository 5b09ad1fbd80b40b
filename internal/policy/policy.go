// Package policy 访问控制规则。
//
// 所有函数均为纯函数：不做 I/O，不读全局状态，调用方负责提供已加载的记录。
// 对角色的 switch 必须列出全部角色并以 default 拒绝，新增角色时默认无权限。
package policy

import (
	"github.com/rioanand02/education-scheduler-api/internal/model"
)

// ── 课表 ──

// CanCreateSchedule 教职工与管理员可创建课表
func CanCreateSchedule(actor Actor) bool {
	switch actor.Role {
	case model.RoleAdmin, model.RoleStaff:
		return true
	case model.RoleStudent:
		return false
	default:
		return false
	}
}

// CanMutateSchedule 管理员可修改/删除任意课表；教职工仅限自己创建的
func CanMutateSchedule(actor Actor, s *model.Schedule) bool {
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleStaff:
		return actor.ID != "" && actor.ID == s.CreatedBy
	case model.RoleStudent:
		return false
	default:
		return false
	}
}

// CanReadSchedule 管理员/教职工可读全部；学生需为参与者或班级三元组完全匹配
func CanReadSchedule(actor Actor, s *model.Schedule) bool {
	switch actor.Role {
	case model.RoleAdmin, model.RoleStaff:
		return true
	case model.RoleStudent:
		return isAttendee(actor, s) || cohortMatches(actor, s)
	default:
		return false
	}
}

func isAttendee(actor Actor, s *model.Schedule) bool {
	return actor.ID != "" && s.Attendees.Contains(actor.ID)
}

func cohortMatches(actor Actor, s *model.Schedule) bool {
	return actor.Cohort != nil && actor.Cohort.Matches(s.YearNo, s.SemesterNo, s.Batch)
}

// ── 用户 ──

// CanReadUser 管理员或本人
func CanReadUser(actor Actor, targetID string) bool {
	return canAccessUser(actor, targetID)
}

// CanWriteUser 管理员或本人
func CanWriteUser(actor Actor, targetID string) bool {
	return canAccessUser(actor, targetID)
}

func canAccessUser(actor Actor, targetID string) bool {
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleStaff, model.RoleStudent:
		return actor.ID != "" && actor.ID == targetID
	default:
		return false
	}
}

// CanListUsers 仅管理员可浏览用户目录
func CanListUsers(actor Actor) bool {
	return actor.Role == model.RoleAdmin
}

// CanDeleteUser 仅管理员，且不能删除自己
func CanDeleteUser(actor Actor, targetID string) bool {
	return actor.Role == model.RoleAdmin && actor.ID != targetID
}

// CanRegisterUser 仅管理员可直接创建账号
func CanRegisterUser(actor Actor) bool {
	return actor.Role == model.RoleAdmin
}

// UserField 用户资料中可被修改的字段（与请求 JSON 键一致）
type UserField string

const (
	FieldName       UserField = "name"
	FieldPassword   UserField = "password"
	FieldYearNo     UserField = "year_no"
	FieldSemesterNo UserField = "semester_no"
	FieldBatch      UserField = "batch"
	FieldRole       UserField = "role"
)

// CanWriteUserField 本人可改基础资料；角色仅管理员可改
// 未列出的字段（email、created_at 等）任何人都不可通过资料更新修改
func CanWriteUserField(actor Actor, field UserField) bool {
	switch field {
	case FieldName, FieldPassword, FieldYearNo, FieldSemesterNo, FieldBatch:
		return actor.Role.Valid()
	case FieldRole:
		return actor.Role == model.RoleAdmin
	default:
		return false
	}
}
