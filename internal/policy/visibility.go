package policy

import (
	"github.com/rioanand02/education-scheduler-api/internal/model"
)

// Visibility 列表查询的可见性约束，由仓储层翻译为 SQL 并与调用方过滤条件 AND 组合
//
// Restricted=false 表示不限制；否则可见集合为：
// attendees 包含 AttendeeID，或（Cohort 非空时）班级三元组相等
type Visibility struct {
	Restricted bool
	AttendeeID string
	Cohort     *Cohort
}

// VisibilityFor 根据操作者生成可见性约束
// 与 CanReadSchedule 保持一致：Permits(s) == CanReadSchedule(actor, s)
func VisibilityFor(actor Actor) Visibility {
	switch actor.Role {
	case model.RoleAdmin, model.RoleStaff:
		return Visibility{}
	case model.RoleStudent:
		v := Visibility{Restricted: true, AttendeeID: actor.ID}
		if actor.Cohort != nil {
			c := *actor.Cohort
			v.Cohort = &c
		}
		return v
	default:
		// 未知角色：受限且无任何可匹配分支
		return Visibility{Restricted: true}
	}
}

// Permits 内存判定单条课表是否可见
func (v Visibility) Permits(s *model.Schedule) bool {
	if !v.Restricted {
		return true
	}
	if v.AttendeeID != "" && s.Attendees.Contains(v.AttendeeID) {
		return true
	}
	return v.Cohort != nil && v.Cohort.Matches(s.YearNo, s.SemesterNo, s.Batch)
}
