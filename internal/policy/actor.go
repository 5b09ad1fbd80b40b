package policy

import (
	"github.com/rioanand02/education-scheduler-api/internal/model"
)

// Cohort 班级三元组：年级 + 学期 + 批次
type Cohort struct {
	YearNo     int
	SemesterNo int
	Batch      string
}

// Matches 三元组完全相等
func (c Cohort) Matches(yearNo, semesterNo int, batch string) bool {
	return c.YearNo == yearNo && c.SemesterNo == semesterNo && c.Batch == batch
}

// Actor 当前请求的操作者
// 每次请求由认证中间件根据 Token 与最新用户记录构建，不跨请求缓存
type Actor struct {
	ID     string
	Role   model.Role
	Cohort *Cohort // 三项均已设置时才非空
}

// NewActor 由用户记录构建操作者
func NewActor(u *model.User) Actor {
	return Actor{
		ID:     u.UserID,
		Role:   u.Role,
		Cohort: CohortOf(u),
	}
}

// CohortOf 提取用户的完整班级；任一字段缺失返回 nil
func CohortOf(u *model.User) *Cohort {
	if u.YearNo == nil || u.SemesterNo == nil || u.Batch == nil || *u.Batch == "" {
		return nil
	}
	return &Cohort{YearNo: *u.YearNo, SemesterNo: *u.SemesterNo, Batch: *u.Batch}
}

// IsAdmin 是否管理员
func (a Actor) IsAdmin() bool { return a.Role == model.RoleAdmin }
