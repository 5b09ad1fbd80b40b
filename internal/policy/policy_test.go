package policy

import (
	"fmt"
	"testing"
	"time"

	"github.com/rioanand02/education-scheduler-api/internal/model"
)

const (
	studentID = "11111111-1111-1111-1111-111111111111"
	staffA    = "22222222-2222-2222-2222-222222222222"
	staffB    = "33333333-3333-3333-3333-333333333333"
	adminID   = "44444444-4444-4444-4444-444444444444"
	otherID   = "55555555-5555-5555-5555-555555555555"
)

func newSchedule(year, sem int, batch string, attendees ...string) *model.Schedule {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &model.Schedule{
		ScheduleID: "sched-1",
		Title:      "数据结构",
		YearNo:     year,
		SemesterNo: sem,
		Batch:      batch,
		StartAt:    start,
		EndAt:      start.Add(time.Hour),
		Attendees:  model.StringArray(attendees),
		CreatedBy:  staffA,
	}
}

func student(c *Cohort) Actor {
	return Actor{ID: studentID, Role: model.RoleStudent, Cohort: c}
}

// ── 学生可见性：参与者 × 是否有完整班级 × 三元组是否相等 ──

func TestCanReadSchedule_StudentTruthTable(t *testing.T) {
	for _, inAttendees := range []bool{false, true} {
		for _, hasCohort := range []bool{false, true} {
			for _, tripleEqual := range []bool{false, true} {
				name := fmt.Sprintf("attendee=%v/cohort=%v/equal=%v", inAttendees, hasCohort, tripleEqual)
				t.Run(name, func(t *testing.T) {
					s := newSchedule(2, 3, "A")
					if !tripleEqual {
						s.Batch = "B"
					}
					if inAttendees {
						s.Attendees = model.StringArray{otherID, studentID}
					} else {
						s.Attendees = model.StringArray{otherID}
					}

					var c *Cohort
					if hasCohort {
						c = &Cohort{YearNo: 2, SemesterNo: 3, Batch: "A"}
					}
					actor := student(c)

					want := inAttendees || (hasCohort && tripleEqual)
					if got := CanReadSchedule(actor, s); got != want {
						t.Errorf("CanReadSchedule=%v, want %v", got, want)
					}
					if got := VisibilityFor(actor).Permits(s); got != want {
						t.Errorf("Visibility.Permits=%v, want %v", got, want)
					}
				})
			}
		}
	}
}

func TestCanReadSchedule_EachTripleComponentMatters(t *testing.T) {
	actor := student(&Cohort{YearNo: 2, SemesterNo: 3, Batch: "A"})

	tests := []struct {
		name string
		s    *model.Schedule
		want bool
	}{
		{"全部相等", newSchedule(2, 3, "A"), true},
		{"年级不同", newSchedule(1, 3, "A"), false},
		{"学期不同", newSchedule(2, 4, "A"), false},
		{"批次不同", newSchedule(2, 3, "B"), false},
		{"批次大小写不同", newSchedule(2, 3, "a"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanReadSchedule(actor, tt.s); got != tt.want {
				t.Errorf("CanReadSchedule=%v, want %v", got, tt.want)
			}
		})
	}
}

// 具体场景：同班级无需出现在参与者中；不同批次不可见
func TestCanReadSchedule_CohortScenario(t *testing.T) {
	actor := student(&Cohort{YearNo: 2, SemesterNo: 3, Batch: "A"})

	if !CanReadSchedule(actor, newSchedule(2, 3, "A")) {
		t.Error("同班级课表应可见")
	}
	if CanReadSchedule(actor, newSchedule(2, 3, "B")) {
		t.Error("不同批次课表不应可见")
	}
}

func TestCanReadSchedule_StaffAndAdminAlways(t *testing.T) {
	schedules := []*model.Schedule{
		newSchedule(1, 1, "A"),
		newSchedule(9, 9, "Z", otherID),
		newSchedule(2, 3, "B", studentID),
	}
	actors := []Actor{
		{ID: staffA, Role: model.RoleStaff},
		{ID: staffB, Role: model.RoleStaff},
		{ID: adminID, Role: model.RoleAdmin},
		{ID: staffB, Role: model.RoleStaff, Cohort: &Cohort{YearNo: 5, SemesterNo: 5, Batch: "Q"}},
	}
	for _, a := range actors {
		for _, s := range schedules {
			if !CanReadSchedule(a, s) {
				t.Errorf("%s(%s) 应可读课表 %+v", a.Role, a.ID, s)
			}
			if !VisibilityFor(a).Permits(s) {
				t.Errorf("%s 的可见性约束不应限制", a.Role)
			}
		}
	}
}

func TestUnknownRoleDenied(t *testing.T) {
	actor := Actor{ID: studentID, Role: model.Role("superuser"), Cohort: &Cohort{YearNo: 2, SemesterNo: 3, Batch: "A"}}
	s := newSchedule(2, 3, "A", studentID)
	s.CreatedBy = studentID

	if CanCreateSchedule(actor) || CanMutateSchedule(actor, s) || CanReadSchedule(actor, s) {
		t.Error("未知角色不应拥有课表权限")
	}
	if VisibilityFor(actor).Permits(s) {
		t.Error("未知角色的可见集合应为空")
	}
	if CanReadUser(actor, studentID) || CanWriteUser(actor, studentID) {
		t.Error("未知角色不应访问用户")
	}
	if CanWriteUserField(actor, FieldName) {
		t.Error("未知角色不应修改任何字段")
	}
}

// ── 创建与修改 ──

func TestCanCreateSchedule(t *testing.T) {
	tests := []struct {
		role model.Role
		want bool
	}{
		{model.RoleAdmin, true},
		{model.RoleStaff, true},
		{model.RoleStudent, false},
	}
	for _, tt := range tests {
		if got := CanCreateSchedule(Actor{ID: "x", Role: tt.role}); got != tt.want {
			t.Errorf("CanCreateSchedule(%s)=%v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestCanMutateSchedule(t *testing.T) {
	s := newSchedule(2, 3, "A", studentID)

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"创建者", Actor{ID: staffA, Role: model.RoleStaff}, true},
		{"其他教职工", Actor{ID: staffB, Role: model.RoleStaff}, false},
		{"管理员", Actor{ID: adminID, Role: model.RoleAdmin}, true},
		{"参与的学生", student(&Cohort{YearNo: 2, SemesterNo: 3, Batch: "A"}), false},
		{"创建者 id 相同但为学生", Actor{ID: staffA, Role: model.RoleStudent}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMutateSchedule(tt.actor, s); got != tt.want {
				t.Errorf("CanMutateSchedule=%v, want %v", got, tt.want)
			}
		})
	}
}

// ── 用户 ──

func TestCanReadWriteUser(t *testing.T) {
	self := Actor{ID: studentID, Role: model.RoleStudent}
	staff := Actor{ID: staffA, Role: model.RoleStaff}
	admin := Actor{ID: adminID, Role: model.RoleAdmin}

	if !CanReadUser(self, studentID) || !CanWriteUser(self, studentID) {
		t.Error("本人应可读写自己的资料")
	}
	if CanReadUser(staff, studentID) || CanWriteUser(staff, studentID) {
		t.Error("教职工不应读写他人资料")
	}
	if !CanReadUser(admin, studentID) || !CanWriteUser(admin, studentID) {
		t.Error("管理员应可读写任意资料")
	}
	if CanReadUser(Actor{Role: model.RoleStudent}, "") {
		t.Error("空 id 不应被视为本人")
	}
}

func TestCanWriteUserField(t *testing.T) {
	self := Actor{ID: studentID, Role: model.RoleStudent}
	admin := Actor{ID: adminID, Role: model.RoleAdmin}

	for _, f := range []UserField{FieldName, FieldPassword, FieldYearNo, FieldSemesterNo, FieldBatch} {
		if !CanWriteUserField(self, f) {
			t.Errorf("本人应可修改 %s", f)
		}
	}
	if CanWriteUserField(self, FieldRole) {
		t.Error("非管理员不应修改角色")
	}
	if !CanWriteUserField(admin, FieldRole) {
		t.Error("管理员应可修改角色")
	}
	for _, f := range []UserField{"email", "created_by", "password_hash"} {
		if CanWriteUserField(admin, f) {
			t.Errorf("字段 %s 不应允许修改", f)
		}
	}
}

func TestCanDeleteUser(t *testing.T) {
	admin := Actor{ID: adminID, Role: model.RoleAdmin}
	if !CanDeleteUser(admin, studentID) {
		t.Error("管理员应可删除他人")
	}
	if CanDeleteUser(admin, adminID) {
		t.Error("管理员不应删除自己")
	}
	if CanDeleteUser(Actor{ID: staffA, Role: model.RoleStaff}, studentID) {
		t.Error("教职工不应删除用户")
	}
}

func TestNewActor_CohortRequiresAllFields(t *testing.T) {
	year, sem, batch := 2, 3, "A"

	full := NewActor(&model.User{UserID: studentID, Role: model.RoleStudent, YearNo: &year, SemesterNo: &sem, Batch: &batch})
	if full.Cohort == nil || *full.Cohort != (Cohort{YearNo: 2, SemesterNo: 3, Batch: "A"}) {
		t.Errorf("期望完整班级，实际=%+v", full.Cohort)
	}

	partial := NewActor(&model.User{UserID: studentID, Role: model.RoleStudent, YearNo: &year, Batch: &batch})
	if partial.Cohort != nil {
		t.Error("缺少学期时不应有班级")
	}

	// 无班级的学生只能通过参与者分支看到课表
	v := VisibilityFor(partial)
	if v.Cohort != nil {
		t.Error("可见性约束不应包含班级分支")
	}
	if v.Permits(newSchedule(2, 3, "A")) {
		t.Error("无班级学生不应看到未参与的课表")
	}
	if !v.Permits(newSchedule(2, 3, "A", studentID)) {
		t.Error("应看到自己参与的课表")
	}
}
