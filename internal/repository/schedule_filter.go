package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rioanand02/education-scheduler-api/internal/model"
	"github.com/rioanand02/education-scheduler-api/internal/policy"
)

// ScheduleFilter 课表查询条件
// 最终条件 = 调用方过滤 AND 可见性约束；各字段为空表示不限制
type ScheduleFilter struct {
	YearNo     *int
	SemesterNo *int
	Batch      *string
	From       *time.Time // start_at >= From
	To         *time.Time // start_at <= To
	Text       string     // 标题/描述不区分大小写子串匹配
	IDs        []string   // 非 nil 时限定 schedule_id（检索索引命中集合）
	Visibility policy.Visibility
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Scope 将过滤条件翻译为 GORM 查询
func (f ScheduleFilter) Scope(db *gorm.DB) *gorm.DB {
	if f.YearNo != nil {
		db = db.Where("year_no = ?", *f.YearNo)
	}
	if f.SemesterNo != nil {
		db = db.Where("semester_no = ?", *f.SemesterNo)
	}
	if f.Batch != nil {
		db = db.Where("batch = ?", *f.Batch)
	}
	if f.From != nil {
		db = db.Where("start_at >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("start_at <= ?", *f.To)
	}
	if f.Text != "" {
		pattern := "%" + likeEscaper.Replace(f.Text) + "%"
		db = db.Where("(title ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			db = db.Where("1 = 0")
		} else {
			db = db.Where("schedule_id IN ?", f.IDs)
		}
	}
	return visibilityScope(db, f.Visibility)
}

func visibilityScope(db *gorm.DB, v policy.Visibility) *gorm.DB {
	if !v.Restricted {
		return db
	}
	switch {
	case v.AttendeeID != "" && v.Cohort != nil:
		return db.Where("(? = ANY(attendees) OR (year_no = ? AND semester_no = ? AND batch = ?))",
			v.AttendeeID, v.Cohort.YearNo, v.Cohort.SemesterNo, v.Cohort.Batch)
	case v.AttendeeID != "":
		return db.Where("? = ANY(attendees)", v.AttendeeID)
	case v.Cohort != nil:
		return db.Where("year_no = ? AND semester_no = ? AND batch = ?",
			v.Cohort.YearNo, v.Cohort.SemesterNo, v.Cohort.Batch)
	default:
		return db.Where("1 = 0")
	}
}

// Matches 内存版过滤判定，与 Scope 生成的 SQL 语义一致
func (f ScheduleFilter) Matches(s *model.Schedule) bool {
	if f.YearNo != nil && s.YearNo != *f.YearNo {
		return false
	}
	if f.SemesterNo != nil && s.SemesterNo != *f.SemesterNo {
		return false
	}
	if f.Batch != nil && s.Batch != *f.Batch {
		return false
	}
	if f.From != nil && s.StartAt.Before(*f.From) {
		return false
	}
	if f.To != nil && s.StartAt.After(*f.To) {
		return false
	}
	if f.Text != "" {
		q := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(s.Title), q) && !strings.Contains(strings.ToLower(s.Description), q) {
			return false
		}
	}
	if f.IDs != nil && !containsString(f.IDs, s.ScheduleID) {
		return false
	}
	return f.Visibility.Permits(s)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ScheduleOrder 列表排序：开始时间升序，id 作为稳定的次序键
const ScheduleOrder = "start_at ASC, schedule_id ASC"

// LessSchedule 与 ScheduleOrder 一致的内存比较
func LessSchedule(a, b *model.Schedule) bool {
	if !a.StartAt.Equal(b.StartAt) {
		return a.StartAt.Before(b.StartAt)
	}
	return a.ScheduleID < b.ScheduleID
}
