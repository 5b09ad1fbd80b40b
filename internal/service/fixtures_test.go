package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rioanand02/education-scheduler-api/config"
	"github.com/rioanand02/education-scheduler-api/internal/model"
	"github.com/rioanand02/education-scheduler-api/internal/policy"
	"github.com/rioanand02/education-scheduler-api/internal/repository"
	"github.com/rioanand02/education-scheduler-api/pkg/jwt"
)

const testPassword = "password123"

// ── 测试环境 ──

type testEnv struct {
	cfg       *config.Config
	users     *mockUserRepo
	schedules *mockScheduleRepo
	tokens    *mockTokenStore
	index     *mockIndex
	jwtMgr    *jwt.Manager
	svc       *Service
}

// newTestEnv withIndex=false 时不注入全文索引（关键词检索走 ILIKE 语义）
func newTestEnv(t *testing.T, withIndex bool) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "test-secret-0123456789",
			Issuer:         "education-scheduler",
			AccessTokenTTL: time.Hour,
		},
	}
	users := newMockUserRepo()
	schedules := newMockScheduleRepo(users)
	env := &testEnv{
		cfg:       cfg,
		users:     users,
		schedules: schedules,
		tokens:    newMockTokenStore(),
		index:     newMockIndex(),
		jwtMgr:    jwt.NewManager(&cfg.Auth),
	}
	repo := &repository.Repository{User: users, Schedule: schedules}

	var index ScheduleIndex
	if withIndex {
		index = env.index
	}
	env.svc = NewService(cfg, repo, env.jwtMgr, env.tokens, index, zap.NewNop())
	return env
}

var testHash = func() string {
	h, _ := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	return string(h)
}()

func (e *testEnv) addUser(t *testing.T, name string, role model.Role, cohort *policy.Cohort) *model.User {
	t.Helper()
	u := &model.User{
		UserID:       uuid.NewString(),
		Name:         name,
		Email:        name + "@school.test",
		PasswordHash: testHash,
		Role:         role,
	}
	if cohort != nil {
		y, s, b := cohort.YearNo, cohort.SemesterNo, cohort.Batch
		u.YearNo, u.SemesterNo, u.Batch = &y, &s, &b
	}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("创建测试用户失败: %v", err)
	}
	return u
}

func (e *testEnv) addSchedule(t *testing.T, creator *model.User, title string, c policy.Cohort, start time.Time, attendees ...string) *model.Schedule {
	t.Helper()
	s := &model.Schedule{
		ScheduleID: uuid.NewString(),
		Title:      title,
		YearNo:     c.YearNo,
		SemesterNo: c.SemesterNo,
		Batch:      c.Batch,
		StartAt:    start,
		EndAt:      start.Add(time.Hour),
		Attendees:  model.StringArray(attendees),
		CreatedBy:  creator.UserID,
		Version:    1,
	}
	if err := e.schedules.Create(context.Background(), s); err != nil {
		t.Fatalf("创建测试课表失败: %v", err)
	}
	_ = e.index.Upsert(context.Background(), s)
	return s
}

func actorOf(u *model.User) policy.Actor {
	return policy.NewActor(u)
}

func intPtr(v int) *int              { return &v }
func strPtr(v string) *string        { return &v }
func timePtr(v time.Time) *time.Time { return &v }

var (
	cohort11A = policy.Cohort{YearNo: 1, SemesterNo: 1, Batch: "A"}
	cohort11B = policy.Cohort{YearNo: 1, SemesterNo: 1, Batch: "B"}
	cohort23A = policy.Cohort{YearNo: 2, SemesterNo: 3, Batch: "A"}
)

var baseTime = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
