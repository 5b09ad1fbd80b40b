package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/rioanand02/education-scheduler-api/internal/model"
	"github.com/rioanand02/education-scheduler-api/internal/repository"
	pkgerrors "github.com/rioanand02/education-scheduler-api/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
	err   error // 非 nil 时所有调用返回该错误（模拟存储故障）
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func copyUser(u *model.User) *model.User {
	c := *u
	return &c
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	user.Email = strings.ToLower(user.Email)
	for _, u := range m.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = user.CreatedAt
	m.users[user.UserID] = copyUser(user)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			return copyUser(u), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "password_hash":
			u.PasswordHash = v.(string)
		case "role":
			u.Role = model.Role(v.(string))
		case "year_no":
			n := v.(int)
			u.YearNo = &n
		case "semester_no":
			n := v.(int)
			u.SemesterNo = &n
		case "batch":
			if v == nil {
				u.Batch = nil
			} else {
				b := v.(string)
				u.Batch = &b
			}
		default:
			return errors.New("mock: unexpected column " + k)
		}
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filter repository.UserFilter, offset, limit int) ([]model.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	var all []model.User
	for _, u := range m.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].UserID < all[j].UserID
	})
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockUserRepo) ListBriefByIDs(_ context.Context, ids []string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *brief(u))
		}
	}
	return result, nil
}

func (m *mockUserRepo) ExistingIDs(_ context.Context, ids []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var found []string
	for _, id := range ids {
		if _, ok := m.users[id]; ok {
			found = append(found, id)
		}
	}
	return found, nil
}

// brief 与仓储层投影查询一致：仅 id/name/email/role
func brief(u *model.User) *model.User {
	return &model.User{UserID: u.UserID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (m *mockUserRepo) briefByID(id string) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return brief(u)
	}
	return nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct {
	mu        sync.Mutex
	schedules map[string]*model.Schedule
	users     *mockUserRepo
	// beforeWrite 在条件写之前调用，用于模拟读-写之间的并发修改
	beforeWrite func(id string)
	err         error
}

func newMockScheduleRepo(users *mockUserRepo) *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[string]*model.Schedule), users: users}
}

func copySchedule(s *model.Schedule) *model.Schedule {
	c := *s
	c.Attendees = append(model.StringArray{}, s.Attendees...)
	c.Creator = nil
	return &c
}

func (m *mockScheduleRepo) withCreator(s *model.Schedule) *model.Schedule {
	c := copySchedule(s)
	c.Creator = m.users.briefByID(s.CreatedBy)
	return c
}

func (m *mockScheduleRepo) Create(_ context.Context, s *model.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.UpdatedAt = s.CreatedAt
	m.schedules[s.ScheduleID] = copySchedule(s)
	return nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.schedules[id]; ok {
		return m.withCreator(s), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) matching(filter repository.ScheduleFilter) []model.Schedule {
	var all []*model.Schedule
	for _, s := range m.schedules {
		if filter.Matches(s) {
			all = append(all, s)
		}
	}
	sort.Slice(all, func(i, j int) bool { return repository.LessSchedule(all[i], all[j]) })
	result := make([]model.Schedule, 0, len(all))
	for _, s := range all {
		result = append(result, *m.withCreator(s))
	}
	return result
}

func (m *mockScheduleRepo) List(_ context.Context, filter repository.ScheduleFilter, offset, limit int) ([]model.Schedule, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	all := m.matching(filter)
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockScheduleRepo) ListAll(_ context.Context, filter repository.ScheduleFilter, max int) ([]model.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return paginate(m.matching(filter), 0, max), nil
}

func (m *mockScheduleRepo) Update(_ context.Context, s *model.Schedule, creatorID string) error {
	if m.beforeWrite != nil {
		m.beforeWrite(s.ScheduleID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cur, ok := m.schedules[s.ScheduleID]
	if !ok || cur.Version != s.Version || (creatorID != "" && cur.CreatedBy != creatorID) {
		return pkgerrors.ErrOptimisticLock
	}
	next := copySchedule(s)
	next.CreatedBy = cur.CreatedBy
	next.CreatedAt = cur.CreatedAt
	next.Version = cur.Version + 1
	next.UpdatedAt = time.Now()
	m.schedules[s.ScheduleID] = next
	s.Version = next.Version
	return nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id string, creatorID string) error {
	if m.beforeWrite != nil {
		m.beforeWrite(id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cur, ok := m.schedules[id]
	if !ok || (creatorID != "" && cur.CreatedBy != creatorID) {
		return pkgerrors.ErrOptimisticLock
	}
	delete(m.schedules, id)
	return nil
}

// mutate 直接修改存储中的记录（测试中模拟其他请求的写入）
func (m *mockScheduleRepo) mutate(id string, fn func(s *model.Schedule)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.schedules[id]; ok {
		fn(s)
	}
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// ── Mock TokenStore ──

type mockTokenStore struct {
	mu        sync.Mutex
	blacklist map[string]time.Duration
	err       error
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{blacklist: make(map[string]time.Duration)}
}

func (m *mockTokenStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.blacklist[jti] = ttl
	return nil
}

func (m *mockTokenStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.blacklist[jti]
	return ok, nil
}

// ── Mock ScheduleIndex ──

type mockIndex struct {
	mu       sync.Mutex
	docs     map[string]string
	err      error    // SearchIDs 返回的错误
	fuzzy    []string // 额外返回的 id，模拟拼写容错的误命中
	upserts  int
	deletes  int
	searches int
}

func newMockIndex() *mockIndex {
	return &mockIndex{docs: make(map[string]string)}
}

func (m *mockIndex) Upsert(_ context.Context, s *model.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	m.docs[s.ScheduleID] = strings.ToLower(s.Title + " " + s.Description)
	return nil
}

func (m *mockIndex) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.docs, id)
	return nil
}

func (m *mockIndex) SearchIDs(_ context.Context, q string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches++
	if m.err != nil {
		return nil, m.err
	}
	ids := append([]string{}, m.fuzzy...)
	for id, text := range m.docs {
		if strings.Contains(text, strings.ToLower(q)) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
