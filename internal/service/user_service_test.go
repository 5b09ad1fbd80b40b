package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rioanand02/education-scheduler-api/internal/dto"
	"github.com/rioanand02/education-scheduler-api/internal/model"
	pkgerrors "github.com/rioanand02/education-scheduler-api/pkg/errors"
	"github.com/rioanand02/education-scheduler-api/pkg/password"
)

// ── Create 测试 ──

func TestUserService_Create_Success(t *testing.T) {
	env := newTestEnv(t, false)
	admin := env.addUser(t, "admin", model.RoleAdmin, nil)

	got, err := env.svc.User.Create(context.Background(), actorOf(admin), &dto.CreateUserRequest{
		Name:       "  李四 ",
		Email:      "  LiSi@School.Test ",
		Password:   "secret1",
		Role:       "student",
		YearNo:     intPtr(2),
		SemesterNo: intPtr(3),
		Batch:      strPtr("A"),
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if got.Name != "李四" || got.Email != "lisi@school.test" {
		t.Errorf("name/email 应规范化，实际 %q/%q", got.Name, got.Email)
	}
	stored, _ := env.users.GetByID(context.Background(), got.ID)
	if stored.PasswordHash == "secret1" || !password.Verify(stored.PasswordHash, "secret1") {
		t.Error("密码应以 bcrypt 哈希存储")
	}
}

func TestUserService_Create_DefaultRoleStudent(t *testing.T) {
	env := newTestEnv(t, false)
	admin := env.addUser(t, "admin", model.RoleAdmin, nil)

	got, err := env.svc.User.Create(context.Background(), actorOf(admin), &dto.CreateUserRequest{
		Name: "王五", Email: "wangwu@school.test", Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if got.Role != "student" {
		t.Errorf("未指定角色时应为 student，实际=%s", got.Role)
	}
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t, false)
	admin := env.addUser(t, "admin", model.RoleAdmin, nil)

	_, err := env.svc.User.Create(context.Background(), actorOf(admin), &dto.CreateUserRequest{
		Name: "重复", Email: "ADMIN@school.test", Password: "secret1",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("邮箱大小写不同仍应视为重复，实际: %v", err)
	}
}

func TestUserService_Create_Rejections(t *testing.T) {
	env := newTestEnv(t, false)
	admin := env.addUser(t, "admin", model.RoleAdmin, nil)
	staff := env.addUser(t, "staff", model.RoleStaff, nil)

	tests := []struct {
		name  string
		actor *model.User
		req   dto.CreateUserRequest
		kind  pkgerrors.Kind
	}{
		{"非管理员", staff, dto.CreateUserRequest{Name: "x", Email: "x@school.test", Password: "secret1"}, pkgerrors.KindPermission},
		{"非法角色", admin, dto.CreateUserRequest{Name: "x", Email: "x@school.test", Password: "secret1", Role: "root"}, pkgerrors.KindValidation},
		{"非法邮箱", admin, dto.CreateUserRequest{Name: "x", Email: "not-an-email", Password: "secret1"}, pkgerrors.KindValidation},
		{"密码过短", admin, dto.CreateUserRequest{Name: "x", Email: "x@school.test", Password: "12345"}, pkgerrors.KindValidation},
		{"密码超过 72 字节", admin, dto.CreateUserRequest{Name: "x", Email: "x@school.test", Password: strings.Repeat("é", 40)}, pkgerrors.KindValidation},
		{"年级非正", admin, dto.CreateUserRequest{Name: "x", Email: "x@school.test", Password: "secret1", YearNo: intPtr(0)}, pkgerrors.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.User.Create(context.Background(), actorOf(tt.actor), &tt.req)
			if pkgerrors.KindOf(err) != tt.kind {
				t.Errorf("期望 %s，实际: %v", tt.kind, err)
			}
		})
	}
	if _, err := env.users.GetByEmail(context.Background(), "x@school.test"); err == nil {
		t.Error("被拒绝的请求不应创建用户")
	}
}

// ── List 测试 ──

func TestUserService_List(t *testing.T) {
	env := newTestEnv(t, false)
	admin := env.addUser(t, "admin", model.RoleAdmin, nil)
	for i, name := range []string{"s1", "s2", "s3"} {
		u := env.addUser(t, name, model.RoleStudent, nil)
		env.users.users[u.UserID].CreatedAt = time.Now().Add(time.Duration(i+1) * time.Minute)
	}

	list, meta, err := env.svc.User.List(context.Background(), actorOf(admin), &dto.UserListRequest{Role: "student"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if meta.Total != 3 || len(list) != 3 {
		t.Fatalf("期望 3 个学生，实际 total=%d len=%d", meta.Total, len(list))
	}
	if list[0].Name != "s3" {
		t.Errorf("列表应按创建时间倒序，首条=%s", list[0].Name)
	}

	_, meta, err = env.svc.User.List(context.Background(), actorOf(admin), &dto.UserListRequest{
		PaginationRequest: dto.PaginationRequest{Page: intPtr(2), Limit: intPtr(2)},
	})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if meta.Total != 4 || meta.TotalPages != 2 || meta.Page != 2 {
		t.Errorf("分页信息不正确: %+v", meta)
	}
}

func TestUserService_List_NonAdminForbidden(t *testing.T) {
	env := newTestEnv(t, false)
	staff := env.addUser(t, "staff", model.RoleStaff, nil)

	_, _, err := env.svc.User.List(context.Background(), actorOf(staff), &dto.UserListRequest{})
	if !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("非管理员应返回 ErrForbidden，实际: %v", err)
	}
}

// ── Get 测试 ──

func TestUserService_Get(t *testing.T) {
	env := newTestEnv(t, false)
	admin := env.addUser(t, "admin", model.RoleAdmin, nil)
	a := env.addUser(t, "a", model.RoleStudent, nil)
	b := env.addUser(t, "b", model.RoleStudent, nil)

	if _, err := env.svc.User.Get(context.Background(), actorOf(a), a.UserID); err != nil {
		t.Errorf("本人读取应成功: %v", err)
	}
	if _, err := env.svc.User.Get(context.Background(), actorOf(admin), b.UserID); err != nil {
		t.Errorf("管理员读取应成功: %v", err)
	}
	if _, err := env.svc.User.Get(context.Background(), actorOf(a), b.UserID); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("读取他人应返回 ErrForbidden，实际: %v", err)
	}
	if _, err := env.svc.User.Get(context.Background(), actorOf(admin), uuid.NewString()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("不存在的用户应返回 ErrUserNotFound，实际: %v", err)
	}
}

// ── Update 测试 ──

func TestUserService_Update_SelfProfile(t *testing.T) {
	env := newTestEnv(t, false)
	student := env.addUser(t, "stu", model.RoleStudent, &cohort11A)

	got, err := env.svc.User.Update(context.Background(), actorOf(student), student.UserID, &dto.UpdateUserRequest{
		Name:     strPtr("新名字"),
		Password: strPtr("newpass1"),
		Batch:    strPtr("B"),
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if got.Name != "新名字" || got.Batch == nil || *got.Batch != "B" {
		t.Errorf("资料未更新: %+v", got)
	}
	stored, _ := env.users.GetByID(context.Background(), student.UserID)
	if !password.Verify(stored.PasswordHash, "newpass1") {
		t.Error("密码应被重新哈希")
	}
}

// 学生提交 role 字段被静默丢弃，其余字段照常生效
func TestUserService_Update_RoleDroppedForNonAdmin(t *testing.T) {
	env := newTestEnv(t, false)
	student := env.addUser(t, "stu", model.RoleStudent, nil)

	got, err := env.svc.User.Update(context.Background(), actorOf(student), student.UserID, &dto.UpdateUserRequest{
		Name: strPtr("改名"),
		Role: strPtr("admin"),
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if got.Role != "student" {
		t.Errorf("角色不应被修改，实际=%s", got.Role)
	}
	if got.Name != "改名" {
		t.Errorf("其余字段应生效，实际 name=%s", got.Name)
	}
}

func TestUserService_Update_AdminChangesRole(t *testing.T) {
	env := newTestEnv(t, false)
	admin := env.addUser(t, "admin", model.RoleAdmin, nil)
	student := env.addUser(t, "stu", model.RoleStudent, nil)

	got, err := env.svc.User.Update(context.Background(), actorOf(admin), student.UserID, &dto.UpdateUserRequest{Role: strPtr("staff")})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if got.Role != "staff" {
		t.Errorf("期望 role=staff，实际=%s", got.Role)
	}

	_, err = env.svc.User.Update(context.Background(), actorOf(admin), student.UserID, &dto.UpdateUserRequest{Role: strPtr("root")})
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("非法角色应返回 ErrInvalidRole，实际: %v", err)
	}
	_, err = env.svc.User.Update(context.Background(), actorOf(admin), admin.UserID, &dto.UpdateUserRequest{Role: strPtr("staff")})
	if !errors.Is(err, ErrUserSelfRole) {
		t.Errorf("管理员修改自己的角色应返回 ErrUserSelfRole，实际: %v", err)
	}
}

func TestUserService_Update_Rejections(t *testing.T) {
	env := newTestEnv(t, false)
	a := env.addUser(t, "a", model.RoleStaff, nil)
	b := env.addUser(t, "b", model.RoleStaff, nil)

	_, err := env.svc.User.Update(context.Background(), actorOf(a), b.UserID, &dto.UpdateUserRequest{Name: strPtr("x")})
	if !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("修改他人应返回 ErrForbidden，实际: %v", err)
	}
	_, err = env.svc.User.Update(context.Background(), actorOf(a), a.UserID, &dto.UpdateUserRequest{YearNo: intPtr(-1)})
	if !errors.Is(err, pkgerrors.ErrInvalidParams) {
		t.Errorf("非法年级应返回参数错误，实际: %v", err)
	}
	_, err = env.svc.User.Update(context.Background(), actorOf(a), a.UserID, &dto.UpdateUserRequest{Password: strPtr("123")})
	if !errors.Is(err, pkgerrors.ErrInvalidParams) {
		t.Errorf("过短的密码应返回参数错误，实际: %v", err)
	}
	_, err = env.svc.User.Update(context.Background(), actorOf(a), a.UserID, &dto.UpdateUserRequest{Password: strPtr(strings.Repeat("é", 40))})
	if !errors.Is(err, pkgerrors.ErrInvalidParams) {
		t.Errorf("超过 72 字节的密码应返回参数错误，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestUserService_Delete(t *testing.T) {
	env := newTestEnv(t, false)
	admin := env.addUser(t, "admin", model.RoleAdmin, nil)
	staff := env.addUser(t, "staff", model.RoleStaff, nil)
	student := env.addUser(t, "stu", model.RoleStudent, nil)

	if err := env.svc.User.Delete(context.Background(), actorOf(staff), student.UserID); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("非管理员删除应返回 ErrForbidden，实际: %v", err)
	}
	if err := env.svc.User.Delete(context.Background(), actorOf(admin), admin.UserID); !errors.Is(err, ErrUserSelfDelete) {
		t.Errorf("删除自己应返回 ErrUserSelfDelete，实际: %v", err)
	}
	if err := env.svc.User.Delete(context.Background(), actorOf(admin), student.UserID); err != nil {
		t.Fatalf("管理员删除应成功: %v", err)
	}
	if err := env.svc.User.Delete(context.Background(), actorOf(admin), student.UserID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("重复删除应返回 ErrUserNotFound，实际: %v", err)
	}
}

// 非法 id 在到达存储层之前即返回 NotFound
func TestUserService_Delete_MalformedID(t *testing.T) {
	env := newTestEnv(t, false)
	admin := env.addUser(t, "admin", model.RoleAdmin, nil)

	env.users.err = errors.New(`invalid input syntax for type uuid: "not-a-uuid"`)
	err := env.svc.User.Delete(context.Background(), actorOf(admin), "not-a-uuid")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("非法 id 应返回 ErrUserNotFound，实际: %v", err)
	}
}

func TestResolvePagination(t *testing.T) {
	page, limit, err := resolvePagination(dto.PaginationRequest{})
	if err != nil || page != dto.DefaultPage || limit != dto.DefaultLimit {
		t.Errorf("默认值不正确: page=%d limit=%d err=%v", page, limit, err)
	}
	page, limit, err = resolvePagination(dto.PaginationRequest{Page: intPtr(3), Limit: intPtr(dto.MaxLimit)})
	if err != nil || page != 3 || limit != dto.MaxLimit {
		t.Errorf("显式值不正确: page=%d limit=%d err=%v", page, limit, err)
	}
	if _, _, err := resolvePagination(dto.PaginationRequest{Limit: intPtr(-5)}); err == nil {
		t.Error("负数 limit 应被拒绝")
	}
}
