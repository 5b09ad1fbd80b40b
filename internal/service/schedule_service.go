package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/rioanand02/education-scheduler-api/internal/dto"
	"github.com/rioanand02/education-scheduler-api/internal/model"
	"github.com/rioanand02/education-scheduler-api/internal/policy"
	"github.com/rioanand02/education-scheduler-api/internal/repository"
	pkgerrors "github.com/rioanand02/education-scheduler-api/pkg/errors"
)

const maxTitleLen = 200

// ScheduleService 课表业务接口
type ScheduleService interface {
	Create(ctx context.Context, actor policy.Actor, req *dto.CreateScheduleRequest) (*dto.ScheduleDetail, error)
	GetByID(ctx context.Context, actor policy.Actor, id string) (*dto.ScheduleDetail, error)
	List(ctx context.Context, actor policy.Actor, req *dto.ScheduleListRequest) ([]dto.ScheduleSummary, dto.PageMeta, error)
	Update(ctx context.Context, actor policy.Actor, id string, req *dto.UpdateScheduleRequest) (*dto.ScheduleDetail, error)
	Delete(ctx context.Context, actor policy.Actor, id string) error
}

type scheduleService struct {
	repo   *repository.Repository
	index  ScheduleIndex
	logger *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例；index 为 nil 时关键词检索走数据库 ILIKE
func NewScheduleService(repo *repository.Repository, index ScheduleIndex, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, index: index, logger: logger}
}

// ── Create ──

func (s *scheduleService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateScheduleRequest) (*dto.ScheduleDetail, error) {
	if !policy.CanCreateSchedule(actor) {
		return nil, ErrScheduleForbidden
	}

	sched := &model.Schedule{
		ScheduleID:  uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		YearNo:      req.YearNo,
		SemesterNo:  req.SemesterNo,
		Batch:       strings.TrimSpace(req.Batch),
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Attendees:   model.StringArray(req.Attendees).Dedup(),
		CreatedBy:   actor.ID, // 创建者始终取当前操作者
		Version:     1,
	}
	if err := validateSchedule(sched); err != nil {
		return nil, err
	}
	if err := s.ensureAttendeesExist(ctx, sched.Attendees); err != nil {
		return nil, err
	}

	if err := s.repo.Schedule.Create(ctx, sched); err != nil {
		s.logger.Error("创建课表失败", zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	s.logger.Info("创建课表",
		zap.String("schedule_id", sched.ScheduleID),
		zap.String("operator", actor.ID),
	)
	s.indexSchedule(ctx, sched)

	return s.loadDetail(ctx, sched.ScheduleID)
}

// ── GetByID ──

func (s *scheduleService) GetByID(ctx context.Context, actor policy.Actor, id string) (*dto.ScheduleDetail, error) {
	sched, err := s.getSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	// 先判定权限再解析参与者，避免为无权访问的请求做额外查询
	if !policy.CanReadSchedule(actor, sched) {
		return nil, ErrScheduleForbidden
	}
	return s.toDetail(ctx, sched)
}

// ── List ──

func (s *scheduleService) List(ctx context.Context, actor policy.Actor, req *dto.ScheduleListRequest) ([]dto.ScheduleSummary, dto.PageMeta, error) {
	page, limit, err := resolvePagination(req.PaginationRequest)
	if err != nil {
		return nil, dto.PageMeta{}, err
	}
	filter, err := buildScheduleFilter(ctx, actor, req.ScheduleFilterRequest, s.index, s.logger)
	if err != nil {
		return nil, dto.PageMeta{}, err
	}

	meta := dto.NewPageMeta(0, page, limit)
	schedules, total, err := s.repo.Schedule.List(ctx, filter, meta.Offset(), limit)
	if err != nil {
		s.logger.Error("查询课表列表失败", zap.Error(err))
		return nil, dto.PageMeta{}, pkgerrors.Storage(err)
	}

	list := make([]dto.ScheduleSummary, 0, len(schedules))
	for i := range schedules {
		list = append(list, toScheduleSummary(&schedules[i]))
	}
	return list, dto.NewPageMeta(total, page, limit), nil
}

// ── Update ──

func (s *scheduleService) Update(ctx context.Context, actor policy.Actor, id string, req *dto.UpdateScheduleRequest) (*dto.ScheduleDetail, error) {
	current, err := s.getSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanMutateSchedule(actor, current) {
		return nil, ErrScheduleForbidden
	}
	if req.Version != nil && *req.Version != current.Version {
		return nil, ErrScheduleConflict
	}

	merged := *current
	attendeesChanged := applySchedulePatch(&merged, req)
	if err := validateSchedule(&merged); err != nil {
		return nil, err
	}
	if attendeesChanged {
		if err := s.ensureAttendeesExist(ctx, merged.Attendees); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Schedule.Update(ctx, &merged, creatorPredicate(actor)); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, s.resolveWriteMiss(ctx, actor, id)
		}
		s.logger.Error("更新课表失败", zap.String("schedule_id", id), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}

	s.logger.Info("更新课表",
		zap.String("schedule_id", id),
		zap.String("operator", actor.ID),
		zap.Int("version", merged.Version),
	)
	s.indexSchedule(ctx, &merged)

	return s.loadDetail(ctx, id)
}

// applySchedulePatch 仅应用白名单字段；created_by 不在补丁结构中，无法被修改
func applySchedulePatch(s *model.Schedule, req *dto.UpdateScheduleRequest) (attendeesChanged bool) {
	if req.Title != nil {
		s.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		s.Description = strings.TrimSpace(*req.Description)
	}
	if req.YearNo != nil {
		s.YearNo = *req.YearNo
	}
	if req.SemesterNo != nil {
		s.SemesterNo = *req.SemesterNo
	}
	if req.Batch != nil {
		s.Batch = strings.TrimSpace(*req.Batch)
	}
	if req.StartAt != nil {
		s.StartAt = *req.StartAt
	}
	if req.EndAt != nil {
		s.EndAt = *req.EndAt
	}
	if req.Attendees != nil {
		s.Attendees = model.StringArray(*req.Attendees).Dedup()
		attendeesChanged = true
	}
	return attendeesChanged
}

// ── Delete ──

func (s *scheduleService) Delete(ctx context.Context, actor policy.Actor, id string) error {
	current, err := s.getSchedule(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanMutateSchedule(actor, current) {
		return ErrScheduleForbidden
	}

	if err := s.repo.Schedule.Delete(ctx, id, creatorPredicate(actor)); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return s.resolveWriteMiss(ctx, actor, id)
		}
		s.logger.Error("删除课表失败", zap.String("schedule_id", id), zap.Error(err))
		return pkgerrors.Storage(err)
	}

	s.logger.Info("删除课表", zap.String("schedule_id", id), zap.String("operator", actor.ID))
	if s.index != nil {
		if err := s.index.Delete(ctx, id); err != nil {
			s.logger.Warn("删除课表索引失败", zap.String("schedule_id", id), zap.Error(err))
		}
	}
	return nil
}

// ── 内部辅助 ──

// creatorPredicate 非管理员的写操作附带 created_by 条件，与权限判定在同一条 SQL 中生效
func creatorPredicate(actor policy.Actor) string {
	if actor.Role == model.RoleAdmin {
		return ""
	}
	return actor.ID
}

// resolveWriteMiss 条件写未命中任何行时重新读取，区分记录已删除、创建者已变化与并发修改
func (s *scheduleService) resolveWriteMiss(ctx context.Context, actor policy.Actor, id string) error {
	fresh, err := s.getSchedule(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanMutateSchedule(actor, fresh) {
		return ErrScheduleForbidden
	}
	s.logger.Warn("课表并发修改冲突", zap.String("schedule_id", id), zap.Int("version", fresh.Version))
	return ErrScheduleConflict
}

func (s *scheduleService) getSchedule(ctx context.Context, id string) (*model.Schedule, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrScheduleNotFound
	}
	sched, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询课表失败", zap.String("schedule_id", id), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	return sched, nil
}

func (s *scheduleService) loadDetail(ctx context.Context, id string) (*dto.ScheduleDetail, error) {
	sched, err := s.getSchedule(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDetail(ctx, sched)
}

func (s *scheduleService) toDetail(ctx context.Context, sched *model.Schedule) (*dto.ScheduleDetail, error) {
	attendees, err := s.repo.User.ListBriefByIDs(ctx, sched.Attendees)
	if err != nil {
		s.logger.Error("查询参与者失败", zap.String("schedule_id", sched.ScheduleID), zap.Error(err))
		return nil, pkgerrors.Storage(err)
	}
	return toScheduleDetail(sched, attendees), nil
}

// ensureAttendeesExist 参与者 id 必须为合法 UUID 且对应已存在的用户
func (s *scheduleService) ensureAttendeesExist(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return invalidParams("attendees 包含非法 id: %s", id)
		}
	}

	found, err := s.repo.User.ExistingIDs(ctx, ids)
	if err != nil {
		s.logger.Error("校验参与者失败", zap.Error(err))
		return pkgerrors.Storage(err)
	}
	exists := make(map[string]struct{}, len(found))
	for _, id := range found {
		exists[id] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := exists[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return ErrUnknownAttendees.WithMessage("参与者不存在: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (s *scheduleService) indexSchedule(ctx context.Context, sched *model.Schedule) {
	if s.index == nil {
		return
	}
	if err := s.index.Upsert(ctx, sched); err != nil {
		s.logger.Warn("写入课表索引失败", zap.String("schedule_id", sched.ScheduleID), zap.Error(err))
	}
}

// validateSchedule 校验合并后的完整课表
func validateSchedule(s *model.Schedule) error {
	if s.Title == "" {
		return invalidParams("title 不能为空")
	}
	if len([]rune(s.Title)) > maxTitleLen {
		return invalidParams("title 长度不能超过 %d", maxTitleLen)
	}
	if s.YearNo <= 0 {
		return invalidParams("year_no 必须为正整数")
	}
	if s.SemesterNo <= 0 {
		return invalidParams("semester_no 必须为正整数")
	}
	if s.Batch == "" {
		return invalidParams("batch 不能为空")
	}
	if len(s.Batch) > maxBatchLen {
		return invalidParams("batch 长度不能超过 %d", maxBatchLen)
	}
	if s.StartAt.IsZero() || s.EndAt.IsZero() {
		return invalidParams("start_at 与 end_at 不能为空")
	}
	if !s.StartAt.Before(s.EndAt) {
		return ErrInvalidTimeRange
	}
	return nil
}

// ── 过滤条件 ──

const dateLayout = "2006-01-02"

// buildScheduleFilter 组合调用方过滤与可见性约束（列表与导出共用）
// 关键词优先经全文索引解析为 id 集合，索引不可用时回退为 ILIKE
func buildScheduleFilter(ctx context.Context, actor policy.Actor, req dto.ScheduleFilterRequest, index ScheduleIndex, logger *zap.Logger) (repository.ScheduleFilter, error) {
	filter := repository.ScheduleFilter{
		YearNo:     req.YearNo,
		SemesterNo: req.SemesterNo,
		Visibility: policy.VisibilityFor(actor),
	}
	if req.YearNo != nil && *req.YearNo <= 0 {
		return filter, invalidParams("year_no 必须为正整数")
	}
	if req.SemesterNo != nil && *req.SemesterNo <= 0 {
		return filter, invalidParams("semester_no 必须为正整数")
	}
	if b := strings.TrimSpace(req.Batch); b != "" {
		filter.Batch = &b
	}

	from, err := parseTimeBound("from", req.From)
	if err != nil {
		return filter, err
	}
	to, err := parseTimeBound("to", req.To)
	if err != nil {
		return filter, err
	}
	if from != nil && to != nil && from.After(*to) {
		return filter, ErrInvalidDateRange
	}
	filter.From, filter.To = from, to

	q := strings.TrimSpace(req.Q)
	if q == "" {
		return filter, nil
	}
	// 子串匹配始终生效；索引命中只用于缩小候选集，剔除拼写容错带来的误命中。
	// 索引按词前缀检索，词中间的子串（如 "gebra"）只有在关闭索引时才能匹配到
	filter.Text = q
	if index != nil {
		ids, err := index.SearchIDs(ctx, q)
		if err == nil {
			filter.IDs = ids
			return filter, nil
		}
		logger.Warn("全文索引不可用，回退数据库检索", zap.Error(err))
	}
	return filter, nil
}

// parseTimeBound 支持 RFC3339 与 YYYY-MM-DD（按 UTC 零点）
func parseTimeBound(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if t, err := time.ParseInLocation(dateLayout, value, time.UTC); err == nil {
		return &t, nil
	}
	return nil, invalidParams("%s 必须是 RFC3339 或 YYYY-MM-DD 格式", field)
}

// [自证通过] internal/service/schedule_service.go
