package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hongyan02/ehs-new/internal/entity"
	"github.com/hongyan02/ehs-new/internal/repository"
	"github.com/hongyan02/ehs-new/internal/scheduler"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SchedulerService 定时任务管理服务
// 任务的增删改都会通知引擎重建调度
type SchedulerService struct {
	repo   *repository.SchedulerRepository
	engine *scheduler.Engine
	now    func() time.Time
}

func NewSchedulerService(repo *repository.SchedulerRepository, engine *scheduler.Engine) *SchedulerService {
	return &SchedulerService{repo: repo, engine: engine, now: time.Now}
}

// SetClock 注入时钟，测试用
func (s *SchedulerService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *SchedulerService) List(ctx context.Context) ([]entity.SchedulerTask, error) {
	return s.repo.List(ctx)
}

func (s *SchedulerService) Get(ctx context.Context, id uint) (*entity.SchedulerTask, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("任务不存在")
		}
		return nil, err
	}
	return task, nil
}

// SupportedJobKeys 可注册的任务处理器列表
func (s *SchedulerService) SupportedJobKeys() []string {
	return s.engine.SupportedKeys()
}

type CreateSchedulerTaskRequest struct {
	Name    string         `json:"name" binding:"required"`
	JobKey  string         `json:"jobKey" binding:"required"`
	Cron    string         `json:"cron"`
	Enabled *int           `json:"enabled"`
	Payload datatypes.JSON `json:"payload"`
}

func (s *SchedulerService) validate(jobKey, cronExpr string) error {
	if !s.engine.Supports(jobKey) {
		return InvalidArgumentError(fmt.Sprintf("不支持的jobKey: %s", jobKey))
	}
	if cronExpr != "" {
		if err := scheduler.ValidateCron(cronExpr); err != nil {
			return InvalidArgumentError("无效的cron表达式: " + cronExpr)
		}
	}
	return nil
}

// Create 新建任务，启用且配置了cron时立即进入调度
func (s *SchedulerService) Create(ctx context.Context, req CreateSchedulerTaskRequest) (*entity.SchedulerTask, error) {
	if err := s.validate(req.JobKey, req.Cron); err != nil {
		return nil, err
	}

	enabled := 1
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	now := s.now().Format(TimeLayout)
	task := &entity.SchedulerTask{
		Name:      req.Name,
		JobKey:    req.JobKey,
		Cron:      req.Cron,
		Enabled:   enabled,
		Payload:   req.Payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	if err := s.engine.Reschedule(ctx, task.ID); err != nil {
		return nil, err
	}
	return task, nil
}

type UpdateSchedulerTaskRequest struct {
	Name    *string         `json:"name"`
	JobKey  *string         `json:"jobKey"`
	Cron    *string         `json:"cron"`
	Enabled *int            `json:"enabled"`
	Payload *datatypes.JSON `json:"payload"`
}

func (s *SchedulerService) Update(ctx context.Context, id uint, req UpdateSchedulerTaskRequest) (*entity.SchedulerTask, error) {
	task, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	jobKey := task.JobKey
	if req.JobKey != nil {
		jobKey = *req.JobKey
	}
	cronExpr := task.Cron
	if req.Cron != nil {
		cronExpr = *req.Cron
	}
	if err := s.validate(jobKey, cronExpr); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"updated_at": s.now().Format(TimeLayout),
	}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.JobKey != nil {
		fields["job_key"] = *req.JobKey
	}
	if req.Cron != nil {
		fields["cron"] = *req.Cron
	}
	if req.Enabled != nil {
		fields["enabled"] = *req.Enabled
	}
	if req.Payload != nil {
		fields["payload"] = *req.Payload
	}

	if err := s.repo.Updates(ctx, id, fields); err != nil {
		return nil, err
	}

	if err := s.engine.Reschedule(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *SchedulerService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	// 删除后摘除调度项
	return s.engine.Reschedule(ctx, id)
}

// Trigger 手动执行一次任务，忽略enabled和cron
func (s *SchedulerService) Trigger(ctx context.Context, id uint) (*entity.SchedulerTask, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	runErr := s.engine.RunTask(ctx, id)
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if runErr != nil {
		return task, InvalidStateError("任务执行失败: " + runErr.Error())
	}
	return task, nil
}
