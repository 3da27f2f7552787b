package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hongyan02/ehs-new/internal/entity"
	"github.com/hongyan02/ehs-new/internal/repository"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobFunc 任务处理器，payload 为任务表里的JSON负载
type JobFunc func(ctx context.Context, payload []byte) error

// 单次任务执行的超时
const jobTimeout = 5 * time.Minute

// Engine 定时任务引擎
// 包装 robfig/cron，任务定义持久化在 scheduler_task 表，
// 处理器在进程启动时按 jobKey 注册。实例由 main 构造并持有，
// 不使用包级单例。
type Engine struct {
	repo   *repository.SchedulerRepository
	logger *zap.Logger
	cron   *cron.Cron
	now    func() time.Time

	mu      sync.Mutex
	jobs    map[string]JobFunc
	entries map[uint]cron.EntryID
}

func NewEngine(repo *repository.SchedulerRepository, logger *zap.Logger) *Engine {
	return &Engine{
		repo:    repo,
		logger:  logger,
		cron:    cron.New(),
		now:     time.Now,
		jobs:    make(map[string]JobFunc),
		entries: make(map[uint]cron.EntryID),
	}
}

// Register 注册任务处理器，须在 Start 之前完成
func (e *Engine) Register(jobKey string, fn JobFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.jobs[jobKey] = fn
}

// Supports 判断 jobKey 是否已注册
func (e *Engine) Supports(jobKey string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.jobs[jobKey]
	return ok
}

// SupportedKeys 已注册的 jobKey 列表
func (e *Engine) SupportedKeys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	keys := make([]string, 0, len(e.jobs))
	for k := range e.jobs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValidateCron 校验cron表达式（标准5段式）
func ValidateCron(expr string) error {
	_, err := cron.ParseStandard(expr)
	return err
}

// Start 装载所有启用的任务并启动调度
func (e *Engine) Start(ctx context.Context) error {
	tasks, err := e.repo.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("装载定时任务失败: %w", err)
	}
	for _, task := range tasks {
		if err := e.schedule(&task); err != nil {
			e.logger.Warn("Skip scheduling task",
				zap.Uint("task_id", task.ID),
				zap.String("job_key", task.JobKey),
				zap.Error(err),
			)
		}
	}
	e.cron.Start()
	e.logger.Info("Scheduler engine started", zap.Int("tasks", len(tasks)))
	return nil
}

// Stop 停止调度并等待执行中的任务结束
func (e *Engine) Stop() {
	stopCtx := e.cron.Stop()
	<-stopCtx.Done()
	e.logger.Info("Scheduler engine stopped")
}

// Reschedule 任务增删改后重建其调度项
// 任务被删除、停用或未配置cron时仅摘除旧调度
func (e *Engine) Reschedule(ctx context.Context, id uint) error {
	e.removeEntry(id)

	task, err := e.repo.GetByID(ctx, id)
	if err != nil {
		// 已删除的任务只需摘除调度
		return nil
	}
	if task.Enabled != 1 || task.Cron == "" {
		return nil
	}
	return e.schedule(task)
}

func (e *Engine) removeEntry(id uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if entryID, ok := e.entries[id]; ok {
		e.cron.Remove(entryID)
		delete(e.entries, id)
	}
}

func (e *Engine) schedule(task *entity.SchedulerTask) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.jobs[task.JobKey]; !ok {
		return fmt.Errorf("未注册的jobKey: %s", task.JobKey)
	}

	taskID := task.ID
	entryID, err := e.cron.AddFunc(task.Cron, func() {
		if err := e.RunTask(context.Background(), taskID); err != nil {
			e.logger.Error("Scheduled task failed",
				zap.Uint("task_id", taskID),
				zap.Error(err),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("无效的cron表达式: %w", err)
	}
	e.entries[task.ID] = entryID
	return nil
}

// RunTask 执行一次任务并记录结果，手动触发与定时触发共用
func (e *Engine) RunTask(ctx context.Context, id uint) error {
	task, err := e.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("任务不存在: %w", err)
	}

	e.mu.Lock()
	fn, ok := e.jobs[task.JobKey]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("未注册的jobKey: %s", task.JobKey)
	}

	runCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	runAt := e.now().Format("2006-01-02 15:04:05")
	runErr := fn(runCtx, []byte(task.Payload))

	status := entity.TaskStatusSuccess
	var errMsg *string
	if runErr != nil {
		status = entity.TaskStatusFailed
		msg := runErr.Error()
		errMsg = &msg
	}
	if markErr := e.repo.MarkRun(ctx, id, runAt, status, errMsg); markErr != nil {
		e.logger.Error("Failed to record task run",
			zap.Uint("task_id", id),
			zap.Error(markErr),
		)
	}

	return runErr
}
