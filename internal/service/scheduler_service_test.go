package service

import (
	"context"
	"testing"

	"github.com/hongyan02/ehs-new/internal/entity"
	"github.com/hongyan02/ehs-new/internal/repository"
	"github.com/hongyan02/ehs-new/internal/scheduler"
	"github.com/hongyan02/ehs-new/internal/testutil"
	"go.uber.org/zap"
)

func setupSchedulerTest(t *testing.T) (*SchedulerService, *scheduler.Engine, *int) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	engine := scheduler.NewEngine(repos.Scheduler, zap.NewNop())

	runs := 0
	engine.Register("demo_job", func(ctx context.Context, payload []byte) error {
		runs++
		return nil
	})

	return NewSchedulerService(repos.Scheduler, engine), engine, &runs
}

func TestSchedulerTaskValidation(t *testing.T) {
	svc, _, _ := setupSchedulerTest(t)
	ctx := context.Background()

	// 未注册的jobKey
	_, err := svc.Create(ctx, CreateSchedulerTaskRequest{
		Name:   "未知任务",
		JobKey: "unknown_job",
		Cron:   "0 8 * * *",
	})
	if err == nil {
		t.Fatal("Expected error for unregistered jobKey")
	}
	de := AsDomainError(err)
	if de == nil || de.Kind != ErrKindInvalidArgument {
		t.Errorf("Expected ErrKindInvalidArgument, got %v", err)
	}

	// 非法cron表达式
	_, err = svc.Create(ctx, CreateSchedulerTaskRequest{
		Name:   "坏表达式",
		JobKey: "demo_job",
		Cron:   "not-a-cron",
	})
	if err == nil {
		t.Fatal("Expected error for invalid cron")
	}

	// 合法任务
	task, err := svc.Create(ctx, CreateSchedulerTaskRequest{
		Name:   "演示任务",
		JobKey: "demo_job",
		Cron:   "0 8 * * *",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if task.Enabled != 1 {
		t.Errorf("Expected enabled by default, got %d", task.Enabled)
	}

	// cron 留空：只能手动触发，也合法
	if _, err := svc.Create(ctx, CreateSchedulerTaskRequest{
		Name:   "手动任务",
		JobKey: "demo_job",
	}); err != nil {
		t.Fatalf("Create manual task failed: %v", err)
	}
}

func TestSchedulerTrigger(t *testing.T) {
	svc, _, runs := setupSchedulerTest(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateSchedulerTaskRequest{
		Name:   "演示任务",
		JobKey: "demo_job",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	triggered, err := svc.Trigger(ctx, task.ID)
	if err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	if *runs != 1 {
		t.Errorf("Expected handler to run once, ran %d times", *runs)
	}
	if triggered.LastStatus == nil || *triggered.LastStatus != entity.TaskStatusSuccess {
		t.Errorf("Expected last_status success, got %v", triggered.LastStatus)
	}
	if triggered.LastRunAt == nil {
		t.Error("Expected last_run_at to be recorded")
	}

	// 不存在的任务
	if _, err := svc.Trigger(ctx, 99999); err == nil {
		t.Fatal("Expected not found error")
	}
}

func TestSchedulerUpdateAndDelete(t *testing.T) {
	svc, engine, _ := setupSchedulerTest(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateSchedulerTaskRequest{
		Name:   "演示任务",
		JobKey: "demo_job",
		Cron:   "*/5 * * * *",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// 改成未注册的jobKey拒绝
	badKey := "ghost_job"
	if _, err := svc.Update(ctx, task.ID, UpdateSchedulerTaskRequest{JobKey: &badKey}); err == nil {
		t.Fatal("Expected update with unregistered jobKey to be denied")
	}

	// 停用
	disabled := 0
	updated, err := svc.Update(ctx, task.ID, UpdateSchedulerTaskRequest{Enabled: &disabled})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Enabled != 0 {
		t.Errorf("Expected enabled 0, got %d", updated.Enabled)
	}

	if err := svc.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, task.ID); err == nil {
		t.Fatal("Expected not found after delete")
	}

	if !engine.Supports("demo_job") {
		t.Error("Expected demo_job to stay registered")
	}
}
