package service

import (
	"context"
	"testing"

	"github.com/hongyan02/ehs-new/internal/entity"
	"github.com/hongyan02/ehs-new/internal/repository"
	"github.com/hongyan02/ehs-new/internal/testutil"
)

func setupDutyTest(t *testing.T) (*DutyService, *repository.Repositories) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewDutyService(repos.Duty), repos
}

// 稽查：排了班但没写日志的人
func TestInspectLogs(t *testing.T) {
	svc, repos := setupDutyTest(t)
	ctx := context.Background()

	seedSchedule(t, repos, "张三", "100001", "2026-03-02", entity.ShiftDay)
	seedSchedule(t, repos, "李四", "100002", "2026-03-02", entity.ShiftNight)
	seedSchedule(t, repos, "王五", "100003", "2026-03-03", entity.ShiftDay)

	// 张三写了日志，李四王五没写
	if _, err := svc.CreateLog(ctx, CreateDutyLogRequest{
		Name:  "张三",
		No:    "100001",
		Date:  "2026-03-02",
		Shift: intPtr(entity.ShiftDay),
		Log:   "巡检正常",
	}); err != nil {
		t.Fatalf("CreateLog failed: %v", err)
	}

	missing, err := svc.InspectLogs(ctx, "2026-03-01", "2026-03-31")
	if err != nil {
		t.Fatalf("InspectLogs failed: %v", err)
	}
	if len(missing) != 2 {
		t.Fatalf("Expected 2 missing, got %d: %+v", len(missing), missing)
	}
	if missing[0].No != "100002" || missing[1].No != "100003" {
		t.Errorf("Unexpected missing order: %+v", missing)
	}

	// 日期范围外不计
	missing, err = svc.InspectLogs(ctx, "2026-04-01", "2026-04-30")
	if err != nil {
		t.Fatalf("InspectLogs failed: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("Expected 0 missing out of range, got %d", len(missing))
	}

	// 缺参数
	if _, err := svc.InspectLogs(ctx, "", ""); err == nil {
		t.Fatal("Expected error for empty date range")
	}
}

func TestDutyLogLifecycle(t *testing.T) {
	svc, _ := setupDutyTest(t)
	ctx := context.Background()

	log, err := svc.CreateLog(ctx, CreateDutyLogRequest{
		Name:  "张三",
		No:    "100001",
		Date:  "2026-03-02",
		Shift: intPtr(entity.ShiftDay),
		Log:   "巡检正常",
		Todo:  "3号阀门待检修",
	})
	if err != nil {
		t.Fatalf("CreateLog failed: %v", err)
	}
	if log.CreateTime == "" || log.UpdateTime == "" {
		t.Error("Expected timestamps to be stamped")
	}

	content := "巡检正常，已上报隐患"
	updated, err := svc.UpdateLog(ctx, log.ID, UpdateDutyLogRequest{Log: &content})
	if err != nil {
		t.Fatalf("UpdateLog failed: %v", err)
	}
	if updated.Log != content {
		t.Errorf("Expected updated log content, got %q", updated.Log)
	}

	if err := svc.DeleteLog(ctx, log.ID); err != nil {
		t.Fatalf("DeleteLog failed: %v", err)
	}
	if _, err := svc.GetLog(ctx, log.ID); err == nil {
		t.Fatal("Expected not found after delete")
	}
}
