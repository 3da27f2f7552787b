package service

import (
	"context"
	"testing"

	"github.com/hongyan02/ehs-new/internal/entity"
	"github.com/hongyan02/ehs-new/internal/repository"
	"github.com/hongyan02/ehs-new/internal/testutil"
)

func setupDutySwapTest(t *testing.T) (*DutySwapService, *repository.Repositories) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewDutySwapService(repos.Duty), repos
}

func seedSchedule(t *testing.T, repos *repository.Repositories, name, no, date string, shift int) *entity.DutySchedule {
	t.Helper()
	schedule := &entity.DutySchedule{
		Name:  name,
		No:    no,
		Date:  date,
		Shift: shift,
	}
	if err := repos.Duty.CreateSchedule(context.Background(), schedule); err != nil {
		t.Fatalf("Failed to seed schedule: %v", err)
	}
	return schedule
}

func intPtr(v int) *int { return &v }

// 互换只交换人员信息，日期班次各自保留
func TestSwapSchedules(t *testing.T) {
	svc, repos := setupDutySwapTest(t)
	ctx := context.Background()

	seedSchedule(t, repos, "张三", "100001", "2026-03-02", entity.ShiftDay)
	seedSchedule(t, repos, "李四", "100002", "2026-03-03", entity.ShiftDay)

	result, err := svc.Swap(ctx, SwapRequest{
		FromNo:   "100001",
		FromDate: "2026-03-02",
		ToNo:     "100002",
		ToDate:   "2026-03-03",
		Shift:    intPtr(entity.ShiftDay),
	})
	if err != nil {
		t.Fatalf("Swap failed: %v", err)
	}
	if result.From.NewPerson != "李四" || result.To.NewPerson != "张三" {
		t.Errorf("Unexpected swap result: %+v", result)
	}

	day2, err := repos.Duty.GetScheduleByDateShift(ctx, "2026-03-02", entity.ShiftDay)
	if err != nil {
		t.Fatalf("GetScheduleByDateShift failed: %v", err)
	}
	if day2.No != "100002" || day2.Name != "李四" {
		t.Errorf("Expected 李四 on 2026-03-02, got %s/%s", day2.Name, day2.No)
	}

	day3, _ := repos.Duty.GetScheduleByDateShift(ctx, "2026-03-03", entity.ShiftDay)
	if day3.No != "100001" || day3.Name != "张三" {
		t.Errorf("Expected 张三 on 2026-03-03, got %s/%s", day3.Name, day3.No)
	}
}

// 找不到排班记录时报资源不存在
func TestSwapMissingSchedule(t *testing.T) {
	svc, repos := setupDutySwapTest(t)
	ctx := context.Background()

	seedSchedule(t, repos, "张三", "100001", "2026-03-02", entity.ShiftDay)

	_, err := svc.Swap(ctx, SwapRequest{
		FromNo:   "100001",
		FromDate: "2026-03-02",
		ToNo:     "100099",
		ToDate:   "2026-03-03",
		Shift:    intPtr(entity.ShiftDay),
	})
	if err == nil {
		t.Fatal("Expected not found error")
	}
	de := AsDomainError(err)
	if de == nil || de.Kind != ErrKindNotFound {
		t.Errorf("Expected ErrKindNotFound, got %v", err)
	}
}

// 换班申请审批流：只有申请中的可审批/取消
func TestSwapApplicationLifecycle(t *testing.T) {
	svc, _ := setupDutySwapTest(t)
	ctx := context.Background()

	swap, err := svc.Create(ctx, CreateDutySwapRequest{
		FromName:  "张三",
		FromNo:    "100001",
		FromDate:  "2026-03-02",
		FromShift: intPtr(entity.ShiftDay),
		ToName:    "李四",
		ToNo:      "100002",
		ToDate:    "2026-03-03",
		ToShift:   intPtr(entity.ShiftDay),
		Reason:    "家里有事",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if swap.Status != entity.SwapStatusApplying {
		t.Errorf("Expected status %d, got %d", entity.SwapStatusApplying, swap.Status)
	}

	approved, err := svc.Approve(ctx, swap.ID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if approved.Status != entity.SwapStatusApproved {
		t.Errorf("Expected status %d, got %d", entity.SwapStatusApproved, approved.Status)
	}

	// 已审批的不可再取消
	if _, err := svc.Cancel(ctx, swap.ID); err == nil {
		t.Fatal("Expected cancel after approval to be denied")
	}

	// 我的换班申请（双向）
	mine, err := svc.ListMine(ctx, "100002", nil)
	if err != nil {
		t.Fatalf("ListMine failed: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("Expected 1 swap for 100002, got %d", len(mine))
	}

	if _, err := svc.ListMine(ctx, "", nil); err == nil {
		t.Fatal("Expected error for empty user_no")
	}
}
