package service

import (
	"context"
	"testing"
	"time"

	"github.com/hongyan02/ehs-new/internal/entity"
	"github.com/hongyan02/ehs-new/internal/repository"
	"github.com/hongyan02/ehs-new/internal/testutil"
)

func setupApplicationTest(t *testing.T) (*ApplicationService, *repository.Repositories) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewApplicationService(repos.Application, repos.Material, db)
	svc.SetClock(func() time.Time {
		return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	})
	return svc, repos
}

func seedApplication(t *testing.T, repos *repository.Repositories, code, operation string, status int) *entity.Application {
	t.Helper()
	app := &entity.Application{
		ApplicationCode: code,
		Title:           "测试申请单",
		Operation:       operation,
		Applicant:       "张三",
		ApplicantNo:     "100001",
		ApplicationTime: "2026-03-01 09:00:00",
		Status:          status,
		CreateTime:      "2026-03-01 09:00:00",
		UpdateTime:      "2026-03-01 09:00:00",
	}
	if err := repos.Application.Create(context.Background(), app); err != nil {
		t.Fatalf("Failed to seed application: %v", err)
	}
	return app
}

func seedDetail(t *testing.T, repos *repository.Repositories, appCode, materialCode string, quantity float64) {
	t.Helper()
	detail := &entity.ApplicationDetail{
		ApplicationCode: appCode,
		MaterialCode:    materialCode,
		MaterialName:    "物资-" + materialCode,
		Unit:            "个",
		Quantity:        quantity,
	}
	if err := repos.Application.CreateDetail(context.Background(), detail); err != nil {
		t.Fatalf("Failed to seed detail: %v", err)
	}
}

func seedMaterial(t *testing.T, repos *repository.Repositories, code string, num float64) *entity.MaterialStore {
	t.Helper()
	item := &entity.MaterialStore{
		MaterialCode: code,
		MaterialName: "物资-" + code,
		Unit:         "个",
		Num:          num,
		Location:     "A区-01",
		CreateTime:   "2026-03-01 09:00:00",
		UpdateTime:   "2026-03-01 09:00:00",
	}
	if err := repos.Material.Create(context.Background(), item); err != nil {
		t.Fatalf("Failed to seed material: %v", err)
	}
	return item
}

// 入库单一步完成：状态转已完成、库存增加、写一条流水
func TestFinalizeInbound(t *testing.T) {
	svc, repos := setupApplicationTest(t)
	ctx := context.Background()

	app := seedApplication(t, repos, "APP-1", entity.OperationIn, entity.AppStatusDraft)
	seedDetail(t, repos, "APP-1", "M1", 10)
	seedMaterial(t, repos, "M1", 5)

	approver := "李四"
	approverNo := "100002"
	result, err := svc.Finalize(ctx, app.ID, &approver, &approverNo)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if result.Status != entity.AppStatusCompleted {
		t.Errorf("Expected status %d, got %d", entity.AppStatusCompleted, result.Status)
	}
	if len(result.Logs) != 1 {
		t.Fatalf("Expected 1 log, got %d", len(result.Logs))
	}
	if result.Logs[0].Quantity != 10 || result.Logs[0].Operation != entity.OperationIn {
		t.Errorf("Unexpected log: %+v", result.Logs[0])
	}

	item, err := repos.Material.GetByCode(ctx, "M1")
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if item.Num != 15 {
		t.Errorf("Expected num 15, got %v", item.Num)
	}

	updated, _ := repos.Application.GetByID(ctx, app.ID)
	if updated.Status != entity.AppStatusCompleted {
		t.Errorf("Expected status %d, got %d", entity.AppStatusCompleted, updated.Status)
	}
	if updated.Approver == nil || *updated.Approver != "李四" {
		t.Errorf("Expected approver 李四, got %v", updated.Approver)
	}
	if updated.ApproveTime == nil {
		t.Error("Expected approve_time to be set")
	}
}

// 出库单两段式：首次提交只转待审核不动库存；库存不足时审批失败且全部回滚
func TestFinalizeOutboundTwoStage(t *testing.T) {
	svc, repos := setupApplicationTest(t)
	ctx := context.Background()

	app := seedApplication(t, repos, "APP-2", entity.OperationOut, entity.AppStatusDraft)
	seedDetail(t, repos, "APP-2", "M2", 3)
	seedMaterial(t, repos, "M2", 2)

	// 第一段：转待审核
	result, err := svc.Finalize(ctx, app.ID, nil, nil)
	if err != nil {
		t.Fatalf("First finalize failed: %v", err)
	}
	if result.Status != entity.AppStatusPending {
		t.Errorf("Expected status %d, got %d", entity.AppStatusPending, result.Status)
	}
	if len(result.Logs) != 0 {
		t.Errorf("Expected no logs at stage 1, got %d", len(result.Logs))
	}

	item, _ := repos.Material.GetByCode(ctx, "M2")
	if item.Num != 2 {
		t.Errorf("Expected num unchanged at 2, got %v", item.Num)
	}

	// 第二段：库存不足，审批失败
	approver := "李四"
	approverNo := "100002"
	_, err = svc.Finalize(ctx, app.ID, &approver, &approverNo)
	if err == nil {
		t.Fatal("Expected insufficient stock error")
	}
	de := AsDomainError(err)
	if de == nil || de.Kind != ErrKindInsufficientStock {
		t.Errorf("Expected ErrKindInsufficientStock, got %v", err)
	}

	// 状态和库存保持不变
	updated, _ := repos.Application.GetByID(ctx, app.ID)
	if updated.Status != entity.AppStatusPending {
		t.Errorf("Expected status still %d, got %d", entity.AppStatusPending, updated.Status)
	}
	item, _ = repos.Material.GetByCode(ctx, "M2")
	if item.Num != 2 {
		t.Errorf("Expected num still 2, got %v", item.Num)
	}
	logs, total, _ := repos.Material.ListLogs(ctx, repository.MaterialLogListParams{ApplicationCode: "APP-2"})
	if total != 0 || len(logs) != 0 {
		t.Errorf("Expected no logs, got %d", len(logs))
	}
}

// 出库单审批通过：扣减库存并写流水
func TestFinalizeOutboundApproved(t *testing.T) {
	svc, repos := setupApplicationTest(t)
	ctx := context.Background()

	app := seedApplication(t, repos, "APP-OUT-OK", entity.OperationOut, entity.AppStatusPending)
	seedDetail(t, repos, "APP-OUT-OK", "M5", 3)
	seedMaterial(t, repos, "M5", 10)

	approver := "李四"
	approverNo := "100002"
	result, err := svc.Finalize(ctx, app.ID, &approver, &approverNo)
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if result.Status != entity.AppStatusCompleted {
		t.Errorf("Expected status %d, got %d", entity.AppStatusCompleted, result.Status)
	}
	if len(result.Logs) != 1 {
		t.Fatalf("Expected 1 log, got %d", len(result.Logs))
	}

	item, _ := repos.Material.GetByCode(ctx, "M5")
	if item.Num != 7 {
		t.Errorf("Expected num 7, got %v", item.Num)
	}
}

// 已完成的申请单拒绝添加明细
func TestCreateDetailOnCompletedApplication(t *testing.T) {
	svc, repos := setupApplicationTest(t)
	ctx := context.Background()

	seedApplication(t, repos, "APP-3", entity.OperationIn, entity.AppStatusCompleted)

	_, err := svc.CreateDetail(ctx, CreateDetailRequest{
		ApplicationCode: "APP-3",
		MaterialCode:    "M3",
		MaterialName:    "物资-M3",
		Unit:            "个",
		Quantity:        1,
	})
	if err == nil {
		t.Fatal("Expected invalid state error")
	}
	de := AsDomainError(err)
	if de == nil || de.Kind != ErrKindInvalidState {
		t.Errorf("Expected ErrKindInvalidState, got %v", err)
	}

	details, _ := svc.ListDetails(ctx, "APP-3")
	if len(details) != 0 {
		t.Errorf("Expected no details, got %d", len(details))
	}
}

// 已保存状态允许改明细但不允许删
func TestDetailGuardOnSavedApplication(t *testing.T) {
	svc, repos := setupApplicationTest(t)
	ctx := context.Background()

	seedApplication(t, repos, "APP-4", entity.OperationIn, entity.AppStatusSaved)
	detail, err := svc.CreateDetail(ctx, CreateDetailRequest{
		ApplicationCode: "APP-4",
		MaterialCode:    "M4",
		MaterialName:    "物资-M4",
		Unit:            "箱",
		Quantity:        2,
	})
	if err != nil {
		t.Fatalf("CreateDetail failed: %v", err)
	}

	newQty := 5.0
	if _, err := svc.UpdateDetail(ctx, detail.ID, UpdateDetailRequest{Quantity: &newQty}); err != nil {
		t.Fatalf("UpdateDetail failed: %v", err)
	}

	_, err = svc.DeleteDetail(ctx, detail.ID)
	if err == nil {
		t.Fatal("Expected delete to be denied on saved application")
	}
	de := AsDomainError(err)
	if de == nil || de.Kind != ErrKindInvalidState {
		t.Errorf("Expected ErrKindInvalidState, got %v", err)
	}
}

// 空明细申请单不可提交
func TestFinalizeEmptyApplication(t *testing.T) {
	svc, repos := setupApplicationTest(t)
	ctx := context.Background()

	app := seedApplication(t, repos, "APP-EMPTY", entity.OperationIn, entity.AppStatusDraft)

	_, err := svc.Finalize(ctx, app.ID, nil, nil)
	if err == nil {
		t.Fatal("Expected empty requisition error")
	}
	de := AsDomainError(err)
	if de == nil || de.Kind != ErrKindEmptyRequisition {
		t.Errorf("Expected ErrKindEmptyRequisition, got %v", err)
	}
}

// 明细引用的物料不在库中时提交失败且回滚
func TestFinalizeUnknownMaterial(t *testing.T) {
	svc, repos := setupApplicationTest(t)
	ctx := context.Background()

	app := seedApplication(t, repos, "APP-UNKNOWN", entity.OperationIn, entity.AppStatusDraft)
	seedDetail(t, repos, "APP-UNKNOWN", "M-MISSING", 1)

	_, err := svc.Finalize(ctx, app.ID, nil, nil)
	if err == nil {
		t.Fatal("Expected material not found error")
	}
	de := AsDomainError(err)
	if de == nil || de.Kind != ErrKindMaterialNotFound {
		t.Errorf("Expected ErrKindMaterialNotFound, got %v", err)
	}

	updated, _ := repos.Application.GetByID(ctx, app.ID)
	if updated.Status != entity.AppStatusDraft {
		t.Errorf("Expected status rolled back to %d, got %d", entity.AppStatusDraft, updated.Status)
	}
}

// 管理类状态流转走状态机
func TestUpdateStatusTransitions(t *testing.T) {
	svc, repos := setupApplicationTest(t)
	ctx := context.Background()

	app := seedApplication(t, repos, "APP-TRANS", entity.OperationOut, entity.AppStatusDraft)

	// 未提交 → 已保存
	saved := entity.AppStatusSaved
	updated, err := svc.Update(ctx, app.ID, UpdateApplicationRequest{Status: &saved})
	if err != nil {
		t.Fatalf("Update to saved failed: %v", err)
	}
	if updated.Status != entity.AppStatusSaved {
		t.Errorf("Expected status %d, got %d", entity.AppStatusSaved, updated.Status)
	}

	// 已保存 → 待审核：必须走 Finalize，直接写拒绝
	pending := entity.AppStatusPending
	if _, err := svc.Update(ctx, app.ID, UpdateApplicationRequest{Status: &pending}); err == nil {
		t.Fatal("Expected transition to pending to be denied")
	}

	// 已保存 → 已作废
	discarded := entity.AppStatusDiscarded
	updated, err = svc.Update(ctx, app.ID, UpdateApplicationRequest{Status: &discarded})
	if err != nil {
		t.Fatalf("Update to discarded failed: %v", err)
	}
	if updated.Status != entity.AppStatusDiscarded {
		t.Errorf("Expected status %d, got %d", entity.AppStatusDiscarded, updated.Status)
	}

	// 终态不可修改
	title := "改标题"
	if _, err := svc.Update(ctx, app.ID, UpdateApplicationRequest{Title: &title}); err == nil {
		t.Fatal("Expected update on discarded application to be denied")
	}
}

// 仅未提交或已作废可删除
func TestDeleteApplication(t *testing.T) {
	svc, repos := setupApplicationTest(t)
	ctx := context.Background()

	draft := seedApplication(t, repos, "APP-DEL-1", entity.OperationIn, entity.AppStatusDraft)
	seedDetail(t, repos, "APP-DEL-1", "MX", 1)
	if err := svc.Delete(ctx, draft.ID); err != nil {
		t.Fatalf("Delete draft failed: %v", err)
	}
	details, _ := svc.ListDetails(ctx, "APP-DEL-1")
	if len(details) != 0 {
		t.Errorf("Expected details cascade-deleted, got %d", len(details))
	}

	pending := seedApplication(t, repos, "APP-DEL-2", entity.OperationOut, entity.AppStatusPending)
	if err := svc.Delete(ctx, pending.ID); err == nil {
		t.Fatal("Expected delete on pending application to be denied")
	}
}

func TestCreateApplication(t *testing.T) {
	svc, _ := setupApplicationTest(t)
	ctx := context.Background()

	app, err := svc.Create(ctx, CreateApplicationRequest{
		Title:     "三月安全物资入库",
		Operation: entity.OperationIn,
		Origin:    "供应商A",
	}, "张三", "100001")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if app.Status != entity.AppStatusDraft {
		t.Errorf("Expected initial status %d, got %d", entity.AppStatusDraft, app.Status)
	}
	if app.ApplicationCode == "" {
		t.Error("Expected application code to be generated")
	}
	if app.Applicant != "张三" || app.ApplicantNo != "100001" {
		t.Errorf("Unexpected applicant: %s/%s", app.Applicant, app.ApplicantNo)
	}
}
