package service

import (
	"context"
	"testing"

	"github.com/hongyan02/ehs-new/internal/repository"
	"github.com/hongyan02/ehs-new/internal/testutil"
)

func setupMaterialTest(t *testing.T) (*MaterialService, *repository.Repositories) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewMaterialService(repos.Material), repos
}

func TestMaterialCreateConflict(t *testing.T) {
	svc, _ := setupMaterialTest(t)
	ctx := context.Background()

	req := CreateMaterialRequest{
		MaterialCode: "HG-001",
		MaterialName: "安全帽",
		Unit:         "顶",
		Num:          10,
		Threshold:    5,
	}
	if _, err := svc.Create(ctx, req); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := svc.Create(ctx, req)
	if err == nil {
		t.Fatal("Expected conflict on duplicate material code")
	}
	de := AsDomainError(err)
	if de == nil || de.Kind != ErrKindConflict {
		t.Errorf("Expected ErrKindConflict, got %v", err)
	}
}

func TestMaterialAlerts(t *testing.T) {
	svc, _ := setupMaterialTest(t)
	ctx := context.Background()

	seed := []CreateMaterialRequest{
		{MaterialCode: "A-1", MaterialName: "灭火器", Unit: "个", Num: 2, Threshold: 5},
		{MaterialCode: "A-2", MaterialName: "防毒面具", Unit: "个", Num: 10, Threshold: 5},
		{MaterialCode: "A-3", MaterialName: "未设阈值", Unit: "个", Num: 0, Threshold: 0},
	}
	for _, req := range seed {
		if _, err := svc.Create(ctx, req); err != nil {
			t.Fatalf("Create %s failed: %v", req.MaterialCode, err)
		}
	}

	items, err := svc.Alerts(ctx)
	if err != nil {
		t.Fatalf("Alerts failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(items))
	}
	if items[0].MaterialCode != "A-1" {
		t.Errorf("Expected A-1 in alerts, got %s", items[0].MaterialCode)
	}
}

func TestMaterialUpdateNeverWritesNum(t *testing.T) {
	svc, repos := setupMaterialTest(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, CreateMaterialRequest{
		MaterialCode: "HG-002",
		MaterialName: "安全绳",
		Unit:         "根",
		Num:          8,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	name := "高空安全绳"
	threshold := 3.0
	updated, err := svc.Update(ctx, item.ID, UpdateMaterialRequest{
		MaterialName: &name,
		Threshold:    &threshold,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.MaterialName != "高空安全绳" || updated.Threshold != 3 {
		t.Errorf("Unexpected update result: %+v", updated)
	}
	if updated.Num != 8 {
		t.Errorf("Expected num untouched at 8, got %v", updated.Num)
	}

	stored, _ := repos.Material.GetByID(ctx, item.ID)
	if stored.Num != 8 {
		t.Errorf("Expected stored num 8, got %v", stored.Num)
	}
}

func TestMaterialExport(t *testing.T) {
	svc, _ := setupMaterialTest(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateMaterialRequest{
		MaterialCode: "HG-003",
		MaterialName: "护目镜",
		Unit:         "副",
		Num:          30,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	f, filename, err := svc.Export(ctx)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	defer f.Close()

	if filename == "" {
		t.Error("Expected a filename")
	}
	code, err := f.GetCellValue("物资库", "A2")
	if err != nil {
		t.Fatalf("GetCellValue failed: %v", err)
	}
	if code != "HG-003" {
		t.Errorf("Expected HG-003 in first data row, got %q", code)
	}
}
