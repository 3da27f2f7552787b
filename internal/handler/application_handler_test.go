package handler

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/hongyan02/ehs-new/internal/entity"
	"github.com/hongyan02/ehs-new/internal/repository"
	"github.com/hongyan02/ehs-new/internal/service"
	"github.com/hongyan02/ehs-new/internal/testutil"
)

func setupApplicationHandlerTest(t *testing.T) (*testutil.TestEnv, *repository.Repositories) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	svc := service.NewApplicationService(repos.Application, repos.Material, db)
	h := NewApplicationHandler(svc)

	api := testutil.AuthGroup(router, "/api")
	api.GET("/applications", h.List)
	api.GET("/applications/:id", h.Get)
	api.POST("/applications", h.Create)
	api.PUT("/applications/:id", h.Update)
	api.POST("/applications/:id/finalize", h.Finalize)
	api.POST("/application-details", h.CreateDetail)
	api.DELETE("/application-details/:id", h.DeleteDetail)

	return &testutil.TestEnv{DB: db, Router: router, T: t}, repos
}

// 完整入库流程：建单、加明细、提交、验证库存与流水
func TestApplicationInboundFlow(t *testing.T) {
	env, repos := setupApplicationHandlerTest(t)
	token := testutil.DefaultTestToken()
	ctx := context.Background()

	repos.Material.Create(ctx, &entity.MaterialStore{
		MaterialCode: "HG-001",
		MaterialName: "安全帽",
		Unit:         "顶",
		Num:          20,
		CreateTime:   "2026-03-01 09:00:00",
		UpdateTime:   "2026-03-01 09:00:00",
	})

	// 建单
	w := testutil.DoRequest(env.Router, "POST", "/api/applications", map[string]interface{}{
		"title":     "三月安全帽入库",
		"operation": "IN",
		"origin":    "供应商A",
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	appID := data["id"].(float64)
	appCode := data["applicationCode"].(string)
	if data["status"].(float64) != float64(entity.AppStatusDraft) {
		t.Errorf("Expected draft status, got %v", data["status"])
	}
	if data["applicant"] != "测试管理员" {
		t.Errorf("Expected applicant from login state, got %v", data["applicant"])
	}

	// 加明细
	w = testutil.DoRequest(env.Router, "POST", "/api/application-details", map[string]interface{}{
		"applicationCode": appCode,
		"materialCode":    "HG-001",
		"materialName":    "安全帽",
		"unit":            "顶",
		"quantity":        10,
	}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// 提交
	w = testutil.DoRequest(env.Router, "POST",
		"/api/applications/"+itoa(appID)+"/finalize", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	result := resp["data"].(map[string]interface{})
	if result["status"].(float64) != float64(entity.AppStatusCompleted) {
		t.Errorf("Expected completed, got %v", result["status"])
	}

	item, err := repos.Material.GetByCode(ctx, "HG-001")
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if item.Num != 30 {
		t.Errorf("Expected num 30, got %v", item.Num)
	}

	// 二次提交：已完成不可再提交
	w = testutil.DoRequest(env.Router, "POST",
		"/api/applications/"+itoa(appID)+"/finalize", nil, token)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

// 错误映射：不存在404、空明细400、未认证401
func TestApplicationErrorMapping(t *testing.T) {
	env, repos := setupApplicationHandlerTest(t)
	token := testutil.DefaultTestToken()
	ctx := context.Background()

	// 未认证
	w := testutil.DoRequest(env.Router, "GET", "/api/applications", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", w.Code)
	}

	// 不存在
	w = testutil.DoRequest(env.Router, "GET", "/api/applications/99999", nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}

	// 空明细提交
	app := &entity.Application{
		ApplicationCode: "APP-EMPTY-H",
		Title:           "空单",
		Operation:       entity.OperationIn,
		Applicant:       "张三",
		ApplicantNo:     "100001",
		ApplicationTime: "2026-03-01 09:00:00",
		Status:          entity.AppStatusDraft,
		CreateTime:      "2026-03-01 09:00:00",
		UpdateTime:      "2026-03-01 09:00:00",
	}
	repos.Application.Create(ctx, app)
	w = testutil.DoRequest(env.Router, "POST",
		"/api/applications/"+itoa(float64(app.ID))+"/finalize", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["message"] != "申请单没有物资明细" {
		t.Errorf("Unexpected message: %v", resp["message"])
	}

	// 已完成申请单加明细 → 409
	done := &entity.Application{
		ApplicationCode: "APP-DONE-H",
		Title:           "已完成",
		Operation:       entity.OperationIn,
		Applicant:       "张三",
		ApplicantNo:     "100001",
		ApplicationTime: "2026-03-01 09:00:00",
		Status:          entity.AppStatusCompleted,
		CreateTime:      "2026-03-01 09:00:00",
		UpdateTime:      "2026-03-01 09:00:00",
	}
	repos.Application.Create(ctx, done)
	w = testutil.DoRequest(env.Router, "POST", "/api/application-details", map[string]interface{}{
		"applicationCode": "APP-DONE-H",
		"materialCode":    "HG-001",
		"materialName":    "安全帽",
		"unit":            "顶",
		"quantity":        1,
	}, token)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
	}
}

func itoa(v float64) string {
	return strconv.Itoa(int(v))
}
