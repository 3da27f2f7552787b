package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hongyan02/ehs-new/internal/repository"
	"github.com/hongyan02/ehs-new/internal/service"
)

type ApplicationHandler struct {
	svc *service.ApplicationService
}

func NewApplicationHandler(svc *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{svc: svc}
}

// List GET /applications
func (h *ApplicationHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.ApplicationListParams{
		Title:     c.Query("title"),
		Applicant: c.Query("applicant"),
		Operation: c.Query("operation"),
		Page:      page,
		PageSize:  pageSize,
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status, err := strconv.Atoi(statusStr)
		if err != nil {
			BadRequest(c, "无效的status参数")
			return
		}
		params.Status = &status
	}

	apps, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, ListResponse{
		Items: apps,
		Pagination: &Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	})
}

// ListPending GET /applications/pending
func (h *ApplicationHandler) ListPending(c *gin.Context) {
	page, pageSize := GetPagination(c)
	apps, total, err := h.svc.ListPending(c.Request.Context(), page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, ListResponse{
		Items: apps,
		Pagination: &Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	})
}

// Get GET /applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	app, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, app)
}

// Create POST /applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	var req service.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	app, err := h.svc.Create(c.Request.Context(), req, GetEmployeeName(c), GetEmployeeID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, app)
}

// Update PUT /applications/:id
func (h *ApplicationHandler) Update(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	app, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, app)
}

// Delete DELETE /applications/:id
func (h *ApplicationHandler) Delete(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// Finalize POST /applications/:id/finalize
// 入库单提交即完成，出库单提交转待审核、审批通过后完成
func (h *ApplicationHandler) Finalize(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var approver, approverNo *string
	if name := GetEmployeeName(c); name != "" {
		approver = &name
	}
	if no := GetEmployeeID(c); no != "" {
		approverNo = &no
	}

	result, err := h.svc.Finalize(c.Request.Context(), id, approver, approverNo)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, result)
}

// ListDetails GET /applications/:code/details
func (h *ApplicationHandler) ListDetails(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		BadRequest(c, "申请单号不能为空")
		return
	}

	details, err := h.svc.ListDetails(c.Request.Context(), code)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": details})
}

// CreateDetail POST /application-details
func (h *ApplicationHandler) CreateDetail(c *gin.Context) {
	var req service.CreateDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	detail, err := h.svc.CreateDetail(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, detail)
}

// UpdateDetail PUT /application-details/:id
func (h *ApplicationHandler) UpdateDetail(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	detail, err := h.svc.UpdateDetail(c.Request.Context(), id, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, detail)
}

// DeleteDetail DELETE /application-details/:id
func (h *ApplicationHandler) DeleteDetail(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	detail, err := h.svc.DeleteDetail(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, detail)
}
