package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hongyan02/ehs-new/internal/repository"
	"github.com/hongyan02/ehs-new/internal/service"
)

type MaterialHandler struct {
	svc *service.MaterialService
}

func NewMaterialHandler(svc *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{svc: svc}
}

// List GET /materials
func (h *MaterialHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.MaterialListParams{
		MaterialName: c.Query("materialName"),
		MaterialCode: c.Query("materialCode"),
		Type:         c.Query("type"),
		Supplier:     c.Query("supplier"),
		Page:         page,
		PageSize:     pageSize,
	}

	items, total, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	})
}

// Get GET /materials/:id
func (h *MaterialHandler) Get(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

// Create POST /materials
func (h *MaterialHandler) Create(c *gin.Context) {
	var req service.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	item, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, item)
}

// Update PUT /materials/:id
func (h *MaterialHandler) Update(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	item, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, item)
}

// Alerts GET /materials/alerts
func (h *MaterialHandler) Alerts(c *gin.Context) {
	items, err := h.svc.Alerts(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": items, "count": len(items)})
}

// ListLogs GET /material-logs
func (h *MaterialHandler) ListLogs(c *gin.Context) {
	page, pageSize := GetPagination(c)
	params := repository.MaterialLogListParams{
		ApplicationCode: c.Query("applicationCode"),
		MaterialCode:    c.Query("materialCode"),
		Operation:       c.Query("operation"),
		Page:            page,
		PageSize:        pageSize,
	}

	logs, total, err := h.svc.ListLogs(c.Request.Context(), params)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, ListResponse{
		Items: logs,
		Pagination: &Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	})
}

// Export GET /materials/export
func (h *MaterialHandler) Export(c *gin.Context) {
	f, filename, err := h.svc.Export(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
