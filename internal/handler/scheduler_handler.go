package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hongyan02/ehs-new/internal/service"
)

type SchedulerHandler struct {
	svc *service.SchedulerService
}

func NewSchedulerHandler(svc *service.SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{svc: svc}
}

// List GET /scheduler/tasks
func (h *SchedulerHandler) List(c *gin.Context) {
	tasks, err := h.svc.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": tasks})
}

// JobKeys GET /scheduler/job-keys
func (h *SchedulerHandler) JobKeys(c *gin.Context) {
	Success(c, gin.H{"items": h.svc.SupportedJobKeys()})
}

// Get GET /scheduler/tasks/:id
func (h *SchedulerHandler) Get(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	task, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, task)
}

// Create POST /scheduler/tasks
func (h *SchedulerHandler) Create(c *gin.Context) {
	var req service.CreateSchedulerTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	task, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, task)
}

// Update PUT /scheduler/tasks/:id
func (h *SchedulerHandler) Update(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateSchedulerTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	task, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, task)
}

// Delete DELETE /scheduler/tasks/:id
func (h *SchedulerHandler) Delete(c *gin.Context) {
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

// Trigger POST /scheduler/tasks/:id/trigger
// 手动执行一次，忽略启用状态和cron
func (h *SchedulerHandler) Trigger(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	task, err := h.svc.Trigger(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, task)
}
