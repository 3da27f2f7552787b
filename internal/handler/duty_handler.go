package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hongyan02/ehs-new/internal/repository"
	"github.com/hongyan02/ehs-new/internal/service"
)

type DutyHandler struct {
	svc *service.DutyService
}

func NewDutyHandler(svc *service.DutyService) *DutyHandler {
	return &DutyHandler{svc: svc}
}

func parseShiftQuery(c *gin.Context) (*int, bool) {
	shiftStr := c.Query("shift")
	if shiftStr == "" {
		return nil, true
	}
	shift, err := strconv.Atoi(shiftStr)
	if err != nil || (shift != 0 && shift != 1) {
		BadRequest(c, "无效的shift参数")
		return nil, false
	}
	return &shift, true
}

// ===== 排班 =====

// ListSchedules GET /duty/schedules
func (h *DutyHandler) ListSchedules(c *gin.Context) {
	shift, ok := parseShiftQuery(c)
	if !ok {
		return
	}

	params := repository.DutyScheduleListParams{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		No:        c.Query("no"),
		Shift:     shift,
	}

	schedules, err := h.svc.ListSchedules(c.Request.Context(), params)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": schedules})
}

// GetSchedule GET /duty/schedules/:id
func (h *DutyHandler) GetSchedule(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	schedule, err := h.svc.GetSchedule(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, schedule)
}

// CreateSchedule POST /duty/schedules
func (h *DutyHandler) CreateSchedule(c *gin.Context) {
	var req service.CreateDutyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	schedule, err := h.svc.CreateSchedule(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, schedule)
}

// UpdateSchedule PUT /duty/schedules/:id
func (h *DutyHandler) UpdateSchedule(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateDutyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	schedule, err := h.svc.UpdateSchedule(c.Request.Context(), id, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, schedule)
}

// DeleteSchedule DELETE /duty/schedules/:id
func (h *DutyHandler) DeleteSchedule(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteSchedule(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// ===== 值班日志 =====

// ListLogs GET /duty/logs
func (h *DutyHandler) ListLogs(c *gin.Context) {
	shift, ok := parseShiftQuery(c)
	if !ok {
		return
	}

	page, pageSize := GetPagination(c)
	params := repository.DutyLogListParams{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Shift:     shift,
		Page:      page,
		PageSize:  pageSize,
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

// GetLog GET /duty/logs/:id
func (h *DutyHandler) GetLog(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	log, err := h.svc.GetLog(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, log)
}

// CreateLog POST /duty/logs
func (h *DutyHandler) CreateLog(c *gin.Context) {
	var req service.CreateDutyLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	log, err := h.svc.CreateLog(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, log)
}

// UpdateLog PUT /duty/logs/:id
func (h *DutyHandler) UpdateLog(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateDutyLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	log, err := h.svc.UpdateLog(c.Request.Context(), id, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, log)
}

// DeleteLog DELETE /duty/logs/:id
func (h *DutyHandler) DeleteLog(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteLog(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}

// InspectLogs GET /duty/logs/inspect
// 稽查某日期范围内排了班但没写日志的人
func (h *DutyHandler) InspectLogs(c *gin.Context) {
	items, err := h.svc.InspectLogs(c.Request.Context(), c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": items, "count": len(items)})
}
