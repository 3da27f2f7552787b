package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hongyan02/ehs-new/internal/service"
)

type DutySwapHandler struct {
	svc *service.DutySwapService
}

func NewDutySwapHandler(svc *service.DutySwapService) *DutySwapHandler {
	return &DutySwapHandler{svc: svc}
}

func parseStatusQuery(c *gin.Context) (*int, bool) {
	statusStr := c.Query("status")
	if statusStr == "" {
		return nil, true
	}
	status, err := strconv.Atoi(statusStr)
	if err != nil {
		BadRequest(c, "无效的status参数")
		return nil, false
	}
	return &status, true
}

// Create POST /duty/swaps
func (h *DutySwapHandler) Create(c *gin.Context) {
	var req service.CreateDutySwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	swap, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, swap)
}

// ListMine GET /duty/swaps/my
// 未显式传 user_no 时取登录态工号
func (h *DutySwapHandler) ListMine(c *gin.Context) {
	status, ok := parseStatusQuery(c)
	if !ok {
		return
	}

	userNo := c.Query("user_no")
	if userNo == "" {
		userNo = GetEmployeeID(c)
	}

	swaps, err := h.svc.ListMine(c.Request.Context(), userNo, status)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": swaps})
}

// ListAll GET /duty/swaps
func (h *DutySwapHandler) ListAll(c *gin.Context) {
	status, ok := parseStatusQuery(c)
	if !ok {
		return
	}

	swaps, err := h.svc.ListAll(c.Request.Context(), status)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": swaps})
}

// Approve POST /duty/swaps/:id/approve
func (h *DutySwapHandler) Approve(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	swap, err := h.svc.Approve(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, swap)
}

// Reject POST /duty/swaps/:id/reject
func (h *DutySwapHandler) Reject(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	swap, err := h.svc.Reject(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, swap)
}

// Cancel POST /duty/swaps/:id/cancel
func (h *DutySwapHandler) Cancel(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	swap, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, swap)
}

// Swap POST /duty/swap
// 审批通过后实际互换两条排班的人员信息
func (h *DutySwapHandler) Swap(c *gin.Context) {
	var req service.SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	result, err := h.svc.Swap(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, result)
}
