package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/hongyan02/ehs-new/internal/entity"
	"github.com/hongyan02/ehs-new/internal/service"
)

type NotifyHandler struct {
	svc *service.NotifyService
}

func NewNotifyHandler(svc *service.NotifyService) *NotifyHandler {
	return &NotifyHandler{svc: svc}
}

type notifyDutyLeaderRequest struct {
	Shift   *int   `json:"shift" binding:"required,oneof=0 1"`
	Content string `json:"content"`
}

// NotifyDutyLeader POST /notify/duty-leader
// 给当天指定班次的值班领导发企业微信提醒
func (h *NotifyHandler) NotifyDutyLeader(c *gin.Context) {
	var req notifyDutyLeaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "无效的请求参数: "+err.Error())
		return
	}

	result, err := h.svc.NotifyDutyLeader(c.Request.Context(), *req.Shift, req.Content)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, result)
}

// NotifyLowStock POST /notify/low-stock
// 手动触发一次库存预警推送
func (h *NotifyHandler) NotifyLowStock(c *gin.Context) {
	result, err := h.svc.NotifyLowStock(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	if result == nil {
		Success(c, gin.H{"sent": false, "message": "没有低于预警阈值的物资"})
		return
	}
	Success(c, gin.H{"sent": true, "shift": entity.ShiftDay, "detail": result})
}
