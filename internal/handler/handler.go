package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hongyan02/ehs-new/internal/config"
	"github.com/hongyan02/ehs-new/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Auth        *AuthHandler
	Application *ApplicationHandler
	Material    *MaterialHandler
	Duty        *DutyHandler
	DutySwap    *DutySwapHandler
	Scheduler   *SchedulerHandler
	Notify      *NotifyHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:        NewAuthHandler(svc.Auth, cfg),
		Application: NewApplicationHandler(svc.Application),
		Material:    NewMaterialHandler(svc.Material),
		Duty:        NewDutyHandler(svc.Duty),
		DutySwap:    NewDutySwapHandler(svc.DutySwap),
		Scheduler:   NewSchedulerHandler(svc.Scheduler),
		Notify:      NewNotifyHandler(svc.Notify),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse 列表响应结构
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// HandleError 业务错误按类别映射HTTP状态码，其余按服务器错误处理
func HandleError(c *gin.Context, err error) {
	de := service.AsDomainError(err)
	if de == nil {
		InternalError(c, err.Error())
		return
	}

	switch de.Kind {
	case service.ErrKindNotFound:
		Error(c, 40400, de.Message)
	case service.ErrKindMaterialNotFound:
		Error(c, 40401, de.Message)
	case service.ErrKindInvalidState:
		Error(c, 40900, de.Message)
	case service.ErrKindInsufficientStock:
		Error(c, 40901, de.Message)
	case service.ErrKindConflict:
		Error(c, 40902, de.Message)
	case service.ErrKindEmptyRequisition:
		Error(c, 40001, de.Message)
	case service.ErrKindInvalidArgument:
		Error(c, 40000, de.Message)
	case service.ErrKindUnauthorized:
		Error(c, 40100, de.Message)
	default:
		InternalError(c, de.Message)
	}
}

// GetEmployeeID 从登录态取工号
func GetEmployeeID(c *gin.Context) string {
	return c.GetString("employee_id")
}

// GetEmployeeName 从登录态取姓名
func GetEmployeeName(c *gin.Context) string {
	return c.GetString("employee_name")
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

// ParseID 解析路径ID参数
func ParseID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		BadRequest(c, "无效的ID")
		return 0, false
	}
	return uint(v), true
}
