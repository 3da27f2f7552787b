package service

import "errors"

// ErrKind 业务错误类别，闭合枚举
// handler 层据此映射HTTP状态码，服务内部不关心传输层
type ErrKind int

const (
	ErrKindNotFound          ErrKind = iota + 1 // 资源不存在
	ErrKindInvalidState                         // 当前状态不允许该操作
	ErrKindEmptyRequisition                     // 申请单没有明细
	ErrKindMaterialNotFound                     // 明细引用的物料不在库中
	ErrKindInsufficientStock                    // 出库数量超过库存
	ErrKindConflict                             // 业务键冲突
	ErrKindInvalidArgument                      // 参数不合法
	ErrKindUnauthorized                         // 认证失败
)

// DomainError 业务错误
type DomainError struct {
	Kind    ErrKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func newError(kind ErrKind, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

func NotFoundError(message string) *DomainError {
	return newError(ErrKindNotFound, message)
}

func InvalidStateError(message string) *DomainError {
	return newError(ErrKindInvalidState, message)
}

func EmptyRequisitionError(message string) *DomainError {
	return newError(ErrKindEmptyRequisition, message)
}

func MaterialNotFoundError(message string) *DomainError {
	return newError(ErrKindMaterialNotFound, message)
}

func InsufficientStockError(message string) *DomainError {
	return newError(ErrKindInsufficientStock, message)
}

func ConflictError(message string) *DomainError {
	return newError(ErrKindConflict, message)
}

func InvalidArgumentError(message string) *DomainError {
	return newError(ErrKindInvalidArgument, message)
}

func UnauthorizedError(message string) *DomainError {
	return newError(ErrKindUnauthorized, message)
}

// AsDomainError 提取业务错误，非业务错误返回nil
func AsDomainError(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return nil
}
