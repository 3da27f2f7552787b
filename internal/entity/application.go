package entity

// 申请单状态
const (
	AppStatusDraft     = 0 // 未提交
	AppStatusSaved     = 1 // 已保存
	AppStatusPending   = 2 // 待审核
	AppStatusCompleted = 3 // 已完成
	AppStatusRejected  = 4 // 已驳回
	AppStatusDiscarded = 5 // 已作废
)

// 出入库方向
const (
	OperationIn  = "IN"  // 入库
	OperationOut = "OUT" // 出库
)

// Application 物资申请单
// applicationCode 为业务主键，明细和出入库日志通过它关联
type Application struct {
	ID              uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	ApplicationCode string  `json:"applicationCode" gorm:"size:64;not null;uniqueIndex"`
	Title           string  `json:"title" gorm:"size:128;not null"`
	Operation       string  `json:"operation" gorm:"size:8;not null"` // IN / OUT
	Applicant       string  `json:"applicant" gorm:"size:64;not null"`
	ApplicantNo     string  `json:"applicantNo" gorm:"size:32;not null"`
	ApplicationTime string  `json:"applicationTime" gorm:"size:19;not null"`
	Approver        *string `json:"approver" gorm:"size:64"`
	ApproverNo      *string `json:"approverNo" gorm:"size:32"`
	ApproveTime     *string `json:"approveTime" gorm:"size:19"`
	Origin          string  `json:"origin" gorm:"size:128"`
	Purpose         string  `json:"purpose" gorm:"size:255"`
	Status          int     `json:"status" gorm:"not null;default:0;index"`
	CreateTime      string  `json:"createTime" gorm:"size:19;not null"`
	UpdateTime      string  `json:"updateTime" gorm:"size:19;not null"`
}

func (Application) TableName() string {
	return "application"
}

// ApplicationDetail 申请单物资明细
// 不使用物理外键，通过 applicationCode 关联申请单
type ApplicationDetail struct {
	ID              uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	ApplicationCode string  `json:"applicationCode" gorm:"size:64;not null;index"`
	MaterialCode    string  `json:"materialCode" gorm:"size:64;not null"`
	MaterialName    string  `json:"materialName" gorm:"size:128;not null"`
	Spec            string  `json:"spec" gorm:"size:128"`
	Unit            string  `json:"unit" gorm:"size:16;not null"`
	Quantity        float64 `json:"quantity" gorm:"type:decimal(12,2);not null"`
	Type            string  `json:"type" gorm:"size:32"`
	Remark          string  `json:"remark" gorm:"size:255"`
}

func (ApplicationDetail) TableName() string {
	return "application_detail"
}

// AppAction 针对申请单的动作，用于状态机判定
type AppAction int

const (
	ActionAddDetail AppAction = iota // 添加明细
	ActionEditDetail                 // 修改明细
	ActionDeleteDetail               // 删除明细
	ActionFinalize                   // 提交/审批
)

// detailActionStatuses 明细操作在哪些状态下允许
// 状态检查统一查这张表，避免散落的 if status == 0 || status == 1
var detailActionStatuses = map[AppAction]map[int]bool{
	ActionAddDetail:    {AppStatusDraft: true, AppStatusSaved: true},
	ActionEditDetail:   {AppStatusDraft: true, AppStatusSaved: true},
	ActionDeleteDetail: {AppStatusDraft: true},
}

// CanMutateDetail 判断当前状态下是否允许对明细执行指定动作
func CanMutateDetail(action AppAction, status int) bool {
	allowed, ok := detailActionStatuses[action]
	if !ok {
		return false
	}
	return allowed[status]
}

// CanFinalize 判断申请单当前状态/方向组合是否可提交
// 未提交、已保存可直接提交；待审核仅限出库单（二次审批）
func CanFinalize(status int, operation string) bool {
	switch status {
	case AppStatusDraft, AppStatusSaved:
		return true
	case AppStatusPending:
		return operation == OperationOut
	default:
		return false
	}
}

// FinalizeTarget 计算提交后的目标状态以及本次是否执行库存变动
// 入库单一步完成并扣减库存；出库单首次提交进入待审核（不动库存），
// 审批通过时才真正扣减
func FinalizeTarget(status int, operation string) (target int, moveStock bool) {
	if operation == OperationOut {
		if status == AppStatusPending {
			return AppStatusCompleted, true
		}
		return AppStatusPending, false
	}
	return AppStatusCompleted, true
}

// IsTerminalStatus 已完成/已作废后申请单及其明细只读
func IsTerminalStatus(status int) bool {
	return status == AppStatusCompleted || status == AppStatusDiscarded
}

// statusTransitions 管理动作允许的状态流转（提交/审批走 FinalizeTarget，不在此表）
// 未提交可显式保存；待审核可驳回；非终态均可作废
var statusTransitions = map[int]map[int]bool{
	AppStatusDraft:    {AppStatusSaved: true, AppStatusDiscarded: true},
	AppStatusSaved:    {AppStatusDiscarded: true},
	AppStatusPending:  {AppStatusRejected: true, AppStatusDiscarded: true},
	AppStatusRejected: {AppStatusDiscarded: true},
}

// CanTransition 判断管理类状态写入是否允许
func CanTransition(from, to int) bool {
	if from == to {
		return true
	}
	targets, ok := statusTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}
