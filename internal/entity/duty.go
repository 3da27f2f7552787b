package entity

// 班次
const (
	ShiftDay   = 0 // 白班
	ShiftNight = 1 // 夜班
)

// 换班申请状态
const (
	SwapStatusApplying  = 0 // 申请中
	SwapStatusApproved  = 1 // 已同意
	SwapStatusRejected  = 2 // 已拒绝
	SwapStatusCancelled = 3 // 已取消
)

// DutySchedule 值班排班表
type DutySchedule struct {
	ID       uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name     string `json:"name" gorm:"size:64;not null"`
	No       string `json:"no" gorm:"size:32;not null;index"`
	Position string `json:"position" gorm:"size:64"`
	Date     string `json:"date" gorm:"size:10;not null;index"` // YYYY-MM-DD
	Shift    int    `json:"shift" gorm:"not null;default:0"`
}

func (DutySchedule) TableName() string {
	return "duty_schedule"
}

// DutyLog 值班日志
type DutyLog struct {
	ID         uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name       string `json:"name" gorm:"size:64;not null"`
	No         string `json:"no" gorm:"size:32;not null;index"`
	Date       string `json:"date" gorm:"size:10;not null;index"`
	Shift      int    `json:"shift" gorm:"not null;default:0"`
	Log        string `json:"log" gorm:"type:text;not null"`
	Todo       string `json:"todo" gorm:"type:text"`
	CreateTime string `json:"createTime" gorm:"size:19;not null"`
	UpdateTime string `json:"updateTime" gorm:"size:19;not null"`
}

func (DutyLog) TableName() string {
	return "duty_log"
}

// DutySwap 换班申请
type DutySwap struct {
	ID           uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	FromName     string `json:"from_name" gorm:"column:from_name;size:64;not null"`
	FromNo       string `json:"from_no" gorm:"column:from_no;size:32;not null;index"`
	FromPosition string `json:"from_position" gorm:"column:from_position;size:64"`
	FromDate     string `json:"from_date" gorm:"column:from_date;size:10;not null"`
	FromShift    int    `json:"from_shift" gorm:"column:from_shift;not null;default:0"`
	ToName       string `json:"to_name" gorm:"column:to_name;size:64;not null"`
	ToNo         string `json:"to_no" gorm:"column:to_no;size:32;not null;index"`
	ToPosition   string `json:"to_position" gorm:"column:to_position;size:64"`
	ToDate       string `json:"to_date" gorm:"column:to_date;size:10;not null"`
	ToShift      int    `json:"to_shift" gorm:"column:to_shift;not null;default:0"`
	Status       int    `json:"status" gorm:"not null;default:0;index"`
	Reason       string `json:"reason" gorm:"size:255"`
	CreatedAt    string `json:"created_at" gorm:"column:created_at;size:19;not null"`
	UpdatedAt    string `json:"updated_at" gorm:"column:updated_at;size:19;not null"`
}

func (DutySwap) TableName() string {
	return "duty_swap"
}
