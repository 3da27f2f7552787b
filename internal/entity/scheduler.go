package entity

import "gorm.io/datatypes"

// 定时任务执行结果
const (
	TaskStatusSuccess = "success"
	TaskStatusFailed  = "failed"
)

// SchedulerTask 定时任务注册表
// jobKey 对应代码中注册的任务处理器，cron 为空时任务只能手动触发
type SchedulerTask struct {
	ID         uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name       string         `json:"name" gorm:"size:128;not null"`
	JobKey     string         `json:"jobKey" gorm:"size:64;not null;index"`
	Cron       string         `json:"cron" gorm:"size:64"`
	Enabled    int            `json:"enabled" gorm:"not null;default:1"` // 1=启用 0=停用
	Payload    datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	LastRunAt  *string        `json:"lastRunAt" gorm:"size:19"`
	LastStatus *string        `json:"lastStatus" gorm:"size:16"`
	LastError  *string        `json:"lastError" gorm:"type:text"`
	CreatedAt  string         `json:"createdAt" gorm:"size:19;not null"`
	UpdatedAt  string         `json:"updatedAt" gorm:"size:19;not null"`
}

func (SchedulerTask) TableName() string {
	return "scheduler_task"
}
