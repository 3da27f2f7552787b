package entity

// MaterialStore 物资库存记录
// materialCode 为业务主键，库存数量只能由申请单提交流程变更
type MaterialStore struct {
	ID           uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	MaterialCode string  `json:"materialCode" gorm:"size:64;not null;uniqueIndex"`
	MaterialName string  `json:"materialName" gorm:"size:128;not null"`
	Spec         string  `json:"spec" gorm:"size:128"`
	Unit         string  `json:"unit" gorm:"size:16;not null"`
	Num          float64 `json:"num" gorm:"type:decimal(12,2);not null;default:0"`
	Threshold    float64 `json:"threshold" gorm:"type:decimal(12,2);not null;default:0"`
	Type         string  `json:"type" gorm:"size:32"`
	Location     string  `json:"location" gorm:"size:64"`
	Supplier     string  `json:"supplier" gorm:"size:128"`
	CreateTime   string  `json:"createTime" gorm:"size:19;not null"`
	UpdateTime   string  `json:"updateTime" gorm:"size:19;not null"`
}

func (MaterialStore) TableName() string {
	return "material_store"
}

// MaterialLog 出入库流水，只在申请单提交流程中追加，不允许修改
type MaterialLog struct {
	ID              uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	ApplicationCode string  `json:"applicationCode" gorm:"size:64;not null;index"`
	MaterialCode    string  `json:"materialCode" gorm:"size:64;not null;index"`
	MaterialName    string  `json:"materialName" gorm:"size:128;not null"`
	Spec            string  `json:"spec" gorm:"size:128"`
	Unit            string  `json:"unit" gorm:"size:16;not null"`
	Quantity        float64 `json:"quantity" gorm:"type:decimal(12,2);not null"`
	Operation       string  `json:"operation" gorm:"size:8;not null"` // IN / OUT
	Location        string  `json:"location" gorm:"size:64"`
	Origin          string  `json:"origin" gorm:"size:128"`
	Remark          string  `json:"remark" gorm:"size:255"`
	Time            string  `json:"time" gorm:"size:19;not null"`
}

func (MaterialLog) TableName() string {
	return "material_log"
}
