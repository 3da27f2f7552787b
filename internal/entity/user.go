package entity

// UserPermission 用户权限记录
// permissions 为 JSON 数组文本，登录时解析后写入 JWT
type UserPermission struct {
	ID          uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	EmployeeID  string `json:"employeeId" gorm:"size:32;not null;uniqueIndex"`
	Name        string `json:"name" gorm:"size:64"`
	Permissions string `json:"permissions" gorm:"type:text;not null;default:'[]'"`
}

func (UserPermission) TableName() string {
	return "user_permission"
}
