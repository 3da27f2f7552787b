package repository

import (
	"context"

	"github.com/hongyan02/ehs-new/internal/entity"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*entity.UserPermission, error) {
	var record entity.UserPermission
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
