package repository

import (
	"context"

	"github.com/hongyan02/ehs-new/internal/entity"
	"gorm.io/gorm"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// ApplicationListParams 申请单查询条件
type ApplicationListParams struct {
	Title     string
	Applicant string
	Status    *int
	Operation string
	Page      int
	PageSize  int
}

func (r *ApplicationRepository) List(ctx context.Context, params ApplicationListParams) ([]entity.Application, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Application{})
	if params.Title != "" {
		query = query.Where("title LIKE ?", "%"+params.Title+"%")
	}
	if params.Applicant != "" {
		query = query.Where("applicant LIKE ?", "%"+params.Applicant+"%")
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Operation != "" {
		query = query.Where("operation = ?", params.Operation)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 10
	}

	var apps []entity.Application
	err := query.Order("id DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&apps).Error
	return apps, total, err
}

// ListPending 待审核申请单列表
func (r *ApplicationRepository) ListPending(ctx context.Context, page, pageSize int) ([]entity.Application, int64, error) {
	status := entity.AppStatusPending
	return r.List(ctx, ApplicationListParams{Status: &status, Page: page, PageSize: pageSize})
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uint) (*entity.Application, error) {
	var app entity.Application
	err := r.db.WithContext(ctx).First(&app, id).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) GetByCode(ctx context.Context, code string) (*entity.Application, error) {
	var app entity.Application
	err := r.db.WithContext(ctx).Where("application_code = ?", code).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app *entity.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// Updates 部分字段更新
func (r *ApplicationRepository) Updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&entity.Application{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete 删除申请单并级联删除其明细
func (r *ApplicationRepository) Delete(ctx context.Context, app *entity.Application) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("application_code = ?", app.ApplicationCode).
			Delete(&entity.ApplicationDetail{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Application{}, app.ID).Error
	})
}

// ListDetails 按申请单号查询明细，按ID倒序
func (r *ApplicationRepository) ListDetails(ctx context.Context, applicationCode string) ([]entity.ApplicationDetail, error) {
	var details []entity.ApplicationDetail
	err := r.db.WithContext(ctx).
		Where("application_code = ?", applicationCode).
		Order("id DESC").
		Find(&details).Error
	return details, err
}

func (r *ApplicationRepository) GetDetailByID(ctx context.Context, id uint) (*entity.ApplicationDetail, error) {
	var detail entity.ApplicationDetail
	err := r.db.WithContext(ctx).First(&detail, id).Error
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *ApplicationRepository) CreateDetail(ctx context.Context, detail *entity.ApplicationDetail) error {
	return r.db.WithContext(ctx).Create(detail).Error
}

func (r *ApplicationRepository) UpdateDetail(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&entity.ApplicationDetail{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *ApplicationRepository) DeleteDetail(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.ApplicationDetail{}, id).Error
}

// DB 返回底层db用于事务
func (r *ApplicationRepository) DB() *gorm.DB {
	return r.db
}
