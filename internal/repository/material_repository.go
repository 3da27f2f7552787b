package repository

import (
	"context"

	"github.com/hongyan02/ehs-new/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// MaterialListParams 物资库查询条件
type MaterialListParams struct {
	MaterialName string
	MaterialCode string
	Type         string
	Supplier     string
	Page         int
	PageSize     int
}

func (r *MaterialRepository) List(ctx context.Context, params MaterialListParams) ([]entity.MaterialStore, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.MaterialStore{})
	if params.MaterialName != "" {
		query = query.Where("material_name LIKE ?", "%"+params.MaterialName+"%")
	}
	if params.MaterialCode != "" {
		query = query.Where("material_code LIKE ?", "%"+params.MaterialCode+"%")
	}
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.Supplier != "" {
		query = query.Where("supplier LIKE ?", "%"+params.Supplier+"%")
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

	var items []entity.MaterialStore
	err := query.Order("id DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&items).Error
	return items, total, err
}

// ListAll 全量物资库，用于导出
func (r *MaterialRepository) ListAll(ctx context.Context) ([]entity.MaterialStore, error) {
	var items []entity.MaterialStore
	err := r.db.WithContext(ctx).Order("material_code ASC").Find(&items).Error
	return items, err
}

func (r *MaterialRepository) GetByID(ctx context.Context, id uint) (*entity.MaterialStore, error) {
	var item entity.MaterialStore
	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MaterialRepository) GetByCode(ctx context.Context, materialCode string) (*entity.MaterialStore, error) {
	var item entity.MaterialStore
	err := r.db.WithContext(ctx).Where("material_code = ?", materialCode).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByCodeForUpdate 在事务内按物料编码取库存并加行锁
// 提交流程的读改写依赖这里的 FOR UPDATE 串行化同一物料的并发扣减
func (r *MaterialRepository) GetByCodeForUpdate(tx *gorm.DB, materialCode string) (*entity.MaterialStore, error) {
	var item entity.MaterialStore
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("material_code = ?", materialCode).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MaterialRepository) Create(ctx context.Context, item *entity.MaterialStore) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Updates 管理性修改，不经过这里变更库存数量
func (r *MaterialRepository) Updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&entity.MaterialStore{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// ListBelowThreshold 库存低于预警阈值的物资
func (r *MaterialRepository) ListBelowThreshold(ctx context.Context) ([]entity.MaterialStore, error) {
	var items []entity.MaterialStore
	err := r.db.WithContext(ctx).
		Where("num < threshold AND threshold > 0").
		Find(&items).Error
	return items, err
}

// MaterialLogListParams 出入库流水查询条件
type MaterialLogListParams struct {
	ApplicationCode string
	MaterialCode    string
	Operation       string
	Page            int
	PageSize        int
}

func (r *MaterialRepository) ListLogs(ctx context.Context, params MaterialLogListParams) ([]entity.MaterialLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.MaterialLog{})
	if params.ApplicationCode != "" {
		query = query.Where("application_code = ?", params.ApplicationCode)
	}
	if params.MaterialCode != "" {
		query = query.Where("material_code = ?", params.MaterialCode)
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

	var logs []entity.MaterialLog
	err := query.Order("id DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&logs).Error
	return logs, total, err
}

// DB 返回底层db用于事务
func (r *MaterialRepository) DB() *gorm.DB {
	return r.db
}
