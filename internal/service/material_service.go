package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hongyan02/ehs-new/internal/entity"
	"github.com/hongyan02/ehs-new/internal/repository"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// MaterialService 物资库服务
// 库存数量 num 只读：变更只发生在申请单提交事务里
type MaterialService struct {
	repo *repository.MaterialRepository
	now  func() time.Time
}

func NewMaterialService(repo *repository.MaterialRepository) *MaterialService {
	return &MaterialService{repo: repo, now: time.Now}
}

// SetClock 注入时钟，测试用
func (s *MaterialService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *MaterialService) List(ctx context.Context, params repository.MaterialListParams) ([]entity.MaterialStore, int64, error) {
	return s.repo.List(ctx, params)
}

func (s *MaterialService) Get(ctx context.Context, id uint) (*entity.MaterialStore, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("物料不存在")
		}
		return nil, err
	}
	return item, nil
}

type CreateMaterialRequest struct {
	MaterialCode string  `json:"materialCode" binding:"required"`
	MaterialName string  `json:"materialName" binding:"required"`
	Spec         string  `json:"spec"`
	Unit         string  `json:"unit" binding:"required"`
	Num          float64 `json:"num" binding:"gte=0"`
	Threshold    float64 `json:"threshold" binding:"gte=0"`
	Type         string  `json:"type"`
	Location     string  `json:"location"`
	Supplier     string  `json:"supplier"`
}

// Create 快速建档，物料编码唯一
func (s *MaterialService) Create(ctx context.Context, req CreateMaterialRequest) (*entity.MaterialStore, error) {
	if _, err := s.repo.GetByCode(ctx, req.MaterialCode); err == nil {
		return nil, ConflictError(fmt.Sprintf("物料编码 %s 已存在", req.MaterialCode))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := s.now().Format(TimeLayout)
	item := &entity.MaterialStore{
		MaterialCode: req.MaterialCode,
		MaterialName: req.MaterialName,
		Spec:         req.Spec,
		Unit:         req.Unit,
		Num:          req.Num,
		Threshold:    req.Threshold,
		Type:         req.Type,
		Location:     req.Location,
		Supplier:     req.Supplier,
		CreateTime:   now,
		UpdateTime:   now,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

type UpdateMaterialRequest struct {
	MaterialName *string  `json:"materialName"`
	Spec         *string  `json:"spec"`
	Unit         *string  `json:"unit"`
	Threshold    *float64 `json:"threshold"`
	Type         *string  `json:"type"`
	Location     *string  `json:"location"`
	Supplier     *string  `json:"supplier"`
}

// Update 管理性修改，库存数量不接受外部写入
func (s *MaterialService) Update(ctx context.Context, id uint, req UpdateMaterialRequest) (*entity.MaterialStore, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"update_time": s.now().Format(TimeLayout),
	}
	if req.MaterialName != nil {
		fields["material_name"] = *req.MaterialName
	}
	if req.Spec != nil {
		fields["spec"] = *req.Spec
	}
	if req.Unit != nil {
		fields["unit"] = *req.Unit
	}
	if req.Threshold != nil {
		fields["threshold"] = *req.Threshold
	}
	if req.Type != nil {
		fields["type"] = *req.Type
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.Supplier != nil {
		fields["supplier"] = *req.Supplier
	}

	if err := s.repo.Updates(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Alerts 库存低于预警阈值的物资
func (s *MaterialService) Alerts(ctx context.Context) ([]entity.MaterialStore, error) {
	return s.repo.ListBelowThreshold(ctx)
}

func (s *MaterialService) ListLogs(ctx context.Context, params repository.MaterialLogListParams) ([]entity.MaterialLog, int64, error) {
	return s.repo.ListLogs(ctx, params)
}

// Export 导出全量物资库清单
func (s *MaterialService) Export(ctx context.Context) (*excelize.File, string, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheet := "物资库"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})

	headers := []string{"物料编码", "物料名称", "规格", "单位", "库存数量", "预警阈值", "类型", "库位", "供应商", "更新时间"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetRowStyle(sheet, 1, 1, headerStyle)

	for row, item := range items {
		values := []interface{}{
			item.MaterialCode, item.MaterialName, item.Spec, item.Unit,
			item.Num, item.Threshold, item.Type, item.Location, item.Supplier,
			item.UpdateTime,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("material_store_%s.xlsx", s.now().Format("20060102150405"))
	return f, filename, nil
}
