package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hongyan02/ehs-new/internal/entity"
	"github.com/hongyan02/ehs-new/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TimeLayout 业务时间统一格式
const TimeLayout = "2006-01-02 15:04:05"

// ApplicationService 物资申请单服务
// 负责申请单与明细的生命周期，以及提交/审批时的库存变动事务
type ApplicationService struct {
	appRepo      *repository.ApplicationRepository
	materialRepo *repository.MaterialRepository
	db           *gorm.DB
	now          func() time.Time
}

func NewApplicationService(appRepo *repository.ApplicationRepository, materialRepo *repository.MaterialRepository, db *gorm.DB) *ApplicationService {
	return &ApplicationService{
		appRepo:      appRepo,
		materialRepo: materialRepo,
		db:           db,
		now:          time.Now,
	}
}

// SetClock 注入时钟，测试用
func (s *ApplicationService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *ApplicationService) List(ctx context.Context, params repository.ApplicationListParams) ([]entity.Application, int64, error) {
	return s.appRepo.List(ctx, params)
}

func (s *ApplicationService) ListPending(ctx context.Context, page, pageSize int) ([]entity.Application, int64, error) {
	return s.appRepo.ListPending(ctx, page, pageSize)
}

func (s *ApplicationService) Get(ctx context.Context, id uint) (*entity.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("申请单不存在")
		}
		return nil, err
	}
	return app, nil
}

type CreateApplicationRequest struct {
	Title     string `json:"title" binding:"required"`
	Operation string `json:"operation" binding:"required,oneof=IN OUT"`
	Origin    string `json:"origin"`
	Purpose   string `json:"purpose"`
}

// Create 创建申请单，初始状态为未提交
// 申请人信息来自登录态，不信任请求体
func (s *ApplicationService) Create(ctx context.Context, req CreateApplicationRequest, applicant, applicantNo string) (*entity.Application, error) {
	now := s.now().Format(TimeLayout)
	app := &entity.Application{
		ApplicationCode: s.newApplicationCode(),
		Title:           req.Title,
		Operation:       req.Operation,
		Applicant:       applicant,
		ApplicantNo:     applicantNo,
		ApplicationTime: now,
		Origin:          req.Origin,
		Purpose:         req.Purpose,
		Status:          entity.AppStatusDraft,
		CreateTime:      now,
		UpdateTime:      now,
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// newApplicationCode 生成申请单业务编号
func (s *ApplicationService) newApplicationCode() string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("APP-%s-%s", s.now().Format("20060102"), short)
}

type UpdateApplicationRequest struct {
	Title   *string `json:"title"`
	Origin  *string `json:"origin"`
	Purpose *string `json:"purpose"`
	Status  *int    `json:"status"`
}

// Update 部分更新申请单
// 状态写入走状态机校验：保存、驳回、作废在这里完成，提交/审批走 Finalize
func (s *ApplicationService) Update(ctx context.Context, id uint, req UpdateApplicationRequest) (*entity.Application, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if entity.IsTerminalStatus(app.Status) {
		return nil, InvalidStateError("申请单已完成或已作废，不可修改")
	}

	fields := map[string]interface{}{
		"update_time": s.now().Format(TimeLayout),
	}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Origin != nil {
		fields["origin"] = *req.Origin
	}
	if req.Purpose != nil {
		fields["purpose"] = *req.Purpose
	}
	if req.Status != nil {
		if !entity.CanTransition(app.Status, *req.Status) {
			return nil, InvalidStateError("当前状态不可变更为目标状态")
		}
		fields["status"] = *req.Status
	}

	if err := s.appRepo.Updates(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.appRepo.GetByID(ctx, id)
}

// Delete 删除申请单，仅未提交或已作废的可删，明细级联删除
func (s *ApplicationService) Delete(ctx context.Context, id uint) error {
	app, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if app.Status != entity.AppStatusDraft && app.Status != entity.AppStatusDiscarded {
		return InvalidStateError("只有未提交或已作废的申请单可以删除")
	}
	return s.appRepo.Delete(ctx, app)
}

// ===== 明细 =====

func (s *ApplicationService) ListDetails(ctx context.Context, applicationCode string) ([]entity.ApplicationDetail, error) {
	return s.appRepo.ListDetails(ctx, applicationCode)
}

type CreateDetailRequest struct {
	ApplicationCode string  `json:"applicationCode" binding:"required"`
	MaterialCode    string  `json:"materialCode" binding:"required"`
	MaterialName    string  `json:"materialName" binding:"required"`
	Spec            string  `json:"spec"`
	Unit            string  `json:"unit" binding:"required"`
	Quantity        float64 `json:"quantity" binding:"required,gt=0"`
	Type            string  `json:"type"`
	Remark          string  `json:"remark"`
}

// CreateDetail 添加明细，父单必须处于未提交或已保存状态
func (s *ApplicationService) CreateDetail(ctx context.Context, req CreateDetailRequest) (*entity.ApplicationDetail, error) {
	if err := s.guardDetail(ctx, req.ApplicationCode, entity.ActionAddDetail,
		"只有未提交或已保存状态的申请单可以添加明细"); err != nil {
		return nil, err
	}

	detail := &entity.ApplicationDetail{
		ApplicationCode: req.ApplicationCode,
		MaterialCode:    req.MaterialCode,
		MaterialName:    req.MaterialName,
		Spec:            req.Spec,
		Unit:            req.Unit,
		Quantity:        req.Quantity,
		Type:            req.Type,
		Remark:          req.Remark,
	}
	if err := s.appRepo.CreateDetail(ctx, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

type UpdateDetailRequest struct {
	MaterialCode *string  `json:"materialCode"`
	MaterialName *string  `json:"materialName"`
	Spec         *string  `json:"spec"`
	Unit         *string  `json:"unit"`
	Quantity     *float64 `json:"quantity"`
	Type         *string  `json:"type"`
	Remark       *string  `json:"remark"`
}

// UpdateDetail 修改明细，父单必须处于未提交或已保存状态
func (s *ApplicationService) UpdateDetail(ctx context.Context, id uint, req UpdateDetailRequest) (*entity.ApplicationDetail, error) {
	detail, err := s.getDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guardDetail(ctx, detail.ApplicationCode, entity.ActionEditDetail,
		"只有未提交或已保存状态的申请单可以修改明细"); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.MaterialCode != nil {
		fields["material_code"] = *req.MaterialCode
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
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, InvalidArgumentError("数量必须大于0")
		}
		fields["quantity"] = *req.Quantity
	}
	if req.Type != nil {
		fields["type"] = *req.Type
	}
	if req.Remark != nil {
		fields["remark"] = *req.Remark
	}

	if len(fields) > 0 {
		if err := s.appRepo.UpdateDetail(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.getDetail(ctx, id)
}

// DeleteDetail 删除明细，仅未提交状态的申请单允许
func (s *ApplicationService) DeleteDetail(ctx context.Context, id uint) (*entity.ApplicationDetail, error) {
	detail, err := s.getDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guardDetail(ctx, detail.ApplicationCode, entity.ActionDeleteDetail,
		"只有未提交状态的申请单可以删除明细"); err != nil {
		return nil, err
	}
	if err := s.appRepo.DeleteDetail(ctx, id); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *ApplicationService) getDetail(ctx context.Context, id uint) (*entity.ApplicationDetail, error) {
	detail, err := s.appRepo.GetDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("明细不存在")
		}
		return nil, err
	}
	return detail, nil
}

// guardDetail 明细操作守卫：重新读取父单当前状态并查状态机表
// 不信任调用方携带的状态
func (s *ApplicationService) guardDetail(ctx context.Context, applicationCode string, action entity.AppAction, denyMsg string) error {
	app, err := s.appRepo.GetByCode(ctx, applicationCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFoundError("申请单不存在")
		}
		return err
	}
	if !entity.CanMutateDetail(action, app.Status) {
		return InvalidStateError(denyMsg)
	}
	return nil
}

// ===== 提交 / 审批 =====

// FinalizeResult 提交结果：落库后的状态以及本次产生的出入库流水
type FinalizeResult struct {
	Status int                  `json:"status"`
	Logs   []entity.MaterialLog `json:"logs"`
}

// Finalize 提交/审批申请单
// 入库单一步完成并增加库存；出库单首次提交只转待审核，审批通过时扣减库存。
// 状态更新、库存变动、流水写入在同一事务内完成，任一明细失败则整体回滚。
func (s *ApplicationService) Finalize(ctx context.Context, id uint, approver, approverNo *string) (*FinalizeResult, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("申请单不存在")
		}
		return nil, err
	}

	if !entity.CanFinalize(app.Status, app.Operation) {
		return nil, InvalidStateError("当前状态不可提交")
	}

	details, err := s.appRepo.ListDetails(ctx, app.ApplicationCode)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, EmptyRequisitionError("申请单没有物资明细")
	}

	now := s.now().Format(TimeLayout)
	targetStatus, moveStock := entity.FinalizeTarget(app.Status, app.Operation)
	logs := make([]entity.MaterialLog, 0, len(details))

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁定申请单行并复核状态，防止并发重复提交造成二次扣减
		var current entity.Application
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&current, app.ID).Error; err != nil {
			return err
		}
		if current.Status != app.Status {
			return InvalidStateError("当前状态不可提交")
		}

		fields := map[string]interface{}{
			"status":      targetStatus,
			"update_time": now,
		}
		if targetStatus == entity.AppStatusCompleted {
			fields["approver"] = approver
			fields["approver_no"] = approverNo
			fields["approve_time"] = now
		}
		if err := tx.Model(&entity.Application{}).
			Where("id = ?", app.ID).
			Updates(fields).Error; err != nil {
			return err
		}

		if !moveStock {
			return nil
		}

		for _, detail := range details {
			// 行锁串行化同一物料的并发扣减
			item, err := s.materialRepo.GetByCodeForUpdate(tx, detail.MaterialCode)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return MaterialNotFoundError(fmt.Sprintf("物料 %s 不存在", detail.MaterialCode))
				}
				return err
			}

			nextNum := item.Num
			if app.Operation == entity.OperationIn {
				nextNum += detail.Quantity
			} else {
				if detail.Quantity > item.Num {
					return InsufficientStockError(fmt.Sprintf("%s 库存不足", detail.MaterialName))
				}
				nextNum -= detail.Quantity
			}

			if err := tx.Model(&entity.MaterialStore{}).
				Where("id = ?", item.ID).
				Updates(map[string]interface{}{
					"num":         nextNum,
					"update_time": now,
				}).Error; err != nil {
				return err
			}

			log := entity.MaterialLog{
				ApplicationCode: app.ApplicationCode,
				MaterialCode:    detail.MaterialCode,
				MaterialName:    detail.MaterialName,
				Spec:            detail.Spec,
				Unit:            detail.Unit,
				Quantity:        detail.Quantity,
				Operation:       app.Operation,
				Location:        item.Location,
				Origin:          app.Origin,
				Remark:          detail.Remark,
				Time:            now,
			}
			if err := tx.Create(&log).Error; err != nil {
				return err
			}
			logs = append(logs, log)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &FinalizeResult{Status: targetStatus, Logs: logs}, nil
}
