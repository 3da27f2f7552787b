package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hongyan02/ehs-new/internal/entity"
	"github.com/hongyan02/ehs-new/internal/repository"
	"gorm.io/gorm"
)

// DutySwapService 换班申请服务
type DutySwapService struct {
	repo *repository.DutyRepository
	now  func() time.Time
}

func NewDutySwapService(repo *repository.DutyRepository) *DutySwapService {
	return &DutySwapService{repo: repo, now: time.Now}
}

// SetClock 注入时钟，测试用
func (s *DutySwapService) SetClock(now func() time.Time) {
	s.now = now
}

type CreateDutySwapRequest struct {
	FromName     string `json:"from_name" binding:"required"`
	FromNo       string `json:"from_no" binding:"required"`
	FromPosition string `json:"from_position"`
	FromDate     string `json:"from_date" binding:"required"`
	FromShift    *int   `json:"from_shift" binding:"required,oneof=0 1"`
	ToName       string `json:"to_name" binding:"required"`
	ToNo         string `json:"to_no" binding:"required"`
	ToPosition   string `json:"to_position"`
	ToDate       string `json:"to_date" binding:"required"`
	ToShift      *int   `json:"to_shift" binding:"required,oneof=0 1"`
	Reason       string `json:"reason"`
}

// Create 发起换班申请，初始状态为申请中
func (s *DutySwapService) Create(ctx context.Context, req CreateDutySwapRequest) (*entity.DutySwap, error) {
	now := s.now().Format(TimeLayout)
	swap := &entity.DutySwap{
		FromName:     req.FromName,
		FromNo:       req.FromNo,
		FromPosition: req.FromPosition,
		FromDate:     req.FromDate,
		FromShift:    *req.FromShift,
		ToName:       req.ToName,
		ToNo:         req.ToNo,
		ToPosition:   req.ToPosition,
		ToDate:       req.ToDate,
		ToShift:      *req.ToShift,
		Status:       entity.SwapStatusApplying,
		Reason:       req.Reason,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateSwap(ctx, swap); err != nil {
		return nil, err
	}
	return swap, nil
}

func (s *DutySwapService) ListMine(ctx context.Context, userNo string, status *int) ([]entity.DutySwap, error) {
	if userNo == "" {
		return nil, InvalidArgumentError("user_no不能为空")
	}
	return s.repo.ListMySwaps(ctx, userNo, status)
}

func (s *DutySwapService) ListAll(ctx context.Context, status *int) ([]entity.DutySwap, error) {
	return s.repo.ListAllSwaps(ctx, status)
}

func (s *DutySwapService) get(ctx context.Context, id uint) (*entity.DutySwap, error) {
	swap, err := s.repo.GetSwapByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("换班申请不存在")
		}
		return nil, err
	}
	return swap, nil
}

// Approve 同意换班申请
// 状态更新与排班互换解耦：审批通过后由调用方发起 Swap 实际操作值班表
func (s *DutySwapService) Approve(ctx context.Context, id uint) (*entity.DutySwap, error) {
	swap, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if swap.Status != entity.SwapStatusApplying {
		return nil, InvalidStateError("只有申请中的换班申请可以审批")
	}

	if err := s.repo.UpdateSwapStatus(ctx, id, entity.SwapStatusApproved, s.now().Format(TimeLayout)); err != nil {
		return nil, err
	}
	return s.repo.GetSwapByID(ctx, id)
}

// Reject 拒绝换班申请
func (s *DutySwapService) Reject(ctx context.Context, id uint) (*entity.DutySwap, error) {
	swap, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if swap.Status != entity.SwapStatusApplying {
		return nil, InvalidStateError("只有申请中的换班申请可以审批")
	}

	if err := s.repo.UpdateSwapStatus(ctx, id, entity.SwapStatusRejected, s.now().Format(TimeLayout)); err != nil {
		return nil, err
	}
	return s.repo.GetSwapByID(ctx, id)
}

// Cancel 取消换班申请，保留记录不删除
func (s *DutySwapService) Cancel(ctx context.Context, id uint) (*entity.DutySwap, error) {
	swap, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if swap.Status != entity.SwapStatusApplying {
		return nil, InvalidStateError("只有申请中的换班申请可以取消")
	}

	if err := s.repo.UpdateSwapStatus(ctx, id, entity.SwapStatusCancelled, s.now().Format(TimeLayout)); err != nil {
		return nil, err
	}
	return s.repo.GetSwapByID(ctx, id)
}

// SwapRequest 直接互换值班（实际操作值班表）
type SwapRequest struct {
	FromNo   string `json:"from_no" binding:"required"`
	FromDate string `json:"from_date" binding:"required"`
	ToNo     string `json:"to_no" binding:"required"`
	ToDate   string `json:"to_date" binding:"required"`
	Shift    *int   `json:"shift" binding:"required,oneof=0 1"`
}

// SwapResultSide 互换结果的一侧
type SwapResultSide struct {
	ID             uint   `json:"id"`
	Date           string `json:"date"`
	OriginalPerson string `json:"originalPerson"`
	NewPerson      string `json:"newPerson"`
}

// SwapResult 互换结果
type SwapResult struct {
	From SwapResultSide `json:"from"`
	To   SwapResultSide `json:"to"`
}

// Swap 互换两个人的值班，保留各自日期，仅交换人员信息
func (s *DutySwapService) Swap(ctx context.Context, req SwapRequest) (*SwapResult, error) {
	from, err := s.repo.GetScheduleByNoDateShift(ctx, req.FromNo, req.FromDate, *req.Shift)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError(fmt.Sprintf("未找到工号%s在%s的值班记录", req.FromNo, req.FromDate))
		}
		return nil, err
	}

	to, err := s.repo.GetScheduleByNoDateShift(ctx, req.ToNo, req.ToDate, *req.Shift)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError(fmt.Sprintf("未找到工号%s在%s的值班记录", req.ToNo, req.ToDate))
		}
		return nil, err
	}

	if err := s.repo.SwapSchedulePersons(ctx, from, to); err != nil {
		return nil, err
	}

	return &SwapResult{
		From: SwapResultSide{
			ID:             from.ID,
			Date:           req.FromDate,
			OriginalPerson: from.Name,
			NewPerson:      to.Name,
		},
		To: SwapResultSide{
			ID:             to.ID,
			Date:           req.ToDate,
			OriginalPerson: to.Name,
			NewPerson:      from.Name,
		},
	}, nil
}
