package repository

import (
	"context"

	"github.com/hongyan02/ehs-new/internal/entity"
	"gorm.io/gorm"
)

type DutyRepository struct {
	db *gorm.DB
}

func NewDutyRepository(db *gorm.DB) *DutyRepository {
	return &DutyRepository{db: db}
}

// ===== 值班排班 =====

// DutyScheduleListParams 排班查询条件
type DutyScheduleListParams struct {
	StartDate string
	EndDate   string
	No        string
	Shift     *int
}

func (r *DutyRepository) ListSchedules(ctx context.Context, params DutyScheduleListParams) ([]entity.DutySchedule, error) {
	query := r.db.WithContext(ctx).Model(&entity.DutySchedule{})
	if params.StartDate != "" {
		query = query.Where("date >= ?", params.StartDate)
	}
	if params.EndDate != "" {
		query = query.Where("date <= ?", params.EndDate)
	}
	if params.No != "" {
		query = query.Where("no = ?", params.No)
	}
	if params.Shift != nil {
		query = query.Where("shift = ?", *params.Shift)
	}

	var schedules []entity.DutySchedule
	err := query.Order("date ASC, shift ASC").Find(&schedules).Error
	return schedules, err
}

func (r *DutyRepository) GetScheduleByID(ctx context.Context, id uint) (*entity.DutySchedule, error) {
	var schedule entity.DutySchedule
	err := r.db.WithContext(ctx).First(&schedule, id).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// GetScheduleByDateShift 查某天某班次的排班
func (r *DutyRepository) GetScheduleByDateShift(ctx context.Context, date string, shift int) (*entity.DutySchedule, error) {
	var schedule entity.DutySchedule
	err := r.db.WithContext(ctx).
		Where("date = ? AND shift = ?", date, shift).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// GetScheduleByNoDateShift 查某人某天某班次的排班
func (r *DutyRepository) GetScheduleByNoDateShift(ctx context.Context, no, date string, shift int) (*entity.DutySchedule, error) {
	var schedule entity.DutySchedule
	err := r.db.WithContext(ctx).
		Where("no = ? AND date = ? AND shift = ?", no, date, shift).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *DutyRepository) CreateSchedule(ctx context.Context, schedule *entity.DutySchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *DutyRepository) UpdateSchedule(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&entity.DutySchedule{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *DutyRepository) DeleteSchedule(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.DutySchedule{}, id).Error
}

// SwapSchedulePersons 互换两条排班记录的人员信息（保留各自日期班次）
// 两条更新在一个事务内完成
func (r *DutyRepository) SwapSchedulePersons(ctx context.Context, from, to *entity.DutySchedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.DutySchedule{}).
			Where("id = ?", from.ID).
			Updates(map[string]interface{}{
				"name":     to.Name,
				"no":       to.No,
				"position": to.Position,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&entity.DutySchedule{}).
			Where("id = ?", to.ID).
			Updates(map[string]interface{}{
				"name":     from.Name,
				"no":       from.No,
				"position": from.Position,
			}).Error
	})
}

// ===== 值班日志 =====

// DutyLogListParams 值班日志查询条件
type DutyLogListParams struct {
	StartDate string
	EndDate   string
	Shift     *int
	Page      int
	PageSize  int
}

func (r *DutyRepository) ListLogs(ctx context.Context, params DutyLogListParams) ([]entity.DutyLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.DutyLog{})
	if params.StartDate != "" {
		query = query.Where("date >= ?", params.StartDate)
	}
	if params.EndDate != "" {
		query = query.Where("date <= ?", params.EndDate)
	}
	if params.Shift != nil {
		query = query.Where("shift = ?", *params.Shift)
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

	var logs []entity.DutyLog
	err := query.Order("date DESC, shift DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&logs).Error
	return logs, total, err
}

func (r *DutyRepository) GetLogByID(ctx context.Context, id uint) (*entity.DutyLog, error) {
	var log entity.DutyLog
	err := r.db.WithContext(ctx).First(&log, id).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *DutyRepository) CreateLog(ctx context.Context, log *entity.DutyLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *DutyRepository) UpdateLog(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&entity.DutyLog{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *DutyRepository) DeleteLog(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.DutyLog{}, id).Error
}

// ListMissingLogs 查某日期范围内排了班但未写日志的记录
func (r *DutyRepository) ListMissingLogs(ctx context.Context, startDate, endDate string) ([]entity.DutySchedule, error) {
	var missing []entity.DutySchedule
	err := r.db.WithContext(ctx).
		Model(&entity.DutySchedule{}).
		Where("date >= ? AND date <= ?", startDate, endDate).
		Where("NOT EXISTS (SELECT 1 FROM duty_log WHERE duty_log.date = duty_schedule.date AND duty_log.shift = duty_schedule.shift AND duty_log.no = duty_schedule.no)").
		Order("date ASC, shift ASC").
		Find(&missing).Error
	return missing, err
}

// ===== 换班申请 =====

func (r *DutyRepository) CreateSwap(ctx context.Context, swap *entity.DutySwap) error {
	return r.db.WithContext(ctx).Create(swap).Error
}

func (r *DutyRepository) GetSwapByID(ctx context.Context, id uint) (*entity.DutySwap, error) {
	var swap entity.DutySwap
	err := r.db.WithContext(ctx).First(&swap, id).Error
	if err != nil {
		return nil, err
	}
	return &swap, nil
}

// ListMySwaps 我发起的或换我的申请
func (r *DutyRepository) ListMySwaps(ctx context.Context, userNo string, status *int) ([]entity.DutySwap, error) {
	query := r.db.WithContext(ctx).
		Where("from_no = ? OR to_no = ?", userNo, userNo)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var swaps []entity.DutySwap
	err := query.Order("created_at DESC").Find(&swaps).Error
	return swaps, err
}

func (r *DutyRepository) ListAllSwaps(ctx context.Context, status *int) ([]entity.DutySwap, error) {
	query := r.db.WithContext(ctx).Model(&entity.DutySwap{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var swaps []entity.DutySwap
	err := query.Order("created_at DESC").Find(&swaps).Error
	return swaps, err
}

func (r *DutyRepository) UpdateSwapStatus(ctx context.Context, id uint, status int, updatedAt string) error {
	return r.db.WithContext(ctx).Model(&entity.DutySwap{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": updatedAt,
		}).Error
}
