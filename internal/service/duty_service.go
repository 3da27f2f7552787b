package service

import (
	"context"
	"errors"
	"time"

	"github.com/hongyan02/ehs-new/internal/entity"
	"github.com/hongyan02/ehs-new/internal/repository"
	"gorm.io/gorm"
)

// DutyService 值班排班与值班日志服务
type DutyService struct {
	repo *repository.DutyRepository
	now  func() time.Time
}

func NewDutyService(repo *repository.DutyRepository) *DutyService {
	return &DutyService{repo: repo, now: time.Now}
}

// SetClock 注入时钟，测试用
func (s *DutyService) SetClock(now func() time.Time) {
	s.now = now
}

// ===== 排班 =====

func (s *DutyService) ListSchedules(ctx context.Context, params repository.DutyScheduleListParams) ([]entity.DutySchedule, error) {
	return s.repo.ListSchedules(ctx, params)
}

func (s *DutyService) GetSchedule(ctx context.Context, id uint) (*entity.DutySchedule, error) {
	schedule, err := s.repo.GetScheduleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("值班记录不存在")
		}
		return nil, err
	}
	return schedule, nil
}

type CreateDutyScheduleRequest struct {
	Name     string `json:"name" binding:"required"`
	No       string `json:"no" binding:"required"`
	Position string `json:"position"`
	Date     string `json:"date" binding:"required"`
	Shift    *int   `json:"shift" binding:"required,oneof=0 1"`
}

func (s *DutyService) CreateSchedule(ctx context.Context, req CreateDutyScheduleRequest) (*entity.DutySchedule, error) {
	schedule := &entity.DutySchedule{
		Name:     req.Name,
		No:       req.No,
		Position: req.Position,
		Date:     req.Date,
		Shift:    *req.Shift,
	}
	if err := s.repo.CreateSchedule(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

type UpdateDutyScheduleRequest struct {
	Name     *string `json:"name"`
	No       *string `json:"no"`
	Position *string `json:"position"`
	Date     *string `json:"date"`
	Shift    *int    `json:"shift"`
}

func (s *DutyService) UpdateSchedule(ctx context.Context, id uint, req UpdateDutyScheduleRequest) (*entity.DutySchedule, error) {
	if _, err := s.GetSchedule(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.No != nil {
		fields["no"] = *req.No
	}
	if req.Position != nil {
		fields["position"] = *req.Position
	}
	if req.Date != nil {
		fields["date"] = *req.Date
	}
	if req.Shift != nil {
		fields["shift"] = *req.Shift
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateSchedule(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.repo.GetScheduleByID(ctx, id)
}

func (s *DutyService) DeleteSchedule(ctx context.Context, id uint) error {
	if _, err := s.GetSchedule(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteSchedule(ctx, id)
}

// ===== 值班日志 =====

func (s *DutyService) ListLogs(ctx context.Context, params repository.DutyLogListParams) ([]entity.DutyLog, int64, error) {
	return s.repo.ListLogs(ctx, params)
}

func (s *DutyService) GetLog(ctx context.Context, id uint) (*entity.DutyLog, error) {
	log, err := s.repo.GetLogByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError("值班日志不存在")
		}
		return nil, err
	}
	return log, nil
}

type CreateDutyLogRequest struct {
	Name  string `json:"name" binding:"required"`
	No    string `json:"no" binding:"required"`
	Date  string `json:"date" binding:"required"`
	Shift *int   `json:"shift" binding:"required,oneof=0 1"`
	Log   string `json:"log" binding:"required"`
	Todo  string `json:"todo"`
}

func (s *DutyService) CreateLog(ctx context.Context, req CreateDutyLogRequest) (*entity.DutyLog, error) {
	now := s.now().Format(TimeLayout)
	log := &entity.DutyLog{
		Name:       req.Name,
		No:         req.No,
		Date:       req.Date,
		Shift:      *req.Shift,
		Log:        req.Log,
		Todo:       req.Todo,
		CreateTime: now,
		UpdateTime: now,
	}
	if err := s.repo.CreateLog(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}

type UpdateDutyLogRequest struct {
	Log  *string `json:"log"`
	Todo *string `json:"todo"`
}

func (s *DutyService) UpdateLog(ctx context.Context, id uint, req UpdateDutyLogRequest) (*entity.DutyLog, error) {
	if _, err := s.GetLog(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"update_time": s.now().Format(TimeLayout),
	}
	if req.Log != nil {
		fields["log"] = *req.Log
	}
	if req.Todo != nil {
		fields["todo"] = *req.Todo
	}

	if err := s.repo.UpdateLog(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetLogByID(ctx, id)
}

func (s *DutyService) DeleteLog(ctx context.Context, id uint) error {
	if _, err := s.GetLog(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteLog(ctx, id)
}

// MissingLogItem 缺报日志的排班
type MissingLogItem struct {
	Date  string `json:"date"`
	Shift int    `json:"shift"`
	Name  string `json:"name"`
	No    string `json:"no"`
}

// InspectLogs 值班日志稽查：某日期范围内排了班但没写日志的人
func (s *DutyService) InspectLogs(ctx context.Context, startDate, endDate string) ([]MissingLogItem, error) {
	if startDate == "" || endDate == "" {
		return nil, InvalidArgumentError("startDate和endDate不能为空")
	}

	missing, err := s.repo.ListMissingLogs(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	items := make([]MissingLogItem, 0, len(missing))
	for _, m := range missing {
		items = append(items, MissingLogItem{
			Date:  m.Date,
			Shift: m.Shift,
			Name:  m.Name,
			No:    m.No,
		})
	}
	return items, nil
}
