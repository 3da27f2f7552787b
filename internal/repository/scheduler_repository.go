package repository

import (
	"context"

	"github.com/hongyan02/ehs-new/internal/entity"
	"gorm.io/gorm"
)

type SchedulerRepository struct {
	db *gorm.DB
}

func NewSchedulerRepository(db *gorm.DB) *SchedulerRepository {
	return &SchedulerRepository{db: db}
}

func (r *SchedulerRepository) List(ctx context.Context) ([]entity.SchedulerTask, error) {
	var tasks []entity.SchedulerTask
	err := r.db.WithContext(ctx).Order("id DESC").Find(&tasks).Error
	return tasks, err
}

// ListEnabled 启用且配置了cron表达式的任务，引擎启动时装载
func (r *SchedulerRepository) ListEnabled(ctx context.Context) ([]entity.SchedulerTask, error) {
	var tasks []entity.SchedulerTask
	err := r.db.WithContext(ctx).
		Where("enabled = 1 AND cron <> ''").
		Find(&tasks).Error
	return tasks, err
}

func (r *SchedulerRepository) GetByID(ctx context.Context, id uint) (*entity.SchedulerTask, error) {
	var task entity.SchedulerTask
	err := r.db.WithContext(ctx).First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *SchedulerRepository) Create(ctx context.Context, task *entity.SchedulerTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *SchedulerRepository) Updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&entity.SchedulerTask{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *SchedulerRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.SchedulerTask{}, id).Error
}

// MarkRun 记录任务最近一次执行结果
func (r *SchedulerRepository) MarkRun(ctx context.Context, id uint, runAt, status string, runErr *string) error {
	return r.db.WithContext(ctx).Model(&entity.SchedulerTask{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_run_at": runAt,
			"last_status": status,
			"last_error":  runErr,
			"updated_at":  runAt,
		}).Error
}
