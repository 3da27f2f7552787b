package service

import (
	"github.com/hongyan02/ehs-new/internal/config"
	"github.com/hongyan02/ehs-new/internal/repository"
	"github.com/hongyan02/ehs-new/internal/scheduler"
	"github.com/hongyan02/ehs-new/internal/wecom"
	"gorm.io/gorm"
)

// Services 服务集合
type Services struct {
	Auth        *AuthService
	Application *ApplicationService
	Material    *MaterialService
	Duty        *DutyService
	DutySwap    *DutySwapService
	Scheduler   *SchedulerService
	Notify      *NotifyService
}

func NewServices(repos *repository.Repositories, db *gorm.DB, engine *scheduler.Engine, wecomClient *wecom.Client, cfg *config.Config) *Services {
	return &Services{
		Auth:        NewAuthService(repos.User, cfg.JWT, cfg.IMS),
		Application: NewApplicationService(repos.Application, repos.Material, db),
		Material:    NewMaterialService(repos.Material),
		Duty:        NewDutyService(repos.Duty),
		DutySwap:    NewDutySwapService(repos.Duty),
		Scheduler:   NewSchedulerService(repos.Scheduler, engine),
		Notify:      NewNotifyService(repos.Duty, repos.Material, wecomClient),
	}
}
