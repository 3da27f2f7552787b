package repository

import "gorm.io/gorm"

// Repositories 仓库集合
type Repositories struct {
	Application *ApplicationRepository
	Material    *MaterialRepository
	Duty        *DutyRepository
	Scheduler   *SchedulerRepository
	User        *UserRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Application: NewApplicationRepository(db),
		Material:    NewMaterialRepository(db),
		Duty:        NewDutyRepository(db),
		Scheduler:   NewSchedulerRepository(db),
		User:        NewUserRepository(db),
	}
}
