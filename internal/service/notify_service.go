package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hongyan02/ehs-new/internal/entity"
	"github.com/hongyan02/ehs-new/internal/repository"
	"github.com/hongyan02/ehs-new/internal/wecom"
	"gorm.io/gorm"
)

// NotifyService 企业微信通知服务
// 面向当天值班领导发送文本提醒
type NotifyService struct {
	dutyRepo     *repository.DutyRepository
	materialRepo *repository.MaterialRepository
	client       *wecom.Client
	loc          *time.Location
	now          func() time.Time
}

func NewNotifyService(dutyRepo *repository.DutyRepository, materialRepo *repository.MaterialRepository, client *wecom.Client) *NotifyService {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		loc = time.FixedZone("CST", 8*3600)
	}
	return &NotifyService{
		dutyRepo:     dutyRepo,
		materialRepo: materialRepo,
		client:       client,
		loc:          loc,
		now:          time.Now,
	}
}

// SetClock 注入时钟，测试用
func (s *NotifyService) SetClock(now func() time.Time) {
	s.now = now
}

// today 以上海时区取当天日期
func (s *NotifyService) today() string {
	return s.now().In(s.loc).Format("2006-01-02")
}

// NotifyResult 通知发送结果
type NotifyResult struct {
	ToUser  string                     `json:"toUser"`
	Date    string                     `json:"date"`
	Shift   int                        `json:"shift"`
	AgentID int                        `json:"agentId"`
	Content string                     `json:"content"`
	MsgID   string                     `json:"msgid,omitempty"`
	Resp    *wecom.SendMessageResponse `json:"response,omitempty"`
}

// NotifyDutyLeader 给当天指定班次的值班领导发送文本消息
// content 为空时发送默认的值班提醒
func (s *NotifyService) NotifyDutyLeader(ctx context.Context, shift int, content string) (*NotifyResult, error) {
	if shift != entity.ShiftNight {
		shift = entity.ShiftDay
	}

	leader, err := s.dutyRepo.GetScheduleByDateShift(ctx, s.today(), shift)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if shift == entity.ShiftDay {
				return nil, NotFoundError("未找到当天白班值班领导排班")
			}
			return nil, NotFoundError("未找到当天夜班值班领导排班")
		}
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		shiftName := "白班"
		if shift == entity.ShiftNight {
			shiftName = "夜班"
		}
		content = strings.Join([]string{
			"【值班提醒】",
			"日期：" + leader.Date,
			"班次：" + shiftName,
			"姓名：" + leader.Name,
			"工号：" + leader.No,
		}, "\n")
	}

	toUser := strings.TrimSpace(leader.No)
	resp, err := s.client.SendText(ctx, toUser, content)
	if err != nil {
		return nil, err
	}

	return &NotifyResult{
		ToUser:  toUser,
		Date:    leader.Date,
		Shift:   shift,
		AgentID: s.client.AgentID(),
		Content: content,
		MsgID:   resp.MsgID,
		Resp:    resp,
	}, nil
}

// NotifyLowStock 库存低于预警阈值时提醒当天白班值班领导
// 没有低库存物资时不发消息
func (s *NotifyService) NotifyLowStock(ctx context.Context) (*NotifyResult, error) {
	items, err := s.materialRepo.ListBelowThreshold(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	lines := []string{"【库存预警】以下物资库存低于阈值："}
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s（%s）：当前 %.2f，阈值 %.2f",
			item.MaterialName, item.MaterialCode, item.Num, item.Threshold))
	}

	return s.NotifyDutyLeader(ctx, entity.ShiftDay, strings.Join(lines, "\n"))
}
