package scheduler

import (
	"context"

	"github.com/Andywugh/habit-tracker/internal/config"
	"github.com/Andywugh/habit-tracker/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler 按 cron 表达式定时触发通知派发
type Scheduler struct {
	cron          *cron.Cron
	notifications *service.NotificationService
}

// New 注册三个定时任务：每日提醒、每周总结、成就检查
func New(cfg config.AppConfig, notifications *service.NotificationService) (*Scheduler, error) {
	s := &Scheduler{
		cron:          cron.New(),
		notifications: notifications,
	}

	jobs := []struct {
		spec  string
		event string
	}{
		{cfg.DailyReminderCron, service.EventDailyReminder},
		{cfg.WeeklySummaryCron, service.EventWeeklySummary},
		{cfg.AchievementCron, service.EventAchievementAlert},
	}

	for _, job := range jobs {
		event := job.event
		if _, err := s.cron.AddFunc(job.spec, func() {
			s.dispatch(event)
		}); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start 启动定时器，任务在各自的 goroutine 中执行
func (s *Scheduler) Start() {
	s.cron.Start()
	logrus.Info("通知定时任务已启动")
}

// Stop 停止定时器并等待正在执行的任务结束
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logrus.Info("通知定时任务已停止")
}

func (s *Scheduler) dispatch(event string) {
	summary, err := s.notifications.DispatchToAll(context.Background(), event)
	if err != nil {
		logrus.WithField("event", event).WithError(err).Error("定时派发失败")
		return
	}

	logrus.WithFields(logrus.Fields{
		"event":   summary.Event,
		"sent":    summary.Sent,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	}).Info("定时派发完成")
}
