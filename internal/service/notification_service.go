package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Andywugh/habit-tracker/internal/db"
	"github.com/Andywugh/habit-tracker/internal/streak"
	"gorm.io/gorm"
)

// 通知事件类型
const (
	EventWelcome          = "welcome"
	EventDailyReminder    = "daily_reminder"
	EventWeeklySummary    = "weekly_summary"
	EventAchievementAlert = "achievement_alert"
)

// ErrUnknownEvent 表示调用方传入了未定义的事件类型，属于编程错误而非数据问题
var ErrUnknownEvent = errors.New("unknown notification event type")

// DispatchState 描述单次派发的状态机阶段
type DispatchState string

const (
	StateRequested  DispatchState = "requested"
	StateFiltering  DispatchState = "filtering"
	StateCollecting DispatchState = "collecting"
	StateSending    DispatchState = "sending"
	StateSent       DispatchState = "sent"
	StateSkipped    DispatchState = "skipped"
	StateFailed     DispatchState = "failed"
)

// DispatchResult 是单个用户单次派发的结果
type DispatchResult struct {
	UserID     uint
	Event      string
	State      DispatchState
	MessageIDs []string
	Reason     string
	Err        error
}

// DispatchFailure 记录全量派发中单个用户的失败详情
type DispatchFailure struct {
	UserID uint
	Email  string
	Err    error
}

// DispatchSummary 汇总全量派发结果：部分失败以计数呈现，不使整体失败
type DispatchSummary struct {
	Event    string
	Sent     int
	Skipped  int
	Failed   int
	Failures []DispatchFailure
}

// NotificationService 是通知派发器：按事件类型过滤偏好、收集数据、交给邮件传输。
// 每次派发是一台独立的状态机：Requested → Filtering → Collecting → Sending →
// Sent/Skipped/Failed；全量模式为每个用户展开一台，互不影响，失败不自动重试。
type NotificationService struct {
	db           *gorm.DB
	users        *UserService
	habits       *HabitService
	completions  *CompletionService
	settings     *SettingsService
	analytics    *AnalyticsService
	achievements *AchievementService
	mailer       Mailer
	siteURL      string
}

// NewNotificationService 构造 NotificationService
func NewNotificationService(
	gdb *gorm.DB,
	users *UserService,
	habits *HabitService,
	completions *CompletionService,
	settings *SettingsService,
	analytics *AnalyticsService,
	achievements *AchievementService,
	mailer Mailer,
	siteURL string,
) *NotificationService {
	return &NotificationService{
		db:           gdb,
		users:        users,
		habits:       habits,
		completions:  completions,
		settings:     settings,
		analytics:    analytics,
		achievements: achievements,
		mailer:       mailer,
		siteURL:      siteURL,
	}
}

// DispatchToUser 对单个用户执行一次完整的派发状态机。
// 偏好关闭时停在 Skipped；传输失败原样携带错误返回，计算阶段没有需要回滚的副作用。
func (s *NotificationService) DispatchToUser(ctx context.Context, userID uint, event string) (DispatchResult, error) {
	result := DispatchResult{UserID: userID, Event: event, State: StateRequested}

	if !knownEvent(event) {
		result.State = StateFailed
		result.Err = fmt.Errorf("%w: %s", ErrUnknownEvent, event)
		return result, result.Err
	}

	user, err := s.users.Get(userID)
	if err != nil {
		result.State = StateFailed
		result.Err = err
		return result, err
	}

	// Filtering：发送前读取最新偏好
	result.State = StateFiltering
	settings, err := s.settings.Get(userID)
	if err != nil {
		result.State = StateFailed
		result.Err = err
		return result, err
	}
	if !eventEnabled(event, settings) {
		result.State = StateSkipped
		result.Reason = "notification disabled by user preferences"
		return result, nil
	}

	// Collecting：按事件类型收集数据并渲染邮件
	result.State = StateCollecting
	messages, skipReason, err := s.collect(user, event, time.Now())
	if err != nil {
		result.State = StateFailed
		result.Err = err
		return result, err
	}
	if len(messages) == 0 {
		result.State = StateSkipped
		result.Reason = skipReason
		return result, nil
	}

	// Sending：交给邮件传输，失败原样上抛
	result.State = StateSending
	for _, msg := range messages {
		id, err := s.mailer.Send(ctx, user.Email, msg.subject, msg.html)
		if err != nil {
			result.State = StateFailed
			result.Err = err
			return result, err
		}
		result.MessageIDs = append(result.MessageIDs, id)
	}

	result.State = StateSent
	return result, nil
}

// DispatchToAll 对全部符合条件的用户展开独立派发。
// 单个用户失败只计入汇总，不会中断或污染其他用户的派发。
func (s *NotificationService) DispatchToAll(ctx context.Context, event string) (DispatchSummary, error) {
	summary := DispatchSummary{Event: event}

	if !knownEvent(event) {
		return summary, fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	}

	users, err := s.users.ListAll()
	if err != nil {
		return summary, err
	}

	for _, user := range users {
		result, err := s.DispatchToUser(ctx, user.ID, event)
		switch {
		case err != nil:
			summary.Failed++
			summary.Failures = append(summary.Failures, DispatchFailure{UserID: user.ID, Email: user.Email, Err: err})
		case result.State == StateSkipped:
			summary.Skipped++
		default:
			summary.Sent++
		}
	}

	return summary, nil
}

type renderedMessage struct {
	subject string
	html    string
}

// collect 收集事件所需数据并渲染邮件；返回空消息列表表示本次无事可发
func (s *NotificationService) collect(user *db.User, event string, now time.Time) ([]renderedMessage, string, error) {
	name := greetingName(user)

	switch event {
	case EventWelcome:
		subject, html, err := renderWelcomeEmail(name, s.siteURL)
		if err != nil {
			return nil, "", fmt.Errorf("render welcome email: %w", err)
		}
		return []renderedMessage{{subject: subject, html: html}}, "", nil

	case EventDailyReminder:
		pending, completed, err := s.collectDailyReminder(user.ID, now)
		if err != nil {
			return nil, "", err
		}
		if len(pending) == 0 && len(completed) == 0 {
			return nil, "no habits scheduled today", nil
		}
		subject, html, err := renderDailyReminderEmail(name, s.siteURL, pending, completed)
		if err != nil {
			return nil, "", fmt.Errorf("render daily reminder: %w", err)
		}
		return []renderedMessage{{subject: subject, html: html}}, "", nil

	case EventWeeklySummary:
		rows, err := s.collectWeeklySummary(user.ID, now)
		if err != nil {
			return nil, "", err
		}
		subject, html, err := renderWeeklySummaryEmail(name, s.siteURL, rows)
		if err != nil {
			return nil, "", fmt.Errorf("render weekly summary: %w", err)
		}
		return []renderedMessage{{subject: subject, html: html}}, "", nil

	case EventAchievementAlert:
		grants, err := s.achievements.CheckUser(user.ID, now)
		if err != nil {
			return nil, "", err
		}
		if len(grants) == 0 {
			return nil, "no new achievements", nil
		}

		messages := make([]renderedMessage, 0, len(grants))
		for _, grant := range grants {
			stats, err := s.collectAchievementStats(user.ID, grant, now)
			if err != nil {
				return nil, "", err
			}
			subject, html, err := renderAchievementEmail(name, s.siteURL, grant, stats)
			if err != nil {
				return nil, "", fmt.Errorf("render achievement email: %w", err)
			}
			messages = append(messages, renderedMessage{subject: subject, html: html})
		}
		return messages, "", nil

	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnknownEvent, event)
	}
}

func (s *NotificationService) collectDailyReminder(userID uint, now time.Time) (pending, completed []reminderHabit, err error) {
	habits, err := s.habits.ListActive(userID)
	if err != nil {
		return nil, nil, err
	}

	today := normalizeToDate(now)
	logs, err := s.completions.ListForUserSince(userID, today)
	if err != nil {
		return nil, nil, err
	}

	doneToday := make(map[uint]bool, len(logs))
	for _, log := range logs {
		doneToday[log.HabitID] = true
	}

	for _, habit := range habits {
		if !ScheduledOn(habit, today.Weekday()) {
			continue
		}
		entry := reminderHabit{Name: habit.Name, Icon: habit.Icon, Completed: doneToday[habit.ID]}
		if entry.Completed {
			completed = append(completed, entry)
		} else {
			pending = append(pending, entry)
		}
	}

	return pending, completed, nil
}

func (s *NotificationService) collectWeeklySummary(userID uint, now time.Time) ([]summaryHabit, error) {
	habits, err := s.habits.ListActive(userID)
	if err != nil {
		return nil, err
	}

	weekStart := normalizeToDate(now).AddDate(0, 0, -6)
	logs, err := s.completions.ListForUserSince(userID, weekStart)
	if err != nil {
		return nil, err
	}

	rows := make([]summaryHabit, 0, len(habits))
	for _, habit := range habits {
		row := summaryHabit{Name: habit.Name, Icon: habit.Icon, Total: 7}

		var notes []string
		for _, log := range logs {
			if log.HabitID != habit.ID {
				continue
			}
			row.Completed++
			if strings.TrimSpace(log.Note) != "" {
				notes = append(notes, fmt.Sprintf("- %s %s", log.LogDate.Format("01-02"), log.Note))
			}
		}

		dates, err := s.completions.CompletedDates(habit.ID)
		if err != nil {
			return nil, err
		}
		row.Streak = streak.Current(streak.Days(dates), now)

		if len(notes) > 0 {
			html, err := renderMarkdown(strings.Join(notes, "\n"))
			if err == nil {
				row.NotesHTML = html
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func (s *NotificationService) collectAchievementStats(userID uint, grant AchievementGrant, now time.Time) (achievementStats, error) {
	overview, err := s.analytics.Overview(userID, 0, 30, now)
	if err != nil {
		return achievementStats{}, err
	}

	stats := achievementStats{
		TotalHabits:    overview.TotalHabits,
		CompletedToday: overview.CompletedToday,
		CurrentStreak:  grant.Milestone,
	}
	return stats, nil
}

// greetingName 返回邮件问候语用的称呼，资料缺名字时退回通用称呼
func greetingName(user *db.User) string {
	name := strings.TrimSpace(user.Name)
	if name == "" {
		return "用户"
	}
	return name
}

func knownEvent(event string) bool {
	switch event {
	case EventWelcome, EventDailyReminder, EventWeeklySummary, EventAchievementAlert:
		return true
	}
	return false
}

// eventEnabled 按用户偏好判定是否发送；欢迎邮件不受偏好控制
func eventEnabled(event string, settings NotificationSettings) bool {
	switch event {
	case EventWelcome:
		return true
	case EventDailyReminder:
		return settings.DailyReminder
	case EventWeeklySummary:
		return settings.WeeklySummary
	case EventAchievementAlert:
		return settings.AchievementAlerts
	}
	return false
}
