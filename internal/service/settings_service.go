package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Andywugh/habit-tracker/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultReminderTime 是未配置时的提醒时间
const DefaultReminderTime = "09:00"

// ErrInvalidReminderTime 表示提醒时间不是 HH:MM 格式
var ErrInvalidReminderTime = errors.New("reminder time must be HH:MM")

// NotificationSettings 是带默认值语义的偏好视图：
// 数据库没有记录时，所有开关为开、提醒时间为 09:00
type NotificationSettings struct {
	UserID            uint
	DailyReminder     bool
	WeeklySummary     bool
	AchievementAlerts bool
	ReminderTime      string
}

// SettingsInput 用于更新通知偏好
type SettingsInput struct {
	DailyReminder     bool
	WeeklySummary     bool
	AchievementAlerts bool
	ReminderTime      string
}

// SettingsService 提供通知偏好的读取与更新能力。
// 派发器在每次发送前都会读取一次，保证用最新偏好过滤。
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService 构造 SettingsService
func NewSettingsService(gdb *gorm.DB) *SettingsService {
	return &SettingsService{db: gdb}
}

// Get 读取用户偏好，缺省时返回默认值而不是错误
func (s *SettingsService) Get(userID uint) (NotificationSettings, error) {
	defaults := NotificationSettings{
		UserID:            userID,
		DailyReminder:     true,
		WeeklySummary:     true,
		AchievementAlerts: true,
		ReminderTime:      DefaultReminderTime,
	}

	var record db.NotificationSetting
	if err := s.db.Where("user_id = ?", userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return defaults, nil
		}
		return defaults, fmt.Errorf("get notification settings: %w", err)
	}

	settings := NotificationSettings{
		UserID:            userID,
		DailyReminder:     record.DailyReminder,
		WeeklySummary:     record.WeeklySummary,
		AchievementAlerts: record.AchievementAlerts,
		ReminderTime:      strings.TrimSpace(record.ReminderTime),
	}
	if settings.ReminderTime == "" {
		settings.ReminderTime = DefaultReminderTime
	}

	return settings, nil
}

// Upsert 写入用户偏好，存在则整体覆盖
func (s *SettingsService) Upsert(userID uint, input SettingsInput) (NotificationSettings, error) {
	reminderTime := strings.TrimSpace(input.ReminderTime)
	if reminderTime == "" {
		reminderTime = DefaultReminderTime
	}
	if _, err := time.Parse("15:04", reminderTime); err != nil {
		return NotificationSettings{}, ErrInvalidReminderTime
	}

	record := db.NotificationSetting{
		UserID:            userID,
		DailyReminder:     input.DailyReminder,
		WeeklySummary:     input.WeeklySummary,
		AchievementAlerts: input.AchievementAlerts,
		ReminderTime:      reminderTime,
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"daily_reminder", "weekly_summary", "achievement_alerts", "reminder_time", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return NotificationSettings{}, fmt.Errorf("upsert notification settings: %w", err)
	}

	return s.Get(userID)
}
