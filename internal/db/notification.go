package db

import (
	"gorm.io/gorm"
)

// NotificationSetting 保存用户的通知偏好
// 没有记录时所有开关默认开启、提醒时间默认 09:00，由服务层补默认值
type NotificationSetting struct {
	gorm.Model
	UserID            uint `gorm:"uniqueIndex"`
	DailyReminder     bool `gorm:"default:true"`
	WeeklySummary     bool `gorm:"default:true"`
	AchievementAlerts bool `gorm:"default:true"`
	ReminderTime      string
}

// Achievement 持久化已发放的连胜里程碑
// HabitID + Milestone 唯一，保证同一里程碑只发放一次，
// 使"streak 等于里程碑"的检查在同一天内重复执行也不会重复发信
type Achievement struct {
	gorm.Model
	UserID    uint `gorm:"index"`
	HabitID   uint `gorm:"index;index:idx_achievement_unique,unique"`
	Milestone int  `gorm:"index:idx_achievement_unique,unique"`
}
