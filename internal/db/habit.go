package db

import (
	"time"

	"gorm.io/gorm"
)

// Habit 定义了习惯模型
// Polarity 区分正向（要养成）与负向（要戒掉）习惯
// 频率通过 FrequencyType/FrequencyDays/FrequencyCount 描述：
// daily 表示每天都排期；weekly 仅在 FrequencyDays 指定的星期排期；
// custom 预留给自定义排期，当前按 daily 处理
// FrequencyDays 存逗号分隔的 time.Weekday 数值（0=周日）
// Active=false 表示软删除，打卡记录保留
type Habit struct {
	gorm.Model
	UserID         uint `gorm:"index"`
	Name           string
	Icon           string
	Polarity       string
	FrequencyType  string
	FrequencyDays  string
	FrequencyCount int
	ReminderTime   string
	Active         bool `gorm:"default:true"`
}

// HabitLog 记录习惯打卡日志
// HabitID + LogDate 采用唯一索引，作为"每天最多一条"规则的存储层兜底；
// 业务层的预检查只是快路径，并发重复请求最终由该索引裁决
// UserID 冗余存储，便于按用户聚合查询时免去关联
// CompletedAt 保存用户提交的完整时间戳，LogDate 是归一化后的自然日
type HabitLog struct {
	gorm.Model
	HabitID     uint  `gorm:"index;index:idx_habit_log_unique,unique"`
	Habit       Habit `gorm:"constraint:OnDelete:CASCADE"`
	UserID      uint  `gorm:"index"`
	LogDate     time.Time `gorm:"index:idx_habit_log_unique,unique"`
	CompletedAt *time.Time
	Note        string
}

// TableName 重写确保唯一索引作用到 habit_id + log_date
func (HabitLog) TableName() string {
	return "habit_logs"
}
