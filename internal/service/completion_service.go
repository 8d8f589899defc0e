package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Andywugh/habit-tracker/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrCompletionExists 表示该习惯当天已有打卡记录（冲突，不自动重试）
	ErrCompletionExists = errors.New("habit already logged for this date")
	// ErrCompletionNotFound 在记录不存在或不属于当前用户时返回
	ErrCompletionNotFound = errors.New("completion log not found")
)

// CompletionService 负责打卡记录的写入与查询。
// 每天一条的规则采用"预检查 + 存储层唯一索引"：预检查只是快路径，
// 本服务不对同一习惯同一天的并发写入做串行化，竞态最终由唯一索引裁决。
type CompletionService struct {
	db     *gorm.DB
	habits *HabitService
}

// CompletionInput 定义打卡时的输入对象
type CompletionInput struct {
	HabitID     uint
	CompletedAt time.Time
	Note        string
}

// CompletionUpdate 定义可修改的字段，nil 表示不变更
type CompletionUpdate struct {
	CompletedAt *time.Time
	Note        *string
}

// CompletionFilter 指定查询条件，HabitID 为 0 时查全部习惯
type CompletionFilter struct {
	HabitID uint
	Start   time.Time
	End     time.Time
	Limit   int
}

// NewCompletionService 构造 CompletionService
func NewCompletionService(gdb *gorm.DB, habits *HabitService) *CompletionService {
	return &CompletionService{db: gdb, habits: habits}
}

// Record 写入一条打卡：校验归属，归一化到自然日，同日已有记录返回冲突
func (s *CompletionService) Record(userID uint, input CompletionInput) (*db.HabitLog, error) {
	habit, err := s.habits.Get(input.HabitID, userID)
	if err != nil {
		return nil, err
	}

	completedAt := input.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	logDate := normalizeToDate(completedAt)

	var existing db.HabitLog
	err = s.db.Where("habit_id = ? AND log_date = ?", habit.ID, logDate).First(&existing).Error
	if err == nil {
		return nil, ErrCompletionExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check existing log: %w", err)
	}

	record := db.HabitLog{
		HabitID:     habit.ID,
		UserID:      userID,
		LogDate:     logDate,
		CompletedAt: &completedAt,
		Note:        strings.TrimSpace(input.Note),
	}

	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCompletionExists
		}
		return nil, fmt.Errorf("create habit log: %w", err)
	}

	return &record, nil
}

// Update 修改备注或打卡时间，仅限归属用户；
// 时间挪到另一天时同样受每天一条的约束
func (s *CompletionService) Update(id, userID uint, update CompletionUpdate) (*db.HabitLog, error) {
	record, err := s.get(id, userID)
	if err != nil {
		return nil, err
	}

	if update.Note != nil {
		record.Note = strings.TrimSpace(*update.Note)
	}

	if update.CompletedAt != nil {
		completedAt := *update.CompletedAt
		newDate := normalizeToDate(completedAt)

		if !newDate.Equal(record.LogDate) {
			var clash db.HabitLog
			err := s.db.Where("habit_id = ? AND log_date = ? AND id <> ?", record.HabitID, newDate, record.ID).
				First(&clash).Error
			if err == nil {
				return nil, ErrCompletionExists
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("check existing log: %w", err)
			}
		}

		record.LogDate = newDate
		record.CompletedAt = &completedAt
	}

	if err := s.db.Save(record).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCompletionExists
		}
		return nil, fmt.Errorf("update habit log: %w", err)
	}

	return record, nil
}

// Delete 删除指定打卡记录，仅限归属用户
func (s *CompletionService) Delete(id, userID uint) error {
	record, err := s.get(id, userID)
	if err != nil {
		return err
	}

	if err := s.db.Unscoped().Delete(record).Error; err != nil {
		return fmt.Errorf("delete habit log: %w", err)
	}
	return nil
}

// List 返回用户的打卡记录，按打卡日期倒序，默认最多 50 条
func (s *CompletionService) List(userID uint, filter CompletionFilter) ([]db.HabitLog, error) {
	query := s.db.Where("user_id = ?", userID)

	if filter.HabitID != 0 {
		query = query.Where("habit_id = ?", filter.HabitID)
	}
	if !filter.Start.IsZero() {
		query = query.Where("log_date >= ?", normalizeToDate(filter.Start))
	}
	if !filter.End.IsZero() {
		query = query.Where("log_date <= ?", normalizeToDate(filter.End))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var logs []db.HabitLog
	if err := query.Order("log_date DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list habit logs: %w", err)
	}

	return logs, nil
}

// CompletedDates 返回某习惯全部打卡日，供连胜计算使用
func (s *CompletionService) CompletedDates(habitID uint) ([]time.Time, error) {
	var logs []db.HabitLog
	if err := s.db.Select("log_date").
		Where("habit_id = ?", habitID).
		Order("log_date ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list completed dates: %w", err)
	}

	dates := make([]time.Time, 0, len(logs))
	for _, log := range logs {
		dates = append(dates, log.LogDate)
	}
	return dates, nil
}

// ListForUserSince 返回用户自 start 起的全部打卡记录，供聚合与邮件使用
func (s *CompletionService) ListForUserSince(userID uint, start time.Time) ([]db.HabitLog, error) {
	var logs []db.HabitLog
	if err := s.db.Where("user_id = ? AND log_date >= ?", userID, normalizeToDate(start)).
		Order("log_date ASC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list user logs: %w", err)
	}
	return logs, nil
}

func (s *CompletionService) get(id, userID uint) (*db.HabitLog, error) {
	var record db.HabitLog
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompletionNotFound
		}
		return nil, fmt.Errorf("get habit log: %w", err)
	}
	return &record, nil
}

func normalizeToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// isUniqueViolation 识别 SQLite 与 PostgreSQL 的唯一约束错误
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
