package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Andywugh/habit-tracker/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrHabitNotFound 在指定习惯不存在或不属于当前用户时返回
	ErrHabitNotFound = errors.New("habit not found")
	// ErrHabitInvalidInput 当习惯字段校验失败时返回
	ErrHabitInvalidInput = errors.New("invalid habit input")
)

const (
	PolarityPositive = "positive"
	PolarityNegative = "negative"

	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
	FrequencyCustom = "custom"
)

// HabitService 负责 Habit 数据的增删改查
// 所有查询都带 user_id 条件，跨用户访问一律视为不存在
type HabitService struct {
	db *gorm.DB
}

// HabitFilter 描述列表过滤条件
type HabitFilter struct {
	IncludeInactive bool
	Polarity        string
	Search          string
}

// HabitInput 定义创建/更新习惯时可配置字段
// FrequencyDays 使用 time.Weekday 数值（0=周日），仅 weekly/custom 有意义
type HabitInput struct {
	Name           string
	Icon           string
	Polarity       string
	FrequencyType  string
	FrequencyDays  []int
	FrequencyCount int
	ReminderTime   string
}

// NewHabitService 构造 HabitService
func NewHabitService(gdb *gorm.DB) *HabitService {
	return &HabitService{db: gdb}
}

// List 返回用户的习惯集合，默认只含 active
func (s *HabitService) List(userID uint, filter HabitFilter) ([]db.Habit, error) {
	var habits []db.Habit

	query := s.db.Model(&db.Habit{}).Where("user_id = ?", userID)

	if !filter.IncludeInactive {
		query = query.Where("active = ?", true)
	}
	if filter.Polarity != "" {
		query = query.Where("polarity = ?", filter.Polarity)
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", strings.TrimSpace(filter.Search))
		query = query.Where("name LIKE ?", like)
	}

	if err := query.Order("created_at DESC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	return habits, nil
}

// ListActive 返回用户所有排期中的习惯，供统计与通知使用
func (s *HabitService) ListActive(userID uint) ([]db.Habit, error) {
	return s.List(userID, HabitFilter{})
}

// Get 根据 ID 获取习惯，并校验归属
func (s *HabitService) Get(id, userID uint) (*db.Habit, error) {
	var habit db.Habit
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&habit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return &habit, nil
}

// Create 新建习惯
func (s *HabitService) Create(userID uint, input HabitInput) (*db.Habit, error) {
	if err := validateHabitInput(input); err != nil {
		return nil, err
	}

	habit := db.Habit{
		UserID:         userID,
		Name:           strings.TrimSpace(input.Name),
		Icon:           normalizeIcon(input.Icon),
		Polarity:       normalizePolarity(input.Polarity),
		FrequencyType:  normalizeFrequencyType(input.FrequencyType),
		FrequencyDays:  encodeWeekdays(input.FrequencyDays),
		FrequencyCount: maxInt(1, input.FrequencyCount),
		ReminderTime:   strings.TrimSpace(input.ReminderTime),
		Active:         true,
	}

	if err := s.db.Create(&habit).Error; err != nil {
		return nil, fmt.Errorf("create habit: %w", err)
	}
	return &habit, nil
}

// Update 更新习惯，仅限归属用户
func (s *HabitService) Update(id, userID uint, input HabitInput) (*db.Habit, error) {
	if err := validateHabitInput(input); err != nil {
		return nil, err
	}

	existing, err := s.Get(id, userID)
	if err != nil {
		return nil, err
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Icon = normalizeIcon(input.Icon)
	existing.Polarity = normalizePolarity(input.Polarity)
	existing.FrequencyType = normalizeFrequencyType(input.FrequencyType)
	existing.FrequencyDays = encodeWeekdays(input.FrequencyDays)
	existing.FrequencyCount = maxInt(1, input.FrequencyCount)
	existing.ReminderTime = strings.TrimSpace(input.ReminderTime)

	if err := s.db.Save(existing).Error; err != nil {
		return nil, fmt.Errorf("update habit: %w", err)
	}
	return existing, nil
}

// Deactivate 软删除：置 Active=false，打卡记录保留
func (s *HabitService) Deactivate(id, userID uint) error {
	habit, err := s.Get(id, userID)
	if err != nil {
		return err
	}

	if err := s.db.Model(habit).Update("active", false).Error; err != nil {
		return fmt.Errorf("deactivate habit: %w", err)
	}
	return nil
}

// HardDelete 彻底删除习惯及其全部打卡记录
func (s *HabitService) HardDelete(id, userID uint) error {
	habit, err := s.Get(id, userID)
	if err != nil {
		return err
	}

	if err := s.db.Where("habit_id = ?", habit.ID).Delete(&db.HabitLog{}).Error; err != nil {
		return fmt.Errorf("delete habit logs: %w", err)
	}
	if err := s.db.Unscoped().Delete(habit).Error; err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	return nil
}

// ScheduledOn 判断习惯在指定星期是否排期
// daily 永远排期；weekly 按配置的星期；custom 配置了星期则按星期，否则按每天
func ScheduledOn(habit db.Habit, weekday time.Weekday) bool {
	switch habit.FrequencyType {
	case FrequencyWeekly:
		return weekdayListed(habit.FrequencyDays, weekday)
	case FrequencyCustom:
		if strings.TrimSpace(habit.FrequencyDays) == "" {
			return true
		}
		return weekdayListed(habit.FrequencyDays, weekday)
	default:
		return true
	}
}

func weekdayListed(encoded string, weekday time.Weekday) bool {
	for _, part := range strings.Split(encoded, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if value, err := strconv.Atoi(part); err == nil && value == int(weekday) {
			return true
		}
	}
	return false
}

func encodeWeekdays(days []int) string {
	parts := make([]string, 0, len(days))
	seen := make(map[int]struct{}, len(days))
	for _, d := range days {
		if d < 0 || d > 6 {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		parts = append(parts, strconv.Itoa(d))
	}
	return strings.Join(parts, ",")
}

func validateHabitInput(input HabitInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrHabitInvalidInput)
	}

	polarity := strings.TrimSpace(strings.ToLower(input.Polarity))
	if polarity != "" && polarity != PolarityPositive && polarity != PolarityNegative {
		return fmt.Errorf("%w: unsupported polarity %s", ErrHabitInvalidInput, input.Polarity)
	}

	freq := strings.TrimSpace(strings.ToLower(input.FrequencyType))
	switch freq {
	case "", FrequencyDaily, FrequencyCustom:
	case FrequencyWeekly:
		if len(input.FrequencyDays) == 0 {
			return fmt.Errorf("%w: weekly habit requires weekdays", ErrHabitInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unsupported frequency %s", ErrHabitInvalidInput, input.FrequencyType)
	}

	for _, d := range input.FrequencyDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("%w: weekday out of range", ErrHabitInvalidInput)
		}
	}

	if input.ReminderTime != "" {
		if _, err := time.Parse("15:04", strings.TrimSpace(input.ReminderTime)); err != nil {
			return fmt.Errorf("%w: reminder time must be HH:MM", ErrHabitInvalidInput)
		}
	}

	return nil
}

func normalizeIcon(icon string) string {
	icon = strings.TrimSpace(icon)
	if icon == "" {
		return "🎯"
	}
	return icon
}

func normalizePolarity(polarity string) string {
	polarity = strings.TrimSpace(strings.ToLower(polarity))
	if polarity != PolarityNegative {
		return PolarityPositive
	}
	return PolarityNegative
}

func normalizeFrequencyType(freq string) string {
	freq = strings.TrimSpace(strings.ToLower(freq))
	switch freq {
	case FrequencyWeekly, FrequencyCustom:
		return freq
	default:
		return FrequencyDaily
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
