package service

import (
	"fmt"
	"time"

	"github.com/Andywugh/habit-tracker/internal/db"
	"github.com/Andywugh/habit-tracker/internal/streak"
	"gorm.io/gorm"
)

// AnalyticsService 负责把打卡记录聚合成看板与邮件需要的统计视图。
// 连胜与完成率一律走 streak 包的标准算法，不在这里另写日期循环。
type AnalyticsService struct {
	db          *gorm.DB
	habits      *HabitService
	completions *CompletionService
}

// HabitStreak 汇总单个习惯的连胜与完成率
type HabitStreak struct {
	HabitID   uint
	HabitName string
	HabitIcon string
	Current   int
	Best      int
	Rate      float64
}

// DayBucket 表示最近 7 天中某一天的聚合结果
type DayBucket struct {
	Date      time.Time
	Completed int
	Eligible  int
	Rate      float64
}

// WeekBucket 表示按周聚合的结果，Label 从最旧一周的 Week 1 开始编号
type WeekBucket struct {
	Label         string
	Start         time.Time
	End           time.Time
	Completed     int
	TotalPossible int
	Rate          float64
}

// Overview 汇总看板头部需要的总量数据
type Overview struct {
	TotalHabits    int
	CompletedToday int
	CompletionRate float64
	Streaks        []HabitStreak
}

// NewAnalyticsService 构造 AnalyticsService
func NewAnalyticsService(gdb *gorm.DB, habits *HabitService, completions *CompletionService) *AnalyticsService {
	return &AnalyticsService{db: gdb, habits: habits, completions: completions}
}

// Overview 计算用户在指定窗口内的总览统计。
// habitID 非 0 时只统计单个习惯；window 必须为正（7/30/90 之外的正整数同样接受）。
func (s *AnalyticsService) Overview(userID uint, habitID uint, window int, now time.Time) (*Overview, error) {
	if window <= 0 {
		return nil, streak.ErrInvalidWindow
	}

	habits, err := s.habits.ListActive(userID)
	if err != nil {
		return nil, err
	}
	if habitID != 0 {
		filtered := make([]db.Habit, 0, 1)
		for _, habit := range habits {
			if habit.ID == habitID {
				filtered = append(filtered, habit)
			}
		}
		habits = filtered
	}

	overview := &Overview{TotalHabits: len(habits), Streaks: make([]HabitStreak, 0, len(habits))}
	if len(habits) == 0 {
		return overview, nil
	}

	today := normalizeToDate(now)
	var rateSum float64

	for _, habit := range habits {
		dates, err := s.completions.CompletedDates(habit.ID)
		if err != nil {
			return nil, err
		}

		days := streak.Days(dates)
		rate, err := streak.Rate(days, habit.CreatedAt, now, window)
		if err != nil {
			return nil, err
		}

		for _, d := range days {
			if d.Equal(today) {
				overview.CompletedToday++
				break
			}
		}

		overview.Streaks = append(overview.Streaks, HabitStreak{
			HabitID:   habit.ID,
			HabitName: habit.Name,
			HabitIcon: habit.Icon,
			Current:   streak.Current(days, now),
			Best:      streak.Best(days),
			Rate:      rate,
		})
		rateSum += rate
	}

	overview.CompletionRate = rateSum / float64(len(habits))
	return overview, nil
}

// DailyBuckets 返回最近 7 个自然日的聚合，固定升序（最旧在前）。
// Eligible 按习惯排期计算：daily 每天计入，weekly 只在配置的星期计入。
func (s *AnalyticsService) DailyBuckets(userID uint, now time.Time) ([]DayBucket, error) {
	habits, err := s.habits.ListActive(userID)
	if err != nil {
		return nil, err
	}

	today := normalizeToDate(now)
	logs, err := s.completions.ListForUserSince(userID, today.AddDate(0, 0, -6))
	if err != nil {
		return nil, err
	}

	logged := logsByDay(logs, habits)

	buckets := make([]DayBucket, 0, 7)
	for i := 6; i >= 0; i-- {
		date := today.AddDate(0, 0, -i)

		eligible := 0
		for _, habit := range habits {
			if ScheduledOn(habit, date.Weekday()) {
				eligible++
			}
		}

		completed := len(logged[date.Unix()])
		buckets = append(buckets, DayBucket{
			Date:      date,
			Completed: completed,
			Eligible:  eligible,
			Rate:      safeRate(completed, eligible),
		})
	}

	return buckets, nil
}

// WeeklyBuckets 返回最近 weeks 周的聚合，升序，Week 1 为最旧一周。
// TotalPossible 是一周 7 天内按排期累计的习惯·日数。
func (s *AnalyticsService) WeeklyBuckets(userID uint, weeks int, now time.Time) ([]WeekBucket, error) {
	if weeks <= 0 {
		return nil, fmt.Errorf("weeks must be positive")
	}

	habits, err := s.habits.ListActive(userID)
	if err != nil {
		return nil, err
	}

	today := normalizeToDate(now)
	rangeStart := today.AddDate(0, 0, -(weeks*7 - 1))
	logs, err := s.completions.ListForUserSince(userID, rangeStart)
	if err != nil {
		return nil, err
	}

	logged := logsByDay(logs, habits)

	buckets := make([]WeekBucket, 0, weeks)
	for w := weeks - 1; w >= 0; w-- {
		end := today.AddDate(0, 0, -w*7)
		start := end.AddDate(0, 0, -6)

		completed := 0
		possible := 0
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			completed += len(logged[d.Unix()])
			for _, habit := range habits {
				if ScheduledOn(habit, d.Weekday()) {
					possible++
				}
			}
		}

		buckets = append(buckets, WeekBucket{
			Label:         fmt.Sprintf("Week %d", weeks-w),
			Start:         start,
			End:           end,
			Completed:     completed,
			TotalPossible: possible,
			Rate:          safeRate(completed, possible),
		})
	}

	return buckets, nil
}

// logsByDay 按自然日分组，只保留给定习惯集合的记录。
// 停用习惯保留的历史打卡不参与聚合，否则完成数会超过排期数。
func logsByDay(logs []db.HabitLog, habits []db.Habit) map[int64][]db.HabitLog {
	allowed := make(map[uint]bool, len(habits))
	for _, habit := range habits {
		allowed[habit.ID] = true
	}

	grouped := make(map[int64][]db.HabitLog, len(logs))
	for _, log := range logs {
		if !allowed[log.HabitID] {
			continue
		}
		key := normalizeToDate(log.LogDate).Unix()
		grouped[key] = append(grouped[key], log)
	}
	return grouped
}

// safeRate 计算百分比，分母为 0 时返回 0 而不是 NaN
func safeRate(completed, possible int) float64 {
	if possible <= 0 {
		return 0
	}
	return float64(completed) / float64(possible) * 100
}
