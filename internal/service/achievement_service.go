package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/Andywugh/habit-tracker/internal/db"
	"github.com/Andywugh/habit-tracker/internal/streak"
	"gorm.io/gorm"
)

// AchievementGrant 描述一次新发放的里程碑成就
type AchievementGrant struct {
	HabitID   uint
	HabitName string
	HabitIcon string
	Milestone int
}

// AchievementService 负责检测并发放连胜里程碑。
// 已发放记录落库（habit_id+milestone 唯一），同一天重复执行检查不会重复发放。
type AchievementService struct {
	db          *gorm.DB
	habits      *HabitService
	completions *CompletionService
}

// NewAchievementService 构造 AchievementService
func NewAchievementService(gdb *gorm.DB, habits *HabitService, completions *CompletionService) *AchievementService {
	return &AchievementService{db: gdb, habits: habits, completions: completions}
}

// CheckUser 扫描用户全部排期中的习惯，返回本次新发放的成就。
// 触发条件是当前连胜恰好等于里程碑；已落库的里程碑直接跳过。
func (s *AchievementService) CheckUser(userID uint, now time.Time) ([]AchievementGrant, error) {
	habits, err := s.habits.ListActive(userID)
	if err != nil {
		return nil, err
	}

	var grants []AchievementGrant
	for _, habit := range habits {
		dates, err := s.completions.CompletedDates(habit.ID)
		if err != nil {
			return nil, err
		}

		current := streak.Current(streak.Days(dates), now)
		milestone, ok := streak.MilestoneReached(current)
		if !ok {
			continue
		}

		granted, err := s.grant(userID, habit.ID, milestone)
		if err != nil {
			return nil, err
		}
		if granted {
			grants = append(grants, AchievementGrant{
				HabitID:   habit.ID,
				HabitName: habit.Name,
				HabitIcon: habit.Icon,
				Milestone: milestone,
			})
		}
	}

	return grants, nil
}

// grant 落库一条发放记录，已存在时返回 false
func (s *AchievementService) grant(userID, habitID uint, milestone int) (bool, error) {
	var existing db.Achievement
	err := s.db.Where("habit_id = ? AND milestone = ?", habitID, milestone).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("check achievement: %w", err)
	}

	record := db.Achievement{UserID: userID, HabitID: habitID, Milestone: milestone}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("create achievement: %w", err)
	}

	return true, nil
}
