package service

import (
	"testing"
	"time"

	"github.com/Andywugh/habit-tracker/internal/db"
)

func recordStreak(t *testing.T, svc *CompletionService, habitID uint, now time.Time, days int) {
	t.Helper()
	for i := 0; i < days; i++ {
		at := now.AddDate(0, 0, -i)
		if _, err := svc.Record(1, CompletionInput{HabitID: habitID, CompletedAt: at}); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}
}

func TestAchievementCheckGrantsAtMilestone(t *testing.T) {
	cleanup := setupHabitTestDB(t)
	defer cleanup()

	habits := NewHabitService(db.DB)
	completions := NewCompletionService(db.DB, habits)
	svc := NewAchievementService(db.DB, habits, completions)

	habit, err := habits.Create(1, HabitInput{Name: "早睡", FrequencyType: FrequencyDaily})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	now := time.Date(2024, 5, 10, 22, 0, 0, 0, time.Local)

	// 连胜 6 天，未到里程碑
	recordStreak(t, completions, habit.ID, now, 6)
	grants, err := svc.CheckUser(1, now)
	if err != nil {
		t.Fatalf("CheckUser returned error: %v", err)
	}
	if len(grants) != 0 {
		t.Fatalf("expected no grants at streak 6, got %d", len(grants))
	}

	// 第 7 天触发 7 天里程碑
	if _, err := completions.Record(1, CompletionInput{HabitID: habit.ID, CompletedAt: now.AddDate(0, 0, -6)}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	grants, err = svc.CheckUser(1, now)
	if err != nil {
		t.Fatalf("CheckUser returned error: %v", err)
	}
	if len(grants) != 1 || grants[0].Milestone != 7 {
		t.Fatalf("expected single 7-day grant, got %+v", grants)
	}

	// 同一天重复检查不重复发放
	grants, err = svc.CheckUser(1, now)
	if err != nil {
		t.Fatalf("CheckUser returned error: %v", err)
	}
	if len(grants) != 0 {
		t.Fatalf("expected no duplicate grant, got %+v", grants)
	}

	// 连胜 8 天，超过里程碑但不等于，不发放
	if _, err := completions.Record(1, CompletionInput{HabitID: habit.ID, CompletedAt: now.AddDate(0, 0, -7)}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	grants, err = svc.CheckUser(1, now)
	if err != nil {
		t.Fatalf("CheckUser returned error: %v", err)
	}
	if len(grants) != 0 {
		t.Fatalf("expected no grant at streak 8, got %+v", grants)
	}

	var persisted int64
	if err := db.DB.Model(&db.Achievement{}).Where("habit_id = ?", habit.ID).Count(&persisted).Error; err != nil {
		t.Fatalf("count achievements: %v", err)
	}
	if persisted != 1 {
		t.Fatalf("expected 1 persisted achievement, got %d", persisted)
	}
}
