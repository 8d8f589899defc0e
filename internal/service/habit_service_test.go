package service

import (
	"errors"
	"testing"
	"time"

	"github.com/Andywugh/habit-tracker/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupHabitTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Habit{}, &db.HabitLog{}, &db.NotificationSetting{}, &db.Achievement{}, &db.AppContent{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestHabitServiceCreateAndList(t *testing.T) {
	cleanup := setupHabitTestDB(t)
	defer cleanup()

	svc := NewHabitService(db.DB)

	habit, err := svc.Create(1, HabitInput{
		Name:          "晨跑",
		Polarity:      PolarityPositive,
		FrequencyType: FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if habit.ID == 0 {
		t.Fatal("expected habit to have ID")
	}

	if habit.Icon == "" {
		t.Fatal("expected default icon to be assigned")
	}

	if !habit.Active {
		t.Fatal("expected new habit to be active")
	}

	habits, err := svc.List(1, HabitFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(habits) != 1 {
		t.Fatalf("expected 1 habit, got %d", len(habits))
	}

	// 其他用户看不到
	others, err := svc.List(2, HabitFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(others) != 0 {
		t.Fatalf("expected 0 habits for other user, got %d", len(others))
	}

	// 空名称不合法
	if _, err := svc.Create(1, HabitInput{Name: "  ", FrequencyType: FrequencyDaily}); !errors.Is(err, ErrHabitInvalidInput) {
		t.Fatalf("expected ErrHabitInvalidInput, got %v", err)
	}

	// weekly 但没有指定星期
	if _, err := svc.Create(1, HabitInput{Name: "游泳", FrequencyType: FrequencyWeekly}); !errors.Is(err, ErrHabitInvalidInput) {
		t.Fatalf("expected ErrHabitInvalidInput for weekly without days, got %v", err)
	}
}

func TestHabitServiceUpdateAndDeactivate(t *testing.T) {
	cleanup := setupHabitTestDB(t)
	defer cleanup()

	svc := NewHabitService(db.DB)
	habit, err := svc.Create(1, HabitInput{
		Name:          "冥想",
		FrequencyType: FrequencyDaily,
	})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	updated, err := svc.Update(habit.ID, 1, HabitInput{
		Name:          "冥想训练",
		Icon:          "🧘",
		Polarity:      PolarityPositive,
		FrequencyType: FrequencyWeekly,
		FrequencyDays: []int{1, 3, 5},
		ReminderTime:  "07:30",
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if updated.Name != "冥想训练" {
		t.Fatalf("expected name to update, got %s", updated.Name)
	}

	if updated.FrequencyType != FrequencyWeekly {
		t.Fatalf("expected frequency weekly, got %s", updated.FrequencyType)
	}

	// 归属校验
	if _, err := svc.Update(habit.ID, 2, HabitInput{Name: "别人的", FrequencyType: FrequencyDaily}); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound for other user, got %v", err)
	}

	if err := svc.Deactivate(habit.ID, 1); err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}

	active, err := svc.ListActive(1)
	if err != nil {
		t.Fatalf("ListActive returned error: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("expected 0 active habits, got %d", len(active))
	}

	all, err := svc.List(1, HabitFilter{IncludeInactive: true})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 habit including inactive, got %d", len(all))
	}
}

func TestHabitServiceHardDeleteCascadesLogs(t *testing.T) {
	cleanup := setupHabitTestDB(t)
	defer cleanup()

	habitSvc := NewHabitService(db.DB)
	habit, err := habitSvc.Create(1, HabitInput{Name: "写日记", FrequencyType: FrequencyDaily})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	logSvc := NewCompletionService(db.DB, habitSvc)
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.Local)
	if _, err := logSvc.Record(1, CompletionInput{HabitID: habit.ID, CompletedAt: base}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	if err := habitSvc.HardDelete(habit.ID, 1); err != nil {
		t.Fatalf("HardDelete returned error: %v", err)
	}

	var count int64
	if err := db.DB.Model(&db.HabitLog{}).Where("habit_id = ?", habit.ID).Count(&count).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected logs to be removed, got %d", count)
	}

	if _, err := habitSvc.Get(habit.ID, 1); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound after delete, got %v", err)
	}
}

func TestScheduledOn(t *testing.T) {
	daily := db.Habit{FrequencyType: FrequencyDaily}
	if !ScheduledOn(daily, time.Monday) || !ScheduledOn(daily, time.Sunday) {
		t.Fatal("daily habit should be scheduled every day")
	}

	weekly := db.Habit{FrequencyType: FrequencyWeekly, FrequencyDays: "1,3,5"}
	if !ScheduledOn(weekly, time.Monday) {
		t.Fatal("weekly habit should be scheduled on listed weekday")
	}
	if ScheduledOn(weekly, time.Tuesday) {
		t.Fatal("weekly habit should not be scheduled on unlisted weekday")
	}

	// custom 未配置星期时按每天处理
	custom := db.Habit{FrequencyType: FrequencyCustom}
	if !ScheduledOn(custom, time.Saturday) {
		t.Fatal("custom habit without days should fall back to daily")
	}
}
