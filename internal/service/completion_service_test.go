package service

import (
	"errors"
	"testing"
	"time"

	"github.com/Andywugh/habit-tracker/internal/db"
)

func TestCompletionRecordAndConflict(t *testing.T) {
	cleanup := setupHabitTestDB(t)
	defer cleanup()

	habitSvc := NewHabitService(db.DB)
	habit, err := habitSvc.Create(1, HabitInput{Name: "喝水", FrequencyType: FrequencyDaily})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	svc := NewCompletionService(db.DB, habitSvc)
	morning := time.Date(2024, 5, 1, 8, 0, 0, 0, time.Local)

	record, err := svc.Record(1, CompletionInput{HabitID: habit.ID, CompletedAt: morning, Note: "起床后"})
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	if !record.LogDate.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)) {
		t.Fatalf("expected log date normalized to midnight, got %v", record.LogDate)
	}

	// 同一天再打卡，即使时刻不同也是冲突
	evening := time.Date(2024, 5, 1, 21, 30, 0, 0, time.Local)
	if _, err := svc.Record(1, CompletionInput{HabitID: habit.ID, CompletedAt: evening}); !errors.Is(err, ErrCompletionExists) {
		t.Fatalf("expected ErrCompletionExists, got %v", err)
	}

	// 第二天正常
	if _, err := svc.Record(1, CompletionInput{HabitID: habit.ID, CompletedAt: morning.AddDate(0, 0, 1)}); err != nil {
		t.Fatalf("Record next day returned error: %v", err)
	}

	// 别人的习惯不可打卡
	if _, err := svc.Record(2, CompletionInput{HabitID: habit.ID, CompletedAt: morning}); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound for other user, got %v", err)
	}
}

func TestCompletionUpdateMoveDay(t *testing.T) {
	cleanup := setupHabitTestDB(t)
	defer cleanup()

	habitSvc := NewHabitService(db.DB)
	habit, err := habitSvc.Create(1, HabitInput{Name: "阅读", FrequencyType: FrequencyDaily})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	svc := NewCompletionService(db.DB, habitSvc)
	day1 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local)
	day2 := time.Date(2024, 5, 2, 9, 0, 0, 0, time.Local)

	first, err := svc.Record(1, CompletionInput{HabitID: habit.ID, CompletedAt: day1})
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if _, err := svc.Record(1, CompletionInput{HabitID: habit.ID, CompletedAt: day2}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	// 移到已有记录的那天应冲突
	target := day2
	if _, err := svc.Update(first.ID, 1, CompletionUpdate{CompletedAt: &target}); !errors.Is(err, ErrCompletionExists) {
		t.Fatalf("expected ErrCompletionExists when moving onto occupied day, got %v", err)
	}

	// 改备注不受影响
	note := "晚间补记"
	updated, err := svc.Update(first.ID, 1, CompletionUpdate{Note: &note})
	if err != nil {
		t.Fatalf("Update note returned error: %v", err)
	}
	if updated.Note != "晚间补记" {
		t.Fatalf("expected note to update, got %s", updated.Note)
	}
}

func TestCompletionListAndDelete(t *testing.T) {
	cleanup := setupHabitTestDB(t)
	defer cleanup()

	habitSvc := NewHabitService(db.DB)
	habit, err := habitSvc.Create(1, HabitInput{Name: "散步", FrequencyType: FrequencyDaily})
	if err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}

	svc := NewCompletionService(db.DB, habitSvc)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)
	for i := 0; i < 5; i++ {
		if _, err := svc.Record(1, CompletionInput{HabitID: habit.ID, CompletedAt: base.AddDate(0, 0, i)}); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}

	logs, err := svc.List(1, CompletionFilter{HabitID: habit.ID, Start: base.AddDate(0, 0, 1), End: base.AddDate(0, 0, 3)})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("expected 3 logs in range, got %d", len(logs))
	}

	// 按日期倒序
	if !logs[0].LogDate.After(logs[1].LogDate) {
		t.Fatal("expected logs ordered newest first")
	}

	if err := svc.Delete(logs[0].ID, 1); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if err := svc.Delete(logs[0].ID, 1); !errors.Is(err, ErrCompletionNotFound) {
		t.Fatalf("expected ErrCompletionNotFound for repeated delete, got %v", err)
	}

	dates, err := svc.CompletedDates(habit.ID)
	if err != nil {
		t.Fatalf("CompletedDates returned error: %v", err)
	}
	if len(dates) != 4 {
		t.Fatalf("expected 4 remaining dates, got %d", len(dates))
	}
}
