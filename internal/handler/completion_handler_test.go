package handler

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Andywugh/habit-tracker/internal/db"
	"github.com/gin-gonic/gin"
)

func seedHabit(t *testing.T, userID uint, name string) db.Habit {
	t.Helper()
	habit := db.Habit{UserID: userID, Name: name, FrequencyType: "daily", Active: true}
	if err := db.DB.Create(&habit).Error; err != nil {
		t.Fatalf("failed to seed habit: %v", err)
	}
	return habit
}

func TestRecordCompletionConflict(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	habit := seedHabit(t, 1, "晨跑")

	record := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := jsonRequest(t, http.MethodPost, "/api/habit-logs", map[string]any{
			"habit_id":     habit.ID,
			"completed_at": "2024-05-01T08:00:00+08:00",
		})
		c := authedContext(t, w, 1, req)
		api.RecordCompletion(c)
		return w
	}

	if w := record(); w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for first record, got %d (body=%s)", w.Code, w.Body.String())
	}

	// 同一天第二次打卡返回 409
	w := record()
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for duplicate, got %d", w.Code)
	}

	resp := decodeResponse(t, w)
	if resp["success"] != false {
		t.Fatalf("expected error envelope, got %v", resp)
	}
}

func TestRecordCompletionUnknownHabit(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	w := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodPost, "/api/habit-logs", map[string]any{"habit_id": 999})
	c := authedContext(t, w, 1, req)

	api.RecordCompletion(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestListCompletionsFilterByRange(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	habit := seedHabit(t, 1, "阅读")

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)
	for i := 0; i < 4; i++ {
		log := db.HabitLog{HabitID: habit.ID, UserID: 1, LogDate: base.AddDate(0, 0, i)}
		if err := db.DB.Create(&log).Error; err != nil {
			t.Fatalf("failed to seed log: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/habit-logs?start_date=2024-05-02&end_date=2024-05-03", nil)
	c := authedContext(t, w, 1, req)

	api.ListCompletions(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	resp := decodeResponse(t, w)
	data := resp["data"].(map[string]any)
	logs := data["logs"].([]any)
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs in range, got %d", len(logs))
	}
}

func TestDeleteCompletionOwnership(t *testing.T) {
	api, cleanup := setupTestDB(t)
	defer cleanup()

	habit := seedHabit(t, 1, "写作")
	log := db.HabitLog{HabitID: habit.ID, UserID: 1, LogDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local)}
	if err := db.DB.Create(&log).Error; err != nil {
		t.Fatalf("failed to seed log: %v", err)
	}

	// 其他用户删除返回 404
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/habit-logs/"+strconv.Itoa(int(log.ID)), nil)
	c := authedContext(t, w, 2, req)
	c.Params = gin.Params{gin.Param{Key: "id", Value: strconv.Itoa(int(log.ID))}}

	api.DeleteCompletion(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for other user, got %d", w.Code)
	}

	// 本人删除成功
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/api/habit-logs/"+strconv.Itoa(int(log.ID)), nil)
	c = authedContext(t, w, 1, req)
	c.Params = gin.Params{gin.Param{Key: "id", Value: strconv.Itoa(int(log.ID))}}

	api.DeleteCompletion(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}
