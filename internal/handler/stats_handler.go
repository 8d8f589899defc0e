package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Andywugh/habit-tracker/internal/service"
	"github.com/Andywugh/habit-tracker/internal/streak"
	"github.com/gin-gonic/gin"
)

const (
	defaultRateWindow = 30
	weeklyBucketCount = 4
)

// Stats 返回统计看板数据：总览、近 7 天逐日聚合与近 4 周逐周聚合。
// period=daily 或 weekly 时只返回对应分组，缺省返回全部。
func (a *API) Stats(c *gin.Context) {
	userID := currentUserID(c)
	now := time.Now()

	var habitID uint
	if raw := c.Query("habit_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的习惯ID")
			return
		}
		habitID = uint(id)
	}

	window := defaultRateWindow
	if raw := c.Query("window"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, http.StatusBadRequest, "无效的统计窗口")
			return
		}
		window = parsed
	}

	overview, err := a.analytics.Overview(userID, habitID, window, now)
	if err != nil {
		if errors.Is(err, streak.ErrInvalidWindow) {
			respondError(c, http.StatusBadRequest, "无效的统计窗口")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取统计数据失败")
		return
	}

	data := gin.H{"overview": serializeOverview(overview)}
	period := c.Query("period")

	if period == "" || period == "daily" {
		daily, err := a.analytics.DailyBuckets(userID, now)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "获取统计数据失败")
			return
		}
		data["daily"] = serializeDayBuckets(daily)
	}

	if period == "" || period == "weekly" {
		weekly, err := a.analytics.WeeklyBuckets(userID, weeklyBucketCount, now)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "获取统计数据失败")
			return
		}
		data["weekly"] = serializeWeekBuckets(weekly)
	}

	respondSuccess(c, http.StatusOK, data)
}

func serializeOverview(overview *service.Overview) gin.H {
	streaks := make([]gin.H, 0, len(overview.Streaks))
	for _, s := range overview.Streaks {
		streaks = append(streaks, gin.H{
			"habit_id":        s.HabitID,
			"habit_name":      s.HabitName,
			"habit_icon":      s.HabitIcon,
			"current_streak":  s.Current,
			"best_streak":     s.Best,
			"completion_rate": s.Rate,
		})
	}
	return gin.H{
		"total_habits":    overview.TotalHabits,
		"completed_today": overview.CompletedToday,
		"completion_rate": overview.CompletionRate,
		"streaks":         streaks,
	}
}

func serializeDayBuckets(buckets []service.DayBucket) []gin.H {
	items := make([]gin.H, 0, len(buckets))
	for _, b := range buckets {
		items = append(items, gin.H{
			"date":      b.Date.Format(dateFormat),
			"completed": b.Completed,
			"eligible":  b.Eligible,
			"rate":      b.Rate,
		})
	}
	return items
}

func serializeWeekBuckets(buckets []service.WeekBucket) []gin.H {
	items := make([]gin.H, 0, len(buckets))
	for _, b := range buckets {
		items = append(items, gin.H{
			"label":          b.Label,
			"start_date":     b.Start.Format(dateFormat),
			"end_date":       b.End.Format(dateFormat),
			"completed":      b.Completed,
			"total_possible": b.TotalPossible,
			"rate":           b.Rate,
		})
	}
	return items
}
