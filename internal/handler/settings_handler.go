package handler

import (
	"errors"
	"net/http"

	"github.com/Andywugh/habit-tracker/internal/service"
	"github.com/gin-gonic/gin"
)

// GetNotificationSettings 返回当前用户的通知偏好，未设置过时返回默认值
func (a *API) GetNotificationSettings(c *gin.Context) {
	settings, err := a.settings.Get(currentUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取通知设置失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"settings": serializeSettings(settings)})
}

// UpdateNotificationSettings 整体覆盖通知偏好
func (a *API) UpdateNotificationSettings(c *gin.Context) {
	var payload struct {
		DailyReminder     bool   `json:"daily_reminder"`
		WeeklySummary     bool   `json:"weekly_summary"`
		AchievementAlerts bool   `json:"achievement_alerts"`
		ReminderTime      string `json:"reminder_time"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	settings, err := a.settings.Upsert(currentUserID(c), service.SettingsInput{
		DailyReminder:     payload.DailyReminder,
		WeeklySummary:     payload.WeeklySummary,
		AchievementAlerts: payload.AchievementAlerts,
		ReminderTime:      payload.ReminderTime,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidReminderTime) {
			respondError(c, http.StatusBadRequest, "提醒时间格式应为 HH:MM")
			return
		}
		respondError(c, http.StatusInternalServerError, "保存通知设置失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"settings": serializeSettings(settings)})
}

func serializeSettings(settings service.NotificationSettings) gin.H {
	return gin.H{
		"daily_reminder":     settings.DailyReminder,
		"weekly_summary":     settings.WeeklySummary,
		"achievement_alerts": settings.AchievementAlerts,
		"reminder_time":      settings.ReminderTime,
	}
}
