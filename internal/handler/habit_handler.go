package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Andywugh/habit-tracker/internal/db"
	"github.com/Andywugh/habit-tracker/internal/service"
	"github.com/gin-gonic/gin"
)

const dateFormat = "2006-01-02"

type habitPayload struct {
	Name           string `json:"name"`
	Icon           string `json:"icon"`
	Polarity       string `json:"polarity"`
	FrequencyType  string `json:"frequency_type"`
	FrequencyDays  []int  `json:"frequency_days"`
	FrequencyCount int    `json:"frequency_count"`
	ReminderTime   string `json:"reminder_time"`
}

// ListHabits 返回当前用户的习惯列表
func (a *API) ListHabits(c *gin.Context) {
	filter := service.HabitFilter{
		IncludeInactive: c.Query("include_inactive") == "true",
		Polarity:        c.Query("polarity"),
		Search:          c.Query("search"),
	}

	habits, err := a.habits.List(currentUserID(c), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取习惯列表失败")
		return
	}

	items := make([]gin.H, 0, len(habits))
	for _, habit := range habits {
		items = append(items, habitToPayload(habit))
	}

	respondSuccess(c, http.StatusOK, gin.H{"habits": items})
}

// GetHabit 返回单个习惯详情
func (a *API) GetHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	habit, err := a.habits.Get(id, currentUserID(c))
	if err != nil {
		handleHabitError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

// CreateHabit 创建习惯
func (a *API) CreateHabit(c *gin.Context) {
	var payload habitPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	habit, err := a.habits.Create(currentUserID(c), habitInputFromPayload(payload))
	if err != nil {
		handleHabitError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

// UpdateHabit 更新习惯
func (a *API) UpdateHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	var payload habitPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	habit, err := a.habits.Update(id, currentUserID(c), habitInputFromPayload(payload))
	if err != nil {
		handleHabitError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"habit": habitToPayload(*habit)})
}

// DeleteHabit 删除习惯：默认软删除（仅停用），?hard=true 时连同打卡记录彻底删除
func (a *API) DeleteHabit(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的习惯ID")
		return
	}

	userID := currentUserID(c)

	if c.Query("hard") == "true" {
		if err := a.habits.HardDelete(id, userID); err != nil {
			handleHabitError(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, gin.H{"deleted": true, "hard": true})
		return
	}

	if err := a.habits.Deactivate(id, userID); err != nil {
		handleHabitError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": true, "hard": false})
}

func habitInputFromPayload(payload habitPayload) service.HabitInput {
	return service.HabitInput{
		Name:           payload.Name,
		Icon:           payload.Icon,
		Polarity:       payload.Polarity,
		FrequencyType:  payload.FrequencyType,
		FrequencyDays:  payload.FrequencyDays,
		FrequencyCount: payload.FrequencyCount,
		ReminderTime:   payload.ReminderTime,
	}
}

func habitToPayload(habit db.Habit) gin.H {
	days := make([]int, 0)
	for _, part := range strings.Split(habit.FrequencyDays, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if value, err := strconv.Atoi(part); err == nil {
			days = append(days, value)
		}
	}

	return gin.H{
		"id":              habit.ID,
		"name":            habit.Name,
		"icon":            habit.Icon,
		"polarity":        habit.Polarity,
		"frequency_type":  habit.FrequencyType,
		"frequency_days":  days,
		"frequency_count": habit.FrequencyCount,
		"reminder_time":   habit.ReminderTime,
		"active":          habit.Active,
		"created_at":      habit.CreatedAt.Format(dateFormat),
	}
}

func userToPayload(user *db.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"avatar_url": user.AvatarURL,
	}
}

func handleHabitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "习惯不存在")
	case errors.Is(err, service.ErrHabitInvalidInput):
		respondError(c, http.StatusBadRequest, "习惯配置无效")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
