package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Andywugh/habit-tracker/internal/db"
	"github.com/Andywugh/habit-tracker/internal/service"
	"github.com/gin-gonic/gin"
)

type completionPayload struct {
	HabitID     uint   `json:"habit_id"`
	CompletedAt string `json:"completed_at"` // RFC3339 或 2006-01-02，可选
	Note        string `json:"note"`
}

// ListCompletions 返回当前用户的打卡记录，支持按习惯与日期区间过滤
func (a *API) ListCompletions(c *gin.Context) {
	filter := service.CompletionFilter{}

	if raw := c.Query("habit_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的习惯ID")
			return
		}
		filter.HabitID = uint(id)
	}

	if raw := c.Query("start_date"); raw != "" {
		start, err := time.ParseInLocation(dateFormat, raw, time.Local)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的开始日期")
			return
		}
		filter.Start = start
	}

	if raw := c.Query("end_date"); raw != "" {
		end, err := time.ParseInLocation(dateFormat, raw, time.Local)
		if err != nil {
			respondError(c, http.StatusBadRequest, "无效的结束日期")
			return
		}
		filter.End = end
	}

	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filter.Limit = limit
		}
	}

	logs, err := a.completions.List(currentUserID(c), filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取打卡记录失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"logs": serializeCompletions(logs)})
}

// RecordCompletion 记录一次打卡；同一习惯当天已有记录时返回 409
func (a *API) RecordCompletion(c *gin.Context) {
	var payload completionPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if payload.HabitID == 0 {
		respondError(c, http.StatusBadRequest, "请指定习惯ID")
		return
	}

	completedAt, ok := parseCompletionTime(payload.CompletedAt)
	if !ok {
		respondError(c, http.StatusBadRequest, "无效的打卡时间")
		return
	}

	record, err := a.completions.Record(currentUserID(c), service.CompletionInput{
		HabitID:     payload.HabitID,
		CompletedAt: completedAt,
		Note:        payload.Note,
	})
	if err != nil {
		handleCompletionError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"log": serializeCompletion(*record)})
}

// UpdateCompletion 修改打卡的备注或时间
func (a *API) UpdateCompletion(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的打卡记录ID")
		return
	}

	var payload struct {
		CompletedAt *string `json:"completed_at"`
		Note        *string `json:"note"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	update := service.CompletionUpdate{Note: payload.Note}
	if payload.CompletedAt != nil {
		completedAt, ok := parseCompletionTime(*payload.CompletedAt)
		if !ok || completedAt.IsZero() {
			respondError(c, http.StatusBadRequest, "无效的打卡时间")
			return
		}
		update.CompletedAt = &completedAt
	}

	record, err := a.completions.Update(id, currentUserID(c), update)
	if err != nil {
		handleCompletionError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"log": serializeCompletion(*record)})
}

// DeleteCompletion 删除单条打卡
func (a *API) DeleteCompletion(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的打卡记录ID")
		return
	}

	if err := a.completions.Delete(id, currentUserID(c)); err != nil {
		handleCompletionError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// parseCompletionTime 接受 RFC3339 或纯日期，空串表示"现在"
func parseCompletionTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, true
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(time.Local), true
	}
	if t, err := time.ParseInLocation(dateFormat, raw, time.Local); err == nil {
		return t, true
	}

	return time.Time{}, false
}

func serializeCompletions(logs []db.HabitLog) []gin.H {
	items := make([]gin.H, 0, len(logs))
	for _, log := range logs {
		items = append(items, serializeCompletion(log))
	}
	return items
}

func serializeCompletion(log db.HabitLog) gin.H {
	item := gin.H{
		"id":       log.ID,
		"habit_id": log.HabitID,
		"log_date": log.LogDate.Format(dateFormat),
		"note":     log.Note,
	}
	if log.CompletedAt != nil {
		item["completed_at"] = log.CompletedAt.Format(time.RFC3339)
	}
	return item
}

func handleCompletionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCompletionExists):
		respondError(c, http.StatusConflict, "该习惯今天已经打过卡了")
	case errors.Is(err, service.ErrCompletionNotFound):
		respondError(c, http.StatusNotFound, "打卡记录不存在")
	case errors.Is(err, service.ErrHabitNotFound):
		respondError(c, http.StatusNotFound, "习惯不存在")
	default:
		respondError(c, http.StatusInternalServerError, "操作失败")
	}
}
