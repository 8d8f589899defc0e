package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/Andywugh/habit-tracker/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// InternalAuthRequired 校验内部令牌，通知触发接口只对定时任务与运维脚本开放
func (a *API) InternalAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if a.internalToken == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(a.internalToken)) != 1 {
			respondError(c, http.StatusUnauthorized, "未授权的内部调用")
			c.Abort()
			return
		}
		c.Next()
	}
}

// TriggerNotification 触发一次通知派发。
// 带 user_id 时只发给单个用户，否则对全部用户展开。
func (a *API) TriggerNotification(c *gin.Context) {
	var payload struct {
		Type   string `json:"type"`
		UserID uint   `json:"user_id"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	if payload.UserID != 0 {
		result, err := a.notifications.DispatchToUser(c.Request.Context(), payload.UserID, payload.Type)
		if err != nil {
			handleDispatchError(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, gin.H{
			"user_id":     result.UserID,
			"type":        result.Event,
			"state":       result.State,
			"message_ids": result.MessageIDs,
			"reason":      result.Reason,
		})
		return
	}

	summary, err := a.notifications.DispatchToAll(c.Request.Context(), payload.Type)
	if err != nil {
		handleDispatchError(c, err)
		return
	}

	failures := make([]gin.H, 0, len(summary.Failures))
	for _, f := range summary.Failures {
		logrus.WithFields(logrus.Fields{
			"user_id": f.UserID,
			"event":   summary.Event,
		}).WithError(f.Err).Warn("通知发送失败")
		failures = append(failures, gin.H{
			"user_id": f.UserID,
			"email":   f.Email,
			"error":   f.Err.Error(),
		})
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"type":     summary.Event,
		"sent":     summary.Sent,
		"skipped":  summary.Skipped,
		"failed":   summary.Failed,
		"failures": failures,
	})
}

func handleDispatchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownEvent):
		respondError(c, http.StatusBadRequest, "未知的通知事件类型")
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, "用户不存在")
	default:
		respondError(c, http.StatusInternalServerError, "通知派发失败")
	}
}
