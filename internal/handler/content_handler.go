package handler

import (
	"errors"
	"net/http"

	"github.com/Andywugh/habit-tracker/internal/service"
	"github.com/gin-gonic/gin"
)

// GetContent 按分类返回界面文案，data 直接是 key 到 value 的映射。
// 该接口不需要登录，页面首屏渲染时直接拉取
func (a *API) GetContent(c *gin.Context) {
	content, err := a.content.GetCategory(c.Query("category"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "获取文案失败")
		return
	}

	respondSuccess(c, http.StatusOK, content)
}

// UpdateContent 写入一条文案，同一 (category, key) 存在时覆盖
func (a *API) UpdateContent(c *gin.Context) {
	var payload struct {
		Category string `json:"category"`
		Key      string `json:"key"`
		Value    string `json:"value"`
	}
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	record, err := a.content.Upsert(payload.Category, payload.Key, payload.Value)
	if err != nil {
		if errors.Is(err, service.ErrContentKeyRequired) {
			respondError(c, http.StatusBadRequest, "key 和 value 不能为空")
			return
		}
		respondError(c, http.StatusInternalServerError, "保存文案失败")
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"category": record.Category,
		"key":      record.Key,
		"value":    record.Value,
	})
}
