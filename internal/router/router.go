package router

import (
	"net/http"

	"github.com/Andywugh/habit-tracker/internal/handler"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, uploadDir, uploadURLPath string) *gin.Engine {
	r := gin.Default()

	// 上传的头像走静态文件服务
	if uploadURLPath != "" && uploadDir != "" {
		r.Static(uploadURLPath, uploadDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// 无需登录的认证路由
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", api.Register)
		auth.POST("/login", api.Login)
	}

	// 界面文案读取不需要登录，页面首屏直接拉取
	r.GET("/api/content", api.GetContent)

	// 内部触发路由，由定时任务和运维脚本使用
	internal := r.Group("/api/notifications")
	internal.Use(api.InternalAuthRequired())
	{
		internal.POST("/trigger", api.TriggerNotification)
	}

	// 需要认证的业务路由
	authed := r.Group("/api")
	authed.Use(api.AuthRequired())
	{
		authed.GET("/habits", api.ListHabits)
		authed.GET("/habits/:id", api.GetHabit)
		authed.POST("/habits", api.CreateHabit)
		authed.PUT("/habits/:id", api.UpdateHabit)
		authed.DELETE("/habits/:id", api.DeleteHabit)

		authed.GET("/habit-logs", api.ListCompletions)
		authed.POST("/habit-logs", api.RecordCompletion)
		authed.PUT("/habit-logs/:id", api.UpdateCompletion)
		authed.DELETE("/habit-logs/:id", api.DeleteCompletion)

		authed.GET("/stats", api.Stats)

		authed.GET("/user/notifications", api.GetNotificationSettings)
		authed.PUT("/user/notifications", api.UpdateNotificationSettings)

		authed.PUT("/content", api.UpdateContent)

		authed.POST("/upload/avatar", api.UploadAvatar)
	}

	return r
}
