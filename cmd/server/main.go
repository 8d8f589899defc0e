package main

import (
	"github.com/Andywugh/habit-tracker/internal/config"
	"github.com/Andywugh/habit-tracker/internal/db"
	"github.com/Andywugh/habit-tracker/internal/handler"
	"github.com/Andywugh/habit-tracker/internal/router"
	"github.com/Andywugh/habit-tracker/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabaseURL); err != nil {
		logrus.WithError(err).Fatal("数据库初始化失败")
	}

	api := handler.NewAPI(db.DB, cfg)

	// 启动通知定时任务
	if cfg.EnableScheduler {
		sched, err := scheduler.New(cfg, api.Notifications())
		if err != nil {
			logrus.WithError(err).Fatal("定时任务注册失败")
		}
		sched.Start()
		defer sched.Stop()
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, cfg.UploadDir, cfg.UploadURLPath)
	logrus.WithField("addr", cfg.ListenAddr).Info("服务启动")
	if err := r.Run(cfg.ListenAddr); err != nil {
		logrus.WithError(err).Fatal("服务运行失败")
	}
}
