package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	GinMode           string
	DatabaseURL       string
	JWTSecret         string
	InternalToken     string
	UploadDir         string
	UploadURLPath     string
	MailAPIKey        string
	MailFrom          string
	MailBaseURL       string
	SiteBaseURL       string
	EnableScheduler   bool
	DailyReminderCron string
	WeeklySummaryCron string
	AchievementCron   string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 存在 .env 文件时会先加载（本地开发用），线上环境忽略。
func Load() AppConfig {
	_ = godotenv.Load()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		databaseURL = "habit-tracker.db"
	}

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		jwtSecret = "habit-tracker-dev-secret"
	}

	uploadDir := strings.TrimSpace(os.Getenv("UPLOAD_DIR"))
	if uploadDir == "" {
		uploadDir = "web/static/uploads"
	}

	uploadURLPath := strings.TrimSpace(os.Getenv("UPLOAD_URL_PATH"))
	if uploadURLPath == "" {
		uploadURLPath = "/static/uploads"
	}

	mailFrom := strings.TrimSpace(os.Getenv("MAIL_FROM"))
	if mailFrom == "" {
		mailFrom = "习惯追踪器 <onboarding@resend.dev>"
	}

	siteBaseURL := strings.TrimSpace(os.Getenv("SITE_BASE_URL"))
	if siteBaseURL == "" {
		siteBaseURL = "http://localhost:8080"
	}

	dailyCron := strings.TrimSpace(os.Getenv("DAILY_REMINDER_CRON"))
	if dailyCron == "" {
		dailyCron = "0 9 * * *"
	}

	weeklyCron := strings.TrimSpace(os.Getenv("WEEKLY_SUMMARY_CRON"))
	if weeklyCron == "" {
		weeklyCron = "0 20 * * 0"
	}

	achievementCron := strings.TrimSpace(os.Getenv("ACHIEVEMENT_CRON"))
	if achievementCron == "" {
		achievementCron = "30 21 * * *"
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		GinMode:           ginMode,
		DatabaseURL:       databaseURL,
		JWTSecret:         jwtSecret,
		InternalToken:     strings.TrimSpace(os.Getenv("INTERNAL_API_TOKEN")),
		UploadDir:         uploadDir,
		UploadURLPath:     uploadURLPath,
		MailAPIKey:        strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
		MailFrom:          mailFrom,
		MailBaseURL:       strings.TrimSpace(os.Getenv("MAIL_BASE_URL")),
		SiteBaseURL:       siteBaseURL,
		EnableScheduler:   strings.TrimSpace(os.Getenv("DISABLE_SCHEDULER")) == "",
		DailyReminderCron: dailyCron,
		WeeklySummaryCron: weeklyCron,
		AchievementCron:   achievementCron,
	}
}
