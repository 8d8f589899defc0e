package handler

import (
	"github.com/Andywugh/habit-tracker/internal/config"
	"github.com/Andywugh/habit-tracker/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db            *gorm.DB
	users         *service.UserService
	habits        *service.HabitService
	completions   *service.CompletionService
	settings      *service.SettingsService
	analytics     *service.AnalyticsService
	notifications *service.NotificationService
	content       *service.ContentService
	jwtSecret     string
	internalToken string
	uploadDir     string
	uploadURL     string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig) *API {
	users := service.NewUserService(gdb)
	habits := service.NewHabitService(gdb)
	completions := service.NewCompletionService(gdb, habits)
	settings := service.NewSettingsService(gdb)
	analytics := service.NewAnalyticsService(gdb, habits, completions)
	achievements := service.NewAchievementService(gdb, habits, completions)
	mailer := service.NewMailClient(cfg.MailAPIKey, cfg.MailFrom, cfg.MailBaseURL)
	notifications := service.NewNotificationService(
		gdb, users, habits, completions, settings, analytics, achievements, mailer, cfg.SiteBaseURL)
	content := service.NewContentService(gdb)

	return &API{
		db:            gdb,
		users:         users,
		habits:        habits,
		completions:   completions,
		settings:      settings,
		analytics:     analytics,
		notifications: notifications,
		content:       content,
		jwtSecret:     cfg.JWTSecret,
		internalToken: cfg.InternalToken,
		uploadDir:     cfg.UploadDir,
		uploadURL:     cfg.UploadURLPath,
	}
}

// Notifications exposes the dispatcher for the cron scheduler.
func (a *API) Notifications() *service.NotificationService {
	return a.notifications
}

// DB exposes the underlying gorm instance for tests.
func (a *API) DB() *gorm.DB {
	return a.db
}
