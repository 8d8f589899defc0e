package main

import (
	"fmt"
	"log"
	"time"

	"github.com/Andywugh/habit-tracker/internal/config"
	"github.com/Andywugh/habit-tracker/internal/db"
	"golang.org/x/crypto/bcrypt"
)

// 测试数据生成器
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabaseURL); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	userID := createTestUser()
	habitIDs := createTestHabits(userID)
	createTestLogs(userID, habitIDs)
	createTestSettings(userID)

	fmt.Println("测试数据生成完成！")
	fmt.Println("用户: demo@example.com (密码: demo123)")
	fmt.Printf("习惯: %d 个，含最近 30 天打卡记录\n", len(habitIDs))
}

// 创建测试用户
func createTestUser() uint {
	var existing db.User
	if err := db.DB.Where("email = ?", "demo@example.com").First(&existing).Error; err == nil {
		fmt.Println("用户已存在，跳过创建")
		return existing.ID
	}

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("demo123"), bcrypt.DefaultCost)
	user := db.User{
		Email:    "demo@example.com",
		Password: string(hashedPassword),
		Name:     "演示用户",
	}
	db.DB.Create(&user)

	fmt.Println("✅ 测试用户创建完成")
	return user.ID
}

// 创建测试习惯
func createTestHabits(userID uint) []uint {
	var count int64
	db.DB.Model(&db.Habit{}).Where("user_id = ?", userID).Count(&count)
	if count > 0 {
		fmt.Println("习惯已存在，跳过创建")
		var habits []db.Habit
		db.DB.Where("user_id = ?", userID).Find(&habits)
		ids := make([]uint, 0, len(habits))
		for _, h := range habits {
			ids = append(ids, h.ID)
		}
		return ids
	}

	habits := []db.Habit{
		{UserID: userID, Name: "晨跑", Icon: "🏃", Polarity: "positive", FrequencyType: "daily", Active: true, ReminderTime: "07:00"},
		{UserID: userID, Name: "阅读 30 分钟", Icon: "📖", Polarity: "positive", FrequencyType: "daily", Active: true, ReminderTime: "21:00"},
		{UserID: userID, Name: "游泳", Icon: "🏊", Polarity: "positive", FrequencyType: "weekly", FrequencyDays: "1,3,5", Active: true},
		{UserID: userID, Name: "熬夜", Icon: "🌙", Polarity: "negative", FrequencyType: "daily", Active: true},
	}

	ids := make([]uint, 0, len(habits))
	for i := range habits {
		db.DB.Create(&habits[i])
		ids = append(ids, habits[i].ID)
	}

	fmt.Println("✅ 测试习惯创建完成")
	return ids
}

// 生成最近 30 天的打卡记录，留出空档让连胜和完成率有起伏
func createTestLogs(userID uint, habitIDs []uint) {
	var count int64
	db.DB.Model(&db.HabitLog{}).Where("user_id = ?", userID).Count(&count)
	if count > 0 {
		fmt.Println("打卡记录已存在，跳过创建")
		return
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for idx, habitID := range habitIDs {
		for i := 0; i < 30; i++ {
			// 每个习惯用不同的间隔制造空档
			if (i+idx)%(idx+3) == 0 {
				continue
			}
			date := today.AddDate(0, 0, -i)
			at := date.Add(8 * time.Hour)
			db.DB.Create(&db.HabitLog{
				HabitID:     habitID,
				UserID:      userID,
				LogDate:     date,
				CompletedAt: &at,
			})
		}
	}

	fmt.Println("✅ 打卡记录创建完成")
}

// 初始化通知偏好
func createTestSettings(userID uint) {
	var count int64
	db.DB.Model(&db.NotificationSetting{}).Where("user_id = ?", userID).Count(&count)
	if count > 0 {
		fmt.Println("通知设置已存在，跳过创建")
		return
	}

	db.DB.Create(&db.NotificationSetting{
		UserID:            userID,
		DailyReminder:     true,
		WeeklySummary:     true,
		AchievementAlerts: true,
		ReminderTime:      "09:00",
	})

	fmt.Println("✅ 通知设置创建完成")
}
