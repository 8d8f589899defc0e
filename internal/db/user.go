package db

import (
	"gorm.io/gorm"
)

// User 定义了用户模型
// Email 作为登录凭证全局唯一，Password 存 bcrypt 哈希
// Name 用于邮件问候语，可为空（发信时会退回通用称呼）
// AvatarURL 指向上传目录下的头像文件
type User struct {
	gorm.Model
	Email     string `gorm:"uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	Name      string
	AvatarURL string
}
