package db

import "gorm.io/gorm"

// AppContent 是可在线编辑的界面文案配置，按 (category, key) 唯一
type AppContent struct {
	gorm.Model
	Category string `gorm:"index:idx_app_content_unique,unique;not null;default:general"`
	Key      string `gorm:"index:idx_app_content_unique,unique;not null"`
	Value    string `gorm:"type:text"`
}

// TableName 指定表名
func (AppContent) TableName() string {
	return "app_contents"
}
