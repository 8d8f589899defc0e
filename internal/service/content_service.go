package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Andywugh/habit-tracker/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultContentCategory 是未指定分类时使用的默认分类
const DefaultContentCategory = "general"

// ErrContentKeyRequired 表示写入文案时缺少 key 或 value
var ErrContentKeyRequired = errors.New("content key and value are required")

// ContentService 提供界面文案的读取与在线编辑能力。
// 文案按 (category, key) 定位，前端按分类一次性拉取整组文案。
type ContentService struct {
	db *gorm.DB
}

// NewContentService 构造 ContentService
func NewContentService(gdb *gorm.DB) *ContentService {
	return &ContentService{db: gdb}
}

// GetCategory 读取某个分类下的全部文案，返回 key 到 value 的映射。
// 分类为空时使用默认分类；分类下没有记录时返回空映射而不是错误
func (s *ContentService) GetCategory(category string) (map[string]string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultContentCategory
	}

	var records []db.AppContent
	if err := s.db.Where("category = ?", category).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list app content: %w", err)
	}

	content := make(map[string]string, len(records))
	for _, record := range records {
		content[record.Key] = record.Value
	}

	return content, nil
}

// Upsert 写入一条文案，同一 (category, key) 存在时覆盖 value
func (s *ContentService) Upsert(category, key, value string) (*db.AppContent, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultContentCategory
	}
	key = strings.TrimSpace(key)
	if key == "" || value == "" {
		return nil, ErrContentKeyRequired
	}

	record := db.AppContent{
		Category: category,
		Key:      key,
		Value:    value,
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("upsert app content: %w", err)
	}

	var saved db.AppContent
	if err := s.db.Where("category = ? AND key = ?", category, key).First(&saved).Error; err != nil {
		return nil, fmt.Errorf("reload app content: %w", err)
	}

	return &saved, nil
}
