package service

import (
	"errors"
	"testing"

	"github.com/Andywugh/habit-tracker/internal/db"
)

func TestContentUpsertAndGetCategory(t *testing.T) {
	cleanup := setupHabitTestDB(t)
	defer cleanup()

	contents := NewContentService(db.DB)

	if _, err := contents.Upsert("", "hero_title", "坚持的力量"); err != nil {
		t.Fatalf("failed to upsert content: %v", err)
	}
	if _, err := contents.Upsert("general", "hero_subtitle", "每天进步一点点"); err != nil {
		t.Fatalf("failed to upsert content: %v", err)
	}

	content, err := contents.GetCategory("")
	if err != nil {
		t.Fatalf("failed to get content: %v", err)
	}
	if len(content) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(content))
	}
	if content["hero_title"] != "坚持的力量" {
		t.Fatalf("unexpected hero_title: %q", content["hero_title"])
	}
}

func TestContentUpsertOverwritesExistingKey(t *testing.T) {
	cleanup := setupHabitTestDB(t)
	defer cleanup()

	contents := NewContentService(db.DB)

	if _, err := contents.Upsert("about", "intro", "旧文案"); err != nil {
		t.Fatalf("failed to upsert content: %v", err)
	}
	record, err := contents.Upsert("about", "intro", "新文案")
	if err != nil {
		t.Fatalf("failed to overwrite content: %v", err)
	}
	if record.Value != "新文案" {
		t.Fatalf("expected overwritten value, got %q", record.Value)
	}

	var count int64
	if err := db.DB.Model(&db.AppContent{}).Where("category = ? AND key = ?", "about", "intro").Count(&count).Error; err != nil {
		t.Fatalf("failed to count content rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single row per (category, key), got %d", count)
	}
}

func TestContentCategoriesAreIsolated(t *testing.T) {
	cleanup := setupHabitTestDB(t)
	defer cleanup()

	contents := NewContentService(db.DB)

	if _, err := contents.Upsert("general", "title", "首页标题"); err != nil {
		t.Fatalf("failed to upsert content: %v", err)
	}
	if _, err := contents.Upsert("about", "title", "关于页标题"); err != nil {
		t.Fatalf("failed to upsert content: %v", err)
	}

	about, err := contents.GetCategory("about")
	if err != nil {
		t.Fatalf("failed to get content: %v", err)
	}
	if len(about) != 1 || about["title"] != "关于页标题" {
		t.Fatalf("unexpected about content: %v", about)
	}
}

func TestContentUpsertRejectsEmptyKeyOrValue(t *testing.T) {
	cleanup := setupHabitTestDB(t)
	defer cleanup()

	contents := NewContentService(db.DB)

	if _, err := contents.Upsert("general", "  ", "内容"); !errors.Is(err, ErrContentKeyRequired) {
		t.Fatalf("expected ErrContentKeyRequired for empty key, got %v", err)
	}
	if _, err := contents.Upsert("general", "title", ""); !errors.Is(err, ErrContentKeyRequired) {
		t.Fatalf("expected ErrContentKeyRequired for empty value, got %v", err)
	}
}

func TestContentGetCategoryEmptyReturnsEmptyMap(t *testing.T) {
	cleanup := setupHabitTestDB(t)
	defer cleanup()

	contents := NewContentService(db.DB)

	content, err := contents.GetCategory("missing")
	if err != nil {
		t.Fatalf("failed to get content: %v", err)
	}
	if len(content) != 0 {
		t.Fatalf("expected empty map, got %v", content)
	}
}
