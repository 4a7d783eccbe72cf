package service

import (
	"context"
	"cyberguard_backend/internal/model"
	"cyberguard_backend/internal/repository"
	"strings"
	"testing"
)

func TestSettingGetOrDefault(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingService(repository.NewSettingRepository(db), nil)
	ctx := context.Background()

	// 未知键回落到缺省值
	if got := svc.Get(ctx, "no_such_key", "fallback"); got != "fallback" {
		t.Errorf("Get unknown key = %q, want fallback", got)
	}

	// 迁移会预置默认顾问提示词
	if got := svc.Get(ctx, model.SettingAdvisorPrompt, ""); !strings.Contains(got, "合规顾问") {
		t.Errorf("seeded advisor prompt = %q, want default prompt", got)
	}
}

func TestSettingSetOverwrites(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingService(repository.NewSettingRepository(db), nil)
	ctx := context.Background()

	if err := svc.Set(ctx, model.SettingAdvisorPrompt, "自定义提示词"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := svc.Get(ctx, model.SettingAdvisorPrompt, ""); got != "自定义提示词" {
		t.Errorf("Get after Set = %q, want 自定义提示词", got)
	}

	// 同键再写只更新同一行
	if err := svc.Set(ctx, model.SettingAdvisorPrompt, "再次覆盖"); err != nil {
		t.Fatalf("set again: %v", err)
	}
	var count int64
	db.Model(&model.Setting{}).Where("`key` = ?", model.SettingAdvisorPrompt).Count(&count)
	if count != 1 {
		t.Errorf("setting rows = %d, want 1", count)
	}
	if got := svc.Get(ctx, model.SettingAdvisorPrompt, ""); got != "再次覆盖" {
		t.Errorf("Get after second Set = %q, want 再次覆盖", got)
	}
}
