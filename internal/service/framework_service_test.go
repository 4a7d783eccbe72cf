package service

import (
	"cyberguard_backend/internal/model"
	"cyberguard_backend/internal/repository"
	"testing"
)

func TestComplianceScore(t *testing.T) {
	impl := model.Control{Status: model.ControlImplemented}
	partial := model.Control{Status: model.ControlPartiallyImplemented}
	missing := model.Control{Status: model.ControlNotImplemented}

	tests := []struct {
		name     string
		controls []model.Control
		want     int
	}{
		{"no controls", nil, 0},
		{"all implemented", []model.Control{impl, impl}, 100},
		{"none implemented", []model.Control{missing, missing}, 0},
		{"partial counts half", []model.Control{impl, partial}, 75},
		{"mixed rounds half up", []model.Control{impl, impl, partial, missing}, 63},
		{"single partial", []model.Control{partial}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComplianceScore(tt.controls); got != tt.want {
				t.Errorf("ComplianceScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestControlChangesRecomputeCompliance(t *testing.T) {
	db := newTestDB(t)
	svc := NewFrameworkService(repository.NewFrameworkRepository(db))

	f, err := svc.Create(1, FrameworkRequest{Name: "ISO 27001"})
	if err != nil {
		t.Fatalf("create framework: %v", err)
	}
	if f.Compliance != 0 {
		t.Errorf("initial compliance = %d, want 0", f.Compliance)
	}

	c1, err := svc.AddControl(f.ID, ControlRequest{Code: "A.5.1", Title: "信息安全策略", Status: "implemented"})
	if err != nil {
		t.Fatalf("add control: %v", err)
	}
	if _, err := svc.AddControl(f.ID, ControlRequest{Code: "A.5.2", Title: "职责分配"}); err != nil {
		t.Fatalf("add control: %v", err)
	}

	got, err := svc.Get(f.ID, 1, false)
	if err != nil {
		t.Fatalf("get framework: %v", err)
	}
	if got.Compliance != 50 {
		t.Errorf("compliance = %d, want 50 after 1/2 implemented", got.Compliance)
	}

	// 控制项更新触发重算
	if _, err := svc.UpdateControl(c1.ID, ControlRequest{Title: "信息安全策略", Status: "partially_implemented"}); err != nil {
		t.Fatalf("update control: %v", err)
	}
	got, err = svc.Get(f.ID, 1, false)
	if err != nil {
		t.Fatalf("get framework: %v", err)
	}
	if got.Compliance != 25 {
		t.Errorf("compliance = %d, want 25 after downgrade to partial", got.Compliance)
	}

	// 删除最后一项回落到 0
	if err := svc.DeleteControl(c1.ID); err != nil {
		t.Fatalf("delete control: %v", err)
	}
	got, err = svc.Get(f.ID, 1, false)
	if err != nil {
		t.Fatalf("get framework: %v", err)
	}
	if got.Compliance != 0 {
		t.Errorf("compliance = %d, want 0 with only unimplemented controls left", got.Compliance)
	}
}
