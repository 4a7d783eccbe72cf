package service

import (
	"cyberguard_backend/internal/model"
	"cyberguard_backend/internal/repository"
	"cyberguard_backend/internal/util"
	"encoding/json"
	"errors"
	"testing"
)

func newAssessmentService(t *testing.T) (*AssessmentService, *repository.RiskRepository) {
	t.Helper()
	db := newTestDB(t)
	riskRepo := repository.NewRiskRepository(db)
	svc := NewAssessmentService(repository.NewAssessmentRepository(db), riskRepo, nil)
	return svc, riskRepo
}

func seedAssessment(t *testing.T, svc *AssessmentService, creatorID uint, status string) *model.Assessment {
	t.Helper()
	a, err := svc.Create(creatorID, AssessmentRequest{
		Title:  "年度安全自评",
		Status: status,
	})
	if err != nil {
		t.Fatalf("create assessment: %v", err)
	}
	return a
}

func TestSubmitScoresAndFansOutRisks(t *testing.T) {
	svc, riskRepo := newAssessmentService(t)
	a := seedAssessment(t, svc, 1, "published")

	q1, err := svc.AddQuestion(a.ID, QuestionRequest{
		QuestionType: "yes_no", Text: "是否启用 MFA？", Domain: "Access Control", Weight: 5,
	})
	if err != nil {
		t.Fatalf("add question: %v", err)
	}
	q2, err := svc.AddQuestion(a.ID, QuestionRequest{
		QuestionType: "text", Text: "边界防护手段？", CorrectAnswer: "firewall", Domain: "Network", Weight: 2,
	})
	if err != nil {
		t.Fatalf("add question: %v", err)
	}

	sub, err := svc.Submit(2, a.ID, SubmitRequest{Answers: []AnswerInput{
		{QuestionID: q1.ID, Selected: []string{"No"}},
		{QuestionID: q2.ID, Text: "firewall"},
	}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if sub.MaxScore != 35 || sub.TotalScore != 10 {
		t.Errorf("score = %d/%d, want 10/35", sub.TotalScore, sub.MaxScore)
	}
	if sub.MaturityLevel != model.MaturityCritical {
		t.Errorf("maturity = %s, want Critical", sub.MaturityLevel)
	}

	// 快照字段可以原样反解
	var risks []model.IdentifiedRisk
	if err := json.Unmarshal(sub.RisksIdentified, &risks); err != nil {
		t.Fatalf("unmarshal risks: %v", err)
	}
	if len(risks) != 1 || risks[0].Level != model.RiskHigh {
		t.Fatalf("risks = %+v, want one High risk", risks)
	}

	// 风险派发落库
	count, err := riskRepo.CountBySubmission(sub.ID)
	if err != nil {
		t.Fatalf("count risks: %v", err)
	}
	if count != 1 {
		t.Errorf("risk rows = %d, want 1", count)
	}

	// 提交后进度置为完成
	if state := svc.ProgressState(2, a.ID); state != "completed" {
		t.Errorf("progress state = %s, want completed", state)
	}
}

func TestRiskFanoutIsIdempotent(t *testing.T) {
	svc, riskRepo := newAssessmentService(t)
	a := seedAssessment(t, svc, 1, "published")

	q, err := svc.AddQuestion(a.ID, QuestionRequest{
		QuestionType: "yes_no", Text: "是否加密备份？", Domain: "Data Protection", Weight: 4,
	})
	if err != nil {
		t.Fatalf("add question: %v", err)
	}

	sub, err := svc.Submit(2, a.ID, SubmitRequest{Answers: []AnswerInput{
		{QuestionID: q.ID, Selected: []string{"No"}},
	}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// 重复派发同一提交的风险，不应产生重复行
	var risks []model.IdentifiedRisk
	if err := json.Unmarshal(sub.RisksIdentified, &risks); err != nil {
		t.Fatalf("unmarshal risks: %v", err)
	}
	svc.fanOutRisks(2, sub, risks)
	svc.fanOutRisks(2, sub, risks)

	count, err := riskRepo.CountBySubmission(sub.ID)
	if err != nil {
		t.Fatalf("count risks: %v", err)
	}
	if count != 1 {
		t.Errorf("risk rows = %d after duplicate fan-out, want 1", count)
	}
}

func TestSubmitDraftVisibility(t *testing.T) {
	svc, _ := newAssessmentService(t)
	a := seedAssessment(t, svc, 1, "")

	if _, err := svc.AddQuestion(a.ID, QuestionRequest{
		QuestionType: "yes_no", Text: "占位题", Weight: 1,
	}); err != nil {
		t.Fatalf("add question: %v", err)
	}

	// 草稿对他人不可见
	if _, err := svc.Submit(2, a.ID, SubmitRequest{Answers: nil}); !errors.Is(err, util.ErrNotVisible) {
		t.Errorf("stranger submit draft: err = %v, want ErrNotVisible", err)
	}

	// 创建者可以提交自己的草稿
	if _, err := svc.Submit(1, a.ID, SubmitRequest{Answers: nil}); err != nil {
		t.Errorf("creator submit draft: %v", err)
	}
}

func TestListSubmissionsRestrictedToCreatorAndAdmin(t *testing.T) {
	svc, _ := newAssessmentService(t)
	a := seedAssessment(t, svc, 1, "published")

	q, err := svc.AddQuestion(a.ID, QuestionRequest{
		QuestionType: "yes_no", Text: "是否有应急预案？", Weight: 2,
	})
	if err != nil {
		t.Fatalf("add question: %v", err)
	}
	if _, err := svc.Submit(2, a.ID, SubmitRequest{Answers: []AnswerInput{
		{QuestionID: q.ID, Selected: []string{"Yes"}},
	}}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// 答卷人自己不能枚举整份列表
	if _, _, err := svc.ListSubmissions(a.ID, 2, false, 1, 20); !errors.Is(err, util.ErrPermissionDenied) {
		t.Errorf("submitter list err = %v, want ErrPermissionDenied", err)
	}
	// 无关成员同样拒绝
	if _, _, err := svc.ListSubmissions(a.ID, 3, false, 1, 20); !errors.Is(err, util.ErrPermissionDenied) {
		t.Errorf("stranger list err = %v, want ErrPermissionDenied", err)
	}

	// 创建者可见
	list, total, err := svc.ListSubmissions(a.ID, 1, false, 1, 20)
	if err != nil {
		t.Fatalf("creator list: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Errorf("creator sees %d submissions, want 1", total)
	}

	// 管理员可见
	if _, total, err := svc.ListSubmissions(a.ID, 99, true, 1, 20); err != nil || total != 1 {
		t.Errorf("admin list = (%d, %v), want 1 submission", total, err)
	}
}

func TestSaveProgressMonotonic(t *testing.T) {
	svc, _ := newAssessmentService(t)
	a := seedAssessment(t, svc, 1, "published")

	p, err := svc.SaveProgress(2, a.ID, ProgressRequest{CompletionPct: 40})
	if err != nil {
		t.Fatalf("save progress: %v", err)
	}
	if p.Status != model.ProgressInProgress {
		t.Errorf("status = %s, want in_progress", p.Status)
	}

	// 重复保存更新同一条记录
	if _, err := svc.SaveProgress(2, a.ID, ProgressRequest{CompletionPct: 100}); err != nil {
		t.Fatalf("save progress again: %v", err)
	}
	got, err := svc.GetProgress(2, a.ID)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if got.Status != model.ProgressCompleted || got.CompletionPct != 100 {
		t.Errorf("progress = %s/%d, want completed/100", got.Status, got.CompletionPct)
	}

	// 完成后不允许再保存
	if _, err := svc.SaveProgress(2, a.ID, ProgressRequest{CompletionPct: 10}); !errors.Is(err, util.ErrAlreadyCompleted) {
		t.Errorf("err = %v, want ErrAlreadyCompleted", err)
	}
}

func TestQuestionValidation(t *testing.T) {
	svc, _ := newAssessmentService(t)
	a := seedAssessment(t, svc, 1, "")

	tests := []struct {
		name    string
		req     QuestionRequest
		wantErr bool
	}{
		{"valid yes_no", QuestionRequest{QuestionType: "yes_no", Text: "q", Weight: 1}, false},
		{"weight too high", QuestionRequest{QuestionType: "yes_no", Text: "q", Weight: 6}, true},
		{"weight too low", QuestionRequest{QuestionType: "yes_no", Text: "q", Weight: 0}, true},
		{"unknown type", QuestionRequest{QuestionType: "essay", Text: "q", Weight: 1}, true},
		{"choice needs options", QuestionRequest{QuestionType: "single_choice", Text: "q", Weight: 1}, true},
		{"choice with options", QuestionRequest{
			QuestionType: "single_choice", Text: "q", Weight: 1,
			Options: []model.QuestionOption{{Label: "A", IsCorrect: true}, {Label: "B"}},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddQuestion(a.ID, tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestListVisibleFiltersAssigned(t *testing.T) {
	svc, _ := newAssessmentService(t)

	seedAssessment(t, svc, 1, "published")
	if _, err := svc.Create(1, AssessmentRequest{
		Title:           "定向评估",
		Status:          "assigned",
		AssignedUserIDs: []uint{2},
	}); err != nil {
		t.Fatalf("create assigned: %v", err)
	}
	seedAssessment(t, svc, 1, "") // 草稿

	// 用户 2：已发布 + 被指派
	list, total, err := svc.List(2, false, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("user 2 sees %d, want 2", total)
	}

	// 用户 3：只有已发布
	_, total, err = svc.List(3, false, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 {
		t.Errorf("user 3 sees %d, want 1", total)
	}

	// 管理员全量
	_, total, err = svc.List(99, true, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Errorf("admin sees %d, want 3", total)
	}
}
