package service

import (
	"cyberguard_backend/internal/model"
	"encoding/json"
	"testing"
)

func mustOptions(t *testing.T, opts []model.QuestionOption) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(opts)
	if err != nil {
		t.Fatalf("marshal options: %v", err)
	}
	return data
}

func TestEvaluateYesNo(t *testing.T) {
	tests := []struct {
		name          string
		correctAnswer string
		selected      []string
		wantAnswered  bool
		wantCorrect   bool
		wantFlagged   bool
	}{
		{"yes is correct by default", "", []string{"Yes"}, true, true, false},
		{"no is wrong and always flagged", "", []string{"No"}, true, false, true},
		{"case insensitive", "", []string{"yes"}, true, true, false},
		{"no can be the right answer but stays flagged", "No", []string{"No"}, true, true, true},
		{"unanswered", "", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &model.AssessmentQuestion{
				QuestionType:  model.QuestionYesNo,
				CorrectAnswer: tt.correctAnswer,
				Weight:        3,
			}
			answered, correct, flagged := evaluators[model.QuestionYesNo].Evaluate(q, AnswerInput{Selected: tt.selected})
			if answered != tt.wantAnswered || correct != tt.wantCorrect || flagged != tt.wantFlagged {
				t.Errorf("got (%v,%v,%v), want (%v,%v,%v)",
					answered, correct, flagged, tt.wantAnswered, tt.wantCorrect, tt.wantFlagged)
			}
		})
	}
}

func TestEvaluateMultipleChoice(t *testing.T) {
	options := []model.QuestionOption{
		{Label: "A", IsCorrect: true},
		{Label: "B", IsCorrect: false},
		{Label: "C", IsCorrect: true},
		{Label: "D", IsCorrect: false},
	}

	tests := []struct {
		name        string
		selected    []string
		wantCorrect bool
	}{
		{"exact match", []string{"A", "C"}, true},
		{"order does not matter", []string{"C", "A"}, true},
		{"missing one", []string{"A"}, false},
		{"extra one", []string{"A", "B", "C"}, false},
		{"all wrong", []string{"B", "D"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &model.AssessmentQuestion{
				QuestionType: model.QuestionMultipleChoice,
				Weight:       2,
			}
			q.Options = mustOptions(t, options)
			answered, correct, flagged := evaluators[model.QuestionMultipleChoice].Evaluate(q, AnswerInput{Selected: tt.selected})
			if !answered {
				t.Fatal("expected answered")
			}
			if correct != tt.wantCorrect {
				t.Errorf("correct = %v, want %v", correct, tt.wantCorrect)
			}
			if flagged == tt.wantCorrect {
				t.Errorf("flagged = %v, must be the inverse of correct", flagged)
			}
		})
	}

	t.Run("no correct options defined means never correct", func(t *testing.T) {
		q := &model.AssessmentQuestion{QuestionType: model.QuestionMultipleChoice}
		q.Options = mustOptions(t, []model.QuestionOption{{Label: "A"}, {Label: "B"}})
		_, correct, flagged := evaluators[model.QuestionMultipleChoice].Evaluate(q, AnswerInput{Selected: []string{"A"}})
		if correct || !flagged {
			t.Errorf("got correct=%v flagged=%v, want incorrect and flagged", correct, flagged)
		}
	})
}

func TestEvaluateText(t *testing.T) {
	tests := []struct {
		name          string
		correctAnswer string
		text          string
		wantAnswered  bool
		wantCorrect   bool
	}{
		{"keyword inside answer", "firewall", "Our perimeter Firewall handles that", true, true},
		{"answer inside keyword", "firewall", "fire", true, true},
		{"no match", "firewall", "we use vpn", true, false},
		{"empty expected always correct", "", "anything at all", true, true},
		{"blank answer is unanswered", "firewall", "   ", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &model.AssessmentQuestion{
				QuestionType:  model.QuestionText,
				CorrectAnswer: tt.correctAnswer,
				Weight:        3,
			}
			answered, correct, _ := evaluators[model.QuestionText].Evaluate(q, AnswerInput{Text: tt.text})
			if answered != tt.wantAnswered || correct != tt.wantCorrect {
				t.Errorf("got (%v,%v), want (%v,%v)", answered, correct, tt.wantAnswered, tt.wantCorrect)
			}
		})
	}
}

func TestEvaluateAnswerScoring(t *testing.T) {
	q := &model.AssessmentQuestion{QuestionType: model.QuestionText, CorrectAnswer: "firewall", Weight: 3}
	q.ID = 7

	r := EvaluateAnswer(q, AnswerInput{Text: "we have a firewall"})
	if r.Score != 15 || r.MaxScore != 15 {
		t.Errorf("score = %d/%d, want 15/15", r.Score, r.MaxScore)
	}
	if r.FlaggedAsRisk {
		t.Error("correct answer must not be flagged")
	}

	// 权重下限钳到 1
	q2 := &model.AssessmentQuestion{QuestionType: model.QuestionText, Weight: 0}
	r2 := EvaluateAnswer(q2, AnswerInput{Text: "x"})
	if r2.MaxScore != 5 {
		t.Errorf("maxScore = %d, want 5 (weight clamped to 1)", r2.MaxScore)
	}

	// 未知题型按未作答处理
	q3 := &model.AssessmentQuestion{QuestionType: "essay", Weight: 2}
	r3 := EvaluateAnswer(q3, AnswerInput{Text: "x"})
	if r3.Answered || r3.Score != 0 || r3.MaxScore != 10 {
		t.Errorf("unknown type: got answered=%v score=%d max=%d", r3.Answered, r3.Score, r3.MaxScore)
	}
}

func TestScoreAssessment(t *testing.T) {
	q1 := model.AssessmentQuestion{QuestionType: model.QuestionYesNo, Text: "Do you use MFA?", Domain: "Access Control", Weight: 5}
	q1.ID = 1
	q2 := model.AssessmentQuestion{QuestionType: model.QuestionText, Text: "Perimeter defence?", CorrectAnswer: "firewall", Domain: "Network", Weight: 2}
	q2.ID = 2
	q3 := model.AssessmentQuestion{QuestionType: model.QuestionYesNo, Text: "Backups encrypted?", Domain: "Data Protection", Weight: 1}
	q3.ID = 3
	questions := []model.AssessmentQuestion{q1, q2, q3}

	answers := []AnswerInput{
		{QuestionID: 1, Selected: []string{"No"}},
		{QuestionID: 2, Text: "a firewall"},
		// 第 3 题未作答
	}

	result := ScoreAssessment(questions, answers)

	// max = (5+2+1)*5 = 40，未作答也计入分母
	if result.MaxScore != 40 {
		t.Errorf("maxScore = %d, want 40", result.MaxScore)
	}
	if result.TotalScore != 10 {
		t.Errorf("totalScore = %d, want 10", result.TotalScore)
	}
	// 10/40 = 25% → Critical
	if result.Percentage != 25 {
		t.Errorf("percentage = %d, want 25", result.Percentage)
	}
	if result.MaturityLevel != model.MaturityCritical {
		t.Errorf("maturity = %s, want Critical", result.MaturityLevel)
	}

	// 答 No 的 yes_no 派生高风险（weight 5）
	if len(result.Risks) != 1 {
		t.Fatalf("risks = %d, want 1", len(result.Risks))
	}
	if result.Risks[0].QuestionID != 1 || result.Risks[0].Level != model.RiskHigh {
		t.Errorf("risk = %+v, want question 1 at High", result.Risks[0])
	}

	// 领域按名称排序
	wantDomains := []string{"Access Control", "Data Protection", "Network"}
	if len(result.DomainScores) != len(wantDomains) {
		t.Fatalf("domains = %d, want %d", len(result.DomainScores), len(wantDomains))
	}
	for i, d := range result.DomainScores {
		if d.Domain != wantDomains[i] {
			t.Errorf("domain[%d] = %s, want %s", i, d.Domain, wantDomains[i])
		}
		if d.Percentage < 0 || d.Percentage > 100 {
			t.Errorf("domain %s percentage out of range: %d", d.Domain, d.Percentage)
		}
	}
}

func TestScoreAssessmentEmpty(t *testing.T) {
	result := ScoreAssessment(nil, nil)
	if result.Percentage != 0 {
		t.Errorf("percentage = %d, want 0 when there are no questions", result.Percentage)
	}
	if result.MaturityLevel != model.MaturityCritical {
		t.Errorf("maturity = %s, want Critical", result.MaturityLevel)
	}
}

func TestMaturityForPercentage(t *testing.T) {
	tests := []struct {
		pct  int
		want model.MaturityLevel
	}{
		{100, model.MaturityExcellent},
		{90, model.MaturityExcellent},
		{89, model.MaturityHigh},
		{70, model.MaturityHigh},
		{69, model.MaturityMedium},
		{50, model.MaturityMedium},
		{49, model.MaturityLow},
		{30, model.MaturityLow},
		{29, model.MaturityCritical},
		{0, model.MaturityCritical},
	}
	for _, tt := range tests {
		if got := MaturityForPercentage(tt.pct); got != tt.want {
			t.Errorf("MaturityForPercentage(%d) = %s, want %s", tt.pct, got, tt.want)
		}
	}
}

func TestRiskLevelForWeight(t *testing.T) {
	tests := []struct {
		weight int
		want   model.RiskLevel
	}{
		{5, model.RiskHigh},
		{4, model.RiskHigh},
		{3, model.RiskMedium},
		{2, model.RiskMedium},
		{1, model.RiskLow},
	}
	for _, tt := range tests {
		if got := RiskLevelForWeight(tt.weight); got != tt.want {
			t.Errorf("RiskLevelForWeight(%d) = %s, want %s", tt.weight, got, tt.want)
		}
	}
}
