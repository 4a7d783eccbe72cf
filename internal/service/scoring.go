package service

import (
	"cyberguard_backend/internal/model"
	"math"
	"sort"
	"strings"
)

// 每道题的得分上限是权重的 5 倍
const scorePerWeight = 5

// AnswerInput 用户对单题的作答
type AnswerInput struct {
	QuestionID uint     `json:"questionId"`
	Selected   []string `json:"selected,omitempty"`
	Text       string   `json:"text,omitempty"`
}

// ScoreResult 一次评估的完整判分结果
type ScoreResult struct {
	Answers       []model.AnswerResult   `json:"answers"`
	DomainScores  []model.DomainScore    `json:"domainScores"`
	Risks         []model.IdentifiedRisk `json:"risks"`
	TotalScore    int                    `json:"totalScore"`
	MaxScore      int                    `json:"maxScore"`
	Percentage    int                    `json:"percentage"`
	MaturityLevel model.MaturityLevel    `json:"maturityLevel"`
}

// questionEvaluator 按题型判分。answered=false 时 correct/flagged 恒为 false。
type questionEvaluator interface {
	Evaluate(q *model.AssessmentQuestion, a AnswerInput) (answered, correct, flagged bool)
}

var evaluators = map[model.QuestionType]questionEvaluator{
	model.QuestionYesNo:          yesNoEvaluator{},
	model.QuestionSingleChoice:   singleChoiceEvaluator{},
	model.QuestionMultipleChoice: multipleChoiceEvaluator{},
	model.QuestionText:           textEvaluator{},
}

// yesNoEvaluator 对照存储的正确选项（缺省 "Yes"）；
// 答 "No" 无论对错一律标记为风险。
type yesNoEvaluator struct{}

func (yesNoEvaluator) Evaluate(q *model.AssessmentQuestion, a AnswerInput) (bool, bool, bool) {
	if len(a.Selected) == 0 {
		return false, false, false
	}
	expected := q.CorrectAnswer
	if expected == "" {
		expected = "Yes"
	}
	chosen := a.Selected[0]
	correct := strings.EqualFold(chosen, expected)
	flagged := strings.EqualFold(chosen, "No")
	return true, correct, flagged
}

// singleChoiceEvaluator 取所选选项的 isCorrect 标记，选错即风险
type singleChoiceEvaluator struct{}

func (singleChoiceEvaluator) Evaluate(q *model.AssessmentQuestion, a AnswerInput) (bool, bool, bool) {
	if len(a.Selected) == 0 {
		return false, false, false
	}
	chosen := a.Selected[0]
	correct := false
	for _, opt := range q.DecodedOptions() {
		if opt.Label == chosen {
			correct = opt.IsCorrect
			break
		}
	}
	return true, correct, !correct
}

// multipleChoiceEvaluator 所选集合与正确集合严格相等才算对
// （不缺选、不多选、非空）；非空但不匹配即风险。
type multipleChoiceEvaluator struct{}

func (multipleChoiceEvaluator) Evaluate(q *model.AssessmentQuestion, a AnswerInput) (bool, bool, bool) {
	if len(a.Selected) == 0 {
		return false, false, false
	}

	correctSet := make(map[string]bool)
	for _, opt := range q.DecodedOptions() {
		if opt.IsCorrect {
			correctSet[opt.Label] = true
		}
	}

	selectedSet := make(map[string]bool, len(a.Selected))
	for _, s := range a.Selected {
		selectedSet[s] = true
	}

	correct := len(selectedSet) == len(correctSet) && len(correctSet) > 0
	if correct {
		for label := range correctSet {
			if !selectedSet[label] {
				correct = false
				break
			}
		}
	}
	return true, correct, !correct
}

// textEvaluator 期望关键词与作答之间双向、不区分大小写的子串匹配；
// 期望为空视为恒正确，非空答错标记风险。
type textEvaluator struct{}

func (textEvaluator) Evaluate(q *model.AssessmentQuestion, a AnswerInput) (bool, bool, bool) {
	if strings.TrimSpace(a.Text) == "" {
		return false, false, false
	}
	expected := strings.ToLower(strings.TrimSpace(q.CorrectAnswer))
	if expected == "" {
		return true, true, false
	}
	answer := strings.ToLower(a.Text)
	correct := strings.Contains(answer, expected) || strings.Contains(expected, answer)
	return true, correct, !correct
}

// EvaluateAnswer 单题判分，未知题型按未作答处理
func EvaluateAnswer(q *model.AssessmentQuestion, a AnswerInput) model.AnswerResult {
	weight := q.Weight
	if weight < 1 {
		weight = 1
	}
	maxScore := weight * scorePerWeight

	result := model.AnswerResult{
		QuestionID:   q.ID,
		QuestionType: string(q.QuestionType),
		Domain:       q.Domain,
		Selected:     a.Selected,
		Text:         a.Text,
		MaxScore:     maxScore,
	}

	ev, ok := evaluators[q.QuestionType]
	if !ok {
		return result
	}

	answered, correct, flagged := ev.Evaluate(q, a)
	result.Answered = answered
	result.Correct = correct
	result.FlaggedAsRisk = flagged
	if correct {
		result.Score = maxScore
	}
	return result
}

// ScoreAssessment 全卷判分：逐题评估、领域汇总、成熟度分级、风险派生。
// 未作答的题计入领域与总分的 max。
func ScoreAssessment(questions []model.AssessmentQuestion, answers []AnswerInput) *ScoreResult {
	answerMap := make(map[uint]AnswerInput, len(answers))
	for _, a := range answers {
		answerMap[a.QuestionID] = a
	}

	result := &ScoreResult{
		Answers: make([]model.AnswerResult, 0, len(questions)),
	}

	domainTotals := make(map[string]*model.DomainScore)

	for i := range questions {
		q := &questions[i]
		ar := EvaluateAnswer(q, answerMap[q.ID])
		result.Answers = append(result.Answers, ar)

		result.TotalScore += ar.Score
		result.MaxScore += ar.MaxScore

		ds, ok := domainTotals[q.Domain]
		if !ok {
			ds = &model.DomainScore{Domain: q.Domain}
			domainTotals[q.Domain] = ds
		}
		ds.Score += ar.Score
		ds.MaxScore += ar.MaxScore

		if ar.FlaggedAsRisk {
			result.Risks = append(result.Risks, model.IdentifiedRisk{
				QuestionID:   q.ID,
				QuestionText: q.Text,
				Domain:       q.Domain,
				Level:        RiskLevelForWeight(q.Weight),
			})
		}
	}

	domains := make([]string, 0, len(domainTotals))
	for d := range domainTotals {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	for _, d := range domains {
		ds := domainTotals[d]
		ds.Percentage = roundPercentage(ds.Score, ds.MaxScore)
		result.DomainScores = append(result.DomainScores, *ds)
	}

	result.Percentage = roundPercentage(result.TotalScore, result.MaxScore)
	result.MaturityLevel = MaturityForPercentage(result.Percentage)

	return result
}

// roundPercentage 四舍五入（half up），max 为 0 时直接取 0
func roundPercentage(score, max int) int {
	if max == 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(max) * 100))
}

// MaturityForPercentage 阈值分级，每档下界含等号
func MaturityForPercentage(pct int) model.MaturityLevel {
	switch {
	case pct >= 90:
		return model.MaturityExcellent
	case pct >= 70:
		return model.MaturityHigh
	case pct >= 50:
		return model.MaturityMedium
	case pct >= 30:
		return model.MaturityLow
	default:
		return model.MaturityCritical
	}
}

// RiskLevelForWeight 权重映射风险级别
func RiskLevelForWeight(weight int) model.RiskLevel {
	switch {
	case weight >= 4:
		return model.RiskHigh
	case weight >= 2:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
