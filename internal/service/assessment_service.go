package service

import (
	"cyberguard_backend/internal/model"
	"cyberguard_backend/internal/repository"
	"cyberguard_backend/internal/util"
	"cyberguard_backend/pkg/logger"
	"cyberguard_backend/pkg/monitoring"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// reportGenerator 提交完成后异步生成叙述报告，由 ReportService 实现
type reportGenerator interface {
	GenerateForSubmission(submission *model.AssessmentSubmission)
}

type AssessmentService struct {
	Repo     *repository.AssessmentRepository
	RiskRepo *repository.RiskRepository
	reports  reportGenerator
}

func NewAssessmentService(repo *repository.AssessmentRepository, riskRepo *repository.RiskRepository, reports reportGenerator) *AssessmentService {
	return &AssessmentService{
		Repo:     repo,
		RiskRepo: riskRepo,
		reports:  reports,
	}
}

type AssessmentRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Status          string `json:"status"`
	AssignedUserIDs []uint `json:"assignedUserIds"`
}

func (s *AssessmentService) Create(creatorID uint, req AssessmentRequest) (*model.Assessment, error) {
	a := &model.Assessment{
		Title:           req.Title,
		Description:     req.Description,
		Status:          model.ArtifactDraft,
		CreatedBy:       creatorID,
		AssignedUserIDs: model.MarshalUserIDs(req.AssignedUserIDs),
	}
	if req.Status != "" {
		a.Status = model.ArtifactStatus(req.Status)
	}
	if a.Status == model.ArtifactPublished {
		now := time.Now()
		a.PublishedAt = &now
	}
	if err := s.Repo.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) List(userID uint, isAdmin bool, page, limit int) ([]model.Assessment, int64, error) {
	return s.Repo.ListVisible(userID, isAdmin, page, limit)
}

func (s *AssessmentService) Get(id, userID uint, isAdmin bool) (*model.Assessment, error) {
	a, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !s.visibleTo(a, userID, isAdmin) {
		return nil, util.ErrNotVisible
	}
	return a, nil
}

func (s *AssessmentService) visibleTo(a *model.Assessment, userID uint, isAdmin bool) bool {
	if isAdmin || a.CreatedBy == userID {
		return true
	}
	switch a.Status {
	case model.ArtifactPublished:
		return true
	case model.ArtifactAssigned:
		return model.ContainsUser(a.AssignedUserIDs, userID)
	default:
		return false
	}
}

type AssessmentUpdateRequest struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Status          *string `json:"status"`
	AssignedUserIDs []uint  `json:"assignedUserIds"`
}

func (s *AssessmentService) Update(id uint, req AssessmentUpdateRequest) (*model.Assessment, error) {
	a, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		a.Title = *req.Title
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.Status != nil {
		next := model.ArtifactStatus(*req.Status)
		if next == model.ArtifactPublished && a.Status != model.ArtifactPublished {
			now := time.Now()
			a.PublishedAt = &now
		}
		a.Status = next
	}
	if req.AssignedUserIDs != nil {
		a.AssignedUserIDs = model.MarshalUserIDs(req.AssignedUserIDs)
	}
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) Delete(id uint) error {
	return s.Repo.Delete(id)
}

// Question management

type QuestionRequest struct {
	QuestionType  string                 `json:"questionType" binding:"required"`
	Text          string                 `json:"text" binding:"required"`
	Options       []model.QuestionOption `json:"options"`
	CorrectAnswer string                 `json:"correctAnswer"`
	Domain        string                 `json:"domain"`
	Weight        int                    `json:"weight"`
	Required      bool                   `json:"required"`
	Order         int                    `json:"order"`
}

func (s *AssessmentService) validateQuestion(req *QuestionRequest) error {
	qt := model.QuestionType(req.QuestionType)
	switch qt {
	case model.QuestionYesNo, model.QuestionText:
	case model.QuestionSingleChoice, model.QuestionMultipleChoice:
		// choice 类题型至少要有两个选项
		if len(req.Options) < 2 {
			return fmt.Errorf("question type %s requires at least 2 options", qt)
		}
	default:
		return fmt.Errorf("unknown question type %q", req.QuestionType)
	}
	if req.Weight < 1 || req.Weight > 5 {
		return fmt.Errorf("question weight must be between 1 and 5, got %d", req.Weight)
	}
	return nil
}

func (s *AssessmentService) AddQuestion(assessmentID uint, req QuestionRequest) (*model.AssessmentQuestion, error) {
	if _, err := s.Repo.FindByID(assessmentID); err != nil {
		return nil, err
	}
	if err := s.validateQuestion(&req); err != nil {
		return nil, err
	}

	optionsJSON, _ := json.Marshal(req.Options)
	q := &model.AssessmentQuestion{
		AssessmentID:  assessmentID,
		QuestionType:  model.QuestionType(req.QuestionType),
		Text:          req.Text,
		Options:       optionsJSON,
		CorrectAnswer: req.CorrectAnswer,
		Domain:        req.Domain,
		Weight:        req.Weight,
		Required:      req.Required,
		Order:         req.Order,
	}
	if err := s.Repo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *AssessmentService) ListQuestions(assessmentID uint) ([]model.AssessmentQuestion, error) {
	return s.Repo.ListQuestions(assessmentID)
}

func (s *AssessmentService) UpdateQuestion(id uint, req QuestionRequest) (*model.AssessmentQuestion, error) {
	q, err := s.Repo.FindQuestionByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.validateQuestion(&req); err != nil {
		return nil, err
	}

	optionsJSON, _ := json.Marshal(req.Options)
	q.QuestionType = model.QuestionType(req.QuestionType)
	q.Text = req.Text
	q.Options = optionsJSON
	q.CorrectAnswer = req.CorrectAnswer
	q.Domain = req.Domain
	q.Weight = req.Weight
	q.Required = req.Required
	q.Order = req.Order
	if err := s.Repo.UpdateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *AssessmentService) DeleteQuestion(id uint) error {
	return s.Repo.DeleteQuestion(id)
}

// Progress

type ProgressRequest struct {
	Answers       []AnswerInput `json:"answers"`
	CompletionPct int           `json:"completionPct"`
}

// SaveProgress upsert 进行中的答卷。completed 状态单调，已完成后不再回退。
func (s *AssessmentService) SaveProgress(userID, assessmentID uint, req ProgressRequest) (*model.AssessmentProgress, error) {
	a, err := s.Repo.FindByID(assessmentID)
	if err != nil {
		return nil, err
	}
	if !s.visibleTo(a, userID, false) {
		return nil, util.ErrNotVisible
	}

	if existing, err := s.Repo.FindProgress(userID, assessmentID); err == nil &&
		existing.Status == model.ProgressCompleted {
		return nil, util.ErrAlreadyCompleted
	}

	answersJSON, _ := json.Marshal(req.Answers)
	pct := req.CompletionPct
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	p := &model.AssessmentProgress{
		UserID:        userID,
		AssessmentID:  assessmentID,
		Answers:       answersJSON,
		CompletionPct: pct,
		Status:        model.ProgressInProgress,
	}
	if pct >= 100 {
		p.Status = model.ProgressCompleted
	}

	if err := s.Repo.UpsertProgress(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *AssessmentService) GetProgress(userID, assessmentID uint) (*model.AssessmentProgress, error) {
	return s.Repo.FindProgress(userID, assessmentID)
}

// Submit

type SubmitRequest struct {
	Answers []AnswerInput `json:"answers" binding:"required"`
}

// Submit 判分并落不可变快照，随后做两件尽力而为的副作用：
// 风险登记册派发（幂等，失败只记日志）和异步 AI 报告生成。
// 副作用失败不影响提交本身的成功返回。
func (s *AssessmentService) Submit(userID uint, assessmentID uint, req SubmitRequest) (*model.AssessmentSubmission, error) {
	a, err := s.Repo.FindByID(assessmentID)
	if err != nil {
		return nil, err
	}
	if !s.visibleTo(a, userID, false) {
		return nil, util.ErrNotVisible
	}
	if a.Status == model.ArtifactDraft && a.CreatedBy != userID {
		return nil, util.ErrNotPublished
	}

	questions, err := s.Repo.ListQuestions(assessmentID)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	score := ScoreAssessment(questions, req.Answers)

	answersJSON, _ := json.Marshal(score.Answers)
	domainJSON, _ := json.Marshal(score.DomainScores)
	risksJSON, _ := json.Marshal(score.Risks)
	timelineJSON, _ := json.Marshal([]model.TimelineEntry{
		{Event: "submitted", At: started},
		{Event: "scored", At: time.Now()},
	})

	submission := &model.AssessmentSubmission{
		UserID:          userID,
		AssessmentID:    assessmentID,
		Answers:         answersJSON,
		DomainScores:    domainJSON,
		RisksIdentified: risksJSON,
		Timeline:        timelineJSON,
		TotalScore:      score.TotalScore,
		MaxScore:        score.MaxScore,
		Percentage:      score.Percentage,
		MaturityLevel:   score.MaturityLevel,
	}

	if err := s.Repo.CreateSubmission(submission); err != nil {
		return nil, err
	}

	// 进度置为完成，失败不影响提交
	progress := &model.AssessmentProgress{
		UserID:        userID,
		AssessmentID:  assessmentID,
		Answers:       answersJSON,
		CompletionPct: 100,
		Status:        model.ProgressCompleted,
	}
	if err := s.Repo.UpsertProgress(progress); err != nil {
		logger.Log.Error("failed to mark progress completed",
			zap.Uint("userId", userID), zap.Uint("assessmentId", assessmentID), zap.Error(err))
	}

	s.fanOutRisks(userID, submission, score.Risks)

	if s.reports != nil {
		go s.reports.GenerateForSubmission(submission)
	}

	return submission, nil
}

// fanOutRisks 每个被标记答案落一条风险记录。以 (submissionId, questionId)
// 为幂等键，重复派发不产生重复行；单条失败记日志后继续。
func (s *AssessmentService) fanOutRisks(userID uint, submission *model.AssessmentSubmission, risks []model.IdentifiedRisk) {
	for _, ir := range risks {
		questionID := ir.QuestionID
		risk := &model.Risk{
			Title:        fmt.Sprintf("[%s] %s", ir.Domain, ir.QuestionText),
			Description:  fmt.Sprintf("评估提交 #%d 的作答被标记为风险（领域：%s）", submission.ID, ir.Domain),
			Level:        ir.Level,
			Source:       model.RiskSourceAssessment,
			Status:       model.ArtifactDraft,
			OwnerID:      userID,
			SubmissionID: &submission.ID,
			QuestionID:   &questionID,
		}
		if err := s.RiskRepo.CreateFromSubmission(risk); err != nil {
			monitoring.RiskFanoutCounter.WithLabelValues("error").Inc()
			logger.Log.Error("risk fan-out failed",
				zap.Uint("submissionId", submission.ID),
				zap.Uint("questionId", questionID),
				zap.Error(err))
			continue
		}
		monitoring.RiskFanoutCounter.WithLabelValues("created").Inc()
	}
}

func (s *AssessmentService) GetSubmission(id, userID uint, isAdmin bool) (*model.AssessmentSubmission, error) {
	sub, err := s.Repo.FindSubmissionByID(id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && sub.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return sub, nil
}

// ListSubmissions 提交列表带着所有答卷人的完整作答快照，
// 只开放给管理员和该评估的创建者；成员看自己的走 /submissions/mine。
func (s *AssessmentService) ListSubmissions(assessmentID, requesterID uint, isAdmin bool, page, limit int) ([]model.AssessmentSubmission, int64, error) {
	a, err := s.Repo.FindByID(assessmentID)
	if err != nil {
		return nil, 0, err
	}
	if !isAdmin && a.CreatedBy != requesterID {
		return nil, 0, util.ErrPermissionDenied
	}
	return s.Repo.ListSubmissions(assessmentID, page, limit)
}

func (s *AssessmentService) ListMySubmissions(userID uint) ([]model.AssessmentSubmission, error) {
	return s.Repo.ListSubmissionsByUser(userID)
}

// ProgressState 三段状态由 progress 记录的存在与完整度推导
func (s *AssessmentService) ProgressState(userID, assessmentID uint) string {
	p, err := s.Repo.FindProgress(userID, assessmentID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Log.Warn("progress lookup failed", zap.Error(err))
		}
		return "not_started"
	}
	if p.Status == model.ProgressCompleted {
		return "completed"
	}
	return "in_progress"
}
