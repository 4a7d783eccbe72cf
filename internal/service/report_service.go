package service

import (
	"context"
	"cyberguard_backend/internal/model"
	"cyberguard_backend/internal/repository"
	"cyberguard_backend/internal/util"
	"cyberguard_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ReportService 提交评估后异步生成 AI 报告。
// 生成失败不影响提交本身，报告状态落为 failed。
type ReportService struct {
	Repo    *repository.ReportRepository
	AI      *AIService
	Storage StorageProvider // 可为 nil，生成后归档一份 JSON 到对象存储
}

func NewReportService(repo *repository.ReportRepository, ai *AIService, storage StorageProvider) *ReportService {
	return &ReportService{Repo: repo, AI: ai, Storage: storage}
}

// aiTimeout 报告生成的上游调用超时
const reportTimeout = 120 * time.Second

// GenerateForSubmission 评估提交后的异步入口（assessment_service 的 go 调用）。
// 先落 pending 占位行，生成成功后补全内容。
func (s *ReportService) GenerateForSubmission(submission *model.AssessmentSubmission) {
	report := &model.Report{
		SubmissionID:  submission.ID,
		UserID:        submission.UserID,
		Title:         fmt.Sprintf("评估报告 #%d", submission.ID),
		MaturityLevel: submission.MaturityLevel,
		Status:        model.ReportPending,
	}
	if err := s.Repo.Create(report); err != nil {
		logger.Log.Error("create pending report failed",
			zap.Uint("submissionId", submission.ID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	content, err := s.AI.GenerateReportJSON(ctx, buildReportPrompt(submission))
	if err != nil {
		report.Status = model.ReportFailed
		report.Error = err.Error()
		if uerr := s.Repo.Update(report); uerr != nil {
			logger.Log.Error("mark report failed error", zap.String("reportId", report.ID), zap.Error(uerr))
		}
		logger.Log.Warn("AI report generation failed",
			zap.Uint("submissionId", submission.ID), zap.Error(err))
		return
	}

	report.Content = content
	report.Summary = extractSummary(content)
	report.Status = model.ReportCompleted
	if err := s.Repo.Update(report); err != nil {
		logger.Log.Error("save report failed", zap.String("reportId", report.ID), zap.Error(err))
		return
	}

	if s.Storage != nil {
		objectName := fmt.Sprintf("reports/%s.json", report.ID)
		if _, err := s.Storage.PutObject(ctx, objectName, content, "application/json"); err != nil {
			// 归档失败只记日志，数据库里已有正本
			logger.Log.Warn("report archive failed", zap.String("reportId", report.ID), zap.Error(err))
		}
	}

	logger.Log.Info("report generated",
		zap.String("reportId", report.ID), zap.Uint("submissionId", submission.ID))
}

// buildReportPrompt 把提交快照压成给模型的上下文
func buildReportPrompt(submission *model.AssessmentSubmission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "评估总分 %d/%d（%d%%），成熟度等级 %s。\n",
		submission.TotalScore, submission.MaxScore, submission.Percentage, submission.MaturityLevel)

	var domains []model.DomainScore
	if err := json.Unmarshal(submission.DomainScores, &domains); err == nil && len(domains) > 0 {
		b.WriteString("各领域得分：\n")
		for _, d := range domains {
			fmt.Fprintf(&b, "- %s: %d/%d（%d%%）\n", d.Domain, d.Score, d.MaxScore, d.Percentage)
		}
	}

	var risks []model.IdentifiedRisk
	if err := json.Unmarshal(submission.RisksIdentified, &risks); err == nil && len(risks) > 0 {
		b.WriteString("识别到的风险：\n")
		for _, r := range risks {
			fmt.Fprintf(&b, "- [%s] %s（领域：%s）\n", r.Level, r.QuestionText, r.Domain)
		}
	} else {
		b.WriteString("本次评估未识别出风险。\n")
	}

	return b.String()
}

// extractSummary 从报告 JSON 里摘 summary 字段做列表展示，取不到给空串
func extractSummary(content json.RawMessage) string {
	var partial struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(content, &partial); err != nil {
		return ""
	}
	return partial.Summary
}

func (s *ReportService) List(userID uint, isAdmin bool, page, limit int) ([]model.Report, int64, error) {
	return s.Repo.List(userID, isAdmin, page, limit)
}

func (s *ReportService) Get(id string, userID uint, isAdmin bool) (*model.Report, error) {
	report, err := s.Repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && report.UserID != userID {
		return nil, util.ErrNotVisible
	}
	if report.Status == model.ReportPending {
		return report, util.ErrReportNotReady
	}
	return report, nil
}

// GetBySubmission 取某次提交最新的一份报告
func (s *ReportService) GetBySubmission(submissionID, userID uint, isAdmin bool) (*model.Report, error) {
	report, err := s.Repo.FindBySubmission(submissionID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && report.UserID != userID {
		return nil, util.ErrNotVisible
	}
	return report, nil
}
