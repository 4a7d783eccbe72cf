package service

import (
	"context"
	"cyberguard_backend/internal/model"
	"cyberguard_backend/internal/repository"
	"cyberguard_backend/pkg/logger"

	"go.uber.org/zap"
)

// AdvisorService 顾问对话的公共逻辑，SSE 接口和 WebSocket Hub 共用：
// 存用户消息 → 带历史调模型 → 流式吐增量 → 存完整回复。
type AdvisorService struct {
	Repo     *repository.AdvisorRepository
	AI       *AIService
	Settings *SettingService
}

func NewAdvisorService(repo *repository.AdvisorRepository, ai *AIService, settings *SettingService) *AdvisorService {
	return &AdvisorService{Repo: repo, AI: ai, Settings: settings}
}

// AskStream 发起一轮对话。用户消息立即落库，助手回复在流结束且无错误时落库。
func (s *AdvisorService) AskStream(ctx context.Context, userID uint, prompt string) (<-chan string, <-chan error) {
	if err := s.Repo.SaveMessage(&model.AdvisorMessage{
		UserID:  userID,
		Role:    "user",
		Content: prompt,
	}); err != nil {
		logger.Log.Error("save advisor message failed", zap.Uint("userId", userID), zap.Error(err))
	}

	systemPrompt := s.Settings.Get(ctx, model.SettingAdvisorPrompt, "")
	history := s.loadHistory(userID)

	upstream, upstreamErr := s.AI.ChatStream(ctx, systemPrompt, history, prompt)

	out := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errChan)

		var full string
		for delta := range upstream {
			full += delta
			out <- delta
		}
		if err := <-upstreamErr; err != nil {
			errChan <- err
			return
		}

		if err := s.Repo.SaveMessage(&model.AdvisorMessage{
			UserID:  userID,
			Role:    "assistant",
			Content: full,
		}); err != nil {
			logger.Log.Error("save advisor reply failed", zap.Uint("userId", userID), zap.Error(err))
		}
	}()

	return out, errChan
}

// loadHistory 取最近的对话历史（不含本轮提问）
func (s *AdvisorService) loadHistory(userID uint) []AIChatMessage {
	records, err := s.Repo.History(userID, historyWindow)
	if err != nil {
		logger.Log.Warn("load advisor history failed", zap.Uint("userId", userID), zap.Error(err))
		return nil
	}
	msgs := make([]AIChatMessage, 0, len(records))
	for _, r := range records {
		msgs = append(msgs, AIChatMessage{Role: r.Role, Content: r.Content})
	}
	return msgs
}

func (s *AdvisorService) History(userID uint, limit int) ([]model.AdvisorMessage, error) {
	return s.Repo.History(userID, limit)
}

func (s *AdvisorService) ClearHistory(userID uint) error {
	return s.Repo.ClearHistory(userID)
}
