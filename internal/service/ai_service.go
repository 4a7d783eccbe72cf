package service

import (
	"bufio"
	"bytes"
	"context"
	"cyberguard_backend/internal/config"
	"cyberguard_backend/pkg/monitoring"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// AIService 对上游 chat-completion / realtime / TTS 接口的无状态封装。
// 这里不做重试，调用失败由上层决定吞掉还是上抛。
type AIService struct {
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{},
	}
}

// UpdateConfig 配置热更新入口（configwatcher 回调）
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.config = cfg
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
		Delta   AIChatMessage `json:"delta"` // 流式响应
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *AIService) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	return s.client.Do(req)
}

// Chat 阻塞式单轮/多轮补全
func (s *AIService) Chat(ctx context.Context, systemPrompt string, history []AIChatMessage, prompt string) (string, error) {
	messages := make([]AIChatMessage, 0, len(history)+2)
	messages = append(messages, AIChatMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, AIChatMessage{Role: "user", Content: prompt})

	resp, err := s.post(ctx, "/chat/completions", ChatCompletionRequest{
		Model:    s.config.Model,
		Messages: messages,
	})
	if err != nil {
		monitoring.AIRequestCounter.WithLabelValues("chat", "error").Inc()
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		monitoring.AIRequestCounter.WithLabelValues("chat", "error").Inc()
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("AI returned no choices")
	}

	monitoring.AIRequestCounter.WithLabelValues("chat", "ok").Inc()
	return result.Choices[0].Message.Content, nil
}

// ChatStream SSE 流式补全，增量内容从 out 吐出
func (s *AIService) ChatStream(ctx context.Context, systemPrompt string, history []AIChatMessage, prompt string) (<-chan string, <-chan error) {
	out := make(chan string)
	errChan := make(chan error, 1)

	messages := make([]AIChatMessage, 0, len(history)+2)
	messages = append(messages, AIChatMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, AIChatMessage{Role: "user", Content: prompt})

	reqBody := map[string]interface{}{
		"model":    s.config.Model,
		"messages": messages,
		"stream":   true,
	}

	go func() {
		defer close(out)
		defer close(errChan)

		resp, err := s.post(ctx, "/chat/completions", reqBody)
		if err != nil {
			monitoring.AIRequestCounter.WithLabelValues("chat", "error").Inc()
			errChan <- err
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			monitoring.AIRequestCounter.WithLabelValues("chat", "error").Inc()
			errChan <- fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
			return
		}

		monitoring.AIRequestCounter.WithLabelValues("chat", "ok").Inc()

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					errChan <- err
				}
				break
			}

			line = strings.TrimSpace(line)
			if line == "" || !strings.HasPrefix(line, "data: ") {
				continue
			}

			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				break
			}

			var streamResp ChatCompletionResponse
			if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
				continue
			}

			if len(streamResp.Choices) > 0 {
				content := streamResp.Choices[0].Delta.Content
				if content != "" {
					out <- content
				}
			}
		}
	}()

	return out, errChan
}

// GenerateReportJSON 要求模型输出结构化 JSON 报告，返回原始字节由调用方落库
func (s *AIService) GenerateReportJSON(ctx context.Context, prompt string) (json.RawMessage, error) {
	system := "你是一名网络安全合规审计师。请针对给定的评估结果生成一份 JSON 格式的叙述性报告，" +
		"字段为 title、summary、findings（数组，每项含 domain、observation、recommendation）、" +
		"nextSteps（数组）。只输出 JSON 本身，不要额外的说明文字或 Markdown 代码块。"

	content, err := s.Chat(ctx, system, nil, prompt)
	if err != nil {
		monitoring.AIRequestCounter.WithLabelValues("report", "error").Inc()
		return nil, err
	}

	// 去掉模型偶尔包上的 ```json 围栏
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if !json.Valid([]byte(content)) {
		monitoring.AIRequestCounter.WithLabelValues("report", "error").Inc()
		return nil, fmt.Errorf("AI report output is not valid JSON")
	}

	monitoring.AIRequestCounter.WithLabelValues("report", "ok").Inc()
	return json.RawMessage(content), nil
}

// RealtimeSession 上游签发的短时语音会话凭证
type RealtimeSession struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	ClientSecret struct {
		Value     string `json:"value"`
		ExpiresAt int64  `json:"expires_at"`
	} `json:"client_secret"`
}

// CreateRealtimeSession 为浏览器端 WebRTC 协商签发 ephemeral token
func (s *AIService) CreateRealtimeSession(ctx context.Context, instructions string) (*RealtimeSession, error) {
	reqBody := map[string]interface{}{
		"model": s.config.RealtimeModel,
		"voice": s.config.Voice,
	}
	if instructions != "" {
		reqBody["instructions"] = instructions
	}

	resp, err := s.post(ctx, "/realtime/sessions", reqBody)
	if err != nil {
		monitoring.AIRequestCounter.WithLabelValues("realtime", "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		monitoring.AIRequestCounter.WithLabelValues("realtime", "error").Inc()
		return nil, fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var session RealtimeSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, err
	}

	monitoring.AIRequestCounter.WithLabelValues("realtime", "ok").Inc()
	return &session, nil
}

// Speech 文本转语音，返回原始音频字节和 Content-Type
func (s *AIService) Speech(ctx context.Context, input, format string) ([]byte, string, error) {
	if format == "" {
		format = "mp3"
	}

	resp, err := s.post(ctx, "/audio/speech", map[string]interface{}{
		"model":           s.config.TTSModel,
		"voice":           s.config.Voice,
		"input":           input,
		"response_format": format,
	})
	if err != nil {
		monitoring.AIRequestCounter.WithLabelValues("speech", "error").Inc()
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		monitoring.AIRequestCounter.WithLabelValues("speech", "error").Inc()
		return nil, "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	monitoring.AIRequestCounter.WithLabelValues("speech", "ok").Inc()
	return audio, contentType, nil
}
