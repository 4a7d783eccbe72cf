package controller

import (
	"context"
	"cyberguard_backend/internal/model"
	"cyberguard_backend/internal/service"
	"cyberguard_backend/internal/util"
	"cyberguard_backend/pkg/logger"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AIController struct {
	AI                *service.AIService
	Hub               *service.AdvisorHub
	Settings          *service.SettingService
	Reports           *service.ReportService
	AssessmentService *service.AssessmentService
	AdvisorService    *service.AdvisorService
	Storage           service.StorageProvider
	Redis             *redis.Client
}

func NewAIController(ai *service.AIService, hub *service.AdvisorHub, settings *service.SettingService,
	reports *service.ReportService, assessments *service.AssessmentService, advisor *service.AdvisorService,
	storage service.StorageProvider, rdb *redis.Client) *AIController {
	return &AIController{
		AI:                ai,
		Hub:               hub,
		Settings:          settings,
		Reports:           reports,
		AssessmentService: assessments,
		AdvisorService:    advisor,
		Storage:           storage,
		Redis:             rdb,
	}
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Chat 处理顾问对话请求
// @Summary AI 顾问对话（SSE 流式）
// @Description 带最近对话历史调用大模型，回答以 SSE 增量返回并落历史
// @Tags AI
// @Accept json
// @Produce json
// @Param request body ChatRequest true "用户问题"
// @Success 200 {string} string "SSE 流"
// @Router /api/ai/chat [post]
func (c *AIController) Chat(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	stream, errChan := c.AdvisorService.AskStream(ctx.Request.Context(), claims.UserID, req.Message)

	// 设置SSE响应头
	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("Transfer-Encoding", "chunked")

	// 循环读取并发送AI回答内容
	for content := range stream {
		ctx.SSEvent("message", content)
		ctx.Writer.Flush()
	}

	if err := <-errChan; err != nil {
		ctx.SSEvent("error", "顾问暂时不可用，请稍后再试")
		ctx.Writer.Flush()
		return
	}

	ctx.SSEvent("end", "done")
	ctx.Writer.Flush()
}

// ChatWS godoc
// @Summary AI 顾问对话（WebSocket）
// @Description 升级为 WebSocket，CHAT 上行，DELTA/DONE/ERROR 下行
// @Tags AI
// @Success 101 {string} string "Switching Protocols"
// @Router /api/ai/chat/ws [get]
func (c *AIController) ChatWS(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	service.ServeWs(c.Hub, ctx.Writer, ctx.Request, claims.UserID)
}

// History godoc
// @Summary 顾问对话历史
// @Tags AI
// @Produce  json
// @Param   limit query int false "条数，默认50"
// @Success 200 {object} util.Response{data=[]model.AdvisorMessage} "成功"
// @Router /api/ai/history [get]
func (c *AIController) History(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	_, limit := pagination(ctx)

	history, err := c.AdvisorService.History(claims.UserID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, history)
}

// ClearHistory godoc
// @Summary 清空顾问对话历史
// @Tags AI
// @Produce  json
// @Success 200 {object} util.Response "成功"
// @Router /api/ai/history [delete]
func (c *AIController) ClearHistory(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.AdvisorService.ClearHistory(claims.UserID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type GenerateReportRequest struct {
	SubmissionID uint `json:"submissionId" binding:"required"`
}

// GenerateReport godoc
// @Summary 手动触发报告生成
// @Description 对某次提交重新生成 AI 报告，生成是异步的
// @Tags AI
// @Accept  json
// @Produce  json
// @Param   body body GenerateReportRequest true "提交ID"
// @Success 202 {object} util.Response "已受理"
// @Failure 404 {object} util.Response "提交不存在"
// @Router /api/ai/generate-report [post]
func (c *AIController) GenerateReport(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req GenerateReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	submission, err := c.AssessmentService.GetSubmission(req.SubmissionID, claims.UserID, claims.Role.IsAdmin())
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	go c.Reports.GenerateForSubmission(submission)
	util.Error(ctx, 202, "报告生成已受理")
}

type RealtimeSessionRequest struct {
	Instructions string `json:"instructions"`
}

// RealtimeSession godoc
// @Summary 签发实时语音会话凭证
// @Description 服务端代持 API Key，为浏览器 WebRTC 协商签发短时 token
// @Tags AI
// @Accept  json
// @Produce  json
// @Param   body body RealtimeSessionRequest false "可选的会话指令"
// @Success 200 {object} util.Response{data=service.RealtimeSession} "成功"
// @Router /api/ai/realtime/session [post]
func (c *AIController) RealtimeSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req RealtimeSessionRequest
	// body 可以为空
	_ = ctx.ShouldBindJSON(&req)

	instructions := req.Instructions
	if instructions == "" {
		instructions = c.Settings.Get(context.Background(), model.SettingAdvisorPrompt, "")
	}

	session, err := c.AI.CreateRealtimeSession(ctx.Request.Context(), instructions)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	c.trackRealtimeSession(ctx.Request.Context(), claims.UserID, session)
	util.Success(ctx, session)
}

// trackRealtimeSession 签发的短时凭证登记到 redis，TTL 对齐凭证有效期，
// 供多实例查询和审计；登记失败不影响签发结果。
func (c *AIController) trackRealtimeSession(ctx context.Context, userID uint, session *service.RealtimeSession) {
	if c.Redis == nil || session.ID == "" {
		return
	}
	ttl := time.Until(time.Unix(session.ClientSecret.ExpiresAt, 0))
	if ttl <= 0 {
		ttl = time.Minute
	}
	key := fmt.Sprintf("ai:realtime:%s", session.ID)
	if err := c.Redis.Set(ctx, key, userID, ttl).Err(); err != nil {
		logger.Log.Warn("realtime session bookkeeping failed",
			zap.String("sessionId", session.ID), zap.Uint("userId", userID), zap.Error(err))
	}
}

type SpeechRequest struct {
	Input  string `json:"input" binding:"required"`
	Format string `json:"format"`
}

// Speech godoc
// @Summary 文本转语音
// @Description 调用上游 TTS，回传音频字节并归档到对象存储
// @Tags AI
// @Accept  json
// @Produce  octet-stream
// @Param   body body SpeechRequest true "要朗读的文本"
// @Success 200 {string} binary "音频数据"
// @Router /api/ai/speech [post]
func (c *AIController) Speech(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req SpeechRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	audio, contentType, err := c.AI.Speech(ctx.Request.Context(), req.Input, req.Format)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	c.archiveSpeech(ctx.Request.Context(), claims.UserID, req.Format, audio, contentType)
	ctx.Data(200, contentType, audio)
}

// archiveSpeech 生成的音频落一份到对象存储，失败只记日志
func (c *AIController) archiveSpeech(ctx context.Context, userID uint, format string, audio []byte, contentType string) {
	if c.Storage == nil {
		return
	}
	if format == "" {
		format = "mp3"
	}
	name := fmt.Sprintf("speech/%d-%d.%s", userID, time.Now().UnixNano(), format)
	if _, err := c.Storage.PutObject(ctx, name, audio, contentType); err != nil {
		logger.Log.Warn("speech archive failed", zap.String("object", name), zap.Error(err))
	}
}
