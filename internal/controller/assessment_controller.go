package controller

import (
	"cyberguard_backend/internal/service"
	"cyberguard_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AssessmentController struct {
	Service *service.AssessmentService
}

func NewAssessmentController(svc *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Service: svc}
}

// Create godoc
// @Summary 创建评估
// @Tags 评估
// @Accept  json
// @Produce  json
// @Param   body body service.AssessmentRequest true "评估信息"
// @Success 201 {object} util.Response{data=model.Assessment} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/assessments [post]
func (c *AssessmentController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.Create(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// List godoc
// @Summary 评估列表
// @Description 普通成员只看到自己创建的、已发布的以及分配给自己的评估
// @Tags 评估
// @Produce  json
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/assessments [get]
func (c *AssessmentController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	page, limit := pagination(ctx)

	list, total, err := c.Service.List(claims.UserID, claims.Role.IsAdmin(), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: list, Total: total, Page: page, Limit: limit})
}

// Get godoc
// @Summary 评估详情
// @Tags 评估
// @Produce  json
// @Param   id path int true "评估ID"
// @Success 200 {object} util.Response{data=model.Assessment} "成功"
// @Failure 404 {object} util.Response "不存在或不可见"
// @Router /api/assessments/{id} [get]
func (c *AssessmentController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, ok := paramID(ctx)
	if !ok {
		return
	}

	a, err := c.Service.Get(id, claims.UserID, claims.Role.IsAdmin())
	if err != nil {
		// 不可见和不存在同样返回 404，避免泄露资源存在性
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, util.ErrNotVisible) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, a)
}

// Update godoc
// @Summary 更新评估
// @Tags 评估
// @Accept  json
// @Produce  json
// @Param   id path int true "评估ID"
// @Param   body body service.AssessmentUpdateRequest true "更新字段"
// @Success 200 {object} util.Response{data=model.Assessment} "成功"
// @Router /api/assessments/{id} [patch]
func (c *AssessmentController) Update(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	var req service.AssessmentUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.Service.Update(id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, a)
}

// Delete godoc
// @Summary 删除评估
// @Tags 评估
// @Produce  json
// @Param   id path int true "评估ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/assessments/{id} [delete]
func (c *AssessmentController) Delete(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	if err := c.Service.Delete(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// AddQuestion godoc
// @Summary 添加题目
// @Tags 评估
// @Accept  json
// @Produce  json
// @Param   id path int true "评估ID"
// @Param   body body service.QuestionRequest true "题目信息"
// @Success 201 {object} util.Response{data=model.AssessmentQuestion} "创建成功"
// @Failure 400 {object} util.Response "题型或权重非法"
// @Router /api/assessments/{id}/questions [post]
func (c *AssessmentController) AddQuestion(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.AddQuestion(id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, q)
}

// ListQuestions godoc
// @Summary 题目列表
// @Tags 评估
// @Produce  json
// @Param   id path int true "评估ID"
// @Success 200 {object} util.Response{data=[]model.AssessmentQuestion} "成功"
// @Router /api/assessments/{id}/questions [get]
func (c *AssessmentController) ListQuestions(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	questions, err := c.Service.ListQuestions(id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// UpdateQuestion godoc
// @Summary 更新题目
// @Tags 评估
// @Accept  json
// @Produce  json
// @Param   id path int true "题目ID"
// @Param   body body service.QuestionRequest true "题目信息"
// @Success 200 {object} util.Response{data=model.AssessmentQuestion} "成功"
// @Router /api/questions/{id} [patch]
func (c *AssessmentController) UpdateQuestion(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.UpdateQuestion(id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除题目
// @Tags 评估
// @Produce  json
// @Param   id path int true "题目ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/questions/{id} [delete]
func (c *AssessmentController) DeleteQuestion(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	if err := c.Service.DeleteQuestion(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// SaveProgress godoc
// @Summary 保存答题进度
// @Description 草稿答案 upsert，每人每份评估一条。已完成的评估不能再存进度
// @Tags 评估
// @Accept  json
// @Produce  json
// @Param   id path int true "评估ID"
// @Param   body body service.ProgressRequest true "进度数据"
// @Success 200 {object} util.Response{data=model.AssessmentProgress} "成功"
// @Failure 409 {object} util.Response "评估已完成"
// @Router /api/assessments/{id}/progress [put]
func (c *AssessmentController) SaveProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	var req service.ProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	p, err := c.Service.SaveProgress(claims.UserID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAlreadyCompleted):
			util.Error(ctx, 409, "评估已完成，不能再保存进度")
		case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, util.ErrNotVisible):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, p)
}

// GetProgress godoc
// @Summary 查询答题进度
// @Tags 评估
// @Produce  json
// @Param   id path int true "评估ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/assessments/{id}/progress [get]
func (c *AssessmentController) GetProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, ok := paramID(ctx)
	if !ok {
		return
	}

	state := c.Service.ProgressState(claims.UserID, id)
	p, err := c.Service.GetProgress(claims.UserID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Success(ctx, gin.H{"state": state})
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"state": state, "progress": p})
}

// Submit godoc
// @Summary 提交评估
// @Description 服务端判分并生成不可变快照，同时派发风险到风险登记册并异步生成 AI 报告
// @Tags 评估
// @Accept  json
// @Produce  json
// @Param   id path int true "评估ID"
// @Param   body body service.SubmitRequest true "全部作答"
// @Success 201 {object} util.Response{data=model.AssessmentSubmission} "提交成功"
// @Failure 403 {object} util.Response "评估未发布"
// @Router /api/assessments/{id}/submit [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	var req service.SubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	submission, err := c.Service.Submit(claims.UserID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, util.ErrNotVisible):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNotPublished):
			util.Error(ctx, 403, "评估尚未发布")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, submission)
}

// ListSubmissions godoc
// @Summary 某评估的提交列表
// @Description 仅管理员和评估创建者可见，普通成员查自己的提交用 /submissions/mine
// @Tags 评估
// @Produce  json
// @Param   id path int true "评估ID"
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Failure 403 {object} util.Response "无权查看"
// @Router /api/assessments/{id}/submissions [get]
func (c *AssessmentController) ListSubmissions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	page, limit := pagination(ctx)

	list, total, err := c.Service.ListSubmissions(id, claims.UserID, claims.Role.IsAdmin(), page, limit)
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
	util.Success(ctx, util.PageResponse{List: list, Total: total, Page: page, Limit: limit})
}

// GetSubmission godoc
// @Summary 提交详情
// @Description 本人或管理员可见
// @Tags 评估
// @Produce  json
// @Param   id path int true "提交ID"
// @Success 200 {object} util.Response{data=model.AssessmentSubmission} "成功"
// @Router /api/submissions/{id} [get]
func (c *AssessmentController) GetSubmission(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, ok := paramID(ctx)
	if !ok {
		return
	}

	sub, err := c.Service.GetSubmission(id, claims.UserID, claims.Role.IsAdmin())
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
	util.Success(ctx, sub)
}

// MySubmissions godoc
// @Summary 我的提交历史
// @Tags 评估
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.AssessmentSubmission} "成功"
// @Router /api/submissions/mine [get]
func (c *AssessmentController) MySubmissions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	list, err := c.Service.ListMySubmissions(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}
