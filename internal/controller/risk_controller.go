package controller

import (
	"cyberguard_backend/internal/service"
	"cyberguard_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RiskController struct {
	Service *service.RiskService
}

func NewRiskController(svc *service.RiskService) *RiskController {
	return &RiskController{Service: svc}
}

// Create godoc
// @Summary 手工登记风险
// @Tags 风险
// @Accept  json
// @Produce  json
// @Param   body body service.RiskRequest true "风险信息"
// @Success 201 {object} util.Response{data=model.Risk} "创建成功"
// @Router /api/risks [post]
func (c *RiskController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.RiskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	risk, err := c.Service.Create(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, risk)
}

// List godoc
// @Summary 风险登记册
// @Description 含手工登记和评估派发的风险，按可见性过滤
// @Tags 风险
// @Produce  json
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/risks [get]
func (c *RiskController) List(ctx *gin.Context) {
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
// @Summary 风险详情
// @Tags 风险
// @Produce  json
// @Param   id path int true "风险ID"
// @Success 200 {object} util.Response{data=model.Risk} "成功"
// @Failure 404 {object} util.Response "不存在或不可见"
// @Router /api/risks/{id} [get]
func (c *RiskController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, ok := paramID(ctx)
	if !ok {
		return
	}

	risk, err := c.Service.Get(id, claims.UserID, claims.Role.IsAdmin())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, util.ErrNotVisible) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, risk)
}

// Update godoc
// @Summary 更新风险
// @Tags 风险
// @Accept  json
// @Produce  json
// @Param   id path int true "风险ID"
// @Param   body body service.RiskUpdateRequest true "更新字段"
// @Success 200 {object} util.Response{data=model.Risk} "成功"
// @Router /api/risks/{id} [patch]
func (c *RiskController) Update(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	var req service.RiskUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	risk, err := c.Service.Update(id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, risk)
}

// Delete godoc
// @Summary 删除风险
// @Tags 风险
// @Produce  json
// @Param   id path int true "风险ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/risks/{id} [delete]
func (c *RiskController) Delete(ctx *gin.Context) {
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
