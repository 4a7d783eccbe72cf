package controller

import (
	"cyberguard_backend/internal/service"
	"cyberguard_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DPIAController struct {
	Service *service.DPIAService
}

func NewDPIAController(svc *service.DPIAService) *DPIAController {
	return &DPIAController{Service: svc}
}

// Create godoc
// @Summary 创建数据保护影响评估
// @Tags DPIA
// @Accept  json
// @Produce  json
// @Param   body body service.DPIARequest true "DPIA 信息"
// @Success 201 {object} util.Response{data=model.DPIA} "创建成功"
// @Router /api/dpias [post]
func (c *DPIAController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.DPIARequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	d, err := c.Service.Create(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, d)
}

// List godoc
// @Summary DPIA 列表
// @Tags DPIA
// @Produce  json
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/dpias [get]
func (c *DPIAController) List(ctx *gin.Context) {
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
// @Summary DPIA 详情
// @Tags DPIA
// @Produce  json
// @Param   id path int true "DPIA ID"
// @Success 200 {object} util.Response{data=model.DPIA} "成功"
// @Failure 404 {object} util.Response "不存在或不可见"
// @Router /api/dpias/{id} [get]
func (c *DPIAController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, ok := paramID(ctx)
	if !ok {
		return
	}

	d, err := c.Service.Get(id, claims.UserID, claims.Role.IsAdmin())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, util.ErrNotVisible) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, d)
}

// Update godoc
// @Summary 更新 DPIA
// @Tags DPIA
// @Accept  json
// @Produce  json
// @Param   id path int true "DPIA ID"
// @Param   body body service.DPIAUpdateRequest true "更新字段"
// @Success 200 {object} util.Response{data=model.DPIA} "成功"
// @Router /api/dpias/{id} [patch]
func (c *DPIAController) Update(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	var req service.DPIAUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	d, err := c.Service.Update(id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, d)
}

// Delete godoc
// @Summary 删除 DPIA
// @Tags DPIA
// @Produce  json
// @Param   id path int true "DPIA ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/dpias/{id} [delete]
func (c *DPIAController) Delete(ctx *gin.Context) {
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
