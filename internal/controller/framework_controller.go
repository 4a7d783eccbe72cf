package controller

import (
	"cyberguard_backend/internal/service"
	"cyberguard_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type FrameworkController struct {
	Service *service.FrameworkService
}

func NewFrameworkController(svc *service.FrameworkService) *FrameworkController {
	return &FrameworkController{Service: svc}
}

// Create godoc
// @Summary 创建合规框架
// @Tags 合规框架
// @Accept  json
// @Produce  json
// @Param   body body service.FrameworkRequest true "框架信息"
// @Success 201 {object} util.Response{data=model.Framework} "创建成功"
// @Router /api/frameworks [post]
func (c *FrameworkController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.FrameworkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	f, err := c.Service.Create(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, f)
}

// List godoc
// @Summary 合规框架列表
// @Tags 合规框架
// @Produce  json
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/frameworks [get]
func (c *FrameworkController) List(ctx *gin.Context) {
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
// @Summary 框架详情（含控制项）
// @Tags 合规框架
// @Produce  json
// @Param   id path int true "框架ID"
// @Success 200 {object} util.Response{data=model.Framework} "成功"
// @Failure 404 {object} util.Response "不存在或不可见"
// @Router /api/frameworks/{id} [get]
func (c *FrameworkController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, ok := paramID(ctx)
	if !ok {
		return
	}

	f, err := c.Service.Get(id, claims.UserID, claims.Role.IsAdmin())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, util.ErrNotVisible) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, f)
}

// Update godoc
// @Summary 更新框架
// @Tags 合规框架
// @Accept  json
// @Produce  json
// @Param   id path int true "框架ID"
// @Param   body body service.FrameworkUpdateRequest true "更新字段"
// @Success 200 {object} util.Response{data=model.Framework} "成功"
// @Router /api/frameworks/{id} [patch]
func (c *FrameworkController) Update(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	var req service.FrameworkUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	f, err := c.Service.Update(id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, f)
}

// Delete godoc
// @Summary 删除框架
// @Tags 合规框架
// @Produce  json
// @Param   id path int true "框架ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/frameworks/{id} [delete]
func (c *FrameworkController) Delete(ctx *gin.Context) {
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

// AddControl godoc
// @Summary 添加控制项
// @Description 控制项变更后框架合规度自动重算
// @Tags 合规框架
// @Accept  json
// @Produce  json
// @Param   id path int true "框架ID"
// @Param   body body service.ControlRequest true "控制项信息"
// @Success 201 {object} util.Response{data=model.Control} "创建成功"
// @Router /api/frameworks/{id}/controls [post]
func (c *FrameworkController) AddControl(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	var req service.ControlRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	control, err := c.Service.AddControl(id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, control)
}

// ListControls godoc
// @Summary 控制项列表
// @Tags 合规框架
// @Produce  json
// @Param   id path int true "框架ID"
// @Success 200 {object} util.Response{data=[]model.Control} "成功"
// @Router /api/frameworks/{id}/controls [get]
func (c *FrameworkController) ListControls(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	controls, err := c.Service.ListControls(id)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, controls)
}

// UpdateControl godoc
// @Summary 更新控制项
// @Tags 合规框架
// @Accept  json
// @Produce  json
// @Param   id path int true "控制项ID"
// @Param   body body service.ControlRequest true "控制项信息"
// @Success 200 {object} util.Response{data=model.Control} "成功"
// @Router /api/controls/{id} [patch]
func (c *FrameworkController) UpdateControl(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	var req service.ControlRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	control, err := c.Service.UpdateControl(id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, control)
}

// DeleteControl godoc
// @Summary 删除控制项
// @Tags 合规框架
// @Produce  json
// @Param   id path int true "控制项ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/controls/{id} [delete]
func (c *FrameworkController) DeleteControl(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	if err := c.Service.DeleteControl(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
