package controller

import (
	"cyberguard_backend/internal/service"
	"cyberguard_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AssetController struct {
	Service *service.AssetService
}

func NewAssetController(svc *service.AssetService) *AssetController {
	return &AssetController{Service: svc}
}

// Create godoc
// @Summary 登记资产
// @Tags 资产
// @Accept  json
// @Produce  json
// @Param   body body service.AssetRequest true "资产信息"
// @Success 201 {object} util.Response{data=model.Asset} "创建成功"
// @Router /api/assets [post]
func (c *AssetController) Create(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	var req service.AssetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	asset, err := c.Service.Create(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, asset)
}

// List godoc
// @Summary 资产清单
// @Tags 资产
// @Produce  json
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/assets [get]
func (c *AssetController) List(ctx *gin.Context) {
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
// @Summary 资产详情
// @Tags 资产
// @Produce  json
// @Param   id path int true "资产ID"
// @Success 200 {object} util.Response{data=model.Asset} "成功"
// @Failure 404 {object} util.Response "不存在或不可见"
// @Router /api/assets/{id} [get]
func (c *AssetController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, ok := paramID(ctx)
	if !ok {
		return
	}

	asset, err := c.Service.Get(id, claims.UserID, claims.Role.IsAdmin())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, util.ErrNotVisible) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, asset)
}

// Update godoc
// @Summary 更新资产
// @Tags 资产
// @Accept  json
// @Produce  json
// @Param   id path int true "资产ID"
// @Param   body body service.AssetUpdateRequest true "更新字段"
// @Success 200 {object} util.Response{data=model.Asset} "成功"
// @Router /api/assets/{id} [patch]
func (c *AssetController) Update(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	var req service.AssetUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	asset, err := c.Service.Update(id, req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, asset)
}

// Delete godoc
// @Summary 删除资产
// @Tags 资产
// @Produce  json
// @Param   id path int true "资产ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/assets/{id} [delete]
func (c *AssetController) Delete(ctx *gin.Context) {
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
