package controller

import (
	"context"
	"cyberguard_backend/internal/model"
	"cyberguard_backend/internal/service"
	"cyberguard_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserController struct {
	UserService    *service.UserService
	SettingService *service.SettingService
}

func NewUserController(userService *service.UserService, settingService *service.SettingService) *UserController {
	return &UserController{
		UserService:    userService,
		SettingService: settingService,
	}
}

// List godoc
// @Summary 用户列表
// @Description 管理员查看全部用户，可按审批状态过滤
// @Tags 管理
// @Produce  json
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Param   status query string false "审批状态 pending/approved/rejected"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/admin/users [get]
func (c *UserController) List(ctx *gin.Context) {
	page, limit := pagination(ctx)
	status := ctx.Query("status")

	users, total, err := c.UserService.List(page, limit, status)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{List: users, Total: total, Page: page, Limit: limit})
}

// Approve godoc
// @Summary 批准用户
// @Tags 管理
// @Produce  json
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id}/approve [post]
func (c *UserController) Approve(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	if err := c.UserService.Approve(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// Reject godoc
// @Summary 拒绝用户
// @Tags 管理
// @Produce  json
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/users/{id}/reject [post]
func (c *UserController) Reject(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	if err := c.UserService.Reject(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

type RoleUpdateRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole godoc
// @Summary 修改用户角色
// @Tags 管理
// @Accept  json
// @Produce  json
// @Param   id path int true "用户ID"
// @Param   body body RoleUpdateRequest true "目标角色 admin/member"
// @Success 200 {object} util.Response "成功"
// @Failure 400 {object} util.Response "非法角色"
// @Router /api/admin/users/{id}/role [put]
func (c *UserController) UpdateRole(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}
	var req RoleUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims != nil && claims.UserID == id {
		util.BadRequest(ctx, "不能修改自己的角色")
		return
	}

	if err := c.UserService.UpdateRole(id, req.Role); err != nil {
		if errors.Is(err, util.ErrPermissionDenied) {
			util.BadRequest(ctx, "非法角色")
		} else if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// Delete godoc
// @Summary 删除用户
// @Tags 管理
// @Produce  json
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/users/{id} [delete]
func (c *UserController) Delete(ctx *gin.Context) {
	id, ok := paramID(ctx)
	if !ok {
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims != nil && claims.UserID == id {
		util.BadRequest(ctx, "不能删除自己")
		return
	}

	if err := c.UserService.Delete(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UpdateProfile godoc
// @Summary 更新个人资料
// @Tags 用户
// @Accept  json
// @Produce  json
// @Param   body body service.ProfileUpdateRequest true "资料字段"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Router /api/users/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ProfileUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateProfile(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// GetSettings godoc
// @Summary 查看平台配置
// @Description 当前仅顾问系统提示词一项
// @Tags 管理
// @Produce  json
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/admin/settings [get]
func (c *UserController) GetSettings(ctx *gin.Context) {
	prompt := c.SettingService.Get(context.Background(), model.SettingAdvisorPrompt, "")
	util.Success(ctx, gin.H{
		"advisorSystemPrompt": prompt,
	})
}

type SettingsUpdateRequest struct {
	AdvisorSystemPrompt string `json:"advisorSystemPrompt" binding:"required"`
}

// UpdateSettings godoc
// @Summary 更新平台配置
// @Tags 管理
// @Accept  json
// @Produce  json
// @Param   body body SettingsUpdateRequest true "配置项"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/settings [put]
func (c *UserController) UpdateSettings(ctx *gin.Context) {
	var req SettingsUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.SettingService.Set(context.Background(), model.SettingAdvisorPrompt, req.AdvisorSystemPrompt); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// pagination 解析分页参数，带默认值和上限
func pagination(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// paramID 解析路径里的数字 ID，非法时直接写 400
func paramID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return 0, false
	}
	return uint(id), true
}
