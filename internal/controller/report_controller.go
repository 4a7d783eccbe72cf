package controller

import (
	"cyberguard_backend/internal/service"
	"cyberguard_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReportController struct {
	Service *service.ReportService
}

func NewReportController(svc *service.ReportService) *ReportController {
	return &ReportController{Service: svc}
}

// List godoc
// @Summary 报告列表
// @Description 普通成员只看到自己的报告，列表不含正文
// @Tags 报告
// @Produce  json
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/reports [get]
func (c *ReportController) List(ctx *gin.Context) {
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
// @Summary 报告详情
// @Tags 报告
// @Produce  json
// @Param   id path string true "报告ID (UUID)"
// @Success 200 {object} util.Response{data=model.Report} "成功"
// @Failure 202 {object} util.Response "报告生成中"
// @Failure 404 {object} util.Response "不存在或不可见"
// @Router /api/reports/{id} [get]
func (c *ReportController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id := ctx.Param("id")

	report, err := c.Service.Get(id, claims.UserID, claims.Role.IsAdmin())
	if err != nil {
		switch {
		case errors.Is(err, util.ErrReportNotReady):
			util.Error(ctx, 202, "报告生成中，请稍后重试")
		case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, util.ErrNotVisible):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, report)
}

// GetBySubmission godoc
// @Summary 某次提交的最新报告
// @Tags 报告
// @Produce  json
// @Param   id path int true "提交ID"
// @Success 200 {object} util.Response{data=model.Report} "成功"
// @Router /api/submissions/{id}/report [get]
func (c *ReportController) GetBySubmission(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	id, ok := paramID(ctx)
	if !ok {
		return
	}

	report, err := c.Service.GetBySubmission(id, claims.UserID, claims.Role.IsAdmin())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, util.ErrNotVisible) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, report)
}
