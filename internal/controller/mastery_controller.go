package controller

import (
	"skillpath_backend/internal/service"
	"skillpath_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// MasteryController 掌握度画像接口
type MasteryController struct {
	MasteryService *service.MasteryService
}

func NewMasteryController(masteryService *service.MasteryService) *MasteryController {
	return &MasteryController{MasteryService: masteryService}
}

// MyProfile godoc
// @Summary 我的掌握度画像
// @Description 当前学生按维度汇总的掌握度与置信度
// @Tags 掌握度
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.MasteryProfile} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/mastery/profile [get]
func (c *MasteryController) MyProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.MasteryService.GetProfile(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// MyEvents godoc
// @Summary 我的证据事件
// @Description 当前学生的掌握度证据事件流，可按技能过滤
// @Tags 掌握度
// @Produce  json
// @Security ApiKeyAuth
// @Param   skillKey query string false "技能过滤"
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页条数" default(50)
// @Success 200 {object} util.Response{data=[]model.MasteryEvent} "成功"
// @Failure 400 {object} util.Response "未知技能"
// @Router /api/mastery/events [get]
func (c *MasteryController) MyEvents(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	events, total, err := c.MasteryService.ListEvents(claims.UserID, ctx.Query("skillKey"), page, limit)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  events,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// StudentProfile godoc
// @Summary 学生掌握度画像
// @Description 教师/管理员查看指定学生的掌握度画像
// @Tags 教学管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "学生ID"
// @Success 200 {object} util.Response{data=service.MasteryProfile} "成功"
// @Failure 400 {object} util.Response "无效的学生ID"
// @Router /api/instructor/students/{id}/mastery [get]
func (c *MasteryController) StudentProfile(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "无效的学生ID")
		return
	}

	profile, err := c.MasteryService.GetProfile(uint(id))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// StudentEvents godoc
// @Summary 学生证据事件
// @Description 教师/管理员查看指定学生的掌握度证据事件流
// @Tags 教学管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "学生ID"
// @Param   skillKey query string false "技能过滤"
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页条数" default(50)
// @Success 200 {object} util.Response{data=[]model.MasteryEvent} "成功"
// @Failure 400 {object} util.Response "无效的学生ID或未知技能"
// @Router /api/instructor/students/{id}/events [get]
func (c *MasteryController) StudentEvents(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "无效的学生ID")
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	events, total, err := c.MasteryService.ListEvents(uint(id), ctx.Query("skillKey"), page, limit)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  events,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
