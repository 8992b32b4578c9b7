package controller

import (
	"encoding/json"
	"errors"
	"skillpath_backend/internal/service"
	"skillpath_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// IntakeController 测评会话接口
type IntakeController struct {
	IntakeService *service.IntakeService
}

func NewIntakeController(intakeService *service.IntakeService) *IntakeController {
	return &IntakeController{IntakeService: intakeService}
}

// StartSession godoc
// @Summary 开始测评
// @Description 为当前学生创建测评会话并返回第一步
// @Tags 测评
// @Produce  json
// @Security ApiKeyAuth
// @Success 201 {object} util.Response{data=service.StartResult} "创建成功"
// @Failure 401 {object} util.Response "未授权"
// @Failure 409 {object} util.Response "已有进行中的会话"
// @Router /api/intake/sessions [post]
func (c *IntakeController) StartSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.IntakeService.Start(claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrSessionAlreadyActive) {
			util.Conflict(ctx, "已有进行中的测评会话")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, result)
}

// CurrentStep godoc
// @Summary 当前步骤
// @Description 返回会话当前步骤的题面、进度与上次作答
// @Tags 测评
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.StepState} "成功"
// @Failure 403 {object} util.Response "无权访问该会话"
// @Failure 404 {object} util.Response "会话不存在"
// @Failure 409 {object} util.Response "会话已结束"
// @Router /api/intake/sessions/{id}/step [get]
func (c *IntakeController) CurrentStep(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	state, err := c.IntakeService.CurrentStep(claims.UserID, ctx.Param("id"))
	if err != nil {
		c.writeSessionError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// SubmitAnswerRequest 作答提交请求
// swagger:model SubmitAnswerRequest
type SubmitAnswerRequest struct {
	StepID string          `json:"stepId" binding:"required"`
	Answer json.RawMessage `json:"answer"`
}

// SubmitAnswer godoc
// @Summary 提交作答
// @Description 对当前步骤评分并推进会话；最后一步提交后完成会话并生成路线图
// @Tags 测评
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Param   body body SubmitAnswerRequest true "作答载荷"
// @Success 200 {object} util.Response{data=service.SubmitResult} "成功"
// @Failure 400 {object} util.Response "作答载荷非法"
// @Failure 403 {object} util.Response "无权访问该会话"
// @Failure 404 {object} util.Response "会话不存在"
// @Failure 409 {object} util.Response "步骤不匹配或会话已结束"
// @Router /api/intake/sessions/{id}/answers [post]
func (c *IntakeController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.IntakeService.SubmitAnswer(claims.UserID, ctx.Param("id"), req.StepID, req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrStepMismatch):
			util.Conflict(ctx, "提交的步骤与会话当前步骤不一致")
		case errors.Is(err, util.ErrSessionClosed):
			util.Conflict(ctx, "会话已结束")
		case errors.Is(err, util.ErrSessionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			// 评分器的校验错误：载荷格式、未知选项、取值越界
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, result)
}

// GoBack godoc
// @Summary 回退一步
// @Description 回到上一步，重新提交会覆盖原作答
// @Tags 测评
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.StepState} "成功"
// @Failure 404 {object} util.Response "会话不存在"
// @Failure 409 {object} util.Response "已在第一步或会话已结束"
// @Router /api/intake/sessions/{id}/back [post]
func (c *IntakeController) GoBack(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	state, err := c.IntakeService.GoBack(claims.UserID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrCannotGoBack) {
			util.Conflict(ctx, "已在第一步，无法回退")
		} else {
			c.writeSessionError(ctx, err)
		}
		return
	}
	util.Success(ctx, state)
}

// Summary godoc
// @Summary 测评结果
// @Description 已完成会话的作答明细、掌握度画像与学习路线图
// @Tags 测评
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response{data=service.SessionSummary} "成功"
// @Failure 404 {object} util.Response "会话不存在"
// @Failure 409 {object} util.Response "会话尚未完成"
// @Router /api/intake/sessions/{id}/summary [get]
func (c *IntakeController) Summary(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	summary, err := c.IntakeService.Summary(claims.UserID, ctx.Param("id"))
	if err != nil {
		c.writeSessionError(ctx, err)
		return
	}
	util.Success(ctx, summary)
}

// ListSessions godoc
// @Summary 会话列表
// @Description 教师/管理员查看测评会话，支持按状态和学生过滤
// @Tags 教学管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页条数" default(20)
// @Param   status query string false "状态过滤" Enums(IN_PROGRESS, COMPLETED, ABANDONED)
// @Param   userId query int false "学生ID过滤"
// @Success 200 {object} util.Response{data=[]model.IntakeSession} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/instructor/intake/sessions [get]
func (c *IntakeController) ListSessions(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	userID := util.MustParseUint(ctx.Query("userId"))

	sessions, total, err := c.IntakeService.ListSessions(page, limit, ctx.Query("status"), userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  sessions,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// AbandonSession godoc
// @Summary 废弃会话
// @Description 教师/管理员手动废弃进行中的会话
// @Tags 教学管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "会话ID"
// @Success 200 {object} util.Response "成功"
// @Failure 409 {object} util.Response "会话不在进行中"
// @Router /api/instructor/intake/sessions/{id}/abandon [post]
func (c *IntakeController) AbandonSession(ctx *gin.Context) {
	if err := c.IntakeService.Abandon(ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrSessionClosed) {
			util.Conflict(ctx, "会话不在进行中")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

func (c *IntakeController) writeSessionError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrSessionClosed):
		util.Conflict(ctx, "会话已结束或尚未完成")
	default:
		util.LogInternalError(ctx, err)
	}
}
