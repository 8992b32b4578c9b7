package controller

import (
	"net/http"
	"skillpath_backend/internal/service"
	"skillpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AssistantController 学习助手问答接口
type AssistantController struct {
	AssistantService *service.AssistantService
}

func NewAssistantController(assistantService *service.AssistantService) *AssistantController {
	return &AssistantController{AssistantService: assistantService}
}

// Ask godoc
// @Summary 学习助手问答
// @Description 结合当前学生的掌握度画像与路线图回答学习问题
// @Tags 助手
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.AskRequest true "问题内容"
// @Success 200 {object} util.Response{data=service.AskResponse} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "未授权"
// @Failure 503 {object} util.Response "助手暂时不可用"
// @Router /api/assistant/ask [post]
func (c *AssistantController) Ask(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.AssistantService.Ask(claims.UserID, req.Question)
	if err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "助手暂时不可用")
		return
	}
	util.Success(ctx, res)
}
