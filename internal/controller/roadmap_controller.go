package controller

import (
	"errors"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/service"
	"skillpath_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RoadmapController 学习路线图接口
type RoadmapController struct {
	RoadmapService *service.RoadmapService
}

func NewRoadmapController(roadmapService *service.RoadmapService) *RoadmapController {
	return &RoadmapController{RoadmapService: roadmapService}
}

// MyRoadmap godoc
// @Summary 我的学习路线图
// @Description 当前学生最近一次测评生成的路线图，条目附带资源详情
// @Tags 路线图
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "尚未生成路线图"
// @Router /api/roadmap [get]
func (c *RoadmapController) MyRoadmap(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	roadmap, err := c.RoadmapService.GetForUser(claims.UserID)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, gin.H{
		"id":          roadmap.ID,
		"sessionId":   roadmap.SessionID,
		"generatedAt": roadmap.GeneratedAt,
		"items":       c.RoadmapService.Expand(roadmap),
	})
}

// UpdateItemRequest 路线图条目状态更新请求
// swagger:model UpdateItemRequest
type UpdateItemRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in_progress completed skipped"`
}

// UpdateItem godoc
// @Summary 更新路线图条目
// @Description 标记条目为进行中/已完成/已跳过；学生只能改自己的路线图
// @Tags 路线图
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   itemId path int true "条目ID"
// @Param   body body UpdateItemRequest true "目标状态"
// @Success 200 {object} util.Response{data=model.RoadmapItem} "成功"
// @Failure 400 {object} util.Response "状态取值非法"
// @Failure 403 {object} util.Response "无权修改"
// @Failure 404 {object} util.Response "条目不存在"
// @Router /api/roadmap/items/{itemId} [put]
func (c *RoadmapController) UpdateItem(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	itemID, err := strconv.ParseUint(ctx.Param("itemId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "无效的条目ID")
		return
	}

	var req UpdateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	item, err := c.RoadmapService.UpdateItemStatus(claims.UserID, claims.Role, uint(itemID), model.RoadmapItemStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrRoadmapNotFound):
			util.NotFound(ctx)
		default:
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, item)
}

// StudentRoadmap godoc
// @Summary 学生路线图
// @Description 教师/管理员查看指定学生的最新路线图
// @Tags 教学管理
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "学生ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "尚未生成路线图"
// @Router /api/instructor/students/{id}/roadmap [get]
func (c *RoadmapController) StudentRoadmap(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "无效的学生ID")
		return
	}

	roadmap, err := c.RoadmapService.GetForUser(uint(id))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, gin.H{
		"id":          roadmap.ID,
		"userId":      roadmap.UserID,
		"sessionId":   roadmap.SessionID,
		"generatedAt": roadmap.GeneratedAt,
		"items":       c.RoadmapService.Expand(roadmap),
	})
}
