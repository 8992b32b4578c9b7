package controller

import (
	"skillpath_backend/internal/catalog"
	"skillpath_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CatalogController 只读目录接口：维度、技能、流程元数据与资源库
type CatalogController struct {
	Catalog *catalog.Catalog
}

func NewCatalogController(cat *catalog.Catalog) *CatalogController {
	return &CatalogController{Catalog: cat}
}

// Skills godoc
// @Summary 技能目录
// @Description 全部维度及其技能
// @Tags 目录
// @Produce  json
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/catalog/skills [get]
func (c *CatalogController) Skills(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"version":    c.Catalog.Version,
		"dimensions": c.Catalog.Dimensions,
		"skills":     c.Catalog.Skills,
	})
}

// Steps godoc
// @Summary 测评流程元数据
// @Description 流程步骤数与每步的题型、难度、涉及技能；不含题面与答案
// @Tags 目录
// @Produce  json
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/catalog/steps [get]
func (c *CatalogController) Steps(ctx *gin.Context) {
	type stepMeta struct {
		ID            string           `json:"id"`
		SequenceIndex int              `json:"sequenceIndex"`
		Kind          catalog.StepKind `json:"kind"`
		Title         string           `json:"title"`
		Difficulty    int              `json:"difficulty"`
		SkillKeys     []string         `json:"skillKeys,omitempty"`
	}

	metas := make([]stepMeta, 0, c.Catalog.TotalSteps())
	for _, s := range c.Catalog.Steps {
		metas = append(metas, stepMeta{
			ID:            s.ID,
			SequenceIndex: s.SequenceIndex,
			Kind:          s.Kind,
			Title:         s.Title,
			Difficulty:    s.Difficulty,
			SkillKeys:     s.SkillKeys,
		})
	}

	util.Success(ctx, gin.H{
		"version":    c.Catalog.Version,
		"totalSteps": c.Catalog.TotalSteps(),
		"steps":      metas,
	})
}

// Resources godoc
// @Summary 学习资源库
// @Description 全部学习资源及其先修关系
// @Tags 目录
// @Produce  json
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/catalog/resources [get]
func (c *CatalogController) Resources(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"version":   c.Catalog.Version,
		"resources": c.Catalog.Resources,
	})
}
