package service

import (
	"fmt"
	"skillpath_backend/internal/catalog"
	"skillpath_backend/internal/model"
	"strings"
)

// assistantChat 大模型问答客户端，生产实现是 AIService
type assistantChat interface {
	Chat(prompt string, context string) (string, error)
}

type profileReader interface {
	GetProfile(userID uint) (*MasteryProfile, error)
}

type roadmapReader interface {
	GetForUser(userID uint) (*model.StudentRoadmap, error)
}

// AssistantService 学习助手：回答学生关于自身进度和路线图的问题。
// 上下文从掌握度画像和当前路线图检索，拼进系统提示后调用大模型。
type AssistantService struct {
	chat     assistantChat
	mastery  profileReader
	roadmaps roadmapReader
	catalog  *catalog.Catalog
}

func NewAssistantService(chat assistantChat, mastery profileReader, roadmaps roadmapReader, cat *catalog.Catalog) *AssistantService {
	return &AssistantService{
		chat:     chat,
		mastery:  mastery,
		roadmaps: roadmaps,
		catalog:  cat,
	}
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

type AskResponse struct {
	Answer string `json:"answer"`
	Source string `json:"source"` // profile或者llm
}

func (s *AssistantService) Ask(userID uint, question string) (*AskResponse, error) {
	context := s.buildContext(userID)
	source := "llm"
	if context != "" {
		source = "profile"
	}

	answer, err := s.chat.Chat(question, context)
	if err != nil {
		return nil, err
	}

	return &AskResponse{
		Answer: answer,
		Source: source,
	}, nil
}

// buildContext 把该学生的薄弱维度和路线图待学项拼成背景知识。
// 还没有任何评估数据时返回空串，让模型裸答。
func (s *AssistantService) buildContext(userID uint) string {
	var b strings.Builder

	if profile, err := s.mastery.GetProfile(userID); err == nil && profile.TotalSkillsAssessed > 0 {
		b.WriteString(fmt.Sprintf("[掌握度画像] 总分 %.2f，已评估技能 %d/%d\n",
			profile.OverallScore, profile.TotalSkillsAssessed, profile.TotalSkills))
		for _, dim := range profile.Dimensions {
			if dim.SkillsAssessed == 0 {
				b.WriteString(fmt.Sprintf("[维度] %s：尚未评估\n", dim.Label))
				continue
			}
			b.WriteString(fmt.Sprintf("[维度] %s：掌握度 %.2f，置信度 %.2f\n",
				dim.Label, dim.Score, dim.Confidence))
		}
	}

	if roadmap, err := s.roadmaps.GetForUser(userID); err == nil {
		for _, item := range roadmap.Items {
			if item.Status != model.RoadmapPending && item.Status != model.RoadmapInProgress {
				continue
			}
			res, ok := s.catalog.ResourceByID(item.ResourceID)
			if !ok {
				continue
			}
			b.WriteString(fmt.Sprintf("[路线图第%d项] %s（%s，预计 %.0f 小时，状态 %s）\n",
				item.Position+1, res.Title, res.Type, res.EstimatedHours, item.Status))
		}
	}

	return b.String()
}
