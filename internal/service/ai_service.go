package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"skillpath_backend/internal/config"
	"skillpath_backend/internal/util"
	"strings"
	"time"

	"go.uber.org/zap"
)

type AIService struct {
	config  config.AIConfig
	grading config.GradingConfig
	client  *http.Client
}

func NewAIService(cfg config.AIConfig, grading config.GradingConfig) *AIService {
	return &AIService{
		config:  cfg,
		grading: grading,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// rubricVerdict 大模型评分返回的结构化结果
type rubricVerdict struct {
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
}

func (s *AIService) Chat(prompt string, context string) (string, error) {
	messages := []AIChatMessage{}

	if context != "" {
		messages = append(messages, AIChatMessage{
			Role:    "system",
			Content: fmt.Sprintf("你是一个教育助教。请结合以下背景知识回答问题：\n\n%s", context),
		})
	} else {
		messages = append(messages, AIChatMessage{
			Role:    "system",
			Content: "你是一个专业的编程教育助教，请尽力回答学生的问题。",
		})
	}

	messages = append(messages, AIChatMessage{
		Role:    "user",
		Content: prompt,
	})

	return s.complete(messages)
}

// GradeText 依据评分量规对学生的开放文本作答打分。
// 只在传输层失败时重试；模型返回了内容但无法解析为合法评分结果时
// 立即按 GRADING_UNAVAILABLE 失败，不重试（重试拿到的大概率还是坏格式）。
func (s *AIService) GradeText(rubric string, prompt string, answer string) (float64, string, error) {
	messages := []AIChatMessage{
		{
			Role: "system",
			Content: "你是一个严格的编程教育评分员。根据给定的评分量规对学生作答打分。\n" +
				"只输出一个 JSON 对象，格式为 {\"score\": 0到1之间的小数, \"feedback\": \"一到两句中文点评\"}。\n" +
				"不要输出 markdown、代码块或任何其他文字。",
		},
		{
			Role: "user",
			Content: fmt.Sprintf("评分量规：\n%s\n\n题目：\n%s\n\n学生作答：\n%s",
				rubric, prompt, answer),
		},
	}

	var content string
	var err error
	retries := s.grading.AIMaxRetries
	for attempt := 0; ; attempt++ {
		content, err = s.complete(messages)
		if err == nil {
			break
		}
		if attempt >= retries {
			zap.L().Warn("AI 评分请求失败，已达重试上限",
				zap.Int("attempts", attempt+1), zap.Error(err))
			return 0, "", fmt.Errorf("%w: %v", util.ErrGradingUnavailable, err)
		}
		time.Sleep(s.grading.RetryBackoff)
	}

	verdict, perr := parseRubricVerdict(content)
	if perr != nil {
		zap.L().Warn("AI 评分返回无法解析", zap.String("content", content), zap.Error(perr))
		return 0, "", fmt.Errorf("%w: %v", util.ErrGradingUnavailable, perr)
	}
	return util.Clamp01(*verdict.Score), verdict.Feedback, nil
}

func (s *AIService) complete(messages []AIChatMessage) (string, error) {
	reqBody := ChatCompletionRequest{
		Model:    s.config.Model,
		Messages: messages,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("AI returned no choices")
}

// parseRubricVerdict 容忍模型把 JSON 包在围栏或多余文字里，
// 截取第一个 '{' 到最后一个 '}' 之间的内容再解析。
func parseRubricVerdict(content string) (*rubricVerdict, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in grader response")
	}

	var v rubricVerdict
	if err := json.Unmarshal([]byte(content[start:end+1]), &v); err != nil {
		return nil, err
	}
	if v.Score == nil {
		return nil, fmt.Errorf("grader response missing score")
	}
	if *v.Score < 0 || *v.Score > 1 {
		return nil, fmt.Errorf("grader score %v out of range", *v.Score)
	}
	return &v, nil
}
