package service

import (
	"encoding/json"
	"fmt"
	"skillpath_backend/internal/catalog"
	"skillpath_backend/internal/config"
	"skillpath_backend/internal/util"
	"skillpath_backend/pkg/monitoring"
	"sync"

	"go.uber.org/zap"
)

// CodeRunner 在沙箱里跑学生代码，由 JudgeService 实现
type CodeRunner interface {
	RunTestCases(language string, code string, cases []catalog.TestCase) ([]TestCaseResult, error)
}

// TextGrader 按量规给开放文本打分，由 AIService 实现
type TextGrader interface {
	GradeText(rubric string, prompt string, answer string) (float64, string, error)
}

// GradeResult 单步评分结果。Unavailable 表示外部评分方不可用，
// 作答已留存但不产生掌握度证据。
type GradeResult struct {
	Score       float64          `json:"score"`
	Passed      bool             `json:"passed"`
	Confidence  float64          `json:"confidence"`
	Feedback    string           `json:"feedback,omitempty"`
	Unavailable bool             `json:"unavailable,omitempty"`
	CaseResults []TestCaseResult `json:"caseResults,omitempty"`
}

type GraderService struct {
	runner     CodeRunner
	textGrader TextGrader

	mu      sync.RWMutex
	grading config.GradingConfig
}

func NewGraderService(runner CodeRunner, textGrader TextGrader, grading config.GradingConfig) *GraderService {
	return &GraderService{
		runner:     runner,
		textGrader: textGrader,
		grading:    grading,
	}
}

// UpdateGradingConfig 配置热更新时替换阈值与置信度参数
func (s *GraderService) UpdateGradingConfig(grading config.GradingConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grading = grading
}

func (s *GraderService) cfg() config.GradingConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grading
}

// 各题型的作答载荷
type selectedAnswer struct {
	Selected string `json:"selected"`
}

type burstAnswer struct {
	Answers map[string]string `json:"answers"`
}

type questionnaireAnswer struct {
	Ratings map[string]int `json:"ratings"`
}

type textAnswer struct {
	Text string `json:"text"`
}

type codeAnswer struct {
	Code string `json:"code"`
}

// Grade 对一步作答评分。返回 error 表示作答本身不合法（题型未知、
// 载荷格式错误、取值越界），不落库不计分；外部评分方故障不算作答
// 不合法，以 Unavailable 标记返回。
func (s *GraderService) Grade(step *catalog.StepConfig, rawAnswer json.RawMessage) (*GradeResult, error) {
	if isEmptyAnswer(rawAnswer) {
		monitoring.GradingCounter.WithLabelValues(string(step.Kind), "empty").Inc()
		return &GradeResult{
			Score:      0,
			Passed:     false,
			Confidence: s.confidenceFor(step),
			Feedback:   "未作答",
		}, nil
	}

	var result *GradeResult
	var err error

	switch step.Kind {
	case catalog.KindQuestionnaire:
		result, err = s.gradeQuestionnaire(step, rawAnswer)
	case catalog.KindMCQ, catalog.KindDesignComparison:
		result, err = s.gradeSelection(step, rawAnswer)
	case catalog.KindMicroMCQBurst:
		result, err = s.gradeBurst(step, rawAnswer)
	case catalog.KindShortText, catalog.KindDesignCritique:
		result, err = s.gradeText(step, rawAnswer)
	case catalog.KindCode:
		result, err = s.gradeCode(step, rawAnswer)
	case catalog.KindSummary:
		// 总结页不评分，确认即通过
		result = &GradeResult{Score: 0, Passed: true, Confidence: 0}
	default:
		return nil, fmt.Errorf("%w: %s", util.ErrUnknownStepKind, step.Kind)
	}

	if err != nil {
		return nil, err
	}

	outcome := "failed"
	switch {
	case result.Unavailable:
		outcome = "unavailable"
	case result.Passed:
		outcome = "passed"
	}
	monitoring.GradingCounter.WithLabelValues(string(step.Kind), outcome).Inc()
	return result, nil
}

func (s *GraderService) gradeSelection(step *catalog.StepConfig, raw json.RawMessage) (*GradeResult, error) {
	var ans selectedAnswer
	if err := json.Unmarshal(raw, &ans); err != nil || ans.Selected == "" {
		return nil, fmt.Errorf("invalid answer payload for step %s", step.ID)
	}
	if !hasOption(step.Options, ans.Selected) {
		return nil, fmt.Errorf("unknown option %q for step %s", ans.Selected, step.ID)
	}

	score := 0.0
	if ans.Selected == step.CorrectOption {
		score = 1.0
	}
	return &GradeResult{
		Score:      score,
		Passed:     score == 1.0,
		Confidence: s.confidenceFor(step),
	}, nil
}

func (s *GraderService) gradeBurst(step *catalog.StepConfig, raw json.RawMessage) (*GradeResult, error) {
	var ans burstAnswer
	if err := json.Unmarshal(raw, &ans); err != nil || len(ans.Answers) == 0 {
		return nil, fmt.Errorf("invalid answer payload for step %s", step.ID)
	}

	correct := 0
	for _, item := range step.Items {
		sel, ok := ans.Answers[item.ID]
		if !ok {
			continue
		}
		if !hasOption(item.Options, sel) {
			return nil, fmt.Errorf("unknown option %q for item %s", sel, item.ID)
		}
		if sel == item.Correct {
			correct++
		}
	}

	score := float64(correct) / float64(len(step.Items))
	return &GradeResult{
		Score:      score,
		Passed:     correct == len(step.Items),
		Confidence: s.confidenceFor(step),
	}, nil
}

func (s *GraderService) gradeQuestionnaire(step *catalog.StepConfig, raw json.RawMessage) (*GradeResult, error) {
	var ans questionnaireAnswer
	if err := json.Unmarshal(raw, &ans); err != nil || len(ans.Ratings) == 0 {
		return nil, fmt.Errorf("invalid answer payload for step %s", step.ID)
	}

	// 自评量表归一化到 [0,1]：rating 1 -> 0，rating scale -> 1
	sum := 0.0
	counted := 0
	for _, item := range step.Questionnaire {
		rating, ok := ans.Ratings[item.ID]
		if !ok {
			continue
		}
		if rating < 1 || rating > step.Scale {
			return nil, fmt.Errorf("rating %d out of range for item %s", rating, item.ID)
		}
		sum += float64(rating-1) / float64(step.Scale-1)
		counted++
	}
	if counted == 0 {
		return nil, fmt.Errorf("invalid answer payload for step %s", step.ID)
	}

	score := sum / float64(counted)
	return &GradeResult{
		Score:      score,
		Passed:     score >= 0.5,
		Confidence: s.cfg().QuestionnaireConfidence,
	}, nil
}

func (s *GraderService) gradeText(step *catalog.StepConfig, raw json.RawMessage) (*GradeResult, error) {
	var ans textAnswer
	if err := json.Unmarshal(raw, &ans); err != nil {
		return nil, fmt.Errorf("invalid answer payload for step %s", step.ID)
	}
	if ans.Text == "" {
		return &GradeResult{Score: 0, Passed: false, Confidence: s.cfg().AIConfidence, Feedback: "未作答"}, nil
	}

	score, feedback, err := s.textGrader.GradeText(step.Rubric, step.Prompt, ans.Text)
	if err != nil {
		monitoring.ExternalGraderFailures.WithLabelValues("ai").Inc()
		zap.L().Warn("文本评分不可用", zap.String("step", step.ID), zap.Error(err))
		return &GradeResult{Unavailable: true}, nil
	}

	return &GradeResult{
		Score:      score,
		Passed:     score >= s.passThreshold(step),
		Confidence: s.cfg().AIConfidence,
		Feedback:   feedback,
	}, nil
}

func (s *GraderService) gradeCode(step *catalog.StepConfig, raw json.RawMessage) (*GradeResult, error) {
	var ans codeAnswer
	if err := json.Unmarshal(raw, &ans); err != nil {
		return nil, fmt.Errorf("invalid answer payload for step %s", step.ID)
	}
	if ans.Code == "" {
		return &GradeResult{Score: 0, Passed: false, Confidence: s.cfg().CodeConfidence, Feedback: "未作答"}, nil
	}

	cases, err := s.runner.RunTestCases(step.Language, ans.Code, step.TestCases)
	if err != nil {
		monitoring.ExternalGraderFailures.WithLabelValues("judge0").Inc()
		zap.L().Warn("代码沙箱不可用", zap.String("step", step.ID), zap.Error(err))
		return &GradeResult{Unavailable: true}, nil
	}

	totalWeight := 0
	passedWeight := 0
	for i, tc := range step.TestCases {
		w := tc.Weight
		if w <= 0 {
			w = 1
		}
		totalWeight += w
		if i < len(cases) && cases[i].Passed {
			passedWeight += w
		}
	}

	score := float64(passedWeight) / float64(totalWeight)
	// 隐藏用例的输出不回显
	visible := make([]TestCaseResult, 0, len(cases))
	for i, cr := range cases {
		if i < len(step.TestCases) && step.TestCases[i].Hidden {
			visible = append(visible, TestCaseResult{Name: cr.Name, Passed: cr.Passed})
			continue
		}
		visible = append(visible, cr)
	}

	return &GradeResult{
		Score:       score,
		Passed:      score >= s.passThreshold(step)-1e-9,
		Confidence:  s.cfg().CodeConfidence,
		CaseResults: visible,
	}, nil
}

func (s *GraderService) passThreshold(step *catalog.StepConfig) float64 {
	if step.PassThreshold > 0 {
		return step.PassThreshold
	}
	return s.cfg().DefaultPassThreshold
}

func (s *GraderService) confidenceFor(step *catalog.StepConfig) float64 {
	switch step.Kind {
	case catalog.KindQuestionnaire:
		return s.cfg().QuestionnaireConfidence
	case catalog.KindCode:
		return s.cfg().CodeConfidence
	case catalog.KindShortText, catalog.KindDesignCritique:
		return s.cfg().AIConfidence
	case catalog.KindSummary:
		return 0
	}
	mcq := s.cfg().MCQConfidence
	if c, ok := mcq[step.Difficulty]; ok {
		return c
	}
	return mcq[3]
}

func hasOption(options []catalog.Option, key string) bool {
	for _, o := range options {
		if o.Key == key {
			return true
		}
	}
	return false
}

// isEmptyAnswer 识别“整体未作答”：空载荷、JSON null 或空对象。
// 题型内部的空字段（如 text 为空串）由各自的评分函数处理。
func isEmptyAnswer(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return true
	}
	var probe interface{}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	if probe == nil {
		return true
	}
	if m, ok := probe.(map[string]interface{}); ok && len(m) == 0 {
		return true
	}
	return false
}
