package catalog

import (
	"fmt"

	"skillpath_backend/internal/util"
)

// 题型枚举：评分器对其做穷举分派，新增题型需要同时扩展评分逻辑
type StepKind string

const (
	KindQuestionnaire    StepKind = "QUESTIONNAIRE"
	KindMCQ              StepKind = "MCQ"
	KindMicroMCQBurst    StepKind = "MICRO_MCQ_BURST"
	KindShortText        StepKind = "SHORT_TEXT"
	KindCode             StepKind = "CODE"
	KindDesignComparison StepKind = "DESIGN_COMPARISON"
	KindDesignCritique   StepKind = "DESIGN_CRITIQUE"
	KindSummary          StepKind = "SUMMARY"
)

type Dimension struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type Skill struct {
	Key       string `json:"key"`
	Dimension string `json:"dimension"`
	Label     string `json:"label"`
}

type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// BurstItem 速答组中的单个小题
type BurstItem struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
	Correct string   `json:"-"`
}

// TestCase 代码题测试用例；Hidden 用例不随题面下发但参与判分
type TestCase struct {
	Name     string `json:"name"`
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Weight   int    `json:"weight"`
	Hidden   bool   `json:"hidden"`
}

// QuestionnaireItem 自评问卷条目，Likert 量表 1~Scale
type QuestionnaireItem struct {
	ID       string `json:"id"`
	Prompt   string `json:"prompt"`
	SkillKey string `json:"skillKey"`
}

// StepConfig 单个测评步骤的静态定义，按 SequenceIndex 排序
type StepConfig struct {
	ID            string   `json:"id"`
	SequenceIndex int      `json:"sequenceIndex"`
	Kind          StepKind `json:"kind"`
	Title         string   `json:"title"`
	Prompt        string   `json:"prompt"`
	Difficulty    int      `json:"difficulty"` // 1~5，决定 MCQ 置信度查表
	SkillKeys     []string `json:"skillKeys"`

	// 按题型使用的负载字段
	Options       []Option            `json:"options,omitempty"`
	CorrectOption string              `json:"-"`
	Items         []BurstItem         `json:"items,omitempty"`
	Questionnaire []QuestionnaireItem `json:"questionnaire,omitempty"`
	Scale         int                 `json:"scale,omitempty"`
	Rubric        string              `json:"-"`
	Language      string              `json:"language,omitempty"`
	StarterCode   string              `json:"starterCode,omitempty"`
	TestCases     []TestCase          `json:"-"`
	// 代码题通关阈值，0 表示使用全局缺省
	PassThreshold float64 `json:"-"`
}

// VisibleTestCases 非隐藏用例，随题面下发给学生
func (s *StepConfig) VisibleTestCases() []TestCase {
	var out []TestCase
	for _, tc := range s.TestCases {
		if !tc.Hidden {
			out = append(out, tc)
		}
	}
	return out
}

type ResourceType string

const (
	ResourceReading   ResourceType = "reading"
	ResourceExercise  ResourceType = "exercise"
	ResourceProject   ResourceType = "project"
	ResourceMilestone ResourceType = "milestone"
)

// Resource 学习资源目录条目；Prerequisites 必须构成 DAG
type Resource struct {
	ID             string       `json:"id"`
	Type           ResourceType `json:"type"`
	Title          string       `json:"title"`
	Phase          int          `json:"phase"` // 1~3
	SkillKeys      []string     `json:"skillKeys"`
	Difficulty     int          `json:"difficulty"` // 1~5
	EstimatedHours float64      `json:"estimatedHours"`
	Prerequisites  []string     `json:"prerequisites"`
}

// Catalog 启动时装载一次的不可变目录，注入评分器/聚合器/路线生成器，
// 测试可以用夹具目录替换
type Catalog struct {
	Version    string
	Dimensions []Dimension
	Skills     []Skill
	Steps      []StepConfig
	Resources  []Resource

	skillIndex    map[string]int
	stepIndex     map[string]int
	resourceIndex map[string]int
	dimIndex      map[string]int
}

// New 构建并校验目录；任何制作错误（含先修成环）都在这里失败，而不是等到运行时
func New(version string, dims []Dimension, skills []Skill, steps []StepConfig, resources []Resource) (*Catalog, error) {
	c := &Catalog{
		Version:    version,
		Dimensions: dims,
		Skills:     skills,
		Steps:      steps,
		Resources:  resources,
	}
	if err := c.buildIndexes(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) buildIndexes() error {
	c.dimIndex = make(map[string]int, len(c.Dimensions))
	for i, d := range c.Dimensions {
		if _, dup := c.dimIndex[d.Key]; dup {
			return fmt.Errorf("duplicate dimension %q", d.Key)
		}
		c.dimIndex[d.Key] = i
	}
	c.skillIndex = make(map[string]int, len(c.Skills))
	for i, s := range c.Skills {
		if _, dup := c.skillIndex[s.Key]; dup {
			return fmt.Errorf("duplicate skill %q", s.Key)
		}
		c.skillIndex[s.Key] = i
	}
	c.stepIndex = make(map[string]int, len(c.Steps))
	for i, s := range c.Steps {
		if _, dup := c.stepIndex[s.ID]; dup {
			return fmt.Errorf("duplicate step %q", s.ID)
		}
		c.stepIndex[s.ID] = i
	}
	c.resourceIndex = make(map[string]int, len(c.Resources))
	for i, r := range c.Resources {
		if _, dup := c.resourceIndex[r.ID]; dup {
			return fmt.Errorf("duplicate resource %q", r.ID)
		}
		c.resourceIndex[r.ID] = i
	}
	return nil
}

func (c *Catalog) Validate() error {
	for _, s := range c.Skills {
		if _, ok := c.dimIndex[s.Dimension]; !ok {
			return fmt.Errorf("skill %q references unknown dimension %q", s.Key, s.Dimension)
		}
	}

	for i, step := range c.Steps {
		if step.SequenceIndex != i {
			return fmt.Errorf("step %q: sequence index %d, expected %d (steps must be contiguous)", step.ID, step.SequenceIndex, i)
		}
		for _, key := range step.SkillKeys {
			if _, ok := c.skillIndex[key]; !ok {
				return fmt.Errorf("step %q references unknown skill %q", step.ID, key)
			}
		}
		switch step.Kind {
		case KindMCQ, KindDesignComparison:
			if len(step.Options) == 0 {
				return fmt.Errorf("step %q: %s without options", step.ID, step.Kind)
			}
			if !hasOption(step.Options, step.CorrectOption) {
				return fmt.Errorf("step %q: correct option %q not among options", step.ID, step.CorrectOption)
			}
		case KindMicroMCQBurst:
			if len(step.Items) == 0 {
				return fmt.Errorf("step %q: burst without items", step.ID)
			}
			for _, item := range step.Items {
				if !hasOption(item.Options, item.Correct) {
					return fmt.Errorf("step %q item %q: correct option %q not among options", step.ID, item.ID, item.Correct)
				}
			}
		case KindQuestionnaire:
			if len(step.Questionnaire) == 0 || step.Scale < 2 {
				return fmt.Errorf("step %q: questionnaire needs items and a scale >= 2", step.ID)
			}
			for _, item := range step.Questionnaire {
				if _, ok := c.skillIndex[item.SkillKey]; !ok {
					return fmt.Errorf("step %q item %q references unknown skill %q", step.ID, item.ID, item.SkillKey)
				}
			}
		case KindCode:
			if len(step.TestCases) == 0 {
				return fmt.Errorf("step %q: code step without test cases", step.ID)
			}
		case KindShortText, KindDesignCritique:
			if step.Rubric == "" {
				return fmt.Errorf("step %q: %s without a rubric", step.ID, step.Kind)
			}
		case KindSummary:
			// 非计分步骤，无负载要求
		default:
			return fmt.Errorf("step %q: unknown kind %q", step.ID, step.Kind)
		}
	}

	for _, r := range c.Resources {
		if r.Phase < 1 || r.Phase > 3 {
			return fmt.Errorf("resource %q: phase %d out of range", r.ID, r.Phase)
		}
		if r.Difficulty < 1 || r.Difficulty > 5 {
			return fmt.Errorf("resource %q: difficulty %d out of range", r.ID, r.Difficulty)
		}
		for _, key := range r.SkillKeys {
			if _, ok := c.skillIndex[key]; !ok {
				return fmt.Errorf("resource %q references unknown skill %q", r.ID, key)
			}
		}
		for _, p := range r.Prerequisites {
			if _, ok := c.resourceIndex[p]; !ok {
				return fmt.Errorf("resource %q references unknown prerequisite %q", r.ID, p)
			}
		}
	}

	if err := c.checkAcyclic(); err != nil {
		return err
	}
	return nil
}

// checkAcyclic 对先修图做三色 DFS；成环返回 ErrCycleDetected
func (c *Catalog) checkAcyclic() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(c.Resources))

	var visit func(id string) error
	visit = func(id string) error {
		switch color[id] {
		case gray:
			return fmt.Errorf("%w: resource %q participates in a prerequisite cycle", util.ErrCycleDetected, id)
		case black:
			return nil
		}
		color[id] = gray
		idx := c.resourceIndex[id]
		for _, p := range c.Resources[idx].Prerequisites {
			if err := visit(p); err != nil {
				return err
			}
		}
		color[id] = black
		return nil
	}

	for _, r := range c.Resources {
		if err := visit(r.ID); err != nil {
			return err
		}
	}
	return nil
}

func hasOption(opts []Option, key string) bool {
	for _, o := range opts {
		if o.Key == key {
			return true
		}
	}
	return false
}

func (c *Catalog) TotalSteps() int {
	return len(c.Steps)
}

func (c *Catalog) StepAt(index int) (*StepConfig, bool) {
	if index < 0 || index >= len(c.Steps) {
		return nil, false
	}
	return &c.Steps[index], true
}

func (c *Catalog) StepByID(id string) (*StepConfig, bool) {
	i, ok := c.stepIndex[id]
	if !ok {
		return nil, false
	}
	return &c.Steps[i], true
}

func (c *Catalog) SkillByKey(key string) (*Skill, bool) {
	i, ok := c.skillIndex[key]
	if !ok {
		return nil, false
	}
	return &c.Skills[i], true
}

// DimensionOf 返回技能所属维度的 key
func (c *Catalog) DimensionOf(skillKey string) (string, bool) {
	s, ok := c.SkillByKey(skillKey)
	if !ok {
		return "", false
	}
	return s.Dimension, true
}

func (c *Catalog) SkillsInDimension(dimKey string) []Skill {
	var out []Skill
	for _, s := range c.Skills {
		if s.Dimension == dimKey {
			out = append(out, s)
		}
	}
	return out
}

func (c *Catalog) ResourceByID(id string) (*Resource, bool) {
	i, ok := c.resourceIndex[id]
	if !ok {
		return nil, false
	}
	return &c.Resources[i], true
}

// DeclarationIndex 资源在目录中的声明序，用作路线排序的最终决胜项
func (c *Catalog) DeclarationIndex(id string) int {
	return c.resourceIndex[id]
}
