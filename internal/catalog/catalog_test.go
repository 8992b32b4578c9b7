package catalog

import (
	"encoding/json"
	"errors"
	"skillpath_backend/internal/util"
	"strings"
	"testing"
)

func minimalFixture() ([]Dimension, []Skill, []StepConfig, []Resource) {
	dims := []Dimension{{Key: "d1", Label: "D1"}}
	skills := []Skill{{Key: "s1", Dimension: "d1", Label: "S1"}}
	steps := []StepConfig{
		{
			ID: "step-0", SequenceIndex: 0, Kind: KindMCQ, Title: "t", Prompt: "p",
			Difficulty: 1, SkillKeys: []string{"s1"},
			Options:       []Option{{Key: "a", Label: "A"}, {Key: "b", Label: "B"}},
			CorrectOption: "a",
		},
	}
	resources := []Resource{
		{ID: "r1", Type: ResourceReading, Title: "R1", Phase: 1, Difficulty: 1, SkillKeys: []string{"s1"}},
	}
	return dims, skills, steps, resources
}

func TestDefaultCatalogIsWellFormed(t *testing.T) {
	c := Default()

	if c.TotalSteps() == 0 {
		t.Fatal("default catalog has no steps")
	}
	if len(c.Dimensions) != 8 {
		t.Errorf("dimensions = %d, want 8", len(c.Dimensions))
	}
	if len(c.Skills) != 60 {
		t.Errorf("skills = %d, want 60", len(c.Skills))
	}

	// 每种题型都要在默认流程里出现
	kinds := map[StepKind]bool{}
	for _, s := range c.Steps {
		kinds[s.Kind] = true
	}
	for _, k := range []StepKind{
		KindQuestionnaire, KindMCQ, KindMicroMCQBurst, KindShortText,
		KindCode, KindDesignComparison, KindDesignCritique, KindSummary,
	} {
		if !kinds[k] {
			t.Errorf("default catalog missing step kind %s", k)
		}
	}

	// 首尾固定：先问卷再总结
	if c.Steps[0].Kind != KindQuestionnaire {
		t.Errorf("first step kind = %s, want questionnaire", c.Steps[0].Kind)
	}
	if c.Steps[len(c.Steps)-1].Kind != KindSummary {
		t.Errorf("last step kind = %s, want summary", c.Steps[len(c.Steps)-1].Kind)
	}
}

func TestNewRejectsNonContiguousSteps(t *testing.T) {
	dims, skills, steps, resources := minimalFixture()
	steps[0].SequenceIndex = 5

	if _, err := New("test", dims, skills, steps, resources); err == nil {
		t.Fatal("expected error for non-contiguous sequence index")
	}
}

func TestNewRejectsBadStepPayloads(t *testing.T) {
	dims, skills, steps, resources := minimalFixture()

	tests := []struct {
		name   string
		mutate func(*StepConfig)
	}{
		{"mcq correct option missing", func(s *StepConfig) { s.CorrectOption = "z" }},
		{"mcq without options", func(s *StepConfig) { s.Options = nil }},
		{"unknown skill", func(s *StepConfig) { s.SkillKeys = []string{"nope"} }},
		{"unknown kind", func(s *StepConfig) { s.Kind = StepKind("ESSAY") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := steps[0]
			tt.mutate(&bad)
			if _, err := New("test", dims, skills, []StepConfig{bad}, resources); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestNewDetectsPrerequisiteCycle(t *testing.T) {
	dims, skills, steps, _ := minimalFixture()
	resources := []Resource{
		{ID: "r1", Type: ResourceReading, Title: "R1", Phase: 1, Difficulty: 1, SkillKeys: []string{"s1"}, Prerequisites: []string{"r2"}},
		{ID: "r2", Type: ResourceReading, Title: "R2", Phase: 1, Difficulty: 1, SkillKeys: []string{"s1"}, Prerequisites: []string{"r3"}},
		{ID: "r3", Type: ResourceReading, Title: "R3", Phase: 1, Difficulty: 1, SkillKeys: []string{"s1"}, Prerequisites: []string{"r1"}},
	}

	_, err := New("test", dims, skills, steps, resources)
	if !errors.Is(err, util.ErrCycleDetected) {
		t.Fatalf("err = %v, want cycle detected", err)
	}
}

func TestNewRejectsDanglingPrerequisite(t *testing.T) {
	dims, skills, steps, resources := minimalFixture()
	resources[0].Prerequisites = []string{"ghost"}

	if _, err := New("test", dims, skills, steps, resources); err == nil {
		t.Fatal("expected error for unknown prerequisite")
	}
}

func TestStepSerializationHidesAnswers(t *testing.T) {
	c := Default()

	for i := range c.Steps {
		step := &c.Steps[i]
		data, err := json.Marshal(step)
		if err != nil {
			t.Fatalf("marshal step %s: %v", step.ID, err)
		}
		out := string(data)

		if step.CorrectOption != "" && strings.Contains(out, `"correctOption"`) {
			t.Errorf("step %s leaks correct option", step.ID)
		}
		if step.Rubric != "" && strings.Contains(out, step.Rubric) {
			t.Errorf("step %s leaks rubric", step.ID)
		}
		if strings.Contains(out, `"testCases"`) {
			t.Errorf("step %s serializes raw test cases", step.ID)
		}
		for _, item := range step.Items {
			if strings.Contains(out, `"correct"`) {
				t.Errorf("step %s item %s leaks burst answer", step.ID, item.ID)
			}
		}
	}
}

func TestVisibleTestCasesFiltersHidden(t *testing.T) {
	c := Default()

	for i := range c.Steps {
		step := &c.Steps[i]
		if step.Kind != KindCode {
			continue
		}
		visible := step.VisibleTestCases()
		if len(visible) == 0 {
			t.Errorf("code step %s has no visible test cases", step.ID)
		}
		for _, tc := range visible {
			if tc.Hidden {
				t.Errorf("code step %s exposes hidden case %s", step.ID, tc.Name)
			}
		}
		if len(visible) == len(step.TestCases) {
			t.Errorf("code step %s has no hidden cases at all", step.ID)
		}
	}
}

func TestCatalogLookups(t *testing.T) {
	c := Default()

	step, ok := c.StepAt(0)
	if !ok || step.SequenceIndex != 0 {
		t.Fatal("StepAt(0) failed")
	}
	if _, ok := c.StepAt(c.TotalSteps()); ok {
		t.Error("StepAt past the end should report absence")
	}

	byID, ok := c.StepByID(step.ID)
	if !ok || byID.ID != step.ID {
		t.Errorf("StepByID(%s) failed", step.ID)
	}

	skill := c.Skills[0]
	dim, ok := c.DimensionOf(skill.Key)
	if !ok || dim != skill.Dimension {
		t.Errorf("DimensionOf(%s) = %s, want %s", skill.Key, dim, skill.Dimension)
	}

	inDim := c.SkillsInDimension(skill.Dimension)
	if len(inDim) == 0 {
		t.Errorf("SkillsInDimension(%s) empty", skill.Dimension)
	}

	// 资源引用的技能必须都能解析出维度
	for _, r := range c.Resources {
		for _, key := range r.SkillKeys {
			if _, ok := c.DimensionOf(key); !ok {
				t.Errorf("resource %s references skill %s with no dimension", r.ID, key)
			}
		}
	}
}
