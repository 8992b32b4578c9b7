package service

import (
	"encoding/json"
	"errors"
	"math"
	"skillpath_backend/internal/catalog"
	"skillpath_backend/internal/config"
	"testing"
)

type fakeRunner struct {
	calls   int
	results []TestCaseResult
	err     error
}

func (f *fakeRunner) RunTestCases(language, code string, cases []catalog.TestCase) ([]TestCaseResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeTextGrader struct {
	calls    int
	score    float64
	feedback string
	err      error
}

func (f *fakeTextGrader) GradeText(rubric, prompt, answer string) (float64, string, error) {
	f.calls++
	if f.err != nil {
		return 0, "", f.err
	}
	return f.score, f.feedback, nil
}

func testGradingConfig() config.GradingConfig {
	return config.GradingConfig{
		MCQConfidence:           map[int]float64{1: 0.6, 2: 0.65, 3: 0.75, 4: 0.85, 5: 0.9},
		QuestionnaireConfidence: 0.2,
		CodeConfidence:          0.9,
		AIConfidence:            0.7,
		DefaultPassThreshold:    1.0,
		WeakDimensionThreshold:  0.6,
	}
}

func newTestGrader(runner CodeRunner, text TextGrader) *GraderService {
	return NewGraderService(runner, text, testGradingConfig())
}

func mcqStep() *catalog.StepConfig {
	return &catalog.StepConfig{
		ID:         "mcq-1",
		Kind:       catalog.KindMCQ,
		Difficulty: 2,
		Options: []catalog.Option{
			{Key: "a", Label: "A"},
			{Key: "b", Label: "B"},
			{Key: "c", Label: "C"},
		},
		CorrectOption: "b",
	}
}

func TestGradeMCQ(t *testing.T) {
	g := newTestGrader(&fakeRunner{}, &fakeTextGrader{})
	step := mcqStep()

	tests := []struct {
		name       string
		answer     string
		wantScore  float64
		wantPassed bool
	}{
		{"correct option", `{"selected":"b"}`, 1.0, true},
		{"wrong option", `{"selected":"a"}`, 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := g.Grade(step, json.RawMessage(tt.answer))
			if err != nil {
				t.Fatalf("Grade returned error: %v", err)
			}
			if result.Score != tt.wantScore {
				t.Errorf("score = %v, want %v", result.Score, tt.wantScore)
			}
			if result.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v", result.Passed, tt.wantPassed)
			}
			if result.Confidence != 0.65 {
				t.Errorf("confidence = %v, want 0.65 for difficulty 2", result.Confidence)
			}
		})
	}
}

func TestGradeMCQUnknownOption(t *testing.T) {
	g := newTestGrader(&fakeRunner{}, &fakeTextGrader{})
	if _, err := g.Grade(mcqStep(), json.RawMessage(`{"selected":"z"}`)); err == nil {
		t.Fatal("expected validation error for unknown option")
	}
}

func TestGradeEmptyAnswerShortCircuits(t *testing.T) {
	runner := &fakeRunner{}
	text := &fakeTextGrader{}
	g := newTestGrader(runner, text)

	codeStep := &catalog.StepConfig{
		ID:       "code-1",
		Kind:     catalog.KindCode,
		Language: "c",
		TestCases: []catalog.TestCase{
			{Name: "t1", Expected: "1"},
		},
	}

	for _, raw := range []json.RawMessage{nil, json.RawMessage(`null`), json.RawMessage(`{}`)} {
		result, err := g.Grade(codeStep, raw)
		if err != nil {
			t.Fatalf("Grade(%s) returned error: %v", raw, err)
		}
		if result.Score != 0 || result.Passed {
			t.Errorf("Grade(%s) = score %v passed %v, want 0/false", raw, result.Score, result.Passed)
		}
	}
	if runner.calls != 0 {
		t.Errorf("sandbox called %d times for empty answers, want 0", runner.calls)
	}

	// 空文本同样不触发 AI 调用
	textStep := &catalog.StepConfig{ID: "text-1", Kind: catalog.KindShortText, Rubric: "r"}
	result, err := g.Grade(textStep, json.RawMessage(`{"text":""}`))
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if result.Passed || result.Score != 0 {
		t.Errorf("empty text = score %v passed %v, want 0/false", result.Score, result.Passed)
	}
	if text.calls != 0 {
		t.Errorf("AI grader called %d times for empty text, want 0", text.calls)
	}
}

func TestGradeBurst(t *testing.T) {
	g := newTestGrader(&fakeRunner{}, &fakeTextGrader{})
	opts := []catalog.Option{{Key: "a"}, {Key: "b"}}
	step := &catalog.StepConfig{
		ID:         "burst-1",
		Kind:       catalog.KindMicroMCQBurst,
		Difficulty: 3,
		Items: []catalog.BurstItem{
			{ID: "i1", Options: opts, Correct: "a"},
			{ID: "i2", Options: opts, Correct: "b"},
			{ID: "i3", Options: opts, Correct: "a"},
			{ID: "i4", Options: opts, Correct: "b"},
		},
	}

	result, err := g.Grade(step, json.RawMessage(`{"answers":{"i1":"a","i2":"b","i3":"b","i4":"b"}}`))
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if result.Score != 0.75 {
		t.Errorf("score = %v, want 0.75 for 3 of 4 correct", result.Score)
	}
	if result.Passed {
		t.Error("passed = true, want false unless every item is correct")
	}

	result, err = g.Grade(step, json.RawMessage(`{"answers":{"i1":"a","i2":"b","i3":"a","i4":"b"}}`))
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if !result.Passed || result.Score != 1.0 {
		t.Errorf("all correct = score %v passed %v, want 1/true", result.Score, result.Passed)
	}
}

func TestGradeQuestionnaireNormalizes(t *testing.T) {
	g := newTestGrader(&fakeRunner{}, &fakeTextGrader{})
	step := &catalog.StepConfig{
		ID:    "q-1",
		Kind:  catalog.KindQuestionnaire,
		Scale: 5,
		Questionnaire: []catalog.QuestionnaireItem{
			{ID: "q1", SkillKey: "s1"},
			{ID: "q2", SkillKey: "s2"},
		},
	}

	// (5-1)/4 = 1.0, (1-1)/4 = 0.0 -> mean 0.5
	result, err := g.Grade(step, json.RawMessage(`{"ratings":{"q1":5,"q2":1}}`))
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if math.Abs(result.Score-0.5) > 1e-9 {
		t.Errorf("score = %v, want 0.5", result.Score)
	}
	if result.Confidence != 0.2 {
		t.Errorf("confidence = %v, want questionnaire confidence 0.2", result.Confidence)
	}

	if _, err := g.Grade(step, json.RawMessage(`{"ratings":{"q1":9}}`)); err == nil {
		t.Fatal("expected error for rating outside scale")
	}
}

func TestGradeCodeWeighted(t *testing.T) {
	runner := &fakeRunner{results: []TestCaseResult{
		{Name: "t1", Passed: true},
		{Name: "t2", Passed: true},
		{Name: "t3", Passed: false},
		{Name: "t4", Passed: true},
	}}
	g := newTestGrader(runner, &fakeTextGrader{})
	step := &catalog.StepConfig{
		ID:       "code-1",
		Kind:     catalog.KindCode,
		Language: "c",
		TestCases: []catalog.TestCase{
			{Name: "t1", Weight: 1},
			{Name: "t2", Weight: 1},
			{Name: "t3", Weight: 1},
			{Name: "t4", Weight: 1},
		},
	}

	result, err := g.Grade(step, json.RawMessage(`{"code":"int main(){}"}`))
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if result.Score != 0.75 {
		t.Errorf("score = %v, want 0.75 for 3 of 4 passing", result.Score)
	}
	if result.Passed {
		t.Error("passed = true, want false with default threshold 1.0")
	}

	// 步骤级阈值覆盖默认值
	step.PassThreshold = 0.75
	result, err = g.Grade(step, json.RawMessage(`{"code":"int main(){}"}`))
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if !result.Passed {
		t.Error("passed = false, want true with step threshold 0.75")
	}
}

func TestGradeCodeHiddenCaseOutputsRedacted(t *testing.T) {
	runner := &fakeRunner{results: []TestCaseResult{
		{Name: "t1", Passed: true, Stdout: "visible out"},
		{Name: "t2", Passed: false, Stdout: "secret out", Stderr: "secret err"},
	}}
	g := newTestGrader(runner, &fakeTextGrader{})
	step := &catalog.StepConfig{
		ID:       "code-1",
		Kind:     catalog.KindCode,
		Language: "c",
		TestCases: []catalog.TestCase{
			{Name: "t1"},
			{Name: "t2", Hidden: true},
		},
	}

	result, err := g.Grade(step, json.RawMessage(`{"code":"x"}`))
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if result.CaseResults[0].Stdout != "visible out" {
		t.Errorf("visible case stdout = %q", result.CaseResults[0].Stdout)
	}
	if result.CaseResults[1].Stdout != "" || result.CaseResults[1].Stderr != "" {
		t.Error("hidden case output leaked to student")
	}
}

func TestGradeSandboxUnavailable(t *testing.T) {
	runner := &fakeRunner{err: errors.New("judge0 down")}
	g := newTestGrader(runner, &fakeTextGrader{})
	step := &catalog.StepConfig{
		ID:        "code-1",
		Kind:      catalog.KindCode,
		Language:  "c",
		TestCases: []catalog.TestCase{{Name: "t1"}},
	}

	result, err := g.Grade(step, json.RawMessage(`{"code":"x"}`))
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if !result.Unavailable {
		t.Error("unavailable = false, want true when the sandbox fails")
	}
}

func TestGradeTextUnavailable(t *testing.T) {
	text := &fakeTextGrader{err: errors.New("model returned garbage")}
	g := newTestGrader(&fakeRunner{}, text)
	step := &catalog.StepConfig{ID: "crit-1", Kind: catalog.KindDesignCritique, Rubric: "r"}

	result, err := g.Grade(step, json.RawMessage(`{"text":"my critique"}`))
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if !result.Unavailable {
		t.Error("unavailable = false, want true when the AI grader fails")
	}
}

func TestGradeTextUsesRubricVerdict(t *testing.T) {
	text := &fakeTextGrader{score: 0.8, feedback: "结构清晰"}
	g := newTestGrader(&fakeRunner{}, text)
	step := &catalog.StepConfig{ID: "text-1", Kind: catalog.KindShortText, Rubric: "r", PassThreshold: 0.7}

	result, err := g.Grade(step, json.RawMessage(`{"text":"O(n log n) because ..."}`))
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if result.Score != 0.8 || !result.Passed {
		t.Errorf("result = score %v passed %v, want 0.8/true", result.Score, result.Passed)
	}
	if result.Feedback != "结构清晰" {
		t.Errorf("feedback = %q", result.Feedback)
	}
	if result.Confidence != 0.7 {
		t.Errorf("confidence = %v, want AI confidence 0.7", result.Confidence)
	}
}

func TestGradeSummaryIsNonScoring(t *testing.T) {
	g := newTestGrader(&fakeRunner{}, &fakeTextGrader{})
	step := &catalog.StepConfig{ID: "wrap-up", Kind: catalog.KindSummary}

	result, err := g.Grade(step, json.RawMessage(`{"acknowledged":true}`))
	if err != nil {
		t.Fatalf("Grade returned error: %v", err)
	}
	if !result.Passed || result.Confidence != 0 {
		t.Errorf("summary = passed %v confidence %v, want true/0", result.Passed, result.Confidence)
	}
}

func TestGradeUnknownKind(t *testing.T) {
	g := newTestGrader(&fakeRunner{}, &fakeTextGrader{})
	step := &catalog.StepConfig{ID: "x", Kind: catalog.StepKind("ESSAY")}
	if _, err := g.Grade(step, json.RawMessage(`{"text":"hi"}`)); err == nil {
		t.Fatal("expected error for unknown step kind")
	}
}

func TestParseRubricVerdict(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		want    float64
	}{
		{"plain json", `{"score":0.75,"feedback":"ok"}`, false, 0.75},
		{"fenced json", "```json\n{\"score\":0.5,\"feedback\":\"ok\"}\n```", false, 0.5},
		{"missing score", `{"feedback":"ok"}`, true, 0},
		{"out of range", `{"score":1.5,"feedback":"ok"}`, true, 0},
		{"no json at all", "the student did well", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := parseRubricVerdict(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if *v.Score != tt.want {
				t.Errorf("score = %v, want %v", *v.Score, tt.want)
			}
		})
	}
}
