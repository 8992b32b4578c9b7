package service

import (
	"errors"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/util"
	"strings"
	"testing"
)

type spyChat struct {
	calls   int
	context string
	answer  string
	err     error
}

func (s *spyChat) Chat(prompt string, context string) (string, error) {
	s.calls++
	s.context = context
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

type stubProfiles struct {
	profile *MasteryProfile
	err     error
}

func (s *stubProfiles) GetProfile(userID uint) (*MasteryProfile, error) {
	return s.profile, s.err
}

type stubRoadmaps struct {
	roadmap *model.StudentRoadmap
	err     error
}

func (s *stubRoadmaps) GetForUser(userID uint) (*model.StudentRoadmap, error) {
	return s.roadmap, s.err
}

func TestAskGroundsAnswerInProfileAndRoadmap(t *testing.T) {
	chat := &spyChat{answer: "先补数组基础"}
	profiles := &stubProfiles{profile: &MasteryProfile{
		UserID:              1,
		OverallScore:        0.4,
		TotalSkillsAssessed: 2,
		TotalSkills:         3,
		Dimensions: []DimensionScore{
			{Key: "dim_a", Label: "维度A", Score: 0.4, Confidence: 0.6, SkillsAssessed: 2},
			{Key: "dim_b", Label: "维度B"},
		},
	}}
	roadmaps := &stubRoadmaps{roadmap: &model.StudentRoadmap{
		UserID: 1,
		Items: []model.RoadmapItem{
			{Position: 0, ResourceID: "r-a", Status: model.RoadmapPending},
			{Position: 1, ResourceID: "r-b", Status: model.RoadmapCompleted},
		},
	}}

	svc := NewAssistantService(chat, profiles, roadmaps, testCatalog(t))
	res, err := svc.Ask(1, "我接下来该学什么？")
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if res.Answer != "先补数组基础" || res.Source != "profile" {
		t.Errorf("response = %+v, want the model answer with source profile", res)
	}
	if chat.calls != 1 {
		t.Fatalf("chat called %d times, want 1", chat.calls)
	}

	// 上下文要带上维度分和待学的路线图项，已完成的不出现
	for _, want := range []string{"维度A", "维度B", "RA"} {
		if !strings.Contains(chat.context, want) {
			t.Errorf("context missing %q:\n%s", want, chat.context)
		}
	}
	if strings.Contains(chat.context, "RB") {
		t.Errorf("context includes the completed item:\n%s", chat.context)
	}
}

func TestAskWithoutDataFallsBackToBareModel(t *testing.T) {
	chat := &spyChat{answer: "建议先完成入学测评"}
	profiles := &stubProfiles{profile: &MasteryProfile{UserID: 7}}
	roadmaps := &stubRoadmaps{err: util.ErrRoadmapNotFound}

	svc := NewAssistantService(chat, profiles, roadmaps, testCatalog(t))
	res, err := svc.Ask(7, "什么是哈希表？")
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if res.Source != "llm" {
		t.Errorf("source = %q, want llm when nothing has been assessed", res.Source)
	}
	if chat.context != "" {
		t.Errorf("context = %q, want empty", chat.context)
	}
}

func TestAskPropagatesChatFailure(t *testing.T) {
	chat := &spyChat{err: errors.New("upstream timeout")}
	svc := NewAssistantService(chat, &stubProfiles{err: errors.New("db down")}, &stubRoadmaps{err: util.ErrRoadmapNotFound}, testCatalog(t))

	if _, err := svc.Ask(1, "hi"); err == nil {
		t.Fatal("expected error when the model is unreachable")
	}
}
