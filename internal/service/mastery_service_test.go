package service

import (
	"fmt"
	"math"
	"skillpath_backend/internal/catalog"
	"skillpath_backend/internal/model"
	"testing"

	"gorm.io/gorm"
)

type fakeMasteryStore struct {
	events    []model.MasteryEvent
	masteries map[string]*model.SkillMastery
}

func newFakeMasteryStore() *fakeMasteryStore {
	return &fakeMasteryStore{masteries: make(map[string]*model.SkillMastery)}
}

func masteryKey(userID uint, skillKey string) string {
	return fmt.Sprintf("%d/%s", userID, skillKey)
}

func (f *fakeMasteryStore) AppendEvent(event *model.MasteryEvent) error {
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeMasteryStore) FindMastery(userID uint, skillKey string) (*model.SkillMastery, error) {
	m, ok := f.masteries[masteryKey(userID, skillKey)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *m
	return &copied, nil
}

func (f *fakeMasteryStore) CreateMastery(m *model.SkillMastery) error {
	f.masteries[masteryKey(m.UserID, m.SkillKey)] = m
	return nil
}

func (f *fakeMasteryStore) SaveMastery(m *model.SkillMastery) error {
	f.masteries[masteryKey(m.UserID, m.SkillKey)] = m
	return nil
}

func (f *fakeMasteryStore) ListMasteryByUser(userID uint) ([]model.SkillMastery, error) {
	var out []model.SkillMastery
	for _, m := range f.masteries {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMasteryStore) ListEventsByUser(userID uint, skillKey string, page, limit int) ([]model.MasteryEvent, int64, error) {
	var out []model.MasteryEvent
	for _, e := range f.events {
		if e.UserID == userID && (skillKey == "" || e.SkillKey == skillKey) {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New("test",
		[]catalog.Dimension{
			{Key: "dim_a", Label: "A"},
			{Key: "dim_b", Label: "B"},
		},
		[]catalog.Skill{
			{Key: "a1", Dimension: "dim_a", Label: "A1"},
			{Key: "a2", Dimension: "dim_a", Label: "A2"},
			{Key: "b1", Dimension: "dim_b", Label: "B1"},
		},
		[]catalog.StepConfig{
			{
				ID: "s0", SequenceIndex: 0, Kind: catalog.KindMCQ, Title: "t", Prompt: "p",
				Difficulty: 2, SkillKeys: []string{"a1"},
				Options:       []catalog.Option{{Key: "a", Label: "A"}, {Key: "b", Label: "B"}},
				CorrectOption: "a",
			},
			{ID: "s1", SequenceIndex: 1, Kind: catalog.KindSummary, Title: "t", Prompt: "p"},
		},
		[]catalog.Resource{
			{ID: "r-a", Type: catalog.ResourceReading, Title: "RA", Phase: 1, Difficulty: 1, SkillKeys: []string{"a1"}},
			{ID: "r-b", Type: catalog.ResourceReading, Title: "RB", Phase: 1, Difficulty: 2, SkillKeys: []string{"b1"}},
		},
	)
	if err != nil {
		t.Fatalf("building test catalog: %v", err)
	}
	return cat
}

func TestRecordEventInitializesMastery(t *testing.T) {
	store := newFakeMasteryStore()
	svc := NewMasteryService(store, testCatalog(t), nil)

	m, err := svc.RecordEvent(1, "a1", model.EventSuccess, 0.8, 0.65)
	if err != nil {
		t.Fatalf("RecordEvent returned error: %v", err)
	}
	if m.Mastery != 0.8 {
		t.Errorf("mastery = %v, want 0.8 from first event", m.Mastery)
	}
	if m.Confidence != 0.65 {
		t.Errorf("confidence = %v, want 0.65 from first event", m.Confidence)
	}
	if m.EventCount != 1 {
		t.Errorf("eventCount = %d, want 1", m.EventCount)
	}
	if len(store.events) != 1 {
		t.Fatalf("stored %d events, want 1", len(store.events))
	}
}

func TestRecordEventWeightedFold(t *testing.T) {
	store := newFakeMasteryStore()
	svc := NewMasteryService(store, testCatalog(t), nil)

	if _, err := svc.RecordEvent(1, "a1", model.EventSuccess, 1.0, 0.5); err != nil {
		t.Fatalf("RecordEvent returned error: %v", err)
	}
	m, err := svc.RecordEvent(1, "a1", model.EventFailure, 0.0, 0.5)
	if err != nil {
		t.Fatalf("RecordEvent returned error: %v", err)
	}

	// (1.0*0.5 + 0.0*0.5) / (0.5+0.5) = 0.5
	if math.Abs(m.Mastery-0.5) > 1e-9 {
		t.Errorf("mastery = %v, want 0.5", m.Mastery)
	}
	if math.Abs(m.Confidence-1.0) > 1e-9 {
		t.Errorf("confidence = %v, want 1.0", m.Confidence)
	}
}

func TestRecordEventConfidenceSaturates(t *testing.T) {
	store := newFakeMasteryStore()
	svc := NewMasteryService(store, testCatalog(t), nil)

	var last *model.SkillMastery
	var err error
	for i := 0; i < 5; i++ {
		last, err = svc.RecordEvent(1, "a1", model.EventSuccess, 1.0, 0.9)
		if err != nil {
			t.Fatalf("RecordEvent returned error: %v", err)
		}
		if last.Confidence > 1.0 {
			t.Fatalf("confidence %v exceeded 1.0 after event %d", last.Confidence, i+1)
		}
	}
	if last.Confidence != 1.0 {
		t.Errorf("confidence = %v, want saturation at 1.0", last.Confidence)
	}
	if last.Mastery < 0 || last.Mastery > 1 {
		t.Errorf("mastery %v outside [0,1]", last.Mastery)
	}
	if last.EventCount != 5 {
		t.Errorf("eventCount = %d, want 5", last.EventCount)
	}
}

func TestRecordEventRejectsBadInput(t *testing.T) {
	svc := NewMasteryService(newFakeMasteryStore(), testCatalog(t), nil)

	if _, err := svc.RecordEvent(1, "no-such-skill", model.EventSuccess, 1.0, 0.5); err == nil {
		t.Error("expected error for unknown skill key")
	}
	if _, err := svc.RecordEvent(1, "a1", model.EventSuccess, 1.5, 0.5); err == nil {
		t.Error("expected error for score out of range")
	}
	if _, err := svc.RecordEvent(1, "a1", model.EventSuccess, 0.5, 0); err == nil {
		t.Error("expected error for zero confidence weight")
	}
}

func TestGetProfileExcludesUnassessedSkills(t *testing.T) {
	store := newFakeMasteryStore()
	svc := NewMasteryService(store, testCatalog(t), nil)

	if _, err := svc.RecordEvent(1, "a1", model.EventSuccess, 0.9, 0.8); err != nil {
		t.Fatalf("RecordEvent returned error: %v", err)
	}

	profile, err := svc.GetProfile(1)
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}

	if profile.TotalSkillsAssessed != 1 {
		t.Errorf("totalSkillsAssessed = %d, want 1", profile.TotalSkillsAssessed)
	}
	if profile.TotalSkills != 3 {
		t.Errorf("totalSkills = %d, want 3", profile.TotalSkills)
	}

	var dimA, dimB *DimensionScore
	for i := range profile.Dimensions {
		switch profile.Dimensions[i].Key {
		case "dim_a":
			dimA = &profile.Dimensions[i]
		case "dim_b":
			dimB = &profile.Dimensions[i]
		}
	}
	if dimA == nil || dimB == nil {
		t.Fatal("profile missing dimensions")
	}

	// a2 从未评估，不得摊薄 dim_a 的均值
	if dimA.Score != 0.9 {
		t.Errorf("dim_a score = %v, want 0.9", dimA.Score)
	}
	if dimA.SkillsAssessed != 1 || dimA.SkillCount != 2 {
		t.Errorf("dim_a assessed/count = %d/%d, want 1/2", dimA.SkillsAssessed, dimA.SkillCount)
	}
	if dimB.SkillsAssessed != 0 || dimB.Score != 0 {
		t.Errorf("dim_b = assessed %d score %v, want 0/0", dimB.SkillsAssessed, dimB.Score)
	}
	if profile.OverallScore != 0.9 {
		t.Errorf("overallScore = %v, want 0.9", profile.OverallScore)
	}
}

func TestGetProfileOverallIsDimensionMean(t *testing.T) {
	store := newFakeMasteryStore()
	svc := NewMasteryService(store, testCatalog(t), nil)

	// dim_a：两个技能都评满分；dim_b：单个技能 0.5。
	// 总分按维度均值取 0.75，而不是按技能均值的 0.8333。
	for _, key := range []string{"a1", "a2"} {
		if _, err := svc.RecordEvent(1, key, model.EventSuccess, 1.0, 0.8); err != nil {
			t.Fatalf("RecordEvent(%s) returned error: %v", key, err)
		}
	}
	if _, err := svc.RecordEvent(1, "b1", model.EventFailure, 0.5, 0.8); err != nil {
		t.Fatalf("RecordEvent(b1) returned error: %v", err)
	}

	profile, err := svc.GetProfile(1)
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}
	if profile.OverallScore != 0.75 {
		t.Errorf("overallScore = %v, want 0.75", profile.OverallScore)
	}
}

func TestGetProfileEmptyUser(t *testing.T) {
	svc := NewMasteryService(newFakeMasteryStore(), testCatalog(t), nil)

	profile, err := svc.GetProfile(42)
	if err != nil {
		t.Fatalf("GetProfile returned error: %v", err)
	}
	if profile.TotalSkillsAssessed != 0 || profile.OverallScore != 0 {
		t.Errorf("empty profile = assessed %d overall %v, want zeros", profile.TotalSkillsAssessed, profile.OverallScore)
	}
	if len(profile.Dimensions) != 2 {
		t.Errorf("dimensions = %d, want all catalog dimensions listed", len(profile.Dimensions))
	}
}
