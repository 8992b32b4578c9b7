package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"skillpath_backend/internal/catalog"
	"skillpath_backend/internal/config"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/util"
	"testing"
	"time"

	"gorm.io/gorm"
)

type fakeIntakeStore struct {
	sessions  map[string]*model.IntakeSession
	responses map[string]*model.IntakeResponse // sessionID/stepID
	seq       int
}

func newFakeIntakeStore() *fakeIntakeStore {
	return &fakeIntakeStore{
		sessions:  make(map[string]*model.IntakeSession),
		responses: make(map[string]*model.IntakeResponse),
	}
}

func respKey(sessionID, stepID string) string { return sessionID + "/" + stepID }

func (f *fakeIntakeStore) CreateSession(s *model.IntakeSession) error {
	f.seq++
	s.ID = fmt.Sprintf("sess-%d", f.seq)
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeIntakeStore) FindSessionByID(id string) (*model.IntakeSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeIntakeStore) FindActiveByUser(userID uint) (*model.IntakeSession, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && s.Status == model.SessionInProgress {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeIntakeStore) ListSessions(page, limit int, status string, userID uint) ([]model.IntakeSession, int64, error) {
	var out []model.IntakeSession
	for _, s := range f.sessions {
		if status != "" && string(s.Status) != status {
			continue
		}
		if userID != 0 && s.UserID != userID {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (f *fakeIntakeStore) AdvanceStep(sessionID string, fromIndex, toIndex int, status model.SessionStatus, completedAt *time.Time) (bool, error) {
	s, ok := f.sessions[sessionID]
	if !ok || s.CurrentStepIndex != fromIndex || s.Status != model.SessionInProgress {
		return false, nil
	}
	s.CurrentStepIndex = toIndex
	s.Status = status
	s.CompletedAt = completedAt
	s.LastActivityAt = time.Now()
	return true, nil
}

func (f *fakeIntakeStore) StepBack(sessionID string, fromIndex int) (bool, error) {
	s, ok := f.sessions[sessionID]
	if !ok || s.CurrentStepIndex != fromIndex || s.Status != model.SessionInProgress {
		return false, nil
	}
	s.CurrentStepIndex--
	s.LastActivityAt = time.Now()
	return true, nil
}

func (f *fakeIntakeStore) AbandonSession(sessionID string) (bool, error) {
	s, ok := f.sessions[sessionID]
	if !ok || s.Status != model.SessionInProgress {
		return false, nil
	}
	s.Status = model.SessionAbandoned
	return true, nil
}

func (f *fakeIntakeStore) AbandonStale(idleSince time.Time) (int64, error) {
	var count int64
	for _, s := range f.sessions {
		if s.Status == model.SessionInProgress && s.LastActivityAt.Before(idleSince) {
			s.Status = model.SessionAbandoned
			count++
		}
	}
	return count, nil
}

func (f *fakeIntakeStore) UpsertResponse(resp *model.IntakeResponse) error {
	f.responses[respKey(resp.SessionID, resp.StepID)] = resp
	return nil
}

func (f *fakeIntakeStore) FindResponse(sessionID, stepID string) (*model.IntakeResponse, error) {
	r, ok := f.responses[respKey(sessionID, stepID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeIntakeStore) ListResponses(sessionID string) ([]model.IntakeResponse, error) {
	var out []model.IntakeResponse
	for _, r := range f.responses {
		if r.SessionID == sessionID {
			out = append(out, *r)
		}
	}
	return out, nil
}

// scriptedGrader 按步骤 ID 返回预置结果
type scriptedGrader struct {
	results map[string]*GradeResult
}

func (g *scriptedGrader) Grade(step *catalog.StepConfig, rawAnswer json.RawMessage) (*GradeResult, error) {
	if r, ok := g.results[step.ID]; ok {
		return r, nil
	}
	return &GradeResult{Score: 1, Passed: true, Confidence: 0.65}, nil
}

type recordedEvent struct {
	userID    uint
	skillKey  string
	eventType model.MasteryEventType
	score     float64
	weight    float64
}

type spyMastery struct {
	events []recordedEvent
}

func (s *spyMastery) RecordEvent(userID uint, skillKey string, eventType model.MasteryEventType, score, weight float64) (*model.SkillMastery, error) {
	s.events = append(s.events, recordedEvent{userID, skillKey, eventType, score, weight})
	return &model.SkillMastery{UserID: userID, SkillKey: skillKey}, nil
}

func (s *spyMastery) GetProfile(userID uint) (*MasteryProfile, error) {
	return &MasteryProfile{UserID: userID}, nil
}

type spyRoadmaps struct {
	generated int
	roadmaps  map[string]*model.StudentRoadmap
}

func newSpyRoadmaps() *spyRoadmaps {
	return &spyRoadmaps{roadmaps: make(map[string]*model.StudentRoadmap)}
}

func (s *spyRoadmaps) GenerateForSession(userID uint, sessionID string, profile *MasteryProfile) (*model.StudentRoadmap, error) {
	if rm, ok := s.roadmaps[sessionID]; ok {
		return rm, nil
	}
	s.generated++
	rm := &model.StudentRoadmap{UserID: userID, SessionID: sessionID}
	s.roadmaps[sessionID] = rm
	return rm, nil
}

func (s *spyRoadmaps) GetBySession(sessionID string) (*model.StudentRoadmap, error) {
	rm, ok := s.roadmaps[sessionID]
	if !ok {
		return nil, util.ErrRoadmapNotFound
	}
	return rm, nil
}

type intakeFixture struct {
	svc      *IntakeService
	store    *fakeIntakeStore
	grader   *scriptedGrader
	mastery  *spyMastery
	roadmaps *spyRoadmaps
}

func newIntakeFixture(t *testing.T) *intakeFixture {
	t.Helper()
	f := &intakeFixture{
		store:    newFakeIntakeStore(),
		grader:   &scriptedGrader{results: map[string]*GradeResult{}},
		mastery:  &spyMastery{},
		roadmaps: newSpyRoadmaps(),
	}
	f.svc = NewIntakeService(f.store, f.grader, f.mastery, f.roadmaps, testCatalog(t), config.IntakeConfig{
		AbandonAfter:     72 * time.Hour,
		EstimatedMinutes: 45,
	})
	return f
}

func TestStartSession(t *testing.T) {
	f := newIntakeFixture(t)

	res, err := f.svc.Start(1)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if res.StepIndex != 0 || res.TotalSteps != 2 {
		t.Errorf("state = step %d of %d, want 0 of 2", res.StepIndex, res.TotalSteps)
	}
	if res.Step == nil || res.Step.ID != "s0" {
		t.Fatal("start did not return the first step")
	}
	if res.CanGoBack {
		t.Error("canGoBack = true at step 0")
	}
	if res.EstimatedMinutes != 45 {
		t.Errorf("estimatedMinutes = %d, want 45", res.EstimatedMinutes)
	}

	if _, err := f.svc.Start(1); !errors.Is(err, util.ErrSessionAlreadyActive) {
		t.Errorf("second Start: err = %v, want session already active", err)
	}
	// 其他学生不受影响
	if _, err := f.svc.Start(2); err != nil {
		t.Errorf("Start for another student returned error: %v", err)
	}
}

func TestSubmitAnswerAdvancesAndCompletes(t *testing.T) {
	f := newIntakeFixture(t)
	started, err := f.svc.Start(1)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	sessionID := started.SessionID

	res, err := f.svc.SubmitAnswer(1, sessionID, "s0", json.RawMessage(`{"selected":"a"}`))
	if err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}
	if res.Completed {
		t.Fatal("completed after first of two steps")
	}
	if res.Next == nil || res.Next.StepIndex != 1 || res.Next.Step.ID != "s1" {
		t.Fatal("next state does not point at the second step")
	}
	if res.Next.Progress != 50 {
		t.Errorf("progress = %d, want 50", res.Next.Progress)
	}

	// MCQ 步骤为 a1 技能记一条证据
	if len(f.mastery.events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(f.mastery.events))
	}
	if e := f.mastery.events[0]; e.skillKey != "a1" || e.eventType != model.EventSuccess {
		t.Errorf("event = %+v, want SUCCESS for a1", e)
	}

	// 总结步骤不计分：提交后完成会话并生成路线图
	f.grader.results["s1"] = &GradeResult{Score: 0, Passed: true, Confidence: 0}
	res, err = f.svc.SubmitAnswer(1, sessionID, "s1", json.RawMessage(`{"acknowledged":true}`))
	if err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}
	if !res.Completed {
		t.Fatal("session not completed after the last step")
	}
	if len(f.mastery.events) != 1 {
		t.Errorf("summary step recorded evidence: %d events", len(f.mastery.events))
	}
	if f.roadmaps.generated != 1 {
		t.Errorf("roadmap generated %d times, want 1", f.roadmaps.generated)
	}

	session, _ := f.store.FindSessionByID(sessionID)
	if session.Status != model.SessionCompleted {
		t.Errorf("status = %s, want COMPLETED", session.Status)
	}
	if session.CompletedAt == nil {
		t.Error("completedAt not set")
	}

	// 完成后的会话拒绝任何进一步操作
	if _, err := f.svc.SubmitAnswer(1, sessionID, "s1", json.RawMessage(`{}`)); !errors.Is(err, util.ErrSessionClosed) {
		t.Errorf("submit after completion: err = %v, want session closed", err)
	}
	if _, err := f.svc.GoBack(1, sessionID); !errors.Is(err, util.ErrSessionClosed) {
		t.Errorf("go back after completion: err = %v, want session closed", err)
	}
}

func TestSubmitAnswerStepMismatch(t *testing.T) {
	f := newIntakeFixture(t)
	started, _ := f.svc.Start(1)

	if _, err := f.svc.SubmitAnswer(1, started.SessionID, "s1", json.RawMessage(`{"x":1}`)); !errors.Is(err, util.ErrStepMismatch) {
		t.Errorf("err = %v, want step mismatch", err)
	}
	if len(f.mastery.events) != 0 {
		t.Error("mismatched submit recorded evidence")
	}
}

func TestSubmitAnswerOwnership(t *testing.T) {
	f := newIntakeFixture(t)
	started, _ := f.svc.Start(1)

	if _, err := f.svc.SubmitAnswer(2, started.SessionID, "s0", json.RawMessage(`{"selected":"a"}`)); !errors.Is(err, util.ErrPermissionDenied) {
		t.Errorf("foreign submit: err = %v, want permission denied", err)
	}
	if _, err := f.svc.CurrentStep(2, started.SessionID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Errorf("foreign read: err = %v, want permission denied", err)
	}
}

func TestUnavailableGradeKeepsAnswerWithoutEvidence(t *testing.T) {
	f := newIntakeFixture(t)
	started, _ := f.svc.Start(1)
	f.grader.results["s0"] = &GradeResult{Unavailable: true}

	res, err := f.svc.SubmitAnswer(1, started.SessionID, "s0", json.RawMessage(`{"selected":"a"}`))
	if err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}
	if !res.Result.Unavailable {
		t.Fatal("result not marked unavailable")
	}
	if len(f.mastery.events) != 0 {
		t.Errorf("unavailable grade recorded %d events, want 0", len(f.mastery.events))
	}

	// 作答留存，会话照常推进
	stored, err := f.store.FindResponse(started.SessionID, "s0")
	if err != nil {
		t.Fatalf("response not stored: %v", err)
	}
	if !stored.Unavailable {
		t.Error("stored response not flagged unavailable")
	}
	if res.Next == nil || res.Next.StepIndex != 1 {
		t.Error("session did not advance past the unavailable step")
	}
}

func TestGoBackAndResubmitOverwrites(t *testing.T) {
	f := newIntakeFixture(t)
	started, _ := f.svc.Start(1)
	sessionID := started.SessionID

	if _, err := f.svc.GoBack(1, sessionID); !errors.Is(err, util.ErrCannotGoBack) {
		t.Errorf("go back at step 0: err = %v, want cannot go back", err)
	}

	if _, err := f.svc.SubmitAnswer(1, sessionID, "s0", json.RawMessage(`{"selected":"b"}`)); err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}

	state, err := f.svc.GoBack(1, sessionID)
	if err != nil {
		t.Fatalf("GoBack returned error: %v", err)
	}
	if state.StepIndex != 0 || state.Step.ID != "s0" {
		t.Fatalf("state after go back = step %d, want 0", state.StepIndex)
	}
	if string(state.PreviousAnswer) != `{"selected":"b"}` {
		t.Errorf("previousAnswer = %s, want the stored answer echoed back", state.PreviousAnswer)
	}

	if _, err := f.svc.SubmitAnswer(1, sessionID, "s0", json.RawMessage(`{"selected":"a"}`)); err != nil {
		t.Fatalf("resubmit returned error: %v", err)
	}
	stored, _ := f.store.FindResponse(sessionID, "s0")
	if string(stored.RawAnswer) != `{"selected":"a"}` {
		t.Errorf("stored answer = %s, want overwrite with the latest", stored.RawAnswer)
	}
}

func TestSummaryRequiresCompletedSession(t *testing.T) {
	f := newIntakeFixture(t)
	started, _ := f.svc.Start(1)
	sessionID := started.SessionID

	if _, err := f.svc.Summary(1, sessionID); !errors.Is(err, util.ErrSessionClosed) {
		t.Errorf("summary of open session: err = %v, want session closed", err)
	}

	f.grader.results["s1"] = &GradeResult{Passed: true}
	if _, err := f.svc.SubmitAnswer(1, sessionID, "s0", json.RawMessage(`{"selected":"a"}`)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.SubmitAnswer(1, sessionID, "s1", json.RawMessage(`{"acknowledged":true}`)); err != nil {
		t.Fatal(err)
	}

	summary, err := f.svc.Summary(1, sessionID)
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	if summary.Profile == nil || summary.Roadmap == nil {
		t.Error("summary missing profile or roadmap")
	}
	if len(summary.Responses) != 2 {
		t.Errorf("summary has %d responses, want 2", len(summary.Responses))
	}
}

func TestReapStale(t *testing.T) {
	f := newIntakeFixture(t)
	started, _ := f.svc.Start(1)

	// 把会话活动时间拨回阈值之前
	f.store.sessions[started.SessionID].LastActivityAt = time.Now().Add(-100 * time.Hour)

	count, err := f.svc.ReapStale()
	if err != nil {
		t.Fatalf("ReapStale returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("reaped %d sessions, want 1", count)
	}

	session, _ := f.store.FindSessionByID(started.SessionID)
	if session.Status != model.SessionAbandoned {
		t.Errorf("status = %s, want ABANDONED", session.Status)
	}

	// 废弃后可以重新开始
	if _, err := f.svc.Start(1); err != nil {
		t.Errorf("Start after reap returned error: %v", err)
	}
}
