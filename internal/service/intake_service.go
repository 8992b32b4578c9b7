package service

import (
	"encoding/json"
	"errors"
	"skillpath_backend/internal/catalog"
	"skillpath_backend/internal/config"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/util"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// intakeStore 会话持久层，生产实现是 repository.IntakeRepository。
// AdvanceStep/StepBack 是条件更新（带当前步骤索引的 CAS），
// 并发提交时只有一个请求能推进状态。
type intakeStore interface {
	CreateSession(s *model.IntakeSession) error
	FindSessionByID(id string) (*model.IntakeSession, error)
	FindActiveByUser(userID uint) (*model.IntakeSession, error)
	ListSessions(page, limit int, status string, userID uint) ([]model.IntakeSession, int64, error)
	AdvanceStep(sessionID string, fromIndex, toIndex int, status model.SessionStatus, completedAt *time.Time) (bool, error)
	StepBack(sessionID string, fromIndex int) (bool, error)
	AbandonSession(sessionID string) (bool, error)
	AbandonStale(idleSince time.Time) (int64, error)
	UpsertResponse(resp *model.IntakeResponse) error
	FindResponse(sessionID, stepID string) (*model.IntakeResponse, error)
	ListResponses(sessionID string) ([]model.IntakeResponse, error)
}

// stepGrader 单步评分器，生产实现是 GraderService
type stepGrader interface {
	Grade(step *catalog.StepConfig, rawAnswer json.RawMessage) (*GradeResult, error)
}

// masteryRecorder 掌握度聚合入口，生产实现是 MasteryService
type masteryRecorder interface {
	RecordEvent(userID uint, skillKey string, eventType model.MasteryEventType, score, weight float64) (*model.SkillMastery, error)
	GetProfile(userID uint) (*MasteryProfile, error)
}

// roadmapGenerator 会话完成时生成路线图，生产实现是 RoadmapService
type roadmapGenerator interface {
	GenerateForSession(userID uint, sessionID string, profile *MasteryProfile) (*model.StudentRoadmap, error)
	GetBySession(sessionID string) (*model.StudentRoadmap, error)
}

type IntakeService struct {
	store    intakeStore
	grader   stepGrader
	mastery  masteryRecorder
	roadmaps roadmapGenerator
	catalog  *catalog.Catalog
	cfg      config.IntakeConfig
}

func NewIntakeService(store intakeStore, grader stepGrader, mastery masteryRecorder, roadmaps roadmapGenerator, cat *catalog.Catalog, cfg config.IntakeConfig) *IntakeService {
	return &IntakeService{
		store:    store,
		grader:   grader,
		mastery:  mastery,
		roadmaps: roadmaps,
		catalog:  cat,
		cfg:      cfg,
	}
}

// StepView 下发给学生的步骤视图。答案字段（正确选项、量规、
// 隐藏用例）在 StepConfig 的 json 标签里已经屏蔽，这里只额外
// 附上可见测试用例。
type StepView struct {
	*catalog.StepConfig
	SampleCases []catalog.TestCase `json:"testCases,omitempty"`
}

func newStepView(step *catalog.StepConfig) *StepView {
	return &StepView{StepConfig: step, SampleCases: step.VisibleTestCases()}
}

// StepState 会话在某一步的完整视图
type StepState struct {
	SessionID      string              `json:"sessionId"`
	Status         model.SessionStatus `json:"status"`
	StepIndex      int                 `json:"stepIndex"`
	TotalSteps     int                 `json:"totalSteps"`
	Progress       int                 `json:"progress"`
	CanGoBack      bool                `json:"canGoBack"`
	Step           *StepView           `json:"step,omitempty"`
	PreviousAnswer json.RawMessage     `json:"previousAnswer,omitempty"`
}

// StartResult 会话创建响应
type StartResult struct {
	StepState
	EstimatedMinutes int `json:"estimatedMinutes"`
}

// SubmitResult 提交作答的响应：评分结果 + 推进后的状态
type SubmitResult struct {
	Result    *GradeResult `json:"result"`
	Completed bool         `json:"completed"`
	Next      *StepState   `json:"next,omitempty"`
}

// SessionSummary 已完成会话的汇总
type SessionSummary struct {
	Session   *model.IntakeSession    `json:"session"`
	Responses []model.IntakeResponse  `json:"responses"`
	Profile   *MasteryProfile         `json:"profile"`
	Roadmap   *model.StudentRoadmap   `json:"roadmap,omitempty"`
}

// Start 为学生开启测评会话。同一学生同时只允许一个进行中的会话。
func (s *IntakeService) Start(userID uint) (*StartResult, error) {
	if _, err := s.store.FindActiveByUser(userID); err == nil {
		return nil, util.ErrSessionAlreadyActive
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	session := &model.IntakeSession{
		UserID:           userID,
		Status:           model.SessionInProgress,
		CurrentStepIndex: 0,
		StartedAt:        now,
		LastActivityAt:   now,
	}
	if err := s.store.CreateSession(session); err != nil {
		return nil, err
	}

	zap.L().Info("开启测评会话", zap.Uint("userId", userID), zap.String("sessionId", session.ID))
	state, err := s.stateOf(session)
	if err != nil {
		return nil, err
	}
	return &StartResult{StepState: *state, EstimatedMinutes: s.cfg.EstimatedMinutes}, nil
}

// CurrentStep 当前步骤视图，含上次作答（回退后重做时回显）
func (s *IntakeService) CurrentStep(userID uint, sessionID string) (*StepState, error) {
	session, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionInProgress {
		return nil, util.ErrSessionClosed
	}
	return s.stateOf(session)
}

// SubmitAnswer 对当前步骤提交作答：校验、评分、落库、记掌握度证据、
// 推进步骤索引。最后一步提交成功即完成会话并生成路线图。
func (s *IntakeService) SubmitAnswer(userID uint, sessionID, stepID string, rawAnswer json.RawMessage) (*SubmitResult, error) {
	session, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionInProgress {
		return nil, util.ErrSessionClosed
	}

	step, ok := s.catalog.StepAt(session.CurrentStepIndex)
	if !ok || step.ID != stepID {
		return nil, util.ErrStepMismatch
	}

	result, err := s.grader.Grade(step, rawAnswer)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpsertResponse(&model.IntakeResponse{
		SessionID:   session.ID,
		StepID:      step.ID,
		StepIndex:   step.SequenceIndex,
		RawAnswer:   rawAnswer,
		Score:       result.Score,
		Passed:      result.Passed,
		Confidence:  result.Confidence,
		Feedback:    result.Feedback,
		Unavailable: result.Unavailable,
	}); err != nil {
		return nil, err
	}

	// 评分方不可用时只留存作答，不产生掌握度证据
	if !result.Unavailable && result.Confidence > 0 {
		eventType := model.EventFailure
		if result.Passed {
			eventType = model.EventSuccess
		}
		for _, skillKey := range step.SkillKeys {
			if _, err := s.mastery.RecordEvent(userID, skillKey, eventType, result.Score, result.Confidence); err != nil {
				return nil, err
			}
		}
	}

	nextIndex := session.CurrentStepIndex + 1
	completing := nextIndex >= s.catalog.TotalSteps()

	status := model.SessionInProgress
	var completedAt *time.Time
	if completing {
		status = model.SessionCompleted
		now := time.Now()
		completedAt = &now
	}

	advanced, err := s.store.AdvanceStep(session.ID, session.CurrentStepIndex, nextIndex, status, completedAt)
	if err != nil {
		return nil, err
	}
	if !advanced {
		// 并发提交输掉了 CAS，当作步骤不匹配处理
		return nil, util.ErrStepMismatch
	}

	if completing {
		zap.L().Info("测评会话完成", zap.Uint("userId", userID), zap.String("sessionId", session.ID))
		profile, err := s.mastery.GetProfile(userID)
		if err != nil {
			return nil, err
		}
		if _, err := s.roadmaps.GenerateForSession(userID, session.ID, profile); err != nil {
			return nil, err
		}
		return &SubmitResult{Result: result, Completed: true}, nil
	}

	session.CurrentStepIndex = nextIndex
	next, err := s.stateOf(session)
	if err != nil {
		return nil, err
	}
	return &SubmitResult{Result: result, Completed: false, Next: next}, nil
}

// GoBack 回退到上一步。第 0 步不可回退；回退后重新提交会覆盖原作答。
func (s *IntakeService) GoBack(userID uint, sessionID string) (*StepState, error) {
	session, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionInProgress {
		return nil, util.ErrSessionClosed
	}
	if session.CurrentStepIndex == 0 {
		return nil, util.ErrCannotGoBack
	}

	stepped, err := s.store.StepBack(session.ID, session.CurrentStepIndex)
	if err != nil {
		return nil, err
	}
	if !stepped {
		return nil, util.ErrStepMismatch
	}

	session.CurrentStepIndex--
	return s.stateOf(session)
}

// Summary 已完成会话的结果汇总
func (s *IntakeService) Summary(userID uint, sessionID string) (*SessionSummary, error) {
	session, err := s.loadOwned(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionCompleted {
		return nil, util.ErrSessionClosed
	}

	responses, err := s.store.ListResponses(session.ID)
	if err != nil {
		return nil, err
	}
	profile, err := s.mastery.GetProfile(session.UserID)
	if err != nil {
		return nil, err
	}

	summary := &SessionSummary{Session: session, Responses: responses, Profile: profile}
	if roadmap, err := s.roadmaps.GetBySession(session.ID); err == nil {
		summary.Roadmap = roadmap
	}
	return summary, nil
}

// Abandon 管理员/教师手动废弃会话
func (s *IntakeService) Abandon(sessionID string) error {
	ok, err := s.store.AbandonSession(sessionID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrSessionClosed
	}
	return nil
}

// ListSessions 教师/管理员查看会话列表
func (s *IntakeService) ListSessions(page, limit int, status string, userID uint) ([]model.IntakeSession, int64, error) {
	return s.store.ListSessions(page, limit, status, userID)
}

// ReapStale 把闲置超时的进行中会话标记为已废弃，由后台任务周期调用
func (s *IntakeService) ReapStale() (int64, error) {
	cutoff := time.Now().Add(-s.cfg.AbandonAfter)
	count, err := s.store.AbandonStale(cutoff)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		zap.L().Info("回收闲置测评会话", zap.Int64("count", count))
	}
	return count, nil
}

func (s *IntakeService) loadOwned(userID uint, sessionID string) (*model.IntakeSession, error) {
	session, err := s.store.FindSessionByID(sessionID)
	if err != nil {
		return nil, util.ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return session, nil
}

func (s *IntakeService) stateOf(session *model.IntakeSession) (*StepState, error) {
	total := s.catalog.TotalSteps()
	state := &StepState{
		SessionID:  session.ID,
		Status:     session.Status,
		StepIndex:  session.CurrentStepIndex,
		TotalSteps: total,
		Progress:   session.CurrentStepIndex * 100 / total,
		CanGoBack:  session.CurrentStepIndex > 0 && session.Status == model.SessionInProgress,
	}

	step, ok := s.catalog.StepAt(session.CurrentStepIndex)
	if !ok {
		return state, nil
	}
	state.Step = newStepView(step)

	if prev, err := s.store.FindResponse(session.ID, step.ID); err == nil {
		state.PreviousAnswer = prev.RawAnswer
	}
	return state, nil
}
