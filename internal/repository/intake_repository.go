package repository

import (
	"time"

	"skillpath_backend/internal/model"

	"gorm.io/gorm"
)

type IntakeRepository struct {
	DB *gorm.DB
}

func NewIntakeRepository(db *gorm.DB) *IntakeRepository {
	return &IntakeRepository{DB: db}
}

func (r *IntakeRepository) CreateSession(s *model.IntakeSession) error {
	return r.DB.Create(s).Error
}

func (r *IntakeRepository) FindSessionByID(id string) (*model.IntakeSession, error) {
	var s model.IntakeSession
	err := r.DB.First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindActiveByUser 返回用户当前的 IN_PROGRESS 会话，不存在时返回 gorm.ErrRecordNotFound
func (r *IntakeRepository) FindActiveByUser(userID uint) (*model.IntakeSession, error) {
	var s model.IntakeSession
	err := r.DB.Where("user_id = ? AND status = ?", userID, model.SessionInProgress).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *IntakeRepository) ListSessions(page, limit int, status string, userID uint) ([]model.IntakeSession, int64, error) {
	var sessions []model.IntakeSession
	var total int64
	query := r.DB.Model(&model.IntakeSession{})
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("started_at desc").Offset(offset).Limit(limit).Find(&sessions).Error
	return sessions, total, err
}

// AdvanceStep 条件更新步骤游标：只有数据库中的游标仍等于 fromIndex 且会话仍
// IN_PROGRESS 时才生效。两个并发提交最多一个成功，落选方拿到 false 后按
// STEP_MISMATCH 处理。completedAt 仅在完成转换时非空。
func (r *IntakeRepository) AdvanceStep(sessionID string, fromIndex, toIndex int, status model.SessionStatus, completedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"current_step_index": toIndex,
		"status":             status,
		"last_activity_at":   time.Now(),
	}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}
	res := r.DB.Model(&model.IntakeSession{}).
		Where("id = ? AND current_step_index = ? AND status = ?", sessionID, fromIndex, model.SessionInProgress).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// StepBack 与 AdvanceStep 同样的条件更新语义，方向相反
func (r *IntakeRepository) StepBack(sessionID string, fromIndex int) (bool, error) {
	res := r.DB.Model(&model.IntakeSession{}).
		Where("id = ? AND current_step_index = ? AND status = ?", sessionID, fromIndex, model.SessionInProgress).
		Updates(map[string]interface{}{
			"current_step_index": fromIndex - 1,
			"last_activity_at":   time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *IntakeRepository) AbandonSession(sessionID string) (bool, error) {
	res := r.DB.Model(&model.IntakeSession{}).
		Where("id = ? AND status = ?", sessionID, model.SessionInProgress).
		Update("status", model.SessionAbandoned)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// AbandonStale 批量废弃闲置超时的会话，由后台任务周期调用
func (r *IntakeRepository) AbandonStale(idleSince time.Time) (int64, error) {
	res := r.DB.Model(&model.IntakeSession{}).
		Where("status = ? AND last_activity_at < ?", model.SessionInProgress, idleSince).
		Update("status", model.SessionAbandoned)
	return res.RowsAffected, res.Error
}

// UpsertResponse 同一 (会话, 步骤) 重复提交时原地覆盖
func (r *IntakeRepository) UpsertResponse(resp *model.IntakeResponse) error {
	var existing model.IntakeResponse
	err := r.DB.Where("session_id = ? AND step_id = ?", resp.SessionID, resp.StepID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return r.DB.Create(resp).Error
	}
	if err != nil {
		return err
	}
	existing.RawAnswer = resp.RawAnswer
	existing.Score = resp.Score
	existing.Passed = resp.Passed
	existing.Confidence = resp.Confidence
	existing.Feedback = resp.Feedback
	existing.Unavailable = resp.Unavailable
	existing.StepIndex = resp.StepIndex
	return r.DB.Save(&existing).Error
}

func (r *IntakeRepository) FindResponse(sessionID, stepID string) (*model.IntakeResponse, error) {
	var resp model.IntakeResponse
	err := r.DB.Where("session_id = ? AND step_id = ?", sessionID, stepID).First(&resp).Error
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *IntakeRepository) ListResponses(sessionID string) ([]model.IntakeResponse, error) {
	var resps []model.IntakeResponse
	err := r.DB.Where("session_id = ?", sessionID).Order("step_index asc").Find(&resps).Error
	return resps, err
}
