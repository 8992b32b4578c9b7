package model

import (
	"encoding/json"
	"time"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
	SessionAbandoned  SessionStatus = "ABANDONED"
)

// IntakeSession 一次入学测评会话；COMPLETED 后不再接受任何提交或回退
// swagger:model IntakeSession
type IntakeSession struct {
	UUIDBase
	UserID           uint          `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	Status           SessionStatus `gorm:"size:20;default:'IN_PROGRESS';index" json:"status"`
	CurrentStepIndex int           `gorm:"default:0" json:"currentStepIndex"`
	StartedAt        time.Time     `json:"startedAt"`
	CompletedAt      *time.Time    `json:"completedAt,omitempty"`
	// 后台清理任务据此判定闲置会话
	LastActivityAt time.Time `gorm:"index" json:"lastActivityAt"`
}

func (IntakeSession) TableName() string {
	return "intake_sessions"
}

// IntakeResponse 每个 (会话, 步骤) 一条；重做同一步骤时原地覆盖
// swagger:model IntakeResponse
type IntakeResponse struct {
	BaseModel
	SessionID string          `gorm:"index:idx_session_step,unique;type:varchar(36);not null" json:"sessionId"`
	StepID    string          `gorm:"index:idx_session_step,unique;size:100;not null" json:"stepId"`
	StepIndex int             `gorm:"not null" json:"stepIndex"`
	RawAnswer json.RawMessage `gorm:"type:json" json:"rawAnswer"`
	// 评分结果反范式存储，避免重放评分
	Score       float64 `gorm:"type:double" json:"score"`
	Passed      bool    `gorm:"default:false" json:"passed"`
	Confidence  float64 `gorm:"type:double" json:"confidence"`
	Feedback    string  `gorm:"type:text" json:"feedback"`
	Unavailable bool    `gorm:"default:false" json:"unavailable"`
}

func (IntakeResponse) TableName() string {
	return "intake_responses"
}
