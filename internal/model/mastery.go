package model

import "time"

type MasteryEventType string

const (
	EventAttempt MasteryEventType = "ATTEMPT"
	EventSuccess MasteryEventType = "SUCCESS"
	EventFailure MasteryEventType = "FAILURE"
	EventHint    MasteryEventType = "HINT"
)

// MasteryEvent 掌握度证据事件，追加写入、永不修改；SkillMastery 只是它的缓存汇总
// swagger:model MasteryEvent
type MasteryEvent struct {
	BaseModel
	UserID           uint             `gorm:"index:idx_event_user_skill;type:bigint unsigned" json:"userId"`
	SkillKey         string           `gorm:"index:idx_event_user_skill;size:100;not null" json:"skillKey"`
	EventType        MasteryEventType `gorm:"size:20;not null" json:"eventType"`
	Score            float64          `gorm:"type:double;not null" json:"score"`
	ConfidenceWeight float64          `gorm:"type:double;not null" json:"confidenceWeight"`
}

func (MasteryEvent) TableName() string {
	return "mastery_events"
}

// SkillMastery 用户对单个技能的掌握度与置信度（均收敛在 0~1），由事件流推导
// swagger:model SkillMastery
type SkillMastery struct {
	BaseModel
	UserID      uint      `gorm:"index:idx_user_skill,unique;type:bigint unsigned;not null" json:"userId"`
	SkillKey    string    `gorm:"index:idx_user_skill,unique;size:100;not null" json:"skillKey"`
	Mastery     float64   `gorm:"type:double;default:0" json:"mastery"`
	Confidence  float64   `gorm:"type:double;default:0" json:"confidence"`
	EventCount  int       `gorm:"default:0" json:"eventCount"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func (SkillMastery) TableName() string {
	return "skill_masteries"
}
