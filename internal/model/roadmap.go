package model

import "time"

type RoadmapItemStatus string

const (
	RoadmapPending    RoadmapItemStatus = "pending"
	RoadmapInProgress RoadmapItemStatus = "in_progress"
	RoadmapCompleted  RoadmapItemStatus = "completed"
	RoadmapSkipped    RoadmapItemStatus = "skipped"
)

// StudentRoadmap 由已完成的测评会话推导出的补救学习路线，归属学生，教师/管理员可编辑
// swagger:model StudentRoadmap
type StudentRoadmap struct {
	UUIDBase
	UserID      uint          `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	SessionID   string        `gorm:"index;type:varchar(36);not null" json:"sessionId"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Items       []RoadmapItem `gorm:"foreignKey:RoadmapID" json:"items,omitempty"`
}

func (StudentRoadmap) TableName() string {
	return "student_roadmaps"
}

// RoadmapItem 路线中的一项资源引用；Position 保证先修排在后继之前
// swagger:model RoadmapItem
type RoadmapItem struct {
	BaseModel
	RoadmapID  string            `gorm:"index;type:varchar(36);not null" json:"roadmapId"`
	Position   int               `gorm:"not null" json:"position"`
	ResourceID string            `gorm:"size:100;not null" json:"resourceId"`
	Status     RoadmapItemStatus `gorm:"size:20;default:'pending'" json:"status"`
}

func (RoadmapItem) TableName() string {
	return "roadmap_items"
}
