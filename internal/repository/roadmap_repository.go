package repository

import (
	"skillpath_backend/internal/model"

	"gorm.io/gorm"
)

type RoadmapRepository struct {
	DB *gorm.DB
}

func NewRoadmapRepository(db *gorm.DB) *RoadmapRepository {
	return &RoadmapRepository{DB: db}
}

// CreateWithItems 路线与条目在同一事务中落库
func (r *RoadmapRepository) CreateWithItems(roadmap *model.StudentRoadmap, items []model.RoadmapItem) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(roadmap).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].RoadmapID = roadmap.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindLatestByUser 返回用户最近生成的路线（含条目）
func (r *RoadmapRepository) FindLatestByUser(userID uint) (*model.StudentRoadmap, error) {
	var roadmap model.StudentRoadmap
	err := r.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Where("user_id = ?", userID).Order("generated_at desc").First(&roadmap).Error
	if err != nil {
		return nil, err
	}
	return &roadmap, nil
}

func (r *RoadmapRepository) FindBySession(sessionID string) (*model.StudentRoadmap, error) {
	var roadmap model.StudentRoadmap
	err := r.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	}).Where("session_id = ?", sessionID).First(&roadmap).Error
	if err != nil {
		return nil, err
	}
	return &roadmap, nil
}

func (r *RoadmapRepository) FindItemByID(itemID uint) (*model.RoadmapItem, error) {
	var item model.RoadmapItem
	err := r.DB.First(&item, itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *RoadmapRepository) FindRoadmapByID(id string) (*model.StudentRoadmap, error) {
	var roadmap model.StudentRoadmap
	err := r.DB.First(&roadmap, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &roadmap, nil
}

func (r *RoadmapRepository) UpdateItemStatus(itemID uint, status model.RoadmapItemStatus) error {
	return r.DB.Model(&model.RoadmapItem{}).Where("id = ?", itemID).Update("status", status).Error
}
