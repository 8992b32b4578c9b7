package repository

import (
	"skillpath_backend/internal/model"

	"gorm.io/gorm"
)

type MasteryRepository struct {
	DB *gorm.DB
}

func NewMasteryRepository(db *gorm.DB) *MasteryRepository {
	return &MasteryRepository{DB: db}
}

// AppendEvent 事件只追加，永不更新或删除
func (r *MasteryRepository) AppendEvent(e *model.MasteryEvent) error {
	return r.DB.Create(e).Error
}

func (r *MasteryRepository) FindMastery(userID uint, skillKey string) (*model.SkillMastery, error) {
	var m model.SkillMastery
	err := r.DB.Where("user_id = ? AND skill_key = ?", userID, skillKey).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MasteryRepository) SaveMastery(m *model.SkillMastery) error {
	return r.DB.Save(m).Error
}

func (r *MasteryRepository) CreateMastery(m *model.SkillMastery) error {
	return r.DB.Create(m).Error
}

func (r *MasteryRepository) ListMasteryByUser(userID uint) ([]model.SkillMastery, error) {
	var ms []model.SkillMastery
	err := r.DB.Where("user_id = ?", userID).Find(&ms).Error
	return ms, err
}

func (r *MasteryRepository) ListEventsByUser(userID uint, skillKey string, page, limit int) ([]model.MasteryEvent, int64, error) {
	var events []model.MasteryEvent
	var total int64
	query := r.DB.Model(&model.MasteryEvent{}).Where("user_id = ?", userID)
	if skillKey != "" {
		query = query.Where("skill_key = ?", skillKey)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&events).Error
	return events, total, err
}
