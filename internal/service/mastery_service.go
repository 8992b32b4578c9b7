package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"skillpath_backend/internal/catalog"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const profileCacheTTL = 5 * time.Minute

// masteryStore 掌握度持久层，生产实现是 repository.MasteryRepository
type masteryStore interface {
	AppendEvent(event *model.MasteryEvent) error
	FindMastery(userID uint, skillKey string) (*model.SkillMastery, error)
	CreateMastery(mastery *model.SkillMastery) error
	SaveMastery(mastery *model.SkillMastery) error
	ListMasteryByUser(userID uint) ([]model.SkillMastery, error)
	ListEventsByUser(userID uint, skillKey string, page, limit int) ([]model.MasteryEvent, int64, error)
}

// DimensionScore 维度汇总，只统计有过评估证据的技能
type DimensionScore struct {
	Key            string  `json:"key"`
	Label          string  `json:"label"`
	Score          float64 `json:"score"`
	Confidence     float64 `json:"confidence"`
	SkillsAssessed int     `json:"skillsAssessed"`
	SkillCount     int     `json:"skillCount"`
}

// SkillScore 单技能掌握度视图
type SkillScore struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Dimension  string  `json:"dimension"`
	Mastery    float64 `json:"mastery"`
	Confidence float64 `json:"confidence"`
	EventCount int     `json:"eventCount"`
}

// MasteryProfile 用户的完整掌握度画像
type MasteryProfile struct {
	UserID               uint             `json:"userId"`
	Dimensions           []DimensionScore `json:"dimensions"`
	Skills               []SkillScore     `json:"skills"`
	OverallScore         float64          `json:"overallScore"`
	OverallConfidence    float64          `json:"overallConfidence"`
	TotalSkillsAssessed  int              `json:"totalSkillsAssessed"`
	TotalSkills          int              `json:"totalSkills"`
	GeneratedAt          time.Time        `json:"generatedAt"`
}

type MasteryService struct {
	store   masteryStore
	catalog *catalog.Catalog
	redis   *redis.Client
}

func NewMasteryService(store masteryStore, cat *catalog.Catalog, rdb *redis.Client) *MasteryService {
	return &MasteryService{store: store, catalog: cat, redis: rdb}
}

// RecordEvent 追加一条证据事件并折算进技能掌握度。
// 折算公式：mastery' = (mastery*confidence + score*weight) / (confidence+weight)，
// confidence' = min(1, confidence+weight)。首条事件直接以 score 初始化。
func (s *MasteryService) RecordEvent(userID uint, skillKey string, eventType model.MasteryEventType, score, weight float64) (*model.SkillMastery, error) {
	if _, ok := s.catalog.SkillByKey(skillKey); !ok {
		return nil, fmt.Errorf("unknown skill key: %s", skillKey)
	}
	if score < 0 || score > 1 {
		return nil, fmt.Errorf("score %v out of range", score)
	}
	if weight <= 0 || weight > 1 {
		return nil, fmt.Errorf("confidence weight %v out of range", weight)
	}

	event := &model.MasteryEvent{
		UserID:           userID,
		SkillKey:         skillKey,
		EventType:        eventType,
		Score:            score,
		ConfidenceWeight: weight,
	}
	if err := s.store.AppendEvent(event); err != nil {
		return nil, err
	}

	mastery, err := s.store.FindMastery(userID, skillKey)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		mastery = &model.SkillMastery{
			UserID:      userID,
			SkillKey:    skillKey,
			Mastery:     util.Clamp01(score),
			Confidence:  util.Clamp01(weight),
			EventCount:  1,
			LastUpdated: time.Now(),
		}
		if err := s.store.CreateMastery(mastery); err != nil {
			return nil, err
		}
		s.invalidateProfile(userID)
		return mastery, nil
	}
	if err != nil {
		return nil, err
	}

	denom := mastery.Confidence + weight
	mastery.Mastery = util.Clamp01((mastery.Mastery*mastery.Confidence + score*weight) / denom)
	mastery.Confidence = util.Clamp01(mastery.Confidence + weight)
	mastery.EventCount++
	mastery.LastUpdated = time.Now()

	if err := s.store.SaveMastery(mastery); err != nil {
		return nil, err
	}
	s.invalidateProfile(userID)
	return mastery, nil
}

// GetProfile 汇总用户画像。维度分只在该维度至少有一个技能被评估过时才有意义；
// 从未评估的技能不摊薄均值，只体现在 SkillsAssessed/SkillCount 上。
func (s *MasteryService) GetProfile(userID uint) (*MasteryProfile, error) {
	if cached := s.cachedProfile(userID); cached != nil {
		return cached, nil
	}

	masteries, err := s.store.ListMasteryByUser(userID)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*model.SkillMastery, len(masteries))
	for i := range masteries {
		byKey[masteries[i].SkillKey] = &masteries[i]
	}

	profile := &MasteryProfile{
		UserID:      userID,
		TotalSkills: len(s.catalog.Skills),
		GeneratedAt: time.Now(),
	}

	overallSum, overallConf := 0.0, 0.0
	assessedDims := 0
	for _, dim := range s.catalog.Dimensions {
		ds := DimensionScore{Key: dim.Key, Label: dim.Label}
		sum, conf := 0.0, 0.0
		for _, skill := range s.catalog.SkillsInDimension(dim.Key) {
			ds.SkillCount++
			m, ok := byKey[skill.Key]
			if !ok {
				continue
			}
			ds.SkillsAssessed++
			sum += m.Mastery
			conf += m.Confidence
			profile.Skills = append(profile.Skills, SkillScore{
				Key:        skill.Key,
				Label:      skill.Label,
				Dimension:  dim.Key,
				Mastery:    m.Mastery,
				Confidence: m.Confidence,
				EventCount: m.EventCount,
			})
		}
		if ds.SkillsAssessed > 0 {
			ds.Score = sum / float64(ds.SkillsAssessed)
			ds.Confidence = conf / float64(ds.SkillsAssessed)
			overallSum += ds.Score
			overallConf += ds.Confidence
			assessedDims++
		}
		profile.Dimensions = append(profile.Dimensions, ds)
		profile.TotalSkillsAssessed += ds.SkillsAssessed
	}

	// 总分是各有评估记录维度分的均值，未触及的维度不摊薄
	if assessedDims > 0 {
		profile.OverallScore = overallSum / float64(assessedDims)
		profile.OverallConfidence = overallConf / float64(assessedDims)
	}

	s.cacheProfile(userID, profile)
	return profile, nil
}

// ListEvents 证据事件流，按技能过滤，分页
func (s *MasteryService) ListEvents(userID uint, skillKey string, page, limit int) ([]model.MasteryEvent, int64, error) {
	if skillKey != "" {
		if _, ok := s.catalog.SkillByKey(skillKey); !ok {
			return nil, 0, fmt.Errorf("unknown skill key: %s", skillKey)
		}
	}
	return s.store.ListEventsByUser(userID, skillKey, page, limit)
}

func profileCacheKey(userID uint) string {
	return fmt.Sprintf("mastery:profile:%d", userID)
}

func (s *MasteryService) cachedProfile(userID uint) *MasteryProfile {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(context.Background(), profileCacheKey(userID)).Bytes()
	if err != nil {
		return nil
	}
	var profile MasteryProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil
	}
	return &profile
}

func (s *MasteryService) cacheProfile(userID uint, profile *MasteryProfile) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := s.redis.Set(context.Background(), profileCacheKey(userID), data, profileCacheTTL).Err(); err != nil {
		zap.L().Debug("写入画像缓存失败", zap.Uint("userId", userID), zap.Error(err))
	}
}

func (s *MasteryService) invalidateProfile(userID uint) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(context.Background(), profileCacheKey(userID)).Err(); err != nil {
		zap.L().Debug("清除画像缓存失败", zap.Uint("userId", userID), zap.Error(err))
	}
}
