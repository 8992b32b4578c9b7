package service

import (
	"fmt"
	"skillpath_backend/internal/catalog"
	"skillpath_backend/internal/config"
	"skillpath_backend/internal/model"
	"skillpath_backend/internal/util"
	"sort"
	"time"

	"go.uber.org/zap"
)

// roadmapStore 路线图持久层，生产实现是 repository.RoadmapRepository
type roadmapStore interface {
	CreateWithItems(roadmap *model.StudentRoadmap, items []model.RoadmapItem) error
	FindLatestByUser(userID uint) (*model.StudentRoadmap, error)
	FindBySession(sessionID string) (*model.StudentRoadmap, error)
	FindItemByID(itemID uint) (*model.RoadmapItem, error)
	FindRoadmapByID(id string) (*model.StudentRoadmap, error)
	UpdateItemStatus(itemID uint, status model.RoadmapItemStatus) error
}

type RoadmapService struct {
	store   roadmapStore
	catalog *catalog.Catalog
	grading config.GradingConfig
}

func NewRoadmapService(store roadmapStore, cat *catalog.Catalog, grading config.GradingConfig) *RoadmapService {
	return &RoadmapService{store: store, catalog: cat, grading: grading}
}

// GenerateForSession 依据掌握度画像生成并落库一份路线图。幂等：
// 同一会话已有路线图时直接返回已有的那份。
func (s *RoadmapService) GenerateForSession(userID uint, sessionID string, profile *MasteryProfile) (*model.StudentRoadmap, error) {
	if existing, err := s.store.FindBySession(sessionID); err == nil {
		return existing, nil
	}

	ordered, err := s.Plan(profile)
	if err != nil {
		return nil, err
	}

	roadmap := &model.StudentRoadmap{
		UserID:      userID,
		SessionID:   sessionID,
		GeneratedAt: time.Now(),
	}
	items := make([]model.RoadmapItem, 0, len(ordered))
	for i, resourceID := range ordered {
		items = append(items, model.RoadmapItem{
			Position:   i,
			ResourceID: resourceID,
			Status:     model.RoadmapPending,
		})
	}

	if err := s.store.CreateWithItems(roadmap, items); err != nil {
		return nil, err
	}
	zap.L().Info("生成学习路线图",
		zap.Uint("userId", userID),
		zap.String("sessionId", sessionID),
		zap.Int("items", len(items)))
	return roadmap, nil
}

// Plan 纯规划逻辑：挑出薄弱维度的候选资源，补全前置依赖闭包，
// 再做确定性拓扑排序。同等就绪的资源按 (阶段, 难度, 声明顺序) 出队，
// 保证同一画像永远产出同一序列。
func (s *RoadmapService) Plan(profile *MasteryProfile) ([]string, error) {
	weakSkills := make(map[string]bool)
	for dim := range s.weakDimensions(profile) {
		for _, skill := range s.catalog.SkillsInDimension(dim) {
			weakSkills[skill.Key] = true
		}
	}

	// 候选 = 覆盖任一薄弱技能的资源，按目录声明顺序收集
	selected := make(map[string]bool)
	for _, res := range s.catalog.Resources {
		for _, key := range res.SkillKeys {
			if weakSkills[key] {
				selected[res.ID] = true
				break
			}
		}
	}

	// 前置依赖传递闭包：学前置内容哪怕它不在薄弱维度里
	queue := make([]string, 0, len(selected))
	for id := range selected {
		queue = append(queue, id)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		res, ok := s.catalog.ResourceByID(id)
		if !ok {
			return nil, fmt.Errorf("resource %s not in catalog", id)
		}
		for _, pre := range res.Prerequisites {
			if !selected[pre] {
				selected[pre] = true
				queue = append(queue, pre)
			}
		}
	}

	return s.topoSort(selected)
}

func (s *RoadmapService) topoSort(selected map[string]bool) ([]string, error) {
	indegree := make(map[string]int, len(selected))
	dependents := make(map[string][]string, len(selected))
	for id := range selected {
		res, _ := s.catalog.ResourceByID(id)
		for _, pre := range res.Prerequisites {
			if selected[pre] {
				indegree[id]++
				dependents[pre] = append(dependents[pre], id)
			}
		}
	}

	ready := make([]string, 0, len(selected))
	for id := range selected {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	ordered := make([]string, 0, len(selected))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return s.resourceLess(ready[i], ready[j]) })
		id := ready[0]
		ready = ready[1:]
		ordered = append(ordered, id)
		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(ordered) != len(selected) {
		return nil, fmt.Errorf("%w: unresolved prerequisites among selected resources", util.ErrCycleDetected)
	}
	return ordered, nil
}

func (s *RoadmapService) resourceLess(a, b string) bool {
	ra, _ := s.catalog.ResourceByID(a)
	rb, _ := s.catalog.ResourceByID(b)
	if ra.Phase != rb.Phase {
		return ra.Phase < rb.Phase
	}
	if ra.Difficulty != rb.Difficulty {
		return ra.Difficulty < rb.Difficulty
	}
	return s.catalog.DeclarationIndex(a) < s.catalog.DeclarationIndex(b)
}

// weakDimensions 挑出薄弱维度：掌握度低于阈值，或从未被评估。
// 返回无序集合，最终顺序完全由 (阶段, 难度, 声明顺序) 决定。
func (s *RoadmapService) weakDimensions(profile *MasteryProfile) map[string]bool {
	weak := make(map[string]bool, len(profile.Dimensions))
	for _, ds := range profile.Dimensions {
		if ds.SkillsAssessed == 0 || ds.Score < s.grading.WeakDimensionThreshold {
			weak[ds.Key] = true
		}
	}
	return weak
}

// GetBySession 某次会话生成的路线图
func (s *RoadmapService) GetBySession(sessionID string) (*model.StudentRoadmap, error) {
	roadmap, err := s.store.FindBySession(sessionID)
	if err != nil {
		return nil, util.ErrRoadmapNotFound
	}
	return roadmap, nil
}

// GetForUser 用户最新一份路线图
func (s *RoadmapService) GetForUser(userID uint) (*model.StudentRoadmap, error) {
	roadmap, err := s.store.FindLatestByUser(userID)
	if err != nil {
		return nil, util.ErrRoadmapNotFound
	}
	return roadmap, nil
}

// ItemView 附带资源详情的路线图条目
type ItemView struct {
	model.RoadmapItem
	Resource *catalog.Resource `json:"resource,omitempty"`
}

// Expand 把条目的 ResourceID 解引用成目录里的资源详情
func (s *RoadmapService) Expand(roadmap *model.StudentRoadmap) []ItemView {
	views := make([]ItemView, 0, len(roadmap.Items))
	for _, item := range roadmap.Items {
		res, _ := s.catalog.ResourceByID(item.ResourceID)
		views = append(views, ItemView{RoadmapItem: item, Resource: res})
	}
	return views
}

// UpdateItemStatus 更新条目进度。学生只能改自己的路线图，
// 教师和管理员不受限。
func (s *RoadmapService) UpdateItemStatus(actorID uint, actorRole model.UserRole, itemID uint, status model.RoadmapItemStatus) (*model.RoadmapItem, error) {
	switch status {
	case model.RoadmapPending, model.RoadmapInProgress, model.RoadmapCompleted, model.RoadmapSkipped:
	default:
		return nil, fmt.Errorf("invalid item status: %s", status)
	}

	item, err := s.store.FindItemByID(itemID)
	if err != nil {
		return nil, util.ErrRoadmapNotFound
	}
	roadmap, err := s.store.FindRoadmapByID(item.RoadmapID)
	if err != nil {
		return nil, util.ErrRoadmapNotFound
	}
	if actorRole == model.Student && roadmap.UserID != actorID {
		return nil, util.ErrPermissionDenied
	}

	if err := s.store.UpdateItemStatus(itemID, status); err != nil {
		return nil, err
	}
	item.Status = status
	return item, nil
}
