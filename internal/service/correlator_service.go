package service

import (
	"time"

	"github.com/routepilot/internal/models"
	"github.com/routepilot/internal/repository"
)

// TrackerRefKind 打卡记录与拜访的关联方式
type TrackerRefKind int

const (
	// TrackerRefLinked 直接外键关联
	TrackerRefLinked TrackerRefKind = iota
	// TrackerRefUnlinked 历史遗留数据，按 (业务员, 客户, 打卡日期) 弱匹配
	TrackerRefUnlinked
)

// TrackerRef 关联结果的显式标注：直接关联与弱匹配分开建模，
// 消费方能区分证据强度，弱匹配永远不覆盖直接关联。
type TrackerRef struct {
	Kind  TrackerRefKind
	Event *models.TrackerEvent
}

// CorrelatorService 打卡记录与拜访记录的关联服务
type CorrelatorService struct {
	visitRepo   repository.VisitRepository
	trackerRepo repository.TrackerEventRepository
}

// NewCorrelatorService 创建关联服务
func NewCorrelatorService(visitRepo repository.VisitRepository, trackerRepo repository.TrackerEventRepository) *CorrelatorService {
	return &CorrelatorService{
		visitRepo:   visitRepo,
		trackerRepo: trackerRepo,
	}
}

// Correlate 解析拜访对应的打卡记录。
// 优先取直接关联；没有时回退到同业务员、同客户、同拜访日内
// 最近修改且完全未关联的记录。两者都没有返回 nil。
func (s *CorrelatorService) Correlate(visit *models.Visit) (*TrackerRef, error) {
	if visit == nil {
		return nil, ErrVisitNotFound
	}
	event, err := s.trackerRepo.GetByVisitID(visit.ID)
	if err != nil {
		return nil, err
	}
	if event != nil {
		return &TrackerRef{Kind: TrackerRefLinked, Event: event}, nil
	}
	fallback, err := s.trackerRepo.LatestUnlinked(visit.SalesmanID, visit.CustomerID, visit.VisitDate)
	if err != nil {
		return nil, err
	}
	if fallback == nil {
		return nil, nil
	}
	return &TrackerRef{Kind: TrackerRefUnlinked, Event: fallback}, nil
}

// CorrelateByID 按拜访 ID 解析打卡记录
func (s *CorrelatorService) CorrelateByID(visitID uint) (*TrackerRef, error) {
	visit, err := s.visitRepo.GetByID(visitID)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, ErrVisitNotFound
	}
	return s.Correlate(visit)
}

// EffectiveTimes 取拜访的有效到离店时间：打卡记录的时间优先于拜访记录自身的
func EffectiveTimes(visit *models.Visit, ref *TrackerRef) (checkIn, checkOut *time.Time) {
	checkIn = visit.CheckInTime
	checkOut = visit.CheckOutTime
	if ref != nil && ref.Event != nil {
		in := ref.Event.CheckInTime
		checkIn = &in
		if ref.Event.CheckOutTime != nil {
			checkOut = ref.Event.CheckOutTime
		}
	}
	return checkIn, checkOut
}
