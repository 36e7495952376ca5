package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/routepilot/internal/constants"
	"github.com/routepilot/internal/logger"
	"github.com/routepilot/internal/models"
	"github.com/routepilot/internal/repository"

	"gorm.io/gorm"
)

// VisitTrackerService 拜访执行（到店/离店打卡）服务
type VisitTrackerService struct {
	visitRepo   repository.VisitRepository
	trackerRepo repository.TrackerEventRepository
	orderRepo   repository.SalesOrderRepository
}

// NewVisitTrackerService 创建拜访执行服务
func NewVisitTrackerService(visitRepo repository.VisitRepository, trackerRepo repository.TrackerEventRepository, orderRepo repository.SalesOrderRepository) *VisitTrackerService {
	return &VisitTrackerService{
		visitRepo:   visitRepo,
		trackerRepo: trackerRepo,
		orderRepo:   orderRepo,
	}
}

// BeginVisitInput 到店打卡输入
type BeginVisitInput struct {
	VisitID    uint
	CustomerID uint // 客户端上报的客户，必须与拜访记录一致
	Latitude   float64
	Longitude  float64
	Accuracy   *float64
}

// BeginVisit 到店打卡：创建打卡记录并回写拜访记录的到店时间与定位。
// 同一拜访至多一条打卡记录，竞态下由 visit_id 唯一索引兜底，重复打卡报冲突。
func (s *VisitTrackerService) BeginVisit(input BeginVisitInput) (*models.TrackerEvent, error) {
	visit, err := s.visitRepo.GetByID(input.VisitID)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, ErrVisitNotFound
	}
	if input.CustomerID != 0 && input.CustomerID != visit.CustomerID {
		return nil, fmt.Errorf("%w: got %d, visit has %d", ErrCustomerMismatch, input.CustomerID, visit.CustomerID)
	}

	// 一次逻辑事件只取一次时间，拜访与打卡两条记录保持同一时间戳
	now := time.Now().UTC()
	event := &models.TrackerEvent{
		VisitID:          &visit.ID,
		SalesmanID:       visit.SalesmanID,
		CustomerID:       visit.CustomerID,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		LocationAccuracy: NormalizeAccuracy(input.Accuracy),
		CheckInTime:      now,
		Status:           constants.TrackerStatusCheckedIn,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		trackerRepo := s.trackerRepo.WithTx(tx)
		existing, err := trackerRepo.GetByVisitID(visit.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrTrackerExists
		}
		if err := trackerRepo.Create(event); err != nil {
			return err
		}
		return s.visitRepo.WithTx(tx).Updates(visit.ID, map[string]interface{}{
			"check_in_time": now,
			"latitude":      input.Latitude,
			"longitude":     input.Longitude,
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTrackerExists
		}
		return nil, err
	}
	return event, nil
}

// EndVisitInput 离店打卡输入。定位字段为空表示沿用到店时的定位。
type EndVisitInput struct {
	VisitID       uint
	Latitude      *float64
	Longitude     *float64
	Accuracy      *float64
	NextVisitDate *time.Time
	LinkedOrderID *uint
	Outcome       string
}

// EndVisit 离店打卡：关闭打卡记录并回写拜访结果。
// 客户端在离店时可能上报更准的定位，后写覆盖；
// 结果缺失或非法时默认记为 No Order。
func (s *VisitTrackerService) EndVisit(input EndVisitInput) (*models.TrackerEvent, error) {
	visit, err := s.visitRepo.GetByID(input.VisitID)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, ErrVisitNotFound
	}
	event, err := s.trackerRepo.GetByVisitID(visit.ID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrTrackerNotFound
	}
	if event.Status == constants.TrackerStatusCheckedOut {
		return nil, ErrTrackerCheckedOut
	}
	if input.LinkedOrderID != nil {
		exists, err := s.orderRepo.Exists(*input.LinkedOrderID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: order %d", ErrOrderNotFound, *input.LinkedOrderID)
		}
	}

	outcome := input.Outcome
	if !IsValidOutcome(outcome) {
		outcome = constants.VisitOutcomeNoOrder
	}

	now := time.Now().UTC()
	trackerUpdates := map[string]interface{}{
		"check_out_time": now,
		"status":         constants.TrackerStatusCheckedOut,
	}
	if input.Latitude != nil {
		trackerUpdates["latitude"] = *input.Latitude
	}
	if input.Longitude != nil {
		trackerUpdates["longitude"] = *input.Longitude
	}
	if normalized := NormalizeAccuracy(input.Accuracy); normalized != nil {
		trackerUpdates["location_accuracy"] = *normalized
	}

	visitUpdates := map[string]interface{}{
		"check_out_time": now,
		"outcome":        outcome,
	}
	if input.NextVisitDate != nil {
		visitUpdates["next_visit_date"] = models.VisitDay(*input.NextVisitDate)
	}
	if input.LinkedOrderID != nil {
		visitUpdates["linked_order_id"] = *input.LinkedOrderID
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.trackerRepo.WithTx(tx).Updates(event.ID, trackerUpdates); err != nil {
			return err
		}
		return s.visitRepo.WithTx(tx).Updates(visit.ID, visitUpdates)
	})
	if err != nil {
		return nil, err
	}

	// 确认（锁定）是记账性质的附属步骤，失败只记日志不影响离店打卡本身
	if err := s.trackerRepo.Updates(event.ID, map[string]interface{}{"confirmed": true}); err != nil {
		logger.Warnw("tracker_confirm_failed", "tracker_id", event.ID, "visit_id", visit.ID, "error", err)
	}

	return s.trackerRepo.GetByID(event.ID)
}

// GetVisitStatus 查询拜访执行状态。
// 离店但尚未确认的记录仍视为 CheckedIn，只有确认后的离店才算 CheckedOut。
func (s *VisitTrackerService) GetVisitStatus(visitID uint) (string, error) {
	visit, err := s.visitRepo.GetByID(visitID)
	if err != nil {
		return "", err
	}
	if visit == nil {
		return "", ErrVisitNotFound
	}
	event, err := s.trackerRepo.GetByVisitID(visitID)
	if err != nil {
		return "", err
	}
	if event == nil {
		return constants.VisitStateNotStarted, nil
	}
	if event.Status == constants.TrackerStatusCheckedOut && event.Confirmed {
		return constants.VisitStateCheckedOut, nil
	}
	return constants.VisitStateCheckedIn, nil
}

// UpdateRemarks 追加带时间戳的拜访备注，可同时修正拜访结果
func (s *VisitTrackerService) UpdateRemarks(visitID uint, remarks, outcome string) (*models.Visit, error) {
	trimmed := strings.TrimSpace(remarks)
	if trimmed == "" {
		return nil, ErrRemarksEmpty
	}
	if outcome != "" && !IsValidOutcome(outcome) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOutcome, outcome)
	}
	visit, err := s.visitRepo.GetByID(visitID)
	if err != nil {
		return nil, err
	}
	if visit == nil {
		return nil, ErrVisitNotFound
	}

	stamped := fmt.Sprintf("[%s] %s", time.Now().UTC().Format("2006-01-02 15:04:05"), trimmed)
	merged := stamped
	if visit.Remarks != "" {
		merged = visit.Remarks + "\n" + stamped
	}
	updates := map[string]interface{}{"remarks": merged}
	if outcome != "" {
		updates["outcome"] = outcome
	}
	if err := s.visitRepo.Updates(visit.ID, updates); err != nil {
		return nil, err
	}
	return s.visitRepo.GetByID(visit.ID)
}
