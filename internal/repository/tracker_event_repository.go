package repository

import (
	"errors"
	"time"

	"github.com/routepilot/internal/models"

	"gorm.io/gorm"
)

// TrackerEventRepository 打卡记录数据访问接口
type TrackerEventRepository interface {
	Create(event *models.TrackerEvent) error
	GetByID(id uint) (*models.TrackerEvent, error)
	GetByVisitID(visitID uint) (*models.TrackerEvent, error)
	LatestUnlinked(salesmanID, customerID uint, day time.Time) (*models.TrackerEvent, error)
	Updates(id uint, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormTrackerEventRepository
}

// GormTrackerEventRepository GORM 实现
type GormTrackerEventRepository struct {
	db *gorm.DB
}

// NewTrackerEventRepository 创建打卡记录仓库
func NewTrackerEventRepository(db *gorm.DB) *GormTrackerEventRepository {
	return &GormTrackerEventRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTrackerEventRepository) WithTx(tx *gorm.DB) *GormTrackerEventRepository {
	if tx == nil {
		return r
	}
	return &GormTrackerEventRepository{db: tx}
}

// Create 创建打卡记录（visit_id 唯一索引兜底并发重复打卡）
func (r *GormTrackerEventRepository) Create(event *models.TrackerEvent) error {
	return r.db.Create(event).Error
}

// GetByID 根据 ID 获取打卡记录
func (r *GormTrackerEventRepository) GetByID(id uint) (*models.TrackerEvent, error) {
	var event models.TrackerEvent
	if err := r.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// GetByVisitID 获取直接关联到拜访的打卡记录
func (r *GormTrackerEventRepository) GetByVisitID(visitID uint) (*models.TrackerEvent, error) {
	var event models.TrackerEvent
	if err := r.db.Where("visit_id = ?", visitID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// LatestUnlinked 获取指定业务员、客户在某个自然日内最近修改的未关联打卡记录。
// 仅用于历史遗留数据的弱匹配，绝不覆盖直接关联。
func (r *GormTrackerEventRepository) LatestUnlinked(salesmanID, customerID uint, day time.Time) (*models.TrackerEvent, error) {
	dayStart := models.VisitDay(day)
	dayEnd := dayStart.Add(24 * time.Hour)
	var event models.TrackerEvent
	if err := r.db.
		Where("visit_id IS NULL").
		Where("salesman_id = ? AND customer_id = ?", salesmanID, customerID).
		Where("check_in_time >= ? AND check_in_time < ?", dayStart, dayEnd).
		Order("updated_at desc").
		First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// Updates 按字段更新打卡记录
func (r *GormTrackerEventRepository) Updates(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.TrackerEvent{}).Where("id = ?", id).Updates(updates).Error
}
