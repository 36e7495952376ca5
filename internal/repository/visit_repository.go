package repository

import (
	"errors"
	"time"

	"github.com/routepilot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VisitRepository 拜访记录数据访问接口
type VisitRepository interface {
	CreateIdempotent(visit *models.Visit) (bool, error)
	GetByID(id uint) (*models.Visit, error)
	GetByKey(salesmanID, customerID uint, date time.Time) (*models.Visit, error)
	List(filter VisitListFilter) ([]models.Visit, int64, error)
	ListByDate(date time.Time) ([]models.Visit, error)
	Updates(id uint, updates map[string]interface{}) error
	AppendRemarks(id uint, remarks string) error
	WithTx(tx *gorm.DB) *GormVisitRepository
}

// GormVisitRepository GORM 实现
type GormVisitRepository struct {
	db *gorm.DB
}

// NewVisitRepository 创建拜访记录仓库
func NewVisitRepository(db *gorm.DB) *GormVisitRepository {
	return &GormVisitRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVisitRepository) WithTx(tx *gorm.DB) *GormVisitRepository {
	if tx == nil {
		return r
	}
	return &GormVisitRepository{db: tx}
}

// CreateIdempotent 以 (salesman, customer, visit_date) 为键幂等创建，
// 已存在时不报错也不重复写入，返回值表示本次是否真正插入。
func (r *GormVisitRepository) CreateIdempotent(visit *models.Visit) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "salesman_id"},
			{Name: "customer_id"},
			{Name: "visit_date"},
		},
		DoNothing: true,
	}).Create(visit)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetByID 根据 ID 获取拜访记录
func (r *GormVisitRepository) GetByID(id uint) (*models.Visit, error) {
	var visit models.Visit
	if err := r.db.First(&visit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &visit, nil
}

// GetByKey 根据幂等键获取拜访记录
func (r *GormVisitRepository) GetByKey(salesmanID, customerID uint, date time.Time) (*models.Visit, error) {
	var visit models.Visit
	if err := r.db.
		Where("salesman_id = ? AND customer_id = ? AND visit_date = ?", salesmanID, customerID, models.VisitDay(date)).
		First(&visit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &visit, nil
}

// List 分页查询拜访记录
func (r *GormVisitRepository) List(filter VisitListFilter) ([]models.Visit, int64, error) {
	query := r.db.Model(&models.Visit{})
	if filter.SalesmanID > 0 {
		query = query.Where("salesman_id = ?", filter.SalesmanID)
	}
	if filter.CustomerID > 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.DateFrom != nil {
		query = query.Where("visit_date >= ?", models.VisitDay(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		query = query.Where("visit_date <= ?", models.VisitDay(*filter.DateTo))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var visits []models.Visit
	if err := query.Order("visit_date desc, id desc").Find(&visits).Error; err != nil {
		return nil, 0, err
	}
	return visits, total, nil
}

// ListByDate 获取指定日期的全部拜访记录
func (r *GormVisitRepository) ListByDate(date time.Time) ([]models.Visit, error) {
	var visits []models.Visit
	if err := r.db.
		Where("visit_date = ?", models.VisitDay(date)).
		Order("salesman_id asc, id asc").
		Find(&visits).Error; err != nil {
		return nil, err
	}
	return visits, nil
}

// Updates 按字段更新拜访记录
func (r *GormVisitRepository) Updates(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Visit{}).Where("id = ?", id).Updates(updates).Error
}

// AppendRemarks 覆盖写入备注全文（调用方负责拼接追加内容）
func (r *GormVisitRepository) AppendRemarks(id uint, remarks string) error {
	return r.db.Model(&models.Visit{}).Where("id = ?", id).Update("remarks", remarks).Error
}
