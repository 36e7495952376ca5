package repository

import (
	"errors"

	"github.com/routepilot/internal/models"

	"gorm.io/gorm"
)

// SalesOrderRepository 销售订单数据访问接口（仅做引用查询）
type SalesOrderRepository interface {
	GetByID(id uint) (*models.SalesOrder, error)
	Exists(id uint) (bool, error)
	WithTx(tx *gorm.DB) *GormSalesOrderRepository
}

// GormSalesOrderRepository GORM 实现
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewSalesOrderRepository 创建销售订单仓库
func NewSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSalesOrderRepository) WithTx(tx *gorm.DB) *GormSalesOrderRepository {
	if tx == nil {
		return r
	}
	return &GormSalesOrderRepository{db: tx}
}

// GetByID 根据 ID 获取销售订单
func (r *GormSalesOrderRepository) GetByID(id uint) (*models.SalesOrder, error) {
	var order models.SalesOrder
	if err := r.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// Exists 订单存在性检查
func (r *GormSalesOrderRepository) Exists(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.SalesOrder{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
