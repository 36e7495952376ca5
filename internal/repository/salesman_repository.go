package repository

import (
	"errors"

	"github.com/routepilot/internal/models"

	"gorm.io/gorm"
)

// SalesmanRepository 业务员数据访问接口
type SalesmanRepository interface {
	GetByID(id uint) (*models.Salesman, error)
	GetByCode(code string) (*models.Salesman, error)
	List(filter SalesmanListFilter) ([]models.Salesman, int64, error)
	WithTx(tx *gorm.DB) *GormSalesmanRepository
}

// GormSalesmanRepository GORM 实现
type GormSalesmanRepository struct {
	db *gorm.DB
}

// NewSalesmanRepository 创建业务员仓库
func NewSalesmanRepository(db *gorm.DB) *GormSalesmanRepository {
	return &GormSalesmanRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSalesmanRepository) WithTx(tx *gorm.DB) *GormSalesmanRepository {
	if tx == nil {
		return r
	}
	return &GormSalesmanRepository{db: tx}
}

// GetByID 根据 ID 获取业务员
func (r *GormSalesmanRepository) GetByID(id uint) (*models.Salesman, error) {
	var salesman models.Salesman
	if err := r.db.First(&salesman, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &salesman, nil
}

// GetByCode 根据编号获取业务员
func (r *GormSalesmanRepository) GetByCode(code string) (*models.Salesman, error) {
	var salesman models.Salesman
	if err := r.db.Where("code = ?", code).First(&salesman).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &salesman, nil
}

// List 分页查询业务员列表
func (r *GormSalesmanRepository) List(filter SalesmanListFilter) ([]models.Salesman, int64, error) {
	query := r.db.Model(&models.Salesman{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR code LIKE ?", like, like)
	}
	if filter.Territory != "" {
		query = query.Where("territory = ?", filter.Territory)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var salesmen []models.Salesman
	if err := query.Order("code asc").Find(&salesmen).Error; err != nil {
		return nil, 0, err
	}
	return salesmen, total, nil
}
