package repository

import (
	"errors"
	"time"

	"github.com/routepilot/internal/constants"
	"github.com/routepilot/internal/models"

	"gorm.io/gorm"
)

// RouteTemplateRepository 路线模板数据访问接口
type RouteTemplateRepository interface {
	Create(template *models.RouteTemplate, rows []models.RouteDayRow) error
	GetByID(id uint) (*models.RouteTemplate, error)
	Update(template *models.RouteTemplate) error
	ReplaceRows(templateID uint, rows []models.RouteDayRow) error
	List(filter TemplateListFilter) ([]models.RouteTemplate, int64, error)
	ListActiveBySalesman(salesmanID uint) ([]models.RouteTemplate, error)
	ListEnabledCovering(date time.Time) ([]models.RouteTemplate, error)
	UpdateStatus(id uint, status string) error
	SetDisabled(id uint, disabled bool) error
	WithTx(tx *gorm.DB) *GormRouteTemplateRepository
}

// GormRouteTemplateRepository GORM 实现
type GormRouteTemplateRepository struct {
	db *gorm.DB
}

// NewRouteTemplateRepository 创建路线模板仓库
func NewRouteTemplateRepository(db *gorm.DB) *GormRouteTemplateRepository {
	return &GormRouteTemplateRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRouteTemplateRepository) WithTx(tx *gorm.DB) *GormRouteTemplateRepository {
	if tx == nil {
		return r
	}
	return &GormRouteTemplateRepository{db: tx}
}

func (r *GormRouteTemplateRepository) withRows(query *gorm.DB) *gorm.DB {
	return query.Preload("Rows", func(db *gorm.DB) *gorm.DB {
		return db.Order("week_no asc, day_of_week asc, time_slot asc")
	}).Preload("Rows.Customer")
}

// Create 创建模板与排程明细
func (r *GormRouteTemplateRepository) Create(template *models.RouteTemplate, rows []models.RouteDayRow) error {
	if err := r.db.Create(template).Error; err != nil {
		return err
	}
	for i := range rows {
		rows[i].TemplateID = template.ID
	}
	if len(rows) > 0 {
		if err := r.db.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 获取模板（含排程明细）
func (r *GormRouteTemplateRepository) GetByID(id uint) (*models.RouteTemplate, error) {
	var template models.RouteTemplate
	if err := r.withRows(r.db).First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// Update 保存模板主记录
func (r *GormRouteTemplateRepository) Update(template *models.RouteTemplate) error {
	return r.db.Save(template).Error
}

// ReplaceRows 整体替换模板的排程明细
func (r *GormRouteTemplateRepository) ReplaceRows(templateID uint, rows []models.RouteDayRow) error {
	if err := r.db.Where("template_id = ?", templateID).Delete(&models.RouteDayRow{}).Error; err != nil {
		return err
	}
	for i := range rows {
		rows[i].ID = 0
		rows[i].TemplateID = templateID
	}
	if len(rows) > 0 {
		if err := r.db.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

// List 分页查询模板列表
func (r *GormRouteTemplateRepository) List(filter TemplateListFilter) ([]models.RouteTemplate, int64, error) {
	query := r.db.Model(&models.RouteTemplate{})
	if filter.SalesmanID > 0 {
		query = query.Where("salesman_id = ?", filter.SalesmanID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.IncludeDisabled {
		query = query.Where("is_disabled = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var templates []models.RouteTemplate
	if err := query.Order("id desc").Find(&templates).Error; err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

// ListActiveBySalesman 获取业务员的生效模板，按生效日期倒序
func (r *GormRouteTemplateRepository) ListActiveBySalesman(salesmanID uint) ([]models.RouteTemplate, error) {
	var templates []models.RouteTemplate
	if err := r.withRows(r.db).
		Where("salesman_id = ? AND status = ? AND is_disabled = ?", salesmanID, constants.TemplateStatusActive, false).
		Order("start_date desc").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// ListEnabledCovering 获取日期窗口覆盖指定日期的启用模板（含排程明细）
func (r *GormRouteTemplateRepository) ListEnabledCovering(date time.Time) ([]models.RouteTemplate, error) {
	var templates []models.RouteTemplate
	if err := r.withRows(r.db).
		Where("is_disabled = ?", false).
		Where("start_date IS NOT NULL AND start_date <= ?", date).
		Where("end_date IS NULL OR end_date >= ?", date).
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// UpdateStatus 仅更新派生状态字段
func (r *GormRouteTemplateRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.RouteTemplate{}).Where("id = ?", id).Update("status", status).Error
}

// SetDisabled 设置停用标记
func (r *GormRouteTemplateRepository) SetDisabled(id uint, disabled bool) error {
	return r.db.Model(&models.RouteTemplate{}).Where("id = ?", id).Update("is_disabled", disabled).Error
}
