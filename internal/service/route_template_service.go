package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/routepilot/internal/logger"
	"github.com/routepilot/internal/models"
	"github.com/routepilot/internal/repository"

	"gorm.io/gorm"
)

// RouteTemplateService 路线模板服务
type RouteTemplateService struct {
	templateRepo repository.RouteTemplateRepository
	customerRepo repository.CustomerRepository
	salesmanRepo repository.SalesmanRepository
}

// NewRouteTemplateService 创建路线模板服务
func NewRouteTemplateService(templateRepo repository.RouteTemplateRepository, customerRepo repository.CustomerRepository, salesmanRepo repository.SalesmanRepository) *RouteTemplateService {
	return &RouteTemplateService{
		templateRepo: templateRepo,
		customerRepo: customerRepo,
		salesmanRepo: salesmanRepo,
	}
}

// SaveTemplateRow 保存模板时的排程明细输入
type SaveTemplateRow struct {
	WeekNo                  int
	DayOfWeek               string
	CustomerID              uint
	TimeSlot                string
	ExpectedDurationMinutes int
}

// SaveTemplateInput 保存模板输入（ID 为 0 表示新建）
type SaveTemplateInput struct {
	ID              uint
	SalesmanID      uint
	Name            string
	StartDate       *time.Time
	EndDate         *time.Time
	CycleWeeks      int
	CycleAnchorDate *time.Time
	IsDisabled      bool
	Rows            []SaveTemplateRow
}

// SaveTemplate 校验并保存路线模板。
// 状态是派生字段，每次写入都重新计算，不接受外部指定；
// 状态重算本身不再触发校验，避免自动保存时递归。
func (s *RouteTemplateService) SaveTemplate(input SaveTemplateInput, today time.Time) (*models.RouteTemplate, error) {
	if err := s.validateTemplate(&input); err != nil {
		return nil, err
	}

	salesman, err := s.salesmanRepo.GetByID(input.SalesmanID)
	if err != nil {
		return nil, err
	}
	if salesman == nil {
		return nil, ErrSalesmanNotFound
	}

	rows := make([]models.RouteDayRow, 0, len(input.Rows))
	for _, row := range input.Rows {
		rows = append(rows, models.RouteDayRow{
			WeekNo:                  row.WeekNo,
			DayOfWeek:               row.DayOfWeek,
			CustomerID:              row.CustomerID,
			TimeSlot:                row.TimeSlot,
			ExpectedDurationMinutes: row.ExpectedDurationMinutes,
		})
	}

	template := &models.RouteTemplate{
		ID:              input.ID,
		SalesmanID:      input.SalesmanID,
		Name:            strings.TrimSpace(input.Name),
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		CycleWeeks:      input.CycleWeeks,
		CycleAnchorDate: input.CycleAnchorDate,
		IsDisabled:      input.IsDisabled,
	}
	// 锚定日期未设置时默认取生效日期
	if template.CycleAnchorDate == nil && template.StartDate != nil {
		anchor := *template.StartDate
		template.CycleAnchorDate = &anchor
	}
	template.Status = TemplateStatusFor(template.IsDisabled, template.StartDate, template.EndDate, today)

	if input.ID == 0 {
		if err := models.DB.Transaction(func(tx *gorm.DB) error {
			return s.templateRepo.WithTx(tx).Create(template, rows)
		}); err != nil {
			return nil, err
		}
	} else {
		existing, err := s.templateRepo.GetByID(input.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, ErrTemplateNotFound
		}
		template.CreatedAt = existing.CreatedAt
		if err := models.DB.Transaction(func(tx *gorm.DB) error {
			repo := s.templateRepo.WithTx(tx)
			if err := repo.Update(template); err != nil {
				return err
			}
			return repo.ReplaceRows(template.ID, rows)
		}); err != nil {
			return nil, err
		}
	}
	return s.templateRepo.GetByID(template.ID)
}

// validateTemplate 模板写入前的完整校验
func (s *RouteTemplateService) validateTemplate(input *SaveTemplateInput) error {
	if input.CycleWeeks < 1 {
		return ErrCycleWeeksInvalid
	}
	// (day_of_week, customer) 在整个模板内唯一，跨轮换周也不允许重复
	seen := make(map[string]int)
	for i, row := range input.Rows {
		if row.WeekNo < 1 || row.WeekNo > input.CycleWeeks {
			return fmt.Errorf("%w: row %d week %d, cycle weeks %d", ErrWeekNoOutOfRange, i+1, row.WeekNo, input.CycleWeeks)
		}
		if !IsValidWeekday(row.DayOfWeek) {
			return fmt.Errorf("%w: row %d day %q", ErrInvalidWeekday, i+1, row.DayOfWeek)
		}
		key := fmt.Sprintf("%s|%d", row.DayOfWeek, row.CustomerID)
		if firstWeek, ok := seen[key]; ok {
			return fmt.Errorf("%w: customer %d on %s appears in week %d and week %d",
				ErrDuplicateDayCustomer, row.CustomerID, row.DayOfWeek, firstWeek, row.WeekNo)
		}
		seen[key] = row.WeekNo
		exists, err := s.customerRepo.Exists(row.CustomerID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: customer %d", ErrCustomerNotFound, row.CustomerID)
		}
	}
	return nil
}

// GetTemplate 获取模板，读取时顺带刷新派生状态（只写状态字段，不触发校验）
func (s *RouteTemplateService) GetTemplate(id uint, today time.Time) (*models.RouteTemplate, error) {
	template, err := s.templateRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	status := TemplateStatusFor(template.IsDisabled, template.StartDate, template.EndDate, today)
	if status != template.Status {
		if err := s.templateRepo.UpdateStatus(template.ID, status); err != nil {
			return nil, err
		}
		template.Status = status
	}
	return template, nil
}

// ListTemplates 分页查询模板列表
func (s *RouteTemplateService) ListTemplates(filter repository.TemplateListFilter) ([]models.RouteTemplate, int64, error) {
	return s.templateRepo.List(filter)
}

// DisableTemplate 停用模板（删除的替代手段，状态立即变为停用）
func (s *RouteTemplateService) DisableTemplate(id uint, today time.Time) error {
	template, err := s.templateRepo.GetByID(id)
	if err != nil {
		return err
	}
	if template == nil {
		return ErrTemplateNotFound
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.templateRepo.WithTx(tx)
		if err := repo.SetDisabled(id, true); err != nil {
			return err
		}
		return repo.UpdateStatus(id, TemplateStatusFor(true, template.StartDate, template.EndDate, today))
	})
}

// RefreshStatuses 批量刷新全部模板的派生状态（每日任务调用）
func (s *RouteTemplateService) RefreshStatuses(today time.Time) (int, error) {
	templates, _, err := s.templateRepo.List(repository.TemplateListFilter{IncludeDisabled: true})
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, template := range templates {
		status := TemplateStatusFor(template.IsDisabled, template.StartDate, template.EndDate, today)
		if status == template.Status {
			continue
		}
		if err := s.templateRepo.UpdateStatus(template.ID, status); err != nil {
			logger.Warnw("template_status_refresh_failed", "template_id", template.ID, "error", err)
			continue
		}
		changed++
	}
	return changed, nil
}

// CopyRows 将源模板的排程明细整体复制到目标模板（覆盖目标现有明细）
func (s *RouteTemplateService) CopyRows(targetID, sourceID uint, today time.Time) (*models.RouteTemplate, error) {
	source, err := s.templateRepo.GetByID(sourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("%w: source %d", ErrTemplateNotFound, sourceID)
	}
	if len(source.Rows) == 0 {
		return nil, ErrTemplateRowsEmpty
	}
	target, err := s.templateRepo.GetByID(targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("%w: target %d", ErrTemplateNotFound, targetID)
	}
	// 复制的行必须能通过目标模板的周数约束
	for _, row := range source.Rows {
		if row.WeekNo < 1 || row.WeekNo > target.CycleWeeks {
			return nil, fmt.Errorf("%w: source week %d, target cycle weeks %d", ErrWeekNoOutOfRange, row.WeekNo, target.CycleWeeks)
		}
	}
	rows := make([]models.RouteDayRow, 0, len(source.Rows))
	for _, row := range source.Rows {
		rows = append(rows, models.RouteDayRow{
			WeekNo:                  row.WeekNo,
			DayOfWeek:               row.DayOfWeek,
			CustomerID:              row.CustomerID,
			TimeSlot:                row.TimeSlot,
			ExpectedDurationMinutes: row.ExpectedDurationMinutes,
		})
	}
	if err := models.DB.Transaction(func(tx *gorm.DB) error {
		return s.templateRepo.WithTx(tx).ReplaceRows(targetID, rows)
	}); err != nil {
		return nil, err
	}
	return s.GetTemplate(targetID, today)
}

// sortRowsByTimeSlot 按时段升序排列排程明细
func sortRowsByTimeSlot(rows []models.RouteDayRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TimeSlot < rows[j].TimeSlot
	})
}
