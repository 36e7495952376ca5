package service

import (
	"time"

	"github.com/routepilot/internal/models"
)

// RouteStop 当日路线中的一个停靠点
type RouteStop struct {
	CustomerID              uint   `json:"customer_id"`
	CustomerName            string `json:"customer_name,omitempty"`
	TimeSlot                string `json:"time_slot"`
	ExpectedDurationMinutes int    `json:"expected_duration_minutes"`
}

// TodayRoute 当日路线解析结果
type TodayRoute struct {
	Date       time.Time   `json:"date"`
	Weekday    string      `json:"weekday"`
	WeekNo     int         `json:"week_no"`
	TemplateID *uint       `json:"template_id"`
	Reason     string      `json:"reason,omitempty"` // 无路线时的说明，空路线不是错误
	Stops      []RouteStop `json:"stops"`
}

// ResolveActiveTemplate 解析业务员在指定日期的生效模板。
// 候选按生效日期倒序，取第一个日期窗口覆盖目标日期的；无匹配返回 nil 而非错误。
func (s *RouteTemplateService) ResolveActiveTemplate(salesmanID uint, date time.Time) (*models.RouteTemplate, error) {
	templates, err := s.templateRepo.ListActiveBySalesman(salesmanID)
	if err != nil {
		return nil, err
	}
	day := models.VisitDay(date)
	for i := range templates {
		template := &templates[i]
		if template.StartDate == nil || models.VisitDay(*template.StartDate).After(day) {
			continue
		}
		if template.EndDate != nil && models.VisitDay(*template.EndDate).Before(day) {
			continue
		}
		return template, nil
	}
	return nil, nil
}

// TodayRouteFor 返回业务员在指定日期的有序停靠点列表。
// templateID 为 0 时自动解析生效模板；解析不到时返回空路线并附带说明。
func (s *RouteTemplateService) TodayRouteFor(salesmanID uint, date time.Time, templateID uint) (*TodayRoute, error) {
	result := &TodayRoute{
		Date:    models.VisitDay(date),
		Weekday: WeekdayName(date),
		Stops:   []RouteStop{},
	}

	var template *models.RouteTemplate
	var err error
	if templateID > 0 {
		template, err = s.templateRepo.GetByID(templateID)
		if err != nil {
			return nil, err
		}
		if template == nil {
			return nil, ErrTemplateNotFound
		}
	} else {
		template, err = s.ResolveActiveTemplate(salesmanID, date)
		if err != nil {
			return nil, err
		}
	}
	if template == nil {
		result.WeekNo = 1
		result.Reason = "no active route template for this date"
		return result, nil
	}

	anchor := time.Time{}
	if template.CycleAnchorDate != nil {
		anchor = *template.CycleAnchorDate
	}
	week := WeekOf(template.CycleWeeks, anchor, date)

	result.TemplateID = &template.ID
	result.WeekNo = week

	rows := make([]models.RouteDayRow, 0, len(template.Rows))
	for _, row := range template.Rows {
		if row.WeekNo != week || row.DayOfWeek != result.Weekday {
			continue
		}
		rows = append(rows, row)
	}
	sortRowsByTimeSlot(rows)

	for _, row := range rows {
		stop := RouteStop{
			CustomerID:              row.CustomerID,
			TimeSlot:                row.TimeSlot,
			ExpectedDurationMinutes: row.ExpectedDurationMinutes,
		}
		if row.Customer != nil {
			stop.CustomerName = row.Customer.Name
		}
		result.Stops = append(result.Stops, stop)
	}
	if len(result.Stops) == 0 && result.Reason == "" {
		result.Reason = "no stops scheduled for this weekday in the current rotation week"
	}
	return result, nil
}
