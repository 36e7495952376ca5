package service

import (
	"time"

	"github.com/routepilot/internal/logger"
	"github.com/routepilot/internal/models"
	"github.com/routepilot/internal/repository"
)

// MaterializerService 每日拜访计划生成服务
type MaterializerService struct {
	templateRepo repository.RouteTemplateRepository
	visitRepo    repository.VisitRepository
}

// NewMaterializerService 创建每日计划生成服务
func NewMaterializerService(templateRepo repository.RouteTemplateRepository, visitRepo repository.VisitRepository) *MaterializerService {
	return &MaterializerService{
		templateRepo: templateRepo,
		visitRepo:    visitRepo,
	}
}

// MaterializeDailyPlan 将所有覆盖指定日期的启用模板展开为具体拜访记录。
// 只展开当前轮换周且星期匹配的明细行；以 (salesman, customer, date) 幂等创建，
// 重复调用、并发重试都不会产生重复记录。返回本次实际创建的条数。
func (s *MaterializerService) MaterializeDailyPlan(date time.Time) (int, error) {
	day := models.VisitDay(date)
	weekday := WeekdayName(day)

	templates, err := s.templateRepo.ListEnabledCovering(day)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range templates {
		template := &templates[i]
		anchor := time.Time{}
		if template.CycleAnchorDate != nil {
			anchor = *template.CycleAnchorDate
		}
		week := WeekOf(template.CycleWeeks, anchor, day)

		for _, row := range template.Rows {
			if row.DayOfWeek != weekday || row.WeekNo != week {
				continue
			}
			visit := &models.Visit{
				SalesmanID: template.SalesmanID,
				CustomerID: row.CustomerID,
				VisitDate:  day,
				TemplateID: &template.ID,
			}
			inserted, err := s.visitRepo.CreateIdempotent(visit)
			if err != nil {
				logger.Errorw("daily_plan_visit_create_failed",
					"template_id", template.ID,
					"salesman_id", template.SalesmanID,
					"customer_id", row.CustomerID,
					"date", day.Format("2006-01-02"),
					"error", err)
				return created, err
			}
			if inserted {
				created++
			}
		}
	}

	logger.Infow("daily_plan_materialized",
		"date", day.Format("2006-01-02"),
		"weekday", weekday,
		"templates", len(templates),
		"visits_created", created)
	return created, nil
}
