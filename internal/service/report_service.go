package service

import (
	"time"

	"github.com/routepilot/internal/constants"
	"github.com/routepilot/internal/repository"
)

// ReportService 拜访执行日汇总服务
type ReportService struct {
	visitRepo    repository.VisitRepository
	customerRepo repository.CustomerRepository
	salesmanRepo repository.SalesmanRepository
	correlator   *CorrelatorService
}

// NewReportService 创建日汇总服务
func NewReportService(visitRepo repository.VisitRepository, customerRepo repository.CustomerRepository, salesmanRepo repository.SalesmanRepository, correlator *CorrelatorService) *ReportService {
	return &ReportService{
		visitRepo:    visitRepo,
		customerRepo: customerRepo,
		salesmanRepo: salesmanRepo,
		correlator:   correlator,
	}
}

// DailyVisitRow 日汇总中的一行
type DailyVisitRow struct {
	VisitID       uint       `json:"visit_id"`
	SalesmanID    uint       `json:"salesman_id"`
	SalesmanName  string     `json:"salesman_name,omitempty"`
	CustomerID    uint       `json:"customer_id"`
	CustomerName  string     `json:"customer_name,omitempty"`
	CheckInTime   *time.Time `json:"check_in_time"`
	CheckOutTime  *time.Time `json:"check_out_time"`
	DurationMins  *int       `json:"duration_minutes"`
	AccuracyFlag  string     `json:"accuracy_flag"`
	Outcome       string     `json:"outcome,omitempty"`
	LinkedOrderID *uint      `json:"linked_order_id,omitempty"`
	RowStatus     string     `json:"row_status"` // Completed / Missed
	TrackerLinked bool       `json:"tracker_linked"`
}

// DailyVisitDetail 生成指定日期的拜访执行明细。
// 每一行都经过关联器解析打卡记录，打卡时间优先于拜访记录自身的时间。
func (s *ReportService) DailyVisitDetail(date time.Time) ([]DailyVisitRow, error) {
	visits, err := s.visitRepo.ListByDate(date)
	if err != nil {
		return nil, err
	}

	salesmanNames := make(map[uint]string)
	customerNames := make(map[uint]string)

	rows := make([]DailyVisitRow, 0, len(visits))
	for i := range visits {
		visit := &visits[i]
		ref, err := s.correlator.Correlate(visit)
		if err != nil {
			return nil, err
		}
		checkIn, checkOut := EffectiveTimes(visit, ref)

		row := DailyVisitRow{
			VisitID:       visit.ID,
			SalesmanID:    visit.SalesmanID,
			CustomerID:    visit.CustomerID,
			CheckInTime:   checkIn,
			CheckOutTime:  checkOut,
			DurationMins:  DurationMinutes(checkIn, checkOut),
			Outcome:       visit.Outcome,
			LinkedOrderID: visit.LinkedOrderID,
		}
		if ref != nil && ref.Event != nil {
			row.AccuracyFlag = AccuracyFlag(ref.Event.LocationAccuracy)
			row.TrackerLinked = ref.Kind == TrackerRefLinked
		} else {
			row.AccuracyFlag = constants.AccuracyFlagNA
		}
		if checkIn != nil && checkOut != nil {
			row.RowStatus = constants.ReportRowCompleted
		} else {
			row.RowStatus = constants.ReportRowMissed
		}

		if name, ok := salesmanNames[visit.SalesmanID]; ok {
			row.SalesmanName = name
		} else if salesman, err := s.salesmanRepo.GetByID(visit.SalesmanID); err == nil && salesman != nil {
			salesmanNames[visit.SalesmanID] = salesman.Name
			row.SalesmanName = salesman.Name
		}
		if name, ok := customerNames[visit.CustomerID]; ok {
			row.CustomerName = name
		} else if customer, err := s.customerRepo.GetByID(visit.CustomerID); err == nil && customer != nil {
			customerNames[visit.CustomerID] = customer.Name
			row.CustomerName = customer.Name
		}

		rows = append(rows, row)
	}
	return rows, nil
}
