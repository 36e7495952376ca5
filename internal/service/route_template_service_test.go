package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/routepilot/internal/constants"
	"github.com/routepilot/internal/models"
	"github.com/routepilot/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRouteTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:route_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Salesman{},
		&models.Customer{},
		&models.RouteTemplate{},
		&models.RouteDayRow{},
		&models.Visit{},
		&models.TrackerEvent{},
		&models.SalesOrder{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func newRouteTemplateService(db *gorm.DB) *RouteTemplateService {
	return NewRouteTemplateService(
		repository.NewRouteTemplateRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewSalesmanRepository(db),
	)
}

func createTestSalesman(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()
	salesman := models.Salesman{
		ID:       id,
		Code:     fmt.Sprintf("SM-%03d", id),
		Name:     fmt.Sprintf("salesman %d", id),
		IsActive: true,
	}
	if err := db.Create(&salesman).Error; err != nil {
		t.Fatalf("create salesman failed: %v", err)
	}
}

func createTestCustomer(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()
	customer := models.Customer{
		ID:       id,
		Code:     fmt.Sprintf("CU-%03d", id),
		Name:     fmt.Sprintf("customer %d", id),
		IsActive: true,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
}

func TestSaveTemplateRejectsBadCycleWeeks(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	svc := newRouteTemplateService(db)

	_, err := svc.SaveTemplate(SaveTemplateInput{SalesmanID: 1, Name: "r1", CycleWeeks: 0}, date(2024, 6, 1))
	if !errors.Is(err, ErrCycleWeeksInvalid) {
		t.Fatalf("expected ErrCycleWeeksInvalid, got %v", err)
	}
}

func TestSaveTemplateRejectsWeekNoOutOfRange(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	svc := newRouteTemplateService(db)

	_, err := svc.SaveTemplate(SaveTemplateInput{
		SalesmanID: 1,
		Name:       "r1",
		CycleWeeks: 2,
		Rows: []SaveTemplateRow{
			{WeekNo: 3, DayOfWeek: constants.WeekdayMonday, CustomerID: 10},
		},
	}, date(2024, 6, 1))
	if !errors.Is(err, ErrWeekNoOutOfRange) {
		t.Fatalf("expected ErrWeekNoOutOfRange, got %v", err)
	}
}

func TestSaveTemplateRejectsDuplicateDayCustomerAcrossWeeks(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	svc := newRouteTemplateService(db)

	_, err := svc.SaveTemplate(SaveTemplateInput{
		SalesmanID: 1,
		Name:       "r1",
		CycleWeeks: 2,
		Rows: []SaveTemplateRow{
			{WeekNo: 1, DayOfWeek: constants.WeekdayMonday, CustomerID: 10},
			{WeekNo: 2, DayOfWeek: constants.WeekdayMonday, CustomerID: 10},
		},
	}, date(2024, 6, 1))
	if !errors.Is(err, ErrDuplicateDayCustomer) {
		t.Fatalf("expected ErrDuplicateDayCustomer, got %v", err)
	}
	// 错误信息要指出冲突的周序号
	if !strings.Contains(err.Error(), "week 1") || !strings.Contains(err.Error(), "week 2") {
		t.Fatalf("error should name conflicting weeks, got %q", err.Error())
	}
}

func TestSaveTemplateAllowsSameCustomerDifferentDays(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	svc := newRouteTemplateService(db)

	start := date(2024, 1, 1)
	template, err := svc.SaveTemplate(SaveTemplateInput{
		SalesmanID: 1,
		Name:       "r1",
		StartDate:  &start,
		CycleWeeks: 2,
		Rows: []SaveTemplateRow{
			{WeekNo: 1, DayOfWeek: constants.WeekdayMonday, CustomerID: 10},
			{WeekNo: 2, DayOfWeek: constants.WeekdayTuesday, CustomerID: 10},
		},
	}, date(2024, 6, 1))
	if err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}
	if len(template.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(template.Rows))
	}
}

func TestSaveTemplateDefaultsAnchorToStartDate(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	svc := newRouteTemplateService(db)

	start := date(2024, 1, 1)
	template, err := svc.SaveTemplate(SaveTemplateInput{
		SalesmanID: 1,
		Name:       "r1",
		StartDate:  &start,
		CycleWeeks: 1,
	}, date(2024, 6, 1))
	if err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}
	if template.CycleAnchorDate == nil || !models.VisitDay(*template.CycleAnchorDate).Equal(start) {
		t.Fatalf("anchor should default to start date, got %v", template.CycleAnchorDate)
	}
}

func TestSaveTemplateDerivesStatus(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	svc := newRouteTemplateService(db)
	today := date(2024, 6, 15)

	draft, err := svc.SaveTemplate(SaveTemplateInput{SalesmanID: 1, Name: "draft", CycleWeeks: 1}, today)
	if err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}
	if draft.Status != constants.TemplateStatusDraft {
		t.Fatalf("expected draft, got %q", draft.Status)
	}

	future := date(2024, 7, 1)
	scheduled, err := svc.SaveTemplate(SaveTemplateInput{SalesmanID: 1, Name: "sch", StartDate: &future, CycleWeeks: 1}, today)
	if err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}
	if scheduled.Status != constants.TemplateStatusScheduled {
		t.Fatalf("expected scheduled, got %q", scheduled.Status)
	}

	past := date(2024, 1, 1)
	ended := date(2024, 2, 1)
	expired, err := svc.SaveTemplate(SaveTemplateInput{SalesmanID: 1, Name: "exp", StartDate: &past, EndDate: &ended, CycleWeeks: 1}, today)
	if err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}
	if expired.Status != constants.TemplateStatusExpired {
		t.Fatalf("expected expired, got %q", expired.Status)
	}

	active, err := svc.SaveTemplate(SaveTemplateInput{SalesmanID: 1, Name: "act", StartDate: &past, CycleWeeks: 1}, today)
	if err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}
	if active.Status != constants.TemplateStatusActive {
		t.Fatalf("expected active, got %q", active.Status)
	}

	inactive, err := svc.SaveTemplate(SaveTemplateInput{SalesmanID: 1, Name: "off", StartDate: &past, CycleWeeks: 1, IsDisabled: true}, today)
	if err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}
	if inactive.Status != constants.TemplateStatusInactive {
		t.Fatalf("disabled should override window, got %q", inactive.Status)
	}
}

func TestGetTemplateRefreshesStaleStatus(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	svc := newRouteTemplateService(db)

	start := date(2024, 1, 1)
	end := date(2024, 6, 30)
	template, err := svc.SaveTemplate(SaveTemplateInput{SalesmanID: 1, Name: "r1", StartDate: &start, EndDate: &end, CycleWeeks: 1}, date(2024, 6, 1))
	if err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}
	if template.Status != constants.TemplateStatusActive {
		t.Fatalf("expected active at save time, got %q", template.Status)
	}

	// 跨过结束日期后读取，状态应当就地刷新为已过期
	refreshed, err := svc.GetTemplate(template.ID, date(2024, 7, 15))
	if err != nil {
		t.Fatalf("GetTemplate error: %v", err)
	}
	if refreshed.Status != constants.TemplateStatusExpired {
		t.Fatalf("expected expired after window, got %q", refreshed.Status)
	}
}

func TestTodayRouteTwoWeekRotation(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 101)
	createTestCustomer(t, db, 102)
	svc := newRouteTemplateService(db)

	start := date(2024, 1, 1) // 周一
	_, err := svc.SaveTemplate(SaveTemplateInput{
		SalesmanID: 1,
		Name:       "two-week",
		StartDate:  &start,
		CycleWeeks: 2,
		Rows: []SaveTemplateRow{
			{WeekNo: 1, DayOfWeek: constants.WeekdayMonday, CustomerID: 101, TimeSlot: "09:00"},
			{WeekNo: 2, DayOfWeek: constants.WeekdayMonday, CustomerID: 102, TimeSlot: "09:00"},
		},
	}, start)
	if err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}

	// 第二个周一落在第 2 周，只应返回 C2
	route, err := svc.TodayRouteFor(1, date(2024, 1, 8), 0)
	if err != nil {
		t.Fatalf("TodayRouteFor error: %v", err)
	}
	if route.WeekNo != 2 {
		t.Fatalf("expected week 2 on 2024-01-08, got %d", route.WeekNo)
	}
	if len(route.Stops) != 1 || route.Stops[0].CustomerID != 102 {
		t.Fatalf("expected single stop for customer 102, got %+v", route.Stops)
	}

	// 第三个周一回到第 1 周，只应返回 C1
	route, err = svc.TodayRouteFor(1, date(2024, 1, 15), 0)
	if err != nil {
		t.Fatalf("TodayRouteFor error: %v", err)
	}
	if route.WeekNo != 1 {
		t.Fatalf("expected week 1 on 2024-01-15, got %d", route.WeekNo)
	}
	if len(route.Stops) != 1 || route.Stops[0].CustomerID != 101 {
		t.Fatalf("expected single stop for customer 101, got %+v", route.Stops)
	}
}

func TestTodayRouteOrdersStopsByTimeSlot(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 101)
	createTestCustomer(t, db, 102)
	createTestCustomer(t, db, 103)
	svc := newRouteTemplateService(db)

	start := date(2024, 1, 1)
	_, err := svc.SaveTemplate(SaveTemplateInput{
		SalesmanID: 1,
		Name:       "r1",
		StartDate:  &start,
		CycleWeeks: 1,
		Rows: []SaveTemplateRow{
			{WeekNo: 1, DayOfWeek: constants.WeekdayMonday, CustomerID: 103, TimeSlot: "14:00"},
			{WeekNo: 1, DayOfWeek: constants.WeekdayMonday, CustomerID: 101, TimeSlot: "09:00"},
			{WeekNo: 1, DayOfWeek: constants.WeekdayMonday, CustomerID: 102, TimeSlot: "11:30"},
		},
	}, start)
	if err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}

	route, err := svc.TodayRouteFor(1, date(2024, 1, 8), 0)
	if err != nil {
		t.Fatalf("TodayRouteFor error: %v", err)
	}
	if len(route.Stops) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(route.Stops))
	}
	want := []uint{101, 102, 103}
	for i, stop := range route.Stops {
		if stop.CustomerID != want[i] {
			t.Fatalf("stop %d: expected customer %d, got %d", i, want[i], stop.CustomerID)
		}
	}
}

func TestTodayRouteNoTemplateReturnsEmptyWithReason(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	svc := newRouteTemplateService(db)

	route, err := svc.TodayRouteFor(1, date(2024, 6, 1), 0)
	if err != nil {
		t.Fatalf("missing template must not be an error, got %v", err)
	}
	if len(route.Stops) != 0 {
		t.Fatalf("expected empty route, got %+v", route.Stops)
	}
	if route.Reason == "" {
		t.Fatalf("empty route should carry an explanatory reason")
	}
}

func TestResolveActiveTemplatePrefersLatestStart(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	svc := newRouteTemplateService(db)

	older := date(2024, 1, 1)
	newer := date(2024, 5, 1)
	if _, err := svc.SaveTemplate(SaveTemplateInput{SalesmanID: 1, Name: "old", StartDate: &older, CycleWeeks: 1}, date(2024, 6, 1)); err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}
	latest, err := svc.SaveTemplate(SaveTemplateInput{SalesmanID: 1, Name: "new", StartDate: &newer, CycleWeeks: 1}, date(2024, 6, 1))
	if err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}

	resolved, err := svc.ResolveActiveTemplate(1, date(2024, 6, 1))
	if err != nil {
		t.Fatalf("ResolveActiveTemplate error: %v", err)
	}
	if resolved == nil || resolved.ID != latest.ID {
		t.Fatalf("expected latest template %d, got %+v", latest.ID, resolved)
	}
}

func TestDisableTemplate(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	svc := newRouteTemplateService(db)

	start := date(2024, 1, 1)
	template, err := svc.SaveTemplate(SaveTemplateInput{SalesmanID: 1, Name: "r1", StartDate: &start, CycleWeeks: 1}, date(2024, 6, 1))
	if err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}
	if err := svc.DisableTemplate(template.ID, date(2024, 6, 1)); err != nil {
		t.Fatalf("DisableTemplate error: %v", err)
	}
	disabled, err := svc.GetTemplate(template.ID, date(2024, 6, 1))
	if err != nil {
		t.Fatalf("GetTemplate error: %v", err)
	}
	if !disabled.IsDisabled || disabled.Status != constants.TemplateStatusInactive {
		t.Fatalf("expected disabled inactive template, got disabled=%v status=%q", disabled.IsDisabled, disabled.Status)
	}

	if resolved, err := svc.ResolveActiveTemplate(1, date(2024, 6, 1)); err != nil || resolved != nil {
		t.Fatalf("disabled template must not resolve, got %+v err=%v", resolved, err)
	}
}

func TestCopyRows(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 101)
	createTestCustomer(t, db, 102)
	svc := newRouteTemplateService(db)
	today := date(2024, 6, 1)

	start := date(2024, 1, 1)
	source, err := svc.SaveTemplate(SaveTemplateInput{
		SalesmanID: 1,
		Name:       "source",
		StartDate:  &start,
		CycleWeeks: 2,
		Rows: []SaveTemplateRow{
			{WeekNo: 1, DayOfWeek: constants.WeekdayMonday, CustomerID: 101, TimeSlot: "09:00"},
			{WeekNo: 2, DayOfWeek: constants.WeekdayFriday, CustomerID: 102, TimeSlot: "10:00"},
		},
	}, today)
	if err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}
	target, err := svc.SaveTemplate(SaveTemplateInput{SalesmanID: 1, Name: "target", StartDate: &start, CycleWeeks: 2}, today)
	if err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}

	copied, err := svc.CopyRows(target.ID, source.ID, today)
	if err != nil {
		t.Fatalf("CopyRows error: %v", err)
	}
	if len(copied.Rows) != 2 {
		t.Fatalf("expected 2 copied rows, got %d", len(copied.Rows))
	}

	// 目标周数容不下源模板的行时要拒绝
	narrow, err := svc.SaveTemplate(SaveTemplateInput{SalesmanID: 1, Name: "narrow", StartDate: &start, CycleWeeks: 1}, today)
	if err != nil {
		t.Fatalf("SaveTemplate error: %v", err)
	}
	if _, err := svc.CopyRows(narrow.ID, source.ID, today); !errors.Is(err, ErrWeekNoOutOfRange) {
		t.Fatalf("expected ErrWeekNoOutOfRange, got %v", err)
	}
}
