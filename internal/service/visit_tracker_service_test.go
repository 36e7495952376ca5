package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/routepilot/internal/constants"
	"github.com/routepilot/internal/models"
	"github.com/routepilot/internal/repository"

	"gorm.io/gorm"
)

func newVisitTrackerService(db *gorm.DB) *VisitTrackerService {
	return NewVisitTrackerService(
		repository.NewVisitRepository(db),
		repository.NewTrackerEventRepository(db),
		repository.NewSalesOrderRepository(db),
	)
}

func createTestVisit(t *testing.T, db *gorm.DB, id, salesmanID, customerID uint, day time.Time) *models.Visit {
	t.Helper()
	visit := models.Visit{
		ID:         id,
		SalesmanID: salesmanID,
		CustomerID: customerID,
		VisitDate:  models.VisitDay(day),
	}
	if err := db.Create(&visit).Error; err != nil {
		t.Fatalf("create visit failed: %v", err)
	}
	return &visit
}

func floatPtr(v float64) *float64 { return &v }

func TestBeginVisit(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	visit := createTestVisit(t, db, 1, 1, 10, date(2024, 6, 3))
	svc := newVisitTrackerService(db)

	event, err := svc.BeginVisit(BeginVisitInput{VisitID: visit.ID, CustomerID: 10, Latitude: 24.5, Longitude: 54.1, Accuracy: floatPtr(15)})
	if err != nil {
		t.Fatalf("BeginVisit error: %v", err)
	}
	if event.Status != constants.TrackerStatusCheckedIn {
		t.Fatalf("expected checked_in, got %q", event.Status)
	}
	if event.VisitID == nil || *event.VisitID != visit.ID {
		t.Fatalf("tracker should link back to visit, got %v", event.VisitID)
	}
	if event.LocationAccuracy == nil || *event.LocationAccuracy != 15 {
		t.Fatalf("accuracy should be stored, got %v", event.LocationAccuracy)
	}

	// 拜访记录的到店时间必须与打卡记录同一时间戳
	stored, err := repository.NewVisitRepository(db).GetByID(visit.ID)
	if err != nil {
		t.Fatalf("reload visit failed: %v", err)
	}
	if stored.CheckInTime == nil || !stored.CheckInTime.Equal(event.CheckInTime) {
		t.Fatalf("visit check_in_time %v should equal tracker %v", stored.CheckInTime, event.CheckInTime)
	}
	if stored.Latitude == nil || *stored.Latitude != 24.5 {
		t.Fatalf("visit location not stamped: %+v", stored)
	}
}

func TestBeginVisitTwiceConflicts(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	visit := createTestVisit(t, db, 1, 1, 10, date(2024, 6, 3))
	svc := newVisitTrackerService(db)

	if _, err := svc.BeginVisit(BeginVisitInput{VisitID: visit.ID, Latitude: 1, Longitude: 2}); err != nil {
		t.Fatalf("first BeginVisit error: %v", err)
	}
	_, err := svc.BeginVisit(BeginVisitInput{VisitID: visit.ID, Latitude: 1, Longitude: 2})
	if !errors.Is(err, ErrTrackerExists) {
		t.Fatalf("expected ErrTrackerExists, got %v", err)
	}
}

func TestBeginVisitCustomerMismatch(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	visit := createTestVisit(t, db, 1, 1, 10, date(2024, 6, 3))
	svc := newVisitTrackerService(db)

	_, err := svc.BeginVisit(BeginVisitInput{VisitID: visit.ID, CustomerID: 99, Latitude: 1, Longitude: 2})
	if !errors.Is(err, ErrCustomerMismatch) {
		t.Fatalf("expected ErrCustomerMismatch, got %v", err)
	}
}

func TestBeginVisitNormalizesZeroAccuracy(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	visit := createTestVisit(t, db, 1, 1, 10, date(2024, 6, 3))
	svc := newVisitTrackerService(db)

	event, err := svc.BeginVisit(BeginVisitInput{VisitID: visit.ID, Latitude: 1, Longitude: 2, Accuracy: floatPtr(0)})
	if err != nil {
		t.Fatalf("BeginVisit error: %v", err)
	}
	if event.LocationAccuracy != nil {
		t.Fatalf("zero accuracy must be stored as NULL, got %v", *event.LocationAccuracy)
	}
}

func TestEndVisitWithoutBegin(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	visit := createTestVisit(t, db, 1, 1, 10, date(2024, 6, 3))
	svc := newVisitTrackerService(db)

	_, err := svc.EndVisit(EndVisitInput{VisitID: visit.ID})
	if !errors.Is(err, ErrTrackerNotFound) {
		t.Fatalf("expected ErrTrackerNotFound, got %v", err)
	}
}

func TestEndVisitFlow(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	visit := createTestVisit(t, db, 1, 1, 10, date(2024, 6, 3))
	svc := newVisitTrackerService(db)

	if _, err := svc.BeginVisit(BeginVisitInput{VisitID: visit.ID, Latitude: 24.5, Longitude: 54.1, Accuracy: floatPtr(15)}); err != nil {
		t.Fatalf("BeginVisit error: %v", err)
	}

	next := date(2024, 6, 10)
	event, err := svc.EndVisit(EndVisitInput{
		VisitID:       visit.ID,
		Accuracy:      floatPtr(8),
		NextVisitDate: &next,
	})
	if err != nil {
		t.Fatalf("EndVisit error: %v", err)
	}
	if event.Status != constants.TrackerStatusCheckedOut {
		t.Fatalf("expected checked_out, got %q", event.Status)
	}
	if !event.Confirmed {
		t.Fatalf("checkout should confirm the tracker")
	}
	if event.CheckOutTime == nil {
		t.Fatalf("check_out_time missing")
	}
	// 离店上报了更准的定位，后写覆盖
	if event.LocationAccuracy == nil || *event.LocationAccuracy != 8 {
		t.Fatalf("departure accuracy should win, got %v", event.LocationAccuracy)
	}

	stored, err := repository.NewVisitRepository(db).GetByID(visit.ID)
	if err != nil {
		t.Fatalf("reload visit failed: %v", err)
	}
	if stored.CheckOutTime == nil || !stored.CheckOutTime.Equal(*event.CheckOutTime) {
		t.Fatalf("visit check_out_time %v should equal tracker %v", stored.CheckOutTime, event.CheckOutTime)
	}
	if stored.Outcome != constants.VisitOutcomeNoOrder {
		t.Fatalf("outcome should default to No Order, got %q", stored.Outcome)
	}
	if stored.NextVisitDate == nil || !stored.NextVisitDate.Equal(next) {
		t.Fatalf("next_visit_date not stored: %v", stored.NextVisitDate)
	}
}

func TestEndVisitTwiceConflicts(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	visit := createTestVisit(t, db, 1, 1, 10, date(2024, 6, 3))
	svc := newVisitTrackerService(db)

	if _, err := svc.BeginVisit(BeginVisitInput{VisitID: visit.ID, Latitude: 1, Longitude: 2}); err != nil {
		t.Fatalf("BeginVisit error: %v", err)
	}
	if _, err := svc.EndVisit(EndVisitInput{VisitID: visit.ID}); err != nil {
		t.Fatalf("first EndVisit error: %v", err)
	}
	_, err := svc.EndVisit(EndVisitInput{VisitID: visit.ID})
	if !errors.Is(err, ErrTrackerCheckedOut) {
		t.Fatalf("expected ErrTrackerCheckedOut, got %v", err)
	}
}

func TestEndVisitRejectsUnknownOrder(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	visit := createTestVisit(t, db, 1, 1, 10, date(2024, 6, 3))
	svc := newVisitTrackerService(db)

	if _, err := svc.BeginVisit(BeginVisitInput{VisitID: visit.ID, Latitude: 1, Longitude: 2}); err != nil {
		t.Fatalf("BeginVisit error: %v", err)
	}
	orderID := uint(999)
	_, err := svc.EndVisit(EndVisitInput{VisitID: visit.ID, LinkedOrderID: &orderID})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestEndVisitLinksOrderAndKeepsOutcome(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	visit := createTestVisit(t, db, 1, 1, 10, date(2024, 6, 3))
	order := models.SalesOrder{
		ID: 7, OrderNo: "SO-0007", SalesmanID: 1, CustomerID: 10,
		Status: constants.SalesOrderStatusSubmitted, Currency: "AED",
		OrderDate: date(2024, 6, 3),
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	svc := newVisitTrackerService(db)

	if _, err := svc.BeginVisit(BeginVisitInput{VisitID: visit.ID, Latitude: 1, Longitude: 2}); err != nil {
		t.Fatalf("BeginVisit error: %v", err)
	}
	orderID := order.ID
	if _, err := svc.EndVisit(EndVisitInput{VisitID: visit.ID, LinkedOrderID: &orderID, Outcome: constants.VisitOutcomeOrder}); err != nil {
		t.Fatalf("EndVisit error: %v", err)
	}

	stored, err := repository.NewVisitRepository(db).GetByID(visit.ID)
	if err != nil {
		t.Fatalf("reload visit failed: %v", err)
	}
	if stored.LinkedOrderID == nil || *stored.LinkedOrderID != order.ID {
		t.Fatalf("linked order not stored: %v", stored.LinkedOrderID)
	}
	if stored.Outcome != constants.VisitOutcomeOrder {
		t.Fatalf("explicit outcome should be kept, got %q", stored.Outcome)
	}
}

func TestGetVisitStatusLifecycle(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	visit := createTestVisit(t, db, 1, 1, 10, date(2024, 6, 3))
	svc := newVisitTrackerService(db)

	status, err := svc.GetVisitStatus(visit.ID)
	if err != nil || status != constants.VisitStateNotStarted {
		t.Fatalf("expected NotStarted, got %q err=%v", status, err)
	}

	if _, err := svc.BeginVisit(BeginVisitInput{VisitID: visit.ID, Latitude: 1, Longitude: 2}); err != nil {
		t.Fatalf("BeginVisit error: %v", err)
	}
	status, err = svc.GetVisitStatus(visit.ID)
	if err != nil || status != constants.VisitStateCheckedIn {
		t.Fatalf("expected CheckedIn, got %q err=%v", status, err)
	}

	if _, err := svc.EndVisit(EndVisitInput{VisitID: visit.ID}); err != nil {
		t.Fatalf("EndVisit error: %v", err)
	}
	status, err = svc.GetVisitStatus(visit.ID)
	if err != nil || status != constants.VisitStateCheckedOut {
		t.Fatalf("expected CheckedOut, got %q err=%v", status, err)
	}
}

func TestGetVisitStatusUnknownVisit(t *testing.T) {
	db := setupRouteTestDB(t)
	svc := newVisitTrackerService(db)
	if _, err := svc.GetVisitStatus(123); !errors.Is(err, ErrVisitNotFound) {
		t.Fatalf("expected ErrVisitNotFound, got %v", err)
	}
}

func TestUpdateRemarksAppendsWithTimestamp(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	visit := createTestVisit(t, db, 1, 1, 10, date(2024, 6, 3))
	svc := newVisitTrackerService(db)

	first, err := svc.UpdateRemarks(visit.ID, "shelf space doubled", "")
	if err != nil {
		t.Fatalf("UpdateRemarks error: %v", err)
	}
	if !strings.Contains(first.Remarks, "shelf space doubled") || !strings.HasPrefix(first.Remarks, "[") {
		t.Fatalf("remarks should be timestamp-prefixed, got %q", first.Remarks)
	}

	second, err := svc.UpdateRemarks(visit.ID, "left samples", constants.VisitOutcomeInfoOnly)
	if err != nil {
		t.Fatalf("UpdateRemarks error: %v", err)
	}
	if !strings.Contains(second.Remarks, "shelf space doubled") || !strings.Contains(second.Remarks, "left samples") {
		t.Fatalf("remarks should append, got %q", second.Remarks)
	}
	if len(strings.Split(second.Remarks, "\n")) != 2 {
		t.Fatalf("expected two remark lines, got %q", second.Remarks)
	}
	if second.Outcome != constants.VisitOutcomeInfoOnly {
		t.Fatalf("outcome update lost, got %q", second.Outcome)
	}
}

func TestUpdateRemarksValidation(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	visit := createTestVisit(t, db, 1, 1, 10, date(2024, 6, 3))
	svc := newVisitTrackerService(db)

	if _, err := svc.UpdateRemarks(visit.ID, "   ", ""); !errors.Is(err, ErrRemarksEmpty) {
		t.Fatalf("expected ErrRemarksEmpty, got %v", err)
	}
	if _, err := svc.UpdateRemarks(visit.ID, "note", "Maybe Order"); !errors.Is(err, ErrInvalidOutcome) {
		t.Fatalf("expected ErrInvalidOutcome, got %v", err)
	}
}
