package service

import (
	"testing"
	"time"

	"github.com/routepilot/internal/constants"
	"github.com/routepilot/internal/models"
	"github.com/routepilot/internal/repository"

	"gorm.io/gorm"
)

func newCorrelatorService(db *gorm.DB) *CorrelatorService {
	return NewCorrelatorService(
		repository.NewVisitRepository(db),
		repository.NewTrackerEventRepository(db),
	)
}

func createTestTracker(t *testing.T, db *gorm.DB, event models.TrackerEvent) *models.TrackerEvent {
	t.Helper()
	if event.Status == "" {
		event.Status = constants.TrackerStatusCheckedIn
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("create tracker failed: %v", err)
	}
	return &event
}

func TestCorrelatePrefersDirectLink(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	visit := createTestVisit(t, db, 1, 1, 10, date(2024, 6, 3))

	checkIn := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	// 同键的未关联记录更晚修改，但直接关联仍然优先
	createTestTracker(t, db, models.TrackerEvent{
		ID: 1, SalesmanID: 1, CustomerID: 10, CheckInTime: checkIn.Add(time.Hour),
	})
	linked := createTestTracker(t, db, models.TrackerEvent{
		ID: 2, VisitID: &visit.ID, SalesmanID: 1, CustomerID: 10, CheckInTime: checkIn,
	})

	ref, err := newCorrelatorService(db).Correlate(visit)
	if err != nil {
		t.Fatalf("Correlate error: %v", err)
	}
	if ref == nil || ref.Kind != TrackerRefLinked || ref.Event.ID != linked.ID {
		t.Fatalf("expected direct link to win, got %+v", ref)
	}
}

func TestCorrelateFallsBackToUnlinkedByKey(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	createTestCustomer(t, db, 11)
	visit := createTestVisit(t, db, 1, 1, 10, date(2024, 6, 3))

	sameDay := time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)
	otherDay := time.Date(2024, 6, 4, 9, 30, 0, 0, time.UTC)

	// 干扰项：别的客户、别的日期，都不该被匹配
	createTestTracker(t, db, models.TrackerEvent{ID: 1, SalesmanID: 1, CustomerID: 11, CheckInTime: sameDay})
	createTestTracker(t, db, models.TrackerEvent{ID: 2, SalesmanID: 1, CustomerID: 10, CheckInTime: otherDay})
	match := createTestTracker(t, db, models.TrackerEvent{ID: 3, SalesmanID: 1, CustomerID: 10, CheckInTime: sameDay})

	ref, err := newCorrelatorService(db).Correlate(visit)
	if err != nil {
		t.Fatalf("Correlate error: %v", err)
	}
	if ref == nil || ref.Kind != TrackerRefUnlinked || ref.Event.ID != match.ID {
		t.Fatalf("expected unlinked fallback to event 3, got %+v", ref)
	}
}

func TestCorrelateFallbackPicksMostRecentlyModified(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	visit := createTestVisit(t, db, 1, 1, 10, date(2024, 6, 3))

	sameDay := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	older := createTestTracker(t, db, models.TrackerEvent{ID: 1, SalesmanID: 1, CustomerID: 10, CheckInTime: sameDay})
	newer := createTestTracker(t, db, models.TrackerEvent{ID: 2, SalesmanID: 1, CustomerID: 10, CheckInTime: sameDay.Add(time.Hour)})

	// 明确拉开 updated_at 间距，避免依赖建表顺序
	if err := db.Model(&models.TrackerEvent{}).Where("id = ?", older.ID).
		Update("updated_at", time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)).Error; err != nil {
		t.Fatalf("set updated_at failed: %v", err)
	}
	if err := db.Model(&models.TrackerEvent{}).Where("id = ?", newer.ID).
		Update("updated_at", time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)).Error; err != nil {
		t.Fatalf("set updated_at failed: %v", err)
	}

	ref, err := newCorrelatorService(db).Correlate(visit)
	if err != nil {
		t.Fatalf("Correlate error: %v", err)
	}
	if ref == nil || ref.Event.ID != newer.ID {
		t.Fatalf("expected most recently modified fallback, got %+v", ref)
	}
}

func TestCorrelateNoMatch(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	visit := createTestVisit(t, db, 1, 1, 10, date(2024, 6, 3))

	ref, err := newCorrelatorService(db).Correlate(visit)
	if err != nil {
		t.Fatalf("Correlate error: %v", err)
	}
	if ref != nil {
		t.Fatalf("expected no correlation, got %+v", ref)
	}
}

func TestDailyVisitDetail(t *testing.T) {
	db := setupRouteTestDB(t)
	createTestSalesman(t, db, 1)
	createTestCustomer(t, db, 10)
	createTestCustomer(t, db, 11)
	day := date(2024, 6, 3)

	done := createTestVisit(t, db, 1, 1, 10, day)
	missed := createTestVisit(t, db, 2, 1, 11, day)

	checkIn := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	checkOut := checkIn.Add(time.Hour)
	accuracy := 15.0
	createTestTracker(t, db, models.TrackerEvent{
		ID: 1, VisitID: &done.ID, SalesmanID: 1, CustomerID: 10,
		CheckInTime: checkIn, CheckOutTime: &checkOut,
		LocationAccuracy: &accuracy,
		Status:           constants.TrackerStatusCheckedOut, Confirmed: true,
	})

	reportSvc := NewReportService(
		repository.NewVisitRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewSalesmanRepository(db),
		newCorrelatorService(db),
	)
	rows, err := reportSvc.DailyVisitDetail(day)
	if err != nil {
		t.Fatalf("DailyVisitDetail error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	byVisit := make(map[uint]DailyVisitRow)
	for _, row := range rows {
		byVisit[row.VisitID] = row
	}

	completed := byVisit[done.ID]
	if completed.RowStatus != constants.ReportRowCompleted {
		t.Fatalf("expected Completed, got %q", completed.RowStatus)
	}
	if completed.DurationMins == nil || *completed.DurationMins != 60 {
		t.Fatalf("expected 60 minutes, got %v", completed.DurationMins)
	}
	if completed.AccuracyFlag != constants.AccuracyFlagGood {
		t.Fatalf("expected Good accuracy, got %q", completed.AccuracyFlag)
	}
	if !completed.TrackerLinked {
		t.Fatalf("direct link should be marked as linked")
	}

	missedRow := byVisit[missed.ID]
	if missedRow.RowStatus != constants.ReportRowMissed {
		t.Fatalf("expected Missed, got %q", missedRow.RowStatus)
	}
	if missedRow.AccuracyFlag != constants.AccuracyFlagNA {
		t.Fatalf("expected N/A accuracy for missed visit, got %q", missedRow.AccuracyFlag)
	}
	if missedRow.DurationMins != nil {
		t.Fatalf("missed visit should have no duration, got %d", *missedRow.DurationMins)
	}
}
