package field

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/routepilot/internal/models"
	"github.com/routepilot/internal/provider"
	"github.com/routepilot/internal/repository"
	"github.com/routepilot/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupVisitHandlerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:field_visit_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Salesman{},
		&models.Customer{},
		&models.Visit{},
		&models.TrackerEvent{},
		&models.SalesOrder{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	// 打卡事务走全局连接
	models.DB = db

	visitRepo := repository.NewVisitRepository(db)
	trackerRepo := repository.NewTrackerEventRepository(db)
	orderRepo := repository.NewSalesOrderRepository(db)
	trackerService := service.NewVisitTrackerService(visitRepo, trackerRepo, orderRepo)

	h := &Handler{Container: &provider.Container{
		VisitRepo:      visitRepo,
		TrackerRepo:    trackerRepo,
		SalesOrderRepo: orderRepo,
		TrackerService: trackerService,
	}}

	r := gin.New()
	// 测试中直接注入身份，绕过 JWT 中间件
	authed := r.Group("", func(c *gin.Context) {
		c.Set("salesman_id", uint(1))
		c.Next()
	})
	authed.POST("/visits/:id/check-in", h.CheckIn)
	authed.POST("/visits/:id/check-out", h.CheckOut)
	authed.GET("/visits/:id/status", h.VisitStatus)
	authed.POST("/visits/:id/remarks", h.UpdateRemarks)

	return r, db
}

func seedVisit(t *testing.T, db *gorm.DB, salesmanID, customerID uint) models.Visit {
	t.Helper()
	visit := models.Visit{
		SalesmanID: salesmanID,
		CustomerID: customerID,
		VisitDate:  models.VisitDay(time.Now().UTC()),
	}
	if err := db.Create(&visit).Error; err != nil {
		t.Fatalf("create visit failed: %v", err)
	}
	return visit
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)

	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v (body %s)", err, w.Body.String())
	}
	return w, resp
}

func TestCheckInConflictOnSecondCall(t *testing.T) {
	r, db := setupVisitHandlerTest(t)
	visit := seedVisit(t, db, 1, 10)

	path := fmt.Sprintf("/visits/%d/check-in", visit.ID)
	body := `{"customer_id":10,"latitude":31.23,"longitude":121.47,"accuracy":15}`

	_, first := doJSON(t, r, http.MethodPost, path, body)
	if first.StatusCode != 0 {
		t.Fatalf("first check-in should succeed, got %d %s", first.StatusCode, first.Msg)
	}

	_, second := doJSON(t, r, http.MethodPost, path, body)
	if second.StatusCode != 409 {
		t.Fatalf("second check-in should conflict, got %d %s", second.StatusCode, second.Msg)
	}
}

func TestCheckInRejectsCustomerMismatch(t *testing.T) {
	r, db := setupVisitHandlerTest(t)
	visit := seedVisit(t, db, 1, 10)

	_, resp := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/visits/%d/check-in", visit.ID),
		`{"customer_id":99,"latitude":31.23,"longitude":121.47}`)
	if resp.StatusCode != 400 {
		t.Fatalf("mismatched customer should be rejected, got %d %s", resp.StatusCode, resp.Msg)
	}
}

func TestVisitOwnershipEnforced(t *testing.T) {
	r, db := setupVisitHandlerTest(t)
	visit := seedVisit(t, db, 2, 10) // 归属另一个业务员

	_, resp := doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/visits/%d/status", visit.ID), "")
	if resp.StatusCode != 403 {
		t.Fatalf("other salesman's visit should be forbidden, got %d %s", resp.StatusCode, resp.Msg)
	}
}

func TestVisitStatusLifecycle(t *testing.T) {
	r, db := setupVisitHandlerTest(t)
	visit := seedVisit(t, db, 1, 10)
	statusPath := fmt.Sprintf("/visits/%d/status", visit.ID)

	_, resp := doJSON(t, r, http.MethodGet, statusPath, "")
	if resp.StatusCode != 0 || !strings.Contains(string(resp.Data), "NotStarted") {
		t.Fatalf("expected NotStarted, got %d %s", resp.StatusCode, string(resp.Data))
	}

	_, resp = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/visits/%d/check-in", visit.ID),
		`{"customer_id":10,"latitude":31.23,"longitude":121.47}`)
	if resp.StatusCode != 0 {
		t.Fatalf("check-in failed: %d %s", resp.StatusCode, resp.Msg)
	}

	_, resp = doJSON(t, r, http.MethodGet, statusPath, "")
	if resp.StatusCode != 0 || !strings.Contains(string(resp.Data), "CheckedIn") {
		t.Fatalf("expected CheckedIn, got %d %s", resp.StatusCode, string(resp.Data))
	}

	_, resp = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/visits/%d/check-out", visit.ID),
		`{"outcome":"Order"}`)
	if resp.StatusCode != 0 {
		t.Fatalf("check-out failed: %d %s", resp.StatusCode, resp.Msg)
	}

	_, resp = doJSON(t, r, http.MethodGet, statusPath, "")
	if resp.StatusCode != 0 || !strings.Contains(string(resp.Data), "CheckedOut") {
		t.Fatalf("expected CheckedOut, got %d %s", resp.StatusCode, string(resp.Data))
	}
}

func TestCheckOutWithoutCheckInNotFound(t *testing.T) {
	r, db := setupVisitHandlerTest(t)
	visit := seedVisit(t, db, 1, 10)

	_, resp := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/visits/%d/check-out", visit.ID), "")
	if resp.StatusCode != 404 {
		t.Fatalf("check-out without tracker should be not found, got %d %s", resp.StatusCode, resp.Msg)
	}
}

func TestUpdateRemarksRejectsEmpty(t *testing.T) {
	r, db := setupVisitHandlerTest(t)
	visit := seedVisit(t, db, 1, 10)

	_, resp := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/visits/%d/remarks", visit.ID),
		`{"remarks":"   "}`)
	if resp.StatusCode != 400 {
		t.Fatalf("blank remarks should be rejected, got %d %s", resp.StatusCode, resp.Msg)
	}
}
