package field

import (
	"strconv"
	"strings"
	"time"

	"github.com/routepilot/internal/http/response"
	"github.com/routepilot/internal/models"
	"github.com/routepilot/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckInRequest 到店打卡入参
type CheckInRequest struct {
	CustomerID uint     `json:"customer_id" binding:"required"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Accuracy   *float64 `json:"accuracy"`
}

// CheckOutRequest 离店打卡入参
type CheckOutRequest struct {
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Accuracy      *float64 `json:"accuracy"`
	Outcome       string   `json:"outcome"`
	NextVisitDate string   `json:"next_visit_date"`
	LinkedOrderID *uint    `json:"linked_order_id"`
}

// RemarksRequest 拜访备注入参
type RemarksRequest struct {
	Remarks string `json:"remarks" binding:"required"`
	Outcome string `json:"outcome"`
}

// CheckIn 到店打卡
func (h *Handler) CheckIn(c *gin.Context) {
	salesmanID, ok := getSalesmanID(c)
	if !ok {
		return
	}
	visitID, ok := parseVisitID(c)
	if !ok {
		return
	}
	if _, ok := h.ownedVisit(c, visitID, salesmanID); !ok {
		return
	}

	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	event, err := h.TrackerService.BeginVisit(service.BeginVisitInput{
		VisitID:    visitID,
		CustomerID: req.CustomerID,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Accuracy:   req.Accuracy,
	})
	if err != nil {
		respondCheckInError(c, err)
		return
	}

	requestLog(c).Infow("visit_checked_in",
		"visit_id", visitID,
		"salesman_id", salesmanID,
		"tracker_id", event.ID,
	)

	response.Success(c, event)
}

// CheckOut 离店打卡
func (h *Handler) CheckOut(c *gin.Context) {
	salesmanID, ok := getSalesmanID(c)
	if !ok {
		return
	}
	visitID, ok := parseVisitID(c)
	if !ok {
		return
	}
	if _, ok := h.ownedVisit(c, visitID, salesmanID); !ok {
		return
	}

	var req CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	var nextVisitDate *time.Time
	if raw := strings.TrimSpace(req.NextVisitDate); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid next_visit_date, expect YYYY-MM-DD", err)
			return
		}
		parsed = parsed.UTC()
		nextVisitDate = &parsed
	}

	event, err := h.TrackerService.EndVisit(service.EndVisitInput{
		VisitID:       visitID,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Accuracy:      req.Accuracy,
		NextVisitDate: nextVisitDate,
		LinkedOrderID: req.LinkedOrderID,
		Outcome:       strings.TrimSpace(req.Outcome),
	})
	if err != nil {
		respondCheckOutError(c, err)
		return
	}

	requestLog(c).Infow("visit_checked_out",
		"visit_id", visitID,
		"salesman_id", salesmanID,
		"tracker_id", event.ID,
	)

	response.Success(c, event)
}

// VisitStatus 查询拜访执行状态
func (h *Handler) VisitStatus(c *gin.Context) {
	salesmanID, ok := getSalesmanID(c)
	if !ok {
		return
	}
	visitID, ok := parseVisitID(c)
	if !ok {
		return
	}
	if _, ok := h.ownedVisit(c, visitID, salesmanID); !ok {
		return
	}

	status, err := h.TrackerService.GetVisitStatus(visitID)
	if err != nil {
		respondWithMappedError(c, err, visitCommonErrorRules, response.CodeInternal, "failed to resolve visit status")
		return
	}

	response.Success(c, gin.H{
		"visit_id": visitID,
		"status":   status,
	})
}

// UpdateRemarks 追加拜访备注，可同时修正拜访结果
func (h *Handler) UpdateRemarks(c *gin.Context) {
	salesmanID, ok := getSalesmanID(c)
	if !ok {
		return
	}
	visitID, ok := parseVisitID(c)
	if !ok {
		return
	}
	if _, ok := h.ownedVisit(c, visitID, salesmanID); !ok {
		return
	}

	var req RemarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	visit, err := h.TrackerService.UpdateRemarks(visitID, req.Remarks, strings.TrimSpace(req.Outcome))
	if err != nil {
		respondRemarksError(c, err)
		return
	}

	response.Success(c, visit)
}

// ownedVisit 校验拜访归属当前业务员
func (h *Handler) ownedVisit(c *gin.Context, visitID, salesmanID uint) (*models.Visit, bool) {
	visit, err := h.VisitRepo.GetByID(visitID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load visit", err)
		return nil, false
	}
	if visit == nil {
		respondError(c, response.CodeNotFound, "visit not found", nil)
		return nil, false
	}
	if visit.SalesmanID != salesmanID {
		respondError(c, response.CodeForbidden, "visit does not belong to current salesman", nil)
		return nil, false
	}
	return visit, true
}

func parseVisitID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid visit id", err)
		return 0, false
	}
	return uint(id), true
}
