package planner

import (
	"strings"
	"time"

	"github.com/routepilot/internal/constants"
	"github.com/routepilot/internal/http/response"
	"github.com/routepilot/internal/service"

	"github.com/gin-gonic/gin"
)

// DailyVisits 查询指定日期的拜访执行明细。
// status 过滤只认 Completed / Missed，其它取值返回全量。
func (h *Handler) DailyVisits(c *gin.Context) {
	date := time.Now().UTC()
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid date format, expect YYYY-MM-DD", err)
			return
		}
		date = parsed.UTC()
	}

	rows, err := h.ReportService.DailyVisitDetail(date)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to build daily visit report", err)
		return
	}

	status := strings.TrimSpace(c.Query("status"))
	if status == constants.ReportRowCompleted || status == constants.ReportRowMissed {
		filtered := make([]service.DailyVisitRow, 0, len(rows))
		for _, row := range rows {
			if row.RowStatus == status {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	response.Success(c, gin.H{
		"date": date.Format("2006-01-02"),
		"rows": rows,
	})
}

// VisitTracker 解析拜访对应的打卡记录
func (h *Handler) VisitTracker(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ref, err := h.CorrelatorService.CorrelateByID(id)
	if err != nil {
		respondVisitTrackerLookupError(c, err)
		return
	}
	if ref == nil {
		response.Success(c, gin.H{
			"visit_id": id,
			"match":    "none",
		})
		return
	}

	match := "linked"
	if ref.Kind == service.TrackerRefUnlinked {
		match = "unlinked"
	}
	response.Success(c, gin.H{
		"visit_id": id,
		"match":    match,
		"tracker":  ref.Event,
	})
}
