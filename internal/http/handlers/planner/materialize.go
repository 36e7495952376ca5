package planner

import (
	"strings"
	"time"

	"github.com/routepilot/internal/http/response"
	"github.com/routepilot/internal/queue"

	"github.com/gin-gonic/gin"
)

// MaterializeRequest 日计划生成入参。Date 为空表示当天，Async 表示投递队列异步执行。
type MaterializeRequest struct {
	Date  string `json:"date"`
	Async bool   `json:"async"`
}

// Materialize 生成指定日期的拜访计划。
// 支持补跑历史日期，重复执行是幂等的。
func (h *Handler) Materialize(c *gin.Context) {
	var req MaterializeRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	date := time.Now().UTC()
	raw := strings.TrimSpace(req.Date)
	if raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid date format, expect YYYY-MM-DD", err)
			return
		}
		date = parsed.UTC()
	}

	if req.Async {
		if !h.QueueClient.Enabled() {
			respondError(c, response.CodeInternal, "task queue is not available", nil)
			return
		}
		if err := h.QueueClient.EnqueueMaterializeDailyPlan(queue.MaterializeDailyPlanPayload{Date: raw}); err != nil {
			respondError(c, response.CodeInternal, "failed to enqueue materialize task", err)
			return
		}
		response.Success(c, gin.H{
			"date":     date.Format("2006-01-02"),
			"enqueued": true,
		})
		return
	}

	created, err := h.MaterializerService.MaterializeDailyPlan(date)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to materialize daily plan", err)
		return
	}

	response.Success(c, gin.H{
		"date":    date.Format("2006-01-02"),
		"created": created,
	})
}
