package field

import (
	"strconv"
	"strings"
	"time"

	"github.com/routepilot/internal/http/response"

	"github.com/gin-gonic/gin"
)

// TodayRoute 查询业务员当日路线。
// date 缺省为当天，template_id 缺省时自动解析生效模板；空路线正常返回并带说明。
func (h *Handler) TodayRoute(c *gin.Context) {
	salesmanID, ok := getSalesmanID(c)
	if !ok {
		return
	}

	date := time.Now().UTC()
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid date format, expect YYYY-MM-DD", err)
			return
		}
		date = parsed.UTC()
	}

	var templateID uint
	if raw := strings.TrimSpace(c.Query("template_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid template_id", err)
			return
		}
		templateID = uint(parsed)
	}

	route, err := h.TemplateService.TodayRouteFor(salesmanID, date, templateID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to resolve today route", err)
		return
	}

	response.Success(c, route)
}
