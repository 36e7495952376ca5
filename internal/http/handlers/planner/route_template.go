package planner

import (
	"strconv"
	"strings"
	"time"

	"github.com/routepilot/internal/http/response"
	"github.com/routepilot/internal/repository"
	"github.com/routepilot/internal/service"

	"github.com/gin-gonic/gin"
)

// TemplateRowRequest 模板排程明细入参
type TemplateRowRequest struct {
	WeekNo                  int    `json:"week_no" binding:"required"`
	DayOfWeek               string `json:"day_of_week" binding:"required"`
	CustomerID              uint   `json:"customer_id" binding:"required"`
	TimeSlot                string `json:"time_slot"`
	ExpectedDurationMinutes int    `json:"expected_duration_minutes"`
}

// TemplateRequest 创建/更新模板入参
type TemplateRequest struct {
	SalesmanID      uint                 `json:"salesman_id" binding:"required"`
	Name            string               `json:"name" binding:"required"`
	StartDate       string               `json:"start_date"`
	EndDate         string               `json:"end_date"`
	CycleWeeks      int                  `json:"cycle_weeks"`
	CycleAnchorDate string               `json:"cycle_anchor_date"`
	IsDisabled      bool                 `json:"is_disabled"`
	Rows            []TemplateRowRequest `json:"rows"`
}

func parseDateNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	parsed = parsed.UTC()
	return &parsed, nil
}

func (r *TemplateRequest) toInput(id uint) (service.SaveTemplateInput, error) {
	startDate, err := parseDateNullable(r.StartDate)
	if err != nil {
		return service.SaveTemplateInput{}, err
	}
	endDate, err := parseDateNullable(r.EndDate)
	if err != nil {
		return service.SaveTemplateInput{}, err
	}
	anchor, err := parseDateNullable(r.CycleAnchorDate)
	if err != nil {
		return service.SaveTemplateInput{}, err
	}

	rows := make([]service.SaveTemplateRow, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, service.SaveTemplateRow{
			WeekNo:                  row.WeekNo,
			DayOfWeek:               strings.TrimSpace(row.DayOfWeek),
			CustomerID:              row.CustomerID,
			TimeSlot:                strings.TrimSpace(row.TimeSlot),
			ExpectedDurationMinutes: row.ExpectedDurationMinutes,
		})
	}

	cycleWeeks := r.CycleWeeks
	if cycleWeeks == 0 {
		cycleWeeks = 1
	}

	return service.SaveTemplateInput{
		ID:              id,
		SalesmanID:      r.SalesmanID,
		Name:            strings.TrimSpace(r.Name),
		StartDate:       startDate,
		EndDate:         endDate,
		CycleWeeks:      cycleWeeks,
		CycleAnchorDate: anchor,
		IsDisabled:      r.IsDisabled,
		Rows:            rows,
	}, nil
}

// CreateTemplate 创建路线模板
func (h *Handler) CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	input, err := req.toInput(0)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid date format, expect YYYY-MM-DD", err)
		return
	}

	template, err := h.TemplateService.SaveTemplate(input, time.Now().UTC())
	if err != nil {
		respondTemplateSaveError(c, err)
		return
	}

	response.Success(c, template)
}

// UpdateTemplate 更新路线模板
func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	input, err := req.toInput(id)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid date format, expect YYYY-MM-DD", err)
		return
	}

	template, err := h.TemplateService.SaveTemplate(input, time.Now().UTC())
	if err != nil {
		respondTemplateSaveError(c, err)
		return
	}

	response.Success(c, template)
}

// GetTemplate 查询路线模板详情
func (h *Handler) GetTemplate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	template, err := h.TemplateService.GetTemplate(id, time.Now().UTC())
	if err != nil {
		respondTemplateSaveError(c, err)
		return
	}

	response.Success(c, template)
}

// ListTemplates 查询路线模板列表
func (h *Handler) ListTemplates(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var salesmanID uint
	if raw := strings.TrimSpace(c.Query("salesman_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			salesmanID = uint(parsed)
		}
	}

	templates, total, err := h.TemplateService.ListTemplates(repository.TemplateListFilter{
		Page:            page,
		PageSize:        pageSize,
		SalesmanID:      salesmanID,
		Status:          strings.TrimSpace(c.Query("status")),
		IncludeDisabled: c.Query("include_disabled") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list route templates", err)
		return
	}

	response.SuccessWithPage(c, templates, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// DisableTemplate 停用路线模板（删除即停用）
func (h *Handler) DisableTemplate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.TemplateService.DisableTemplate(id, time.Now().UTC()); err != nil {
		respondTemplateSaveError(c, err)
		return
	}

	response.Success(c, gin.H{"id": id, "disabled": true})
}

// CopyTemplateRowsRequest 模板明细复制入参
type CopyTemplateRowsRequest struct {
	SourceTemplateID uint `json:"source_template_id" binding:"required"`
}

// CopyTemplateRows 从另一个模板复制排程明细
func (h *Handler) CopyTemplateRows(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req CopyTemplateRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request payload", err)
		return
	}

	template, err := h.TemplateService.CopyRows(id, req.SourceTemplateID, time.Now().UTC())
	if err != nil {
		respondTemplateCopyError(c, err)
		return
	}

	response.Success(c, template)
}

// GetTemplateRows 查询模板的排程明细（供克隆预览）
func (h *Handler) GetTemplateRows(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	template, err := h.TemplateService.GetTemplate(id, time.Now().UTC())
	if err != nil {
		respondTemplateSaveError(c, err)
		return
	}

	response.Success(c, template.Rows)
}

// ResolveActive 解析业务员在指定日期的生效模板（无匹配返回 null）
func (h *Handler) ResolveActive(c *gin.Context) {
	salesmanID, err := strconv.ParseUint(strings.TrimSpace(c.Query("salesman_id")), 10, 64)
	if err != nil || salesmanID == 0 {
		respondError(c, response.CodeBadRequest, "invalid salesman_id", err)
		return
	}

	day := time.Now().UTC()
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid date format, expect YYYY-MM-DD", err)
			return
		}
		day = parsed.UTC()
	}

	template, err := h.TemplateService.ResolveActiveTemplate(uint(salesmanID), day)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to resolve active template", err)
		return
	}

	result := gin.H{
		"salesman_id": uint(salesmanID),
		"date":        day.Format("2006-01-02"),
		"template_id": nil,
	}
	if template != nil {
		result["template_id"] = template.ID
	}
	response.Success(c, result)
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", err)
		return 0, false
	}
	return uint(id), true
}
