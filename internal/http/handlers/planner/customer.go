package planner

import (
	"strconv"
	"strings"

	"github.com/routepilot/internal/http/response"
	"github.com/routepilot/internal/repository"

	"github.com/gin-gonic/gin"
)

// CustomerOption 客户下拉选项
type CustomerOption struct {
	Value uint   `json:"value"`
	Label string `json:"label"`
}

// CustomerOptions 客户目录查询，供排线时选择客户。
// 只返回启用客户，数量由分页参数封顶。
func (h *Handler) CustomerOptions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	page, pageSize = normalizePagination(page, pageSize)

	customers, total, err := h.CustomerRepo.List(repository.CustomerListFilter{
		Page:       page,
		PageSize:   pageSize,
		Search:     strings.TrimSpace(c.Query("search")),
		OnlyActive: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list customers", err)
		return
	}

	options := make([]CustomerOption, 0, len(customers))
	for _, customer := range customers {
		options = append(options, CustomerOption{
			Value: customer.ID,
			Label: customer.Name + " (" + customer.Code + ")",
		})
	}

	response.SuccessWithPage(c, options, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}
