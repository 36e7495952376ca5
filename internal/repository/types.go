package repository

import "time"

// TemplateListFilter 查询路线模板列表的过滤条件
type TemplateListFilter struct {
	Page            int
	PageSize        int
	SalesmanID      uint
	Status          string
	IncludeDisabled bool
}

// VisitListFilter 查询拜访记录列表的过滤条件
type VisitListFilter struct {
	Page       int
	PageSize   int
	SalesmanID uint
	CustomerID uint
	DateFrom   *time.Time
	DateTo     *time.Time
}

// CustomerListFilter 查询客户列表的过滤条件
type CustomerListFilter struct {
	Page       int
	PageSize   int
	Search     string
	OnlyActive bool
}

// SalesmanListFilter 查询业务员列表的过滤条件
type SalesmanListFilter struct {
	Page       int
	PageSize   int
	Search     string
	Territory  string
	OnlyActive bool
}
