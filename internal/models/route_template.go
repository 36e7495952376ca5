package models

import (
	"time"

	"gorm.io/gorm"
)

// RouteTemplate 路线模板表（一个业务员的多周轮换拜访计划）
type RouteTemplate struct {
	ID              uint           `gorm:"primarykey" json:"id"`                      // 主键
	SalesmanID      uint           `gorm:"index;not null" json:"salesman_id"`         // 业务员ID
	Name            string         `gorm:"not null" json:"name"`                      // 模板名称
	StartDate       *time.Time     `gorm:"index" json:"start_date"`                   // 生效日期（未设置即草稿）
	EndDate         *time.Time     `gorm:"index" json:"end_date"`                     // 失效日期（未设置即长期有效）
	CycleWeeks      int            `gorm:"not null;default:1" json:"cycle_weeks"`     // 轮换周数
	CycleAnchorDate *time.Time     `json:"cycle_anchor_date"`                         // 轮换锚定日期（默认等于生效日期）
	IsDisabled      bool           `gorm:"not null;default:false" json:"is_disabled"` // 是否停用（代替删除）
	Status          string         `gorm:"index;not null" json:"status"`              // 派生状态（只读，每次写入重算）
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Rows []RouteDayRow `gorm:"foreignKey:TemplateID" json:"rows,omitempty"` // 按天排程明细
}

// TableName 指定表名
func (RouteTemplate) TableName() string {
	return "route_templates"
}

// RouteDayRow 路线模板按天排程明细（隶属于模板，与模板同生命周期）
type RouteDayRow struct {
	ID                      uint      `gorm:"primarykey" json:"id"`
	TemplateID              uint      `gorm:"index;not null" json:"template_id"`                   // 所属模板ID
	WeekNo                  int       `gorm:"not null" json:"week_no"`                             // 轮换周序号（1..cycle_weeks）
	DayOfWeek               string    `gorm:"not null" json:"day_of_week"`                         // 星期名称
	CustomerID              uint      `gorm:"index;not null" json:"customer_id"`                   // 客户ID
	TimeSlot                string    `gorm:"type:varchar(16)" json:"time_slot"`                   // 时段（HH:MM，升序排程）
	ExpectedDurationMinutes int       `gorm:"not null;default:0" json:"expected_duration_minutes"` // 预计停留时长（分钟）
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// TableName 指定表名
func (RouteDayRow) TableName() string {
	return "route_day_rows"
}
