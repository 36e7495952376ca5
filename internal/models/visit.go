package models

import (
	"time"
)

// Visit 拜访记录表
//
// 以 (salesman_id, customer_id, visit_date) 为幂等键，每天每客户仅生成一条；
// 不做软删除，唯一索引直接约束幂等创建。
type Visit struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	SalesmanID    uint       `gorm:"uniqueIndex:idx_visits_salesman_customer_date;not null" json:"salesman_id"` // 业务员ID
	CustomerID    uint       `gorm:"uniqueIndex:idx_visits_salesman_customer_date;not null" json:"customer_id"` // 客户ID
	VisitDate     time.Time  `gorm:"uniqueIndex:idx_visits_salesman_customer_date;not null" json:"visit_date"`  // 拜访日期（UTC 零点）
	TemplateID    *uint      `gorm:"index" json:"template_id,omitempty"`                                        // 来源路线模板ID（手工创建为空）
	CheckInTime   *time.Time `json:"check_in_time"`                                                             // 到店时间
	CheckOutTime  *time.Time `json:"check_out_time"`                                                            // 离店时间
	Outcome       string     `gorm:"type:varchar(32)" json:"outcome,omitempty"`                                 // 拜访结果
	NextVisitDate *time.Time `json:"next_visit_date,omitempty"`                                                 // 下次拜访日期
	LinkedOrderID *uint      `gorm:"index" json:"linked_order_id,omitempty"`                                    // 关联销售订单ID
	Latitude      *float64   `json:"latitude,omitempty"`                                                        // 到店纬度
	Longitude     *float64   `json:"longitude,omitempty"`                                                       // 到店经度
	Remarks       string     `gorm:"type:text" json:"remarks,omitempty"`                                        // 备注（带时间戳追加）
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"index" json:"updated_at"`
}

// TableName 指定表名
func (Visit) TableName() string {
	return "visits"
}

// VisitDay 归一化拜访日期（UTC 零点）
func VisitDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
