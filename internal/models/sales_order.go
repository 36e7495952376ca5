package models

import (
	"time"

	"gorm.io/gorm"
)

// SalesOrder 销售订单表（拜访结果可关联的订单，仅做存在性引用）
type SalesOrder struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	OrderNo    string         `gorm:"uniqueIndex;not null" json:"order_no"` // 订单编号
	SalesmanID uint           `gorm:"index;not null" json:"salesman_id"`
	CustomerID uint           `gorm:"index;not null" json:"customer_id"`
	Status     string         `gorm:"index;not null" json:"status"`
	Currency   string         `gorm:"not null" json:"currency"`
	GrandTotal Money          `gorm:"type:decimal(20,2);not null;default:0" json:"grand_total"` // 订单总额
	OrderDate  time.Time      `gorm:"index;not null" json:"order_date"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (SalesOrder) TableName() string {
	return "sales_orders"
}
