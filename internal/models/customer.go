package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer 客户表
type Customer struct {
	ID        uint           `gorm:"primarykey" json:"id"`             // 主键
	Code      string         `gorm:"uniqueIndex;not null" json:"code"` // 客户编号
	Name      string         `gorm:"index;not null" json:"name"`       // 客户名称
	Address   string         `gorm:"type:text" json:"address,omitempty"`
	Latitude  *float64       `json:"latitude,omitempty"`  // 门店纬度
	Longitude *float64       `json:"longitude,omitempty"` // 门店经度
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}
