package models

import (
	"time"
)

// TrackerEvent 现场打卡记录表
//
// visit_id 上的唯一索引保证每次拜访至多一条打卡记录；
// visit_id 为空的是历史遗留的未关联记录（唯一索引允许多个 NULL），
// 由关联器按 (salesman, customer, 打卡日期) 弱匹配回拜访记录。
type TrackerEvent struct {
	ID               uint       `gorm:"primarykey" json:"id"`
	VisitID          *uint      `gorm:"uniqueIndex" json:"visit_id,omitempty"` // 关联拜访ID（可空）
	SalesmanID       uint       `gorm:"index;not null" json:"salesman_id"`
	CustomerID       uint       `gorm:"index;not null" json:"customer_id"`
	Latitude         float64    `gorm:"not null" json:"latitude"`
	Longitude        float64    `gorm:"not null" json:"longitude"`
	LocationAccuracy *float64   `json:"location_accuracy,omitempty"` // 定位精度（米，0 与负值视为无效入库为 NULL）
	CheckInTime      time.Time  `gorm:"index;not null" json:"check_in_time"`
	CheckOutTime     *time.Time `json:"check_out_time"`
	Status           string     `gorm:"index;not null" json:"status"`            // checked_in / checked_out
	Confirmed        bool       `gorm:"not null;default:false" json:"confirmed"` // 是否已确认（确认后不可再改）
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"index" json:"updated_at"`
}

// TableName 指定表名
func (TrackerEvent) TableName() string {
	return "tracker_events"
}
