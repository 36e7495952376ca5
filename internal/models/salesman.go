package models

import (
	"time"

	"gorm.io/gorm"
)

// Salesman 业务员表
type Salesman struct {
	ID           uint           `gorm:"primarykey" json:"id"`             // 主键
	Code         string         `gorm:"uniqueIndex;not null" json:"code"` // 业务员编号
	Name         string         `gorm:"not null" json:"name"`             // 姓名
	Phone        string         `gorm:"type:varchar(32)" json:"phone,omitempty"`
	PasswordHash string         `gorm:"size:255" json:"-"`                      // 登录密码（bcrypt）
	Territory    string         `gorm:"index" json:"territory,omitempty"`       // 负责区域
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"` // 是否在职
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (Salesman) TableName() string {
	return "salesmen"
}
