package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectModel 众筹项目模型
type ProjectModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`

	// 众筹信息, CurrentAmount 与 DonorCount 是由已完成捐款推导出的缓存
	TargetAmount  decimal.Decimal `json:"target_amount" gorm:"type:decimal(15,2);not null"`
	CurrentAmount decimal.Decimal `json:"current_amount" gorm:"type:decimal(15,2);not null;default:0"`
	DonorCount    int64           `json:"donor_count" gorm:"not null;default:0"`
	MinAmount     decimal.Decimal `json:"min_amount" gorm:"type:decimal(15,2);not null;default:0"`
	MaxAmount     decimal.Decimal `json:"max_amount" gorm:"type:decimal(15,2);not null;default:0"`

	// 时间信息
	StartTime time.Time `json:"start_time" gorm:"not null"`
	EndTime   time.Time `json:"end_time" gorm:"not null"`

	// 状态
	Status ProjectStatus `json:"status" gorm:"type:varchar(20);default:'pending'"`

	// 创建者信息
	CreatorUserId *int64 `json:"creator_user_id" gorm:"index"`
	CreatorName   string `json:"creator_name"`
}

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusPending   ProjectStatus = "pending"   // 待开始
	ProjectStatusActive    ProjectStatus = "active"    // 进行中
	ProjectStatusSuccess   ProjectStatus = "success"   // 成功
	ProjectStatusFailed    ProjectStatus = "failed"    // 失败
	ProjectStatusCancelled ProjectStatus = "cancelled" // 已取消
)

// TableName 自定义表名
func (ProjectModel) TableName() string {
	return "project"
}
