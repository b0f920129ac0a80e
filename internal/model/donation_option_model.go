package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DonationOptionModel 项目预设的捐款档位, 如 "一名儿童一餐 4000"
type DonationOptionModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectId    int64           `json:"project_id" gorm:"not null;index:idx_donation_option_project_order"`
	Name         string          `json:"name" gorm:"type:varchar(200);not null"`
	Description  string          `json:"description" gorm:"type:varchar(500)"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(15,2);not null"`
	IconEmoji    string          `json:"icon_emoji" gorm:"type:varchar(10)"`
	DisplayOrder int             `json:"display_order" gorm:"not null;default:0;index:idx_donation_option_project_order"`
	IsActive     bool            `json:"is_active" gorm:"not null"`
}

// TableName 自定义表名
func (DonationOptionModel) TableName() string {
	return "donation_option"
}
