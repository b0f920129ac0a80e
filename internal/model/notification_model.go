package model

import (
	"time"

	"gorm.io/datatypes"
)

// NotificationModel 站内通知
type NotificationModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	UserId   int64  `json:"user_id" gorm:"not null;index"`
	Type     string `json:"type" gorm:"type:varchar(50);not null"`     // donation, goal_achieved, ...
	Category string `json:"category" gorm:"type:varchar(50);not null"` // donation, project, ...
	Title    string `json:"title" gorm:"type:varchar(200);not null"`
	Message  string `json:"message" gorm:"type:varchar(1000);not null"`
	Link     string `json:"link" gorm:"type:varchar(500)"`

	IsRead     bool           `json:"is_read" gorm:"not null;default:false"`
	IsArchived bool           `json:"is_archived" gorm:"not null;default:false"`
	Metadata   datatypes.JSON `json:"metadata"`
	ReadAt     *time.Time     `json:"read_at"`
}

const (
	NotificationTypeDonation     = "donation"
	NotificationTypeGoalAchieved = "goal_achieved"

	NotificationCategoryDonation = "donation"
	NotificationCategoryProject  = "project"
)

// TableName 自定义表名
func (NotificationModel) TableName() string {
	return "notification"
}
