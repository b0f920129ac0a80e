package model

import (
	"time"
)

// ProjectMediaModel 项目图片/文档
type ProjectMediaModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ProjectId    int64     `json:"project_id" gorm:"not null;index"`
	Kind         MediaKind `json:"kind" gorm:"type:varchar(20);not null"`
	Path         string    `json:"path" gorm:"type:varchar(500);not null"`
	OriginalName string    `json:"original_name" gorm:"type:varchar(255)"`
	ContentType  string    `json:"content_type" gorm:"type:varchar(100)"`
	Size         int64     `json:"size"`
}

// MediaKind 媒体类型
type MediaKind string

const (
	MediaKindImage    MediaKind = "image"
	MediaKindDocument MediaKind = "document"
)

// TableName 自定义表名
func (ProjectMediaModel) TableName() string {
	return "project_media"
}
