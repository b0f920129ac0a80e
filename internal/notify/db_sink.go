package notify

import (
	"context"
	"encoding/json"

	"github.com/yoj3289/WeNectProject/internal/model"
	"github.com/yoj3289/WeNectProject/internal/repository"
	"gorm.io/datatypes"
)

// DBSink 写入 notification 表
type DBSink struct {
	repo *repository.NotificationRepository
}

func NewDBSink(repo *repository.NotificationRepository) *DBSink {
	return &DBSink{repo: repo}
}

func (s *DBSink) Send(ctx context.Context, msg Message) error {
	var metadata datatypes.JSON
	if len(msg.Metadata) > 0 {
		raw, err := json.Marshal(msg.Metadata)
		if err != nil {
			return err
		}
		metadata = datatypes.JSON(raw)
	}

	return s.repo.Create(ctx, &model.NotificationModel{
		UserId:   msg.UserId,
		Type:     msg.Type,
		Category: msg.Category,
		Title:    msg.Title,
		Message:  msg.Body,
		Link:     msg.Link,
		Metadata: metadata,
	})
}
