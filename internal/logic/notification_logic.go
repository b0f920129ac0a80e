package logic

import (
	"context"
	"time"

	"github.com/yoj3289/WeNectProject/internal/model"
	"github.com/yoj3289/WeNectProject/internal/repository"
	"gorm.io/gorm"
)

// NotificationLogic 用户站内通知
type NotificationLogic struct {
	notifications *repository.NotificationRepository
	now           func() time.Time
}

func NewNotificationLogic(db *gorm.DB) *NotificationLogic {
	return &NotificationLogic{
		notifications: repository.NewNotificationRepository(db),
		now:           time.Now,
	}
}

func (n *NotificationLogic) List(ctx context.Context, userId int64, page Page) ([]model.NotificationModel, int64, error) {
	page = page.normalize()
	return n.notifications.ListByUser(ctx, userId, page.offset(), page.PageSize)
}

func (n *NotificationLogic) UnreadCount(ctx context.Context, userId int64) (int64, error) {
	return n.notifications.CountUnread(ctx, userId)
}

// MarkRead 其他用户的通知按不存在处理
func (n *NotificationLogic) MarkRead(ctx context.Context, userId, id int64) error {
	return n.notifications.MarkRead(ctx, id, userId, n.now())
}

func (n *NotificationLogic) MarkAllRead(ctx context.Context, userId int64) (int64, error) {
	return n.notifications.MarkAllRead(ctx, userId, n.now())
}

func (n *NotificationLogic) Delete(ctx context.Context, userId, id int64) error {
	return n.notifications.Delete(ctx, id, userId)
}
