package repository

import (
	"context"
	"time"

	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/model"
	"gorm.io/gorm"
)

// NotificationRepository 站内通知存储
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *model.NotificationModel) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

// ListByUser 用户未归档的通知, 新的在前
func (r *NotificationRepository) ListByUser(ctx context.Context, userId int64, offset, limit int) ([]model.NotificationModel, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("user_id = ? AND is_archived = ?", userId, false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []model.NotificationModel
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userId int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("user_id = ? AND is_read = ? AND is_archived = ?", userId, false, false).
		Count(&count).Error
	return count, err
}

// MarkRead 只允许本人操作, 否则按不存在处理
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userId int64, now time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("id = ? AND user_id = ?", id, userId).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return appErrors.NewNotFoundError("通知")
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userId int64, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userId, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	return result.RowsAffected, result.Error
}

func (r *NotificationRepository) Delete(ctx context.Context, id, userId int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userId).
		Delete(&model.NotificationModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return appErrors.NewNotFoundError("通知")
	}
	return nil
}
