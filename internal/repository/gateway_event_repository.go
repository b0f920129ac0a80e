package repository

import (
	"context"
	"errors"

	"github.com/yoj3289/WeNectProject/internal/model"
	"gorm.io/gorm"
)

// GatewayEventRepository 网关调用流水
type GatewayEventRepository struct {
	db *gorm.DB
}

func NewGatewayEventRepository(db *gorm.DB) *GatewayEventRepository {
	return &GatewayEventRepository{db: db}
}

// WithTx 返回绑定到事务的副本
func (r *GatewayEventRepository) WithTx(tx *gorm.DB) *GatewayEventRepository {
	return &GatewayEventRepository{db: tx}
}

func (r *GatewayEventRepository) Create(ctx context.Context, event *model.GatewayEventModel) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// Settle 写入一次 confirm 调用的结果
func (r *GatewayEventRepository) Settle(ctx context.Context, event *model.GatewayEventModel) error {
	result := r.db.WithContext(ctx).Model(&model.GatewayEventModel{}).
		Where("id = ?", event.Id).
		Updates(map[string]interface{}{
			"in_flight":       event.InFlight,
			"success":         event.Success,
			"tid":             event.Tid,
			"aid":             event.Aid,
			"approved_amount": event.ApprovedAmount,
			"method_type":     event.MethodType,
			"approved_at":     event.ApprovedAt,
			"request":         event.Request,
			"response":        event.Response,
			"error":           event.Error,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ConfirmInFlight 是否存在结果未知的 confirm 调用
func (r *GatewayEventRepository) ConfirmInFlight(ctx context.Context, orderId string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GatewayEventModel{}).
		Where("order_id = ? AND phase = ? AND in_flight = ?", orderId, model.GatewayPhaseConfirm, true).
		Count(&count).Error
	return count > 0, err
}

// LatestApproval 订单最近一次成功的 confirm 记录, 没有时返回 nil
func (r *GatewayEventRepository) LatestApproval(ctx context.Context, orderId string) (*model.GatewayEventModel, error) {
	var event model.GatewayEventModel
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND phase = ? AND success = ?", orderId, model.GatewayPhaseConfirm, true).
		Order("created_at DESC, id DESC").
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// ListByOrder 订单的全部网关调用, 按时间正序
func (r *GatewayEventRepository) ListByOrder(ctx context.Context, orderId string) ([]model.GatewayEventModel, error) {
	var events []model.GatewayEventModel
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderId).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}
