package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/model"
	"gorm.io/gorm"
)

// DonationRepository 捐款账本存储, 以 order_id 为业务主键
type DonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// WithTx 返回绑定到事务的副本
func (r *DonationRepository) WithTx(tx *gorm.DB) *DonationRepository {
	return &DonationRepository{db: tx}
}

// Approval 网关确认后写入账本的字段
type Approval struct {
	Aid        string
	Tid        string
	MethodType string
	ApprovedAt time.Time
}

func (r *DonationRepository) Create(ctx context.Context, donation *model.DonationModel) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

// GetByOrderId 按订单号查询, 不存在时返回 ErrNotFound
func (r *DonationRepository) GetByOrderId(ctx context.Context, orderId string) (*model.DonationModel, error) {
	var donation model.DonationModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderId).First(&donation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.NewNotFoundError("捐款").WithDetails(map[string]interface{}{"order_id": orderId})
		}
		return nil, err
	}
	return &donation, nil
}

// SaveTid 记录 prepare 返回的交易号, 仅对 PENDING 生效
func (r *DonationRepository) SaveTid(ctx context.Context, orderId, tid string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.DonationModel{}).
		Where("order_id = ? AND status = ?", orderId, model.DonationStatusPending).
		Update("payment_tid", tid)
	return result.RowsAffected, result.Error
}

// TerminateUnconfirmed PENDING -> to, 网关已批准或 confirm 结果未知时不更新
func (r *DonationRepository) TerminateUnconfirmed(ctx context.Context, orderId string, to model.DonationStatus) (int64, error) {
	confirmed := r.db.Session(&gorm.Session{NewDB: true}).
		Model(&model.GatewayEventModel{}).
		Select("1").
		Where("gateway_event.order_id = donation.order_id AND gateway_event.phase = ?", model.GatewayPhaseConfirm).
		Where("(gateway_event.success = ? OR gateway_event.in_flight = ?)", true, true)

	result := r.db.WithContext(ctx).Model(&model.DonationModel{}).
		Where("order_id = ? AND status = ?", orderId, model.DonationStatusPending).
		Where("NOT EXISTS (?)", confirmed).
		Update("status", to)
	return result.RowsAffected, result.Error
}

// Complete PENDING -> COMPLETED 并写入确认信息
func (r *DonationRepository) Complete(ctx context.Context, orderId string, approval Approval) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.DonationModel{}).
		Where("order_id = ? AND status = ?", orderId, model.DonationStatusPending).
		Updates(map[string]interface{}{
			"status":              model.DonationStatusCompleted,
			"payment_tid":         approval.Tid,
			"payment_aid":         approval.Aid,
			"payment_method_type": approval.MethodType,
			"approved_at":         approval.ApprovedAt,
		})
	return result.RowsAffected, result.Error
}

// ListByProject 项目下指定状态的捐款, 按时间倒序
func (r *DonationRepository) ListByProject(ctx context.Context, projectId int64, status model.DonationStatus, offset, limit int) ([]model.DonationModel, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.DonationModel{}).
		Where("project_id = ? AND status = ?", projectId, status)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var donations []model.DonationModel
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&donations).Error; err != nil {
		return nil, 0, err
	}
	return donations, total, nil
}

// ListByDonor 用户的全部捐款
func (r *DonationRepository) ListByDonor(ctx context.Context, userId int64, offset, limit int) ([]model.DonationModel, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.DonationModel{}).Where("donor_user_id = ?", userId)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var donations []model.DonationModel
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&donations).Error; err != nil {
		return nil, 0, err
	}
	return donations, total, nil
}

// ListRecentCompleted 最近完成的捐款
func (r *DonationRepository) ListRecentCompleted(ctx context.Context, limit int) ([]model.DonationModel, error) {
	var donations []model.DonationModel
	err := r.db.WithContext(ctx).
		Where("status = ?", model.DonationStatusCompleted).
		Order("approved_at DESC, id DESC").
		Limit(limit).
		Find(&donations).Error
	return donations, err
}

// ListStalePending 创建时间早于 before 的待支付捐款
func (r *DonationRepository) ListStalePending(ctx context.Context, before time.Time, limit int) ([]model.DonationModel, error) {
	var donations []model.DonationModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.DonationStatusPending, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&donations).Error
	return donations, err
}

// CompletedTotals 从账本计算项目的已完成金额与笔数
func (r *DonationRepository) CompletedTotals(ctx context.Context, projectId int64) (decimal.Decimal, int64, error) {
	var row struct {
		Total decimal.Decimal
		Count int64
	}
	if err := r.db.WithContext(ctx).Model(&model.DonationModel{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("project_id = ? AND status = ?", projectId, model.DonationStatusCompleted).
		Scan(&row).Error; err != nil {
		return decimal.Zero, 0, err
	}
	return row.Total, row.Count, nil
}

// DetachProject 项目删除时置空关联, 捐款记录本身保留
func (r *DonationRepository) DetachProject(ctx context.Context, projectId int64) error {
	return r.db.WithContext(ctx).Model(&model.DonationModel{}).
		Where("project_id = ?", projectId).
		Update("project_id", nil).Error
}

// CountDistinctDonors 已完成捐款的去重实名捐款人数
func (r *DonationRepository) CountDistinctDonors(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DonationModel{}).
		Where("status = ? AND donor_user_id IS NOT NULL", model.DonationStatusCompleted).
		Distinct("donor_user_id").
		Count(&count).Error
	return count, err
}
