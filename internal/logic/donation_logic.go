package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/logger"
	"github.com/yoj3289/WeNectProject/internal/model"
	"github.com/yoj3289/WeNectProject/internal/notify"
	"github.com/yoj3289/WeNectProject/internal/payment"
	"github.com/yoj3289/WeNectProject/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	orderIdPrefix      = "ORDER_"
	orderIdMaxAttempts = 3
	maxRecentLimit     = 50
)

var (
	// errNotPending 条件更新未命中, 状态已被并发请求改变
	errNotPending = errors.New("donation is no longer pending")
	// errConfirmInFlight 存在结果未知的 confirm 调用, 不能取消或置为失败
	errConfirmInFlight = errors.New("gateway confirm outcome unknown")
)

// DonationLogic 捐款生命周期: 创建 -> prepare -> confirm/cancel/fail
type DonationLogic struct {
	db        *gorm.DB
	donations *repository.DonationRepository
	projects  *repository.ProjectRepository
	events    *repository.GatewayEventRepository
	options   *repository.DonationOptionRepository
	gateways  *payment.Registry
	aggregate AggregateUpdater
	emitter   notify.Emitter
	ids       *snowflake.Node
	now       func() time.Time
}

// NewDonationLogic 创建捐款业务逻辑
func NewDonationLogic(
	db *gorm.DB,
	gateways *payment.Registry,
	aggregate AggregateUpdater,
	emitter notify.Emitter,
	ids *snowflake.Node,
) *DonationLogic {
	if emitter == nil {
		emitter = notify.NopEmitter{}
	}
	return &DonationLogic{
		db:        db,
		donations: repository.NewDonationRepository(db),
		projects:  repository.NewProjectRepository(db),
		events:    repository.NewGatewayEventRepository(db),
		options:   repository.NewDonationOptionRepository(db),
		gateways:  gateways,
		aggregate: aggregate,
		emitter:   emitter,
		ids:       ids,
		now:       time.Now,
	}
}

// CreateDonationInput 创建捐款参数
type CreateDonationInput struct {
	ProjectId     int64
	DonorUserId   *int64
	Amount        decimal.Decimal
	DonorName     string
	DonorEmail    string
	DonorPhone    string
	PaymentMethod model.PaymentMethod
	IsAnonymous   bool
	Message       string
	// 选择的项目档位, 可为空
	SelectedOptionId *int64
}

// PaymentRedirect prepare 成功后返回给前端的跳转信息
type PaymentRedirect struct {
	OrderId           string `json:"order_id"`
	Tid               string `json:"tid"`
	RedirectPCURL     string `json:"next_redirect_pc_url"`
	RedirectMobileURL string `json:"next_redirect_mobile_url"`
	RedirectAppURL    string `json:"next_redirect_app_url"`
}

// CreateDonation 校验项目并创建 PENDING 捐款, 不访问网关
func (l *DonationLogic) CreateDonation(ctx context.Context, in CreateDonationInput) (*model.DonationModel, error) {
	if !in.Amount.IsPositive() {
		return nil, appErrors.NewValidationError("amount", "捐款金额必须大于0")
	}
	if !in.PaymentMethod.Valid() {
		return nil, appErrors.ErrUnsupportedPaymentMethod.WithDetails(map[string]interface{}{
			"payment_method": string(in.PaymentMethod),
		})
	}

	project, err := l.projects.GetById(ctx, in.ProjectId)
	if err != nil {
		return nil, err
	}
	if project.Status == model.ProjectStatusCancelled || project.Status == model.ProjectStatusFailed {
		return nil, appErrors.ErrInvalidState.WithMessage("项目已关闭, 无法捐款").
			WithDetails(map[string]interface{}{"project_id": project.Id, "status": string(project.Status)})
	}
	if project.MinAmount.IsPositive() && in.Amount.LessThan(project.MinAmount) {
		return nil, appErrors.NewValidationError("amount", fmt.Sprintf("捐款金额不能低于%s", project.MinAmount.String()))
	}
	if project.MaxAmount.IsPositive() && in.Amount.GreaterThan(project.MaxAmount) {
		return nil, appErrors.NewValidationError("amount", fmt.Sprintf("捐款金额不能高于%s", project.MaxAmount.String()))
	}

	if in.SelectedOptionId != nil {
		option, err := l.options.GetById(ctx, *in.SelectedOptionId)
		if err != nil && !errors.Is(err, appErrors.ErrNotFound) {
			return nil, err
		}
		if option == nil || option.ProjectId != project.Id || !option.IsActive {
			return nil, appErrors.NewValidationError("selected_option_id", "捐款档位不存在或已停用")
		}
	}

	donorName := strings.TrimSpace(in.DonorName)
	if donorName == "" {
		if !in.IsAnonymous {
			return nil, appErrors.NewValidationError("donor_name", "捐款人姓名不能为空")
		}
		donorName = "匿名"
	}

	projectId := project.Id
	donation := &model.DonationModel{
		ProjectId:     &projectId,
		DonorUserId:   in.DonorUserId,
		DonorName:     donorName,
		DonorEmail:    in.DonorEmail,
		DonorPhone:    in.DonorPhone,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		Status:        model.DonationStatusPending,
		IsAnonymous:   in.IsAnonymous,
		Message:       in.Message,

		SelectedOptionId: in.SelectedOptionId,
	}

	// 订单号来自随机 UUID, 唯一键冲突时换一个重试
	for attempt := 1; ; attempt++ {
		orderId, err := newOrderId()
		if err != nil {
			return nil, appErrors.ErrInternal.WithError(err)
		}
		donation.Id = l.ids.Generate().Int64()
		donation.OrderId = orderId

		err = l.donations.Create(ctx, donation)
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < orderIdMaxAttempts {
			logger.Warn("Order id collision, retrying: orderId=%s, attempt=%d", orderId, attempt)
			continue
		}
		return nil, fmt.Errorf("创建捐款失败: %w", err)
	}

	logger.Info("Donation created: orderId=%s, projectId=%d, amount=%s, method=%s",
		donation.OrderId, projectId, donation.Amount.String(), donation.PaymentMethod)
	return donation, nil
}

// BeginPayment 调用网关 prepare 并持久化交易号, 捐款仍为 PENDING。
// 网关失败时不改变状态, 由调用方决定重试或显式调用 FailPayment。
func (l *DonationLogic) BeginPayment(ctx context.Context, orderId string) (*PaymentRedirect, error) {
	donation, err := l.donations.GetByOrderId(ctx, orderId)
	if err != nil {
		return nil, err
	}
	if donation.Status != model.DonationStatusPending {
		return nil, invalidState(donation, "只有待支付的捐款可以发起支付")
	}

	gateway, err := l.gateways.Get(donation.PaymentMethod)
	if err != nil {
		return nil, err
	}

	req := payment.PrepareRequest{
		OrderId:  donation.OrderId,
		PayerRef: payerRef(donation),
		ItemName: l.itemName(ctx, donation),
		Amount:   donation.Amount,
	}
	result, err := gateway.Prepare(ctx, req)

	event := &model.GatewayEventModel{
		OrderId: donation.OrderId,
		Method:  donation.PaymentMethod,
		Phase:   model.GatewayPhasePrepare,
	}
	if err != nil {
		event.Error = err.Error()
		l.recordEvent(ctx, event)
		logger.Error("Payment prepare failed: orderId=%s, err=%v", orderId, err)
		return nil, err
	}
	event.Success = true
	event.Tid = result.Tid
	event.Request = rawJSON(result.RawRequest)
	event.Response = rawJSON(result.RawResponse)
	l.recordEvent(ctx, event)

	rows, err := l.donations.SaveTid(ctx, orderId, result.Tid)
	if err != nil {
		return nil, fmt.Errorf("保存交易号失败: %w", err)
	}
	if rows == 0 {
		current, err := l.donations.GetByOrderId(ctx, orderId)
		if err != nil {
			return nil, err
		}
		return nil, invalidState(current, "捐款状态已变化")
	}

	logger.Info("Payment prepared: orderId=%s, tid=%s", orderId, result.Tid)
	return &PaymentRedirect{
		OrderId:           orderId,
		Tid:               result.Tid,
		RedirectPCURL:     result.RedirectPCURL,
		RedirectMobileURL: result.RedirectMobileURL,
		RedirectAppURL:    result.RedirectAppURL,
	}, nil
}

// ConfirmPayment 幂等: 已完成的捐款直接返回原记录, 不再调用网关, 也不会重复累加
func (l *DonationLogic) ConfirmPayment(ctx context.Context, orderId, token string) (*model.DonationModel, error) {
	donation, err := l.donations.GetByOrderId(ctx, orderId)
	if err != nil {
		return nil, err
	}
	if donation.Status == model.DonationStatusCompleted {
		logger.Info("Donation already completed, skip confirm: orderId=%s", orderId)
		return donation, nil
	}
	if donation.Status.IsTerminal() {
		return nil, invalidState(donation, "捐款已结束, 无法确认支付")
	}
	if donation.PaymentTid == "" {
		return nil, invalidState(donation, "支付尚未发起")
	}

	// 上一次网关已确认但本地提交失败时, 直接使用记录的确认结果
	approval, err := l.events.LatestApproval(ctx, orderId)
	if err != nil {
		return nil, fmt.Errorf("查询网关记录失败: %w", err)
	}
	persist := false
	if approval == nil {
		approval, persist, err = l.callConfirm(ctx, donation, token)
		if err != nil {
			// 并发请求可能已完成同一笔捐款
			if current, getErr := l.donations.GetByOrderId(ctx, orderId); getErr == nil &&
				current.Status == model.DonationStatusCompleted {
				return current, nil
			}
			return nil, err
		}
	} else {
		logger.Warn("Reusing recorded gateway approval: orderId=%s, aid=%s", orderId, approval.Aid)
	}

	return l.completeFromApproval(ctx, donation, approval, persist)
}

// callConfirm 先落库一条 in_flight 的 confirm 记录再调用网关。
// 返回的 persist 为 true 表示批准结果尚未写入, 需在完成事务内补写。
func (l *DonationLogic) callConfirm(ctx context.Context, donation *model.DonationModel, token string) (*model.GatewayEventModel, bool, error) {
	if strings.TrimSpace(token) == "" {
		return nil, false, appErrors.NewValidationError("pg_token", "缺少支付确认令牌")
	}

	gateway, err := l.gateways.Get(donation.PaymentMethod)
	if err != nil {
		return nil, false, err
	}

	attempt := &model.GatewayEventModel{
		Id:       l.ids.Generate().Int64(),
		OrderId:  donation.OrderId,
		Method:   donation.PaymentMethod,
		Phase:    model.GatewayPhaseConfirm,
		Tid:      donation.PaymentTid,
		InFlight: true,
	}
	if err := l.events.Create(ctx, attempt); err != nil {
		return nil, false, fmt.Errorf("记录支付确认失败: %w", err)
	}

	// 记录落库后取消与过期都会被拦住, 此时仍为 PENDING 才能调用网关
	current, err := l.donations.GetByOrderId(ctx, donation.OrderId)
	if err != nil {
		l.settleFailure(ctx, attempt, err)
		return nil, false, err
	}
	if current.Status != model.DonationStatusPending {
		l.settleFailure(ctx, attempt, errNotPending)
		return nil, false, invalidState(current, "捐款状态已变化")
	}

	result, err := gateway.Confirm(ctx, payment.ConfirmRequest{
		Tid:      donation.PaymentTid,
		Token:    token,
		PayerRef: payerRef(donation),
		OrderId:  donation.OrderId,
	})
	if err != nil {
		l.settleFailure(ctx, attempt, err)
		logger.Error("Payment confirm failed: orderId=%s, err=%v", donation.OrderId, err)
		return nil, false, err
	}

	approvedAt := result.ApprovedAt
	attempt.InFlight = false
	attempt.Success = true
	attempt.Tid = result.Tid
	attempt.Aid = result.Aid
	attempt.ApprovedAmount = result.ApprovedAmount
	attempt.MethodType = result.MethodType
	attempt.ApprovedAt = &approvedAt
	attempt.Request = rawJSON(result.RawRequest)
	attempt.Response = rawJSON(result.RawResponse)
	if err := l.events.Settle(ctx, attempt); err != nil {
		logger.Error("Failed to record gateway approval, writing it with completion: orderId=%s, aid=%s, err=%v",
			donation.OrderId, attempt.Aid, err)
		return attempt, true, nil
	}
	return attempt, false, nil
}

// settleFailure confirm 未成功, 清除 in_flight 标记
func (l *DonationLogic) settleFailure(ctx context.Context, attempt *model.GatewayEventModel, cause error) {
	attempt.InFlight = false
	attempt.Error = cause.Error()
	if err := l.events.Settle(ctx, attempt); err != nil {
		logger.Error("Failed to settle confirm attempt: orderId=%s, eventId=%d, err=%v", attempt.OrderId, attempt.Id, err)
	}
}

// completeFromApproval 账本置为 COMPLETED 与项目聚合累加在同一事务内提交。
// persist 为 true 时批准记录随同一事务写入。
func (l *DonationLogic) completeFromApproval(ctx context.Context, donation *model.DonationModel, approval *model.GatewayEventModel, persist bool) (*model.DonationModel, error) {
	if !approval.ApprovedAmount.Equal(donation.Amount) {
		if persist {
			l.retrySettle(ctx, approval)
		}
		logger.Error("Approved amount mismatch: orderId=%s, expected=%s, approved=%s",
			donation.OrderId, donation.Amount.String(), approval.ApprovedAmount.String())
		return nil, appErrors.ErrGatewayFailure.WithMessage("网关确认金额与捐款金额不一致").
			WithDetails(map[string]interface{}{
				"order_id": donation.OrderId,
				"expected": donation.Amount.String(),
				"approved": approval.ApprovedAmount.String(),
			})
	}

	approvedAt := l.now()
	if approval.ApprovedAt != nil {
		approvedAt = *approval.ApprovedAt
	}
	tid := approval.Tid
	if tid == "" {
		tid = donation.PaymentTid
	}

	var before, after *model.ProjectModel
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if persist {
			if err := l.events.WithTx(tx).Settle(ctx, approval); err != nil {
				return fmt.Errorf("记录网关确认失败: %w", err)
			}
		}

		donations := l.donations.WithTx(tx)
		rows, err := donations.Complete(ctx, donation.OrderId, repository.Approval{
			Tid:        tid,
			Aid:        approval.Aid,
			MethodType: approval.MethodType,
			ApprovedAt: approvedAt,
		})
		if err != nil {
			return err
		}
		if rows == 0 {
			return errNotPending
		}

		// 项目可能已在支付过程中被删除, 以事务内的关联为准
		stored, err := donations.GetByOrderId(ctx, donation.OrderId)
		if err != nil {
			return err
		}
		if stored.ProjectId == nil {
			return nil
		}
		projectId := *stored.ProjectId
		projects := l.projects.WithTx(tx)
		if before, err = projects.GetById(ctx, projectId); err != nil {
			return appErrors.ErrAggregateUpdateFailure.WithError(err)
		}
		if err := l.aggregate.ApplyCompletedDonation(ctx, tx, projectId, donation.Amount); err != nil {
			return err
		}
		if after, err = projects.GetById(ctx, projectId); err != nil {
			return appErrors.ErrAggregateUpdateFailure.WithError(err)
		}
		return nil
	})
	if err != nil && persist {
		l.retrySettle(ctx, approval)
	}

	if errors.Is(err, errNotPending) {
		current, getErr := l.donations.GetByOrderId(ctx, donation.OrderId)
		if getErr != nil {
			return nil, getErr
		}
		if current.Status == model.DonationStatusCompleted {
			return current, nil
		}
		return nil, invalidState(current, "捐款状态已变化")
	}
	if err != nil {
		if errors.Is(err, appErrors.ErrAggregateUpdateFailure) {
			logger.Error("Aggregate update failed, donation left pending: orderId=%s, err=%v", donation.OrderId, err)
			return nil, err
		}
		return nil, fmt.Errorf("完成捐款失败: %w", err)
	}

	completed, err := l.donations.GetByOrderId(ctx, donation.OrderId)
	if err != nil {
		return nil, err
	}
	logger.Info("Donation completed: orderId=%s, aid=%s, amount=%s",
		completed.OrderId, completed.PaymentAid, completed.Amount.String())

	l.emitCompletion(completed, before, after)
	return completed, nil
}

// CancelPayment 用户取消
func (l *DonationLogic) CancelPayment(ctx context.Context, orderId string) (*model.DonationModel, error) {
	return l.terminate(ctx, orderId, model.DonationStatusCancelled)
}

// FailPayment 支付失败
func (l *DonationLogic) FailPayment(ctx context.Context, orderId string) (*model.DonationModel, error) {
	return l.terminate(ctx, orderId, model.DonationStatusFailed)
}

// terminate 重复进入同一终态视为成功, 进入其他终态被拒绝。
// 网关已批准的捐款按批准结果完成; confirm 结果未知时拒绝。
func (l *DonationLogic) terminate(ctx context.Context, orderId string, target model.DonationStatus) (*model.DonationModel, error) {
	donation, err := l.donations.GetByOrderId(ctx, orderId)
	if err != nil {
		return nil, err
	}
	if donation.Status == target {
		return donation, nil
	}
	if !donation.Status.CanTransitionTo(target) {
		return nil, invalidState(donation, fmt.Sprintf("捐款状态为%s, 无法变更为%s", donation.Status, target))
	}
	if completed, err := l.completeIfApproved(ctx, donation); completed != nil || err != nil {
		return completed, err
	}

	rows, err := l.donations.TerminateUnconfirmed(ctx, orderId, target)
	if err != nil {
		return nil, fmt.Errorf("更新捐款状态失败: %w", err)
	}

	current, err := l.donations.GetByOrderId(ctx, orderId)
	if err != nil {
		return nil, err
	}
	if rows == 0 && current.Status != target {
		if current.Status != model.DonationStatusPending {
			return nil, invalidState(current, "捐款状态已变化")
		}
		if completed, err := l.completeIfApproved(ctx, current); completed != nil || err != nil {
			return completed, err
		}
		return nil, invalidState(current, "支付确认处理中, 无法变更状态").WithError(errConfirmInFlight)
	}

	logger.Info("Donation terminated: orderId=%s, status=%s", orderId, current.Status)
	return current, nil
}

// completeIfApproved 有成功的 confirm 记录时补完成, 否则返回 nil, nil
func (l *DonationLogic) completeIfApproved(ctx context.Context, donation *model.DonationModel) (*model.DonationModel, error) {
	approval, err := l.events.LatestApproval(ctx, donation.OrderId)
	if err != nil {
		return nil, fmt.Errorf("查询网关记录失败: %w", err)
	}
	if approval == nil {
		return nil, nil
	}
	logger.Warn("Gateway already approved, completing donation: orderId=%s, aid=%s", donation.OrderId, approval.Aid)
	return l.completeFromApproval(ctx, donation, approval, false)
}

// ExpireStalePayment 超时未完成的捐款: 有已确认记录则补完成, confirm 结果未知时跳过, 否则置为 FAILED
func (l *DonationLogic) ExpireStalePayment(ctx context.Context, orderId string) (*model.DonationModel, error) {
	donation, err := l.donations.GetByOrderId(ctx, orderId)
	if err != nil {
		return nil, err
	}
	if donation.Status != model.DonationStatusPending {
		return donation, nil
	}

	logger.Info("Expiring stale donation: orderId=%s, createdAt=%s", orderId, donation.CreatedAt.Format(time.RFC3339))
	expired, err := l.FailPayment(ctx, orderId)
	if errors.Is(err, errConfirmInFlight) {
		logger.Warn("Stale donation has a confirm with unknown outcome, needs reconciliation: orderId=%s", orderId)
		return l.donations.GetByOrderId(ctx, orderId)
	}
	return expired, err
}

// RecalculateProjectAggregate 管理员修复, 以账本为准覆盖项目聚合
func (l *DonationLogic) RecalculateProjectAggregate(ctx context.Context, projectId int64) (*AggregateSnapshot, error) {
	return l.aggregate.Recompute(ctx, projectId)
}

// GetDonationByOrderId 按订单号查询
func (l *DonationLogic) GetDonationByOrderId(ctx context.Context, orderId string) (*model.DonationModel, error) {
	return l.donations.GetByOrderId(ctx, orderId)
}

// ListProjectDonations 项目的已完成捐款
func (l *DonationLogic) ListProjectDonations(ctx context.Context, projectId int64, page Page) ([]model.DonationModel, int64, error) {
	if _, err := l.projects.GetById(ctx, projectId); err != nil {
		return nil, 0, err
	}
	page = page.normalize()
	return l.donations.ListByProject(ctx, projectId, model.DonationStatusCompleted, page.offset(), page.PageSize)
}

// ListDonorDonations 用户自己的捐款, 包括未完成的
func (l *DonationLogic) ListDonorDonations(ctx context.Context, userId int64, page Page) ([]model.DonationModel, int64, error) {
	page = page.normalize()
	return l.donations.ListByDonor(ctx, userId, page.offset(), page.PageSize)
}

// ListRecentDonations 最近完成的捐款
func (l *DonationLogic) ListRecentDonations(ctx context.Context, limit int) ([]model.DonationModel, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return l.donations.ListRecentCompleted(ctx, limit)
}

// ListStalePending 创建超过 ttl 仍未完成的捐款
func (l *DonationLogic) ListStalePending(ctx context.Context, ttl time.Duration, limit int) ([]model.DonationModel, error) {
	return l.donations.ListStalePending(ctx, l.now().Add(-ttl), limit)
}

func (l *DonationLogic) emitCompletion(donation *model.DonationModel, before, after *model.ProjectModel) {
	if donation.DonorUserId != nil {
		msg := notify.Message{
			UserId:   *donation.DonorUserId,
			Type:     model.NotificationTypeDonation,
			Category: model.NotificationCategoryDonation,
			Title:    "捐款成功",
			Body:     fmt.Sprintf("感谢您的捐款 %s 元", donation.Amount.String()),
			Metadata: map[string]interface{}{
				"order_id": donation.OrderId,
				"amount":   donation.Amount.String(),
			},
		}
		if after != nil {
			msg.Body = fmt.Sprintf("感谢您为「%s」捐款 %s 元", after.Title, donation.Amount.String())
			msg.Link = fmt.Sprintf("/project/%d", after.Id)
			msg.Metadata["project_id"] = after.Id
		}
		l.emitter.Emit(msg)
	}

	if before == nil || after == nil {
		return
	}
	crossed := after.TargetAmount.IsPositive() &&
		before.CurrentAmount.LessThan(after.TargetAmount) &&
		!after.CurrentAmount.LessThan(after.TargetAmount)
	if crossed && after.CreatorUserId != nil {
		l.emitter.Emit(notify.Message{
			UserId:   *after.CreatorUserId,
			Type:     model.NotificationTypeGoalAchieved,
			Category: model.NotificationCategoryProject,
			Title:    "项目已达成目标",
			Body:     fmt.Sprintf("「%s」已筹得 %s 元, 达成目标金额 %s 元", after.Title, after.CurrentAmount.String(), after.TargetAmount.String()),
			Link:     fmt.Sprintf("/project/%d", after.Id),
			Metadata: map[string]interface{}{
				"project_id":     after.Id,
				"current_amount": after.CurrentAmount.String(),
				"target_amount":  after.TargetAmount.String(),
				"donor_count":    after.DonorCount,
			},
		})
	}
}

// recordEvent prepare 流水写入失败只记录日志, 交易号另存于捐款记录
func (l *DonationLogic) recordEvent(ctx context.Context, event *model.GatewayEventModel) {
	event.Id = l.ids.Generate().Int64()
	if err := l.events.Create(ctx, event); err != nil {
		logger.Error("Failed to record gateway event: orderId=%s, phase=%s, err=%v", event.OrderId, event.Phase, err)
	}
}

// retrySettle 完成事务未提交时再尝试写一次批准记录
func (l *DonationLogic) retrySettle(ctx context.Context, approval *model.GatewayEventModel) {
	if err := l.events.Settle(ctx, approval); err != nil {
		logger.Error("Gateway approval not recorded, confirm outcome left in flight: orderId=%s, aid=%s, err=%v",
			approval.OrderId, approval.Aid, err)
	}
}

func (l *DonationLogic) itemName(ctx context.Context, donation *model.DonationModel) string {
	if donation.ProjectId != nil {
		if project, err := l.projects.GetById(ctx, *donation.ProjectId); err == nil {
			return "Donation - " + project.Title
		}
	}
	return "Donation"
}

// payerRef prepare 与 confirm 必须传相同的值
func payerRef(donation *model.DonationModel) string {
	if donation.DonorUserId != nil {
		return fmt.Sprintf("user-%d", *donation.DonorUserId)
	}
	return donation.OrderId
}

func newOrderId() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return orderIdPrefix + strings.ReplaceAll(id.String(), "-", ""), nil
}

func invalidState(donation *model.DonationModel, message string) *appErrors.AppError {
	return appErrors.ErrInvalidState.WithMessage(message).WithDetails(map[string]interface{}{
		"order_id": donation.OrderId,
		"status":   string(donation.Status),
	})
}

func rawJSON(raw []byte) datatypes.JSON {
	if len(raw) == 0 || !json.Valid(raw) {
		return nil
	}
	return datatypes.JSON(raw)
}
