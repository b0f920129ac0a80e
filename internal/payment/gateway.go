package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/model"
)

// Gateway 两阶段支付网关: prepare 获取跳转地址, confirm 用回调 token 完成扣款。
// 两次调用的 OrderId 和 PayerRef 必须一致。实现不做重试, 所有失败都包装为 ErrGatewayFailure。
type Gateway interface {
	Prepare(ctx context.Context, req PrepareRequest) (*PrepareResult, error)
	Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error)
}

type PrepareRequest struct {
	OrderId  string
	PayerRef string
	ItemName string
	Amount   decimal.Decimal
}

// PrepareResult 网关交易号与用户跳转地址
type PrepareResult struct {
	Tid               string
	RedirectPCURL     string
	RedirectMobileURL string
	RedirectAppURL    string
	CreatedAt         time.Time

	RawRequest  []byte
	RawResponse []byte
}

type ConfirmRequest struct {
	Tid      string
	Token    string
	PayerRef string
	OrderId  string
}

type ConfirmResult struct {
	Aid            string
	Tid            string
	ApprovedAmount decimal.Decimal
	MethodType     string
	ApprovedAt     time.Time

	RawRequest  []byte
	RawResponse []byte
}

// Registry 支付方式到网关实现的映射
type Registry struct {
	gateways map[model.PaymentMethod]Gateway
}

func NewRegistry() *Registry {
	return &Registry{gateways: make(map[model.PaymentMethod]Gateway)}
}

func (r *Registry) Register(method model.PaymentMethod, gateway Gateway) {
	r.gateways[method] = gateway
}

// Get 未注册的方式 (包括预留的 TOSS_PAY) 返回 ErrUnsupportedPaymentMethod
func (r *Registry) Get(method model.PaymentMethod) (Gateway, error) {
	gateway, ok := r.gateways[method]
	if !ok {
		return nil, appErrors.ErrUnsupportedPaymentMethod.WithDetails(map[string]interface{}{
			"payment_method": string(method),
		})
	}
	return gateway, nil
}
