package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yoj3289/WeNectProject/internal/config"
	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/logger"
)

const defaultGatewayTimeout = 10 * time.Second

// KakaoPayGateway KakaoPay 在线支付 API 客户端
type KakaoPayGateway struct {
	cfg    config.KakaoPayConfig
	client *http.Client
}

func NewKakaoPayGateway(cfg config.KakaoPayConfig, timeout time.Duration) *KakaoPayGateway {
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	return &KakaoPayGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type kakaoReadyRequest struct {
	CID            string `json:"cid"`
	PartnerOrderID string `json:"partner_order_id"`
	PartnerUserID  string `json:"partner_user_id"`
	ItemName       string `json:"item_name"`
	Quantity       int    `json:"quantity"`
	TotalAmount    int64  `json:"total_amount"`
	TaxFreeAmount  int64  `json:"tax_free_amount"`
	ApprovalURL    string `json:"approval_url"`
	CancelURL      string `json:"cancel_url"`
	FailURL        string `json:"fail_url"`
}

type kakaoReadyResponse struct {
	Tid                   string    `json:"tid"`
	NextRedirectPCURL     string    `json:"next_redirect_pc_url"`
	NextRedirectMobileURL string    `json:"next_redirect_mobile_url"`
	NextRedirectAppURL    string    `json:"next_redirect_app_url"`
	CreatedAt             kakaoTime `json:"created_at"`
}

type kakaoApproveRequest struct {
	CID            string `json:"cid"`
	Tid            string `json:"tid"`
	PartnerOrderID string `json:"partner_order_id"`
	PartnerUserID  string `json:"partner_user_id"`
	PgToken        string `json:"pg_token"`
}

type kakaoApproveResponse struct {
	Aid               string `json:"aid"`
	Tid               string `json:"tid"`
	PaymentMethodType string `json:"payment_method_type"`
	Amount            struct {
		Total int64 `json:"total"`
	} `json:"amount"`
	ApprovedAt kakaoTime `json:"approved_at"`
}

type kakaoErrorResponse struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// kakaoTime 网关返回不带时区的本地时间, 例如 2024-01-01T10:00:00
type kakaoTime struct {
	time.Time
}

var kakaoLocation = time.FixedZone("KST", 9*60*60)

func (t *kakaoTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation("2006-01-02T15:04:05", s, kakaoLocation)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Prepare 调用 ready 接口
func (g *KakaoPayGateway) Prepare(ctx context.Context, req PrepareRequest) (*PrepareResult, error) {
	if !req.Amount.Equal(req.Amount.Truncate(0)) {
		return nil, appErrors.ErrGatewayFailure.WithMessage("KakaoPay 仅支持整数金额").
			WithDetails(map[string]interface{}{"amount": req.Amount.String()})
	}

	body := kakaoReadyRequest{
		CID:            g.cfg.CID,
		PartnerOrderID: req.OrderId,
		PartnerUserID:  req.PayerRef,
		ItemName:       req.ItemName,
		Quantity:       1,
		TotalAmount:    req.Amount.IntPart(),
		TaxFreeAmount:  0,
		ApprovalURL:    withOrderId(g.cfg.ApprovalURL, req.OrderId),
		CancelURL:      withOrderId(g.cfg.CancelURL, req.OrderId),
		FailURL:        withOrderId(g.cfg.FailURL, req.OrderId),
	}

	var resp kakaoReadyResponse
	rawReq, rawResp, err := g.post(ctx, g.cfg.ReadyURL, body, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Tid == "" {
		return nil, appErrors.ErrGatewayFailure.WithMessage("网关未返回交易号").
			WithDetails(map[string]interface{}{"order_id": req.OrderId})
	}

	logger.Info("KakaoPay ready ok: orderId=%s, tid=%s", req.OrderId, resp.Tid)

	return &PrepareResult{
		Tid:               resp.Tid,
		RedirectPCURL:     resp.NextRedirectPCURL,
		RedirectMobileURL: resp.NextRedirectMobileURL,
		RedirectAppURL:    resp.NextRedirectAppURL,
		CreatedAt:         resp.CreatedAt.Time,
		RawRequest:        rawReq,
		RawResponse:       rawResp,
	}, nil
}

// Confirm 调用 approve 接口
func (g *KakaoPayGateway) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	body := kakaoApproveRequest{
		CID:            g.cfg.CID,
		Tid:            req.Tid,
		PartnerOrderID: req.OrderId,
		PartnerUserID:  req.PayerRef,
		PgToken:        req.Token,
	}

	var resp kakaoApproveResponse
	rawReq, rawResp, err := g.post(ctx, g.cfg.ApproveURL, body, &resp)
	if err != nil {
		return nil, err
	}

	approvedAt := resp.ApprovedAt.Time
	if approvedAt.IsZero() {
		approvedAt = time.Now()
	}
	tid := resp.Tid
	if tid == "" {
		tid = req.Tid
	}

	logger.Info("KakaoPay approve ok: orderId=%s, tid=%s, aid=%s, amount=%d",
		req.OrderId, tid, resp.Aid, resp.Amount.Total)

	return &ConfirmResult{
		Aid:            resp.Aid,
		Tid:            tid,
		ApprovedAmount: decimal.NewFromInt(resp.Amount.Total),
		MethodType:     resp.PaymentMethodType,
		ApprovedAt:     approvedAt,
		RawRequest:     rawReq,
		RawResponse:    rawResp,
	}, nil
}

func (g *KakaoPayGateway) post(ctx context.Context, endpoint string, body interface{}, out interface{}) ([]byte, []byte, error) {
	rawReq, err := json.Marshal(body)
	if err != nil {
		return nil, nil, appErrors.ErrGatewayFailure.WithError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(rawReq))
	if err != nil {
		return rawReq, nil, appErrors.ErrGatewayFailure.WithError(err)
	}
	httpReq.Header.Set("Authorization", "SECRET_KEY "+g.cfg.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		// 超时与连接错误同样视为网关失败
		logger.Error("KakaoPay request failed: endpoint=%s, err=%v", endpoint, err)
		return rawReq, nil, appErrors.ErrGatewayFailure.WithError(err)
	}
	defer httpResp.Body.Close()

	rawResp, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return rawReq, nil, appErrors.ErrGatewayFailure.WithError(err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var kakaoErr kakaoErrorResponse
		_ = json.Unmarshal(rawResp, &kakaoErr)
		logger.Error("KakaoPay returned status %d: code=%d, message=%s",
			httpResp.StatusCode, kakaoErr.ErrorCode, kakaoErr.ErrorMessage)
		return rawReq, rawResp, appErrors.ErrGatewayFailure.
			WithError(fmt.Errorf("kakaopay status %d: %s", httpResp.StatusCode, string(rawResp))).
			WithDetails(map[string]interface{}{
				"http_status": httpResp.StatusCode,
				"error_code":  kakaoErr.ErrorCode,
			})
	}

	if err := json.Unmarshal(rawResp, out); err != nil {
		return rawReq, rawResp, appErrors.ErrGatewayFailure.WithError(fmt.Errorf("decode kakaopay response: %w", err))
	}
	return rawReq, rawResp, nil
}

func withOrderId(base, orderId string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("orderId", orderId)
	u.RawQuery = q.Encode()
	return u.String()
}
