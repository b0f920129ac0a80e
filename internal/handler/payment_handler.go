package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	appErrors "github.com/yoj3289/WeNectProject/internal/errors"
	"github.com/yoj3289/WeNectProject/internal/logger"
	"github.com/yoj3289/WeNectProject/internal/logic"
	"github.com/yoj3289/WeNectProject/internal/model"
)

// PaymentHandler 支付发起与网关回调
type PaymentHandler struct {
	donationLogic *logic.DonationLogic
}

func NewPaymentHandler(donationLogic *logic.DonationLogic) *PaymentHandler {
	return &PaymentHandler{donationLogic: donationLogic}
}

// KakaoReady 创建捐款并发起 KakaoPay 支付
func (h *PaymentHandler) KakaoReady(c *gin.Context) {
	var req CreateDonationRequest
	if !bindJSON(c, &req) {
		return
	}
	req.PaymentMethod = model.PaymentMethodKakaoPay

	ctx := c.Request.Context()
	donation, err := h.donationLogic.CreateDonation(ctx, req.toCreateDonationInput(optionalUserId(c), model.PaymentMethodKakaoPay))
	if err != nil {
		respondError(c, err)
		return
	}

	redirect, err := h.donationLogic.BeginPayment(ctx, donation.OrderId)
	if err != nil {
		// 捐款保持 PENDING, 客户端可凭订单号重试
		appErr := appErrors.FromError(err)
		respondError(c, appErr.WithDetails(map[string]interface{}{"order_id": donation.OrderId}))
		return
	}

	SuccessResponse(c, http.StatusOK, "支付已发起", ToReadyPaymentResponse(redirect))
}

// Ready 为已存在的待支付捐款发起支付
func (h *PaymentHandler) Ready(c *gin.Context) {
	redirect, err := h.donationLogic.BeginPayment(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "支付已发起", ToReadyPaymentResponse(redirect))
}

// KakaoSuccess 网关成功回调, 可重复调用
func (h *PaymentHandler) KakaoSuccess(c *gin.Context) {
	orderId := c.Query("orderId")
	if orderId == "" {
		respondError(c, appErrors.NewValidationError("orderId", "缺少订单号"))
		return
	}

	donation, err := h.donationLogic.ConfirmPayment(c.Request.Context(), orderId, c.Query("pg_token"))
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Payment success callback handled: orderId=%s, status=%s", orderId, donation.Status)
	SuccessResponse(c, http.StatusOK, "支付成功", ToDonationResponse(donation))
}

// KakaoCancel 用户在网关页面取消
func (h *PaymentHandler) KakaoCancel(c *gin.Context) {
	h.terminate(c, h.donationLogic.CancelPayment, "支付已取消")
}

// KakaoFail 网关通知支付失败
func (h *PaymentHandler) KakaoFail(c *gin.Context) {
	h.terminate(c, h.donationLogic.FailPayment, "支付失败")
}

func (h *PaymentHandler) terminate(c *gin.Context, fn func(ctx context.Context, orderId string) (*model.DonationModel, error), message string) {
	orderId := c.Query("orderId")
	if orderId == "" {
		respondError(c, appErrors.NewValidationError("orderId", "缺少订单号"))
		return
	}

	donation, err := fn(c.Request.Context(), orderId)
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, message, ToDonationResponse(donation))
}
