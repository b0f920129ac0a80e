package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoj3289/WeNectProject/internal/logic"
	"github.com/yoj3289/WeNectProject/internal/middleware"
	"github.com/yoj3289/WeNectProject/internal/model"
)

type DonationHandler struct {
	donationLogic *logic.DonationLogic
}

func NewDonationHandler(donationLogic *logic.DonationLogic) *DonationHandler {
	return &DonationHandler{donationLogic: donationLogic}
}

// CreateDonation 创建待支付捐款, 不访问支付网关
func (h *DonationHandler) CreateDonation(c *gin.Context) {
	var req CreateDonationRequest
	if !bindJSON(c, &req) {
		return
	}

	donation, err := h.donationLogic.CreateDonation(c.Request.Context(), req.toCreateDonationInput(optionalUserId(c), model.PaymentMethodKakaoPay))
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "捐款已创建", ToDonationResponse(donation))
}

// GetRecentDonations 最近完成的捐款
func (h *DonationHandler) GetRecentDonations(c *gin.Context) {
	donations, err := h.donationLogic.ListRecentDonations(c.Request.Context(), queryInt(c, "limit", 10))
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取最近捐款成功", ToDonationResponseList(donations))
}

// GetDonationByOrderId 按订单号查询捐款状态
func (h *DonationHandler) GetDonationByOrderId(c *gin.Context) {
	donation, err := h.donationLogic.GetDonationByOrderId(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取捐款成功", ToDonationResponse(donation))
}

// GetMyDonations 当前用户的捐款记录
func (h *DonationHandler) GetMyDonations(c *gin.Context) {
	userId, _ := middleware.UserId(c)
	page := logic.Page{Page: queryInt(c, "page", 1), PageSize: queryInt(c, "page_size", 20)}

	donations, total, err := h.donationLogic.ListDonorDonations(c.Request.Context(), userId, page)
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取捐款记录成功", GetDonationsResponse{
		Donations:  ToDonationResponseList(donations),
		Pagination: newPagination(page.Page, page.PageSize, total),
	})
}
