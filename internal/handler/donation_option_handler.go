package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoj3289/WeNectProject/internal/logic"
)

// DonationOptionHandler 项目捐款档位
type DonationOptionHandler struct {
	optionLogic *logic.DonationOptionLogic
}

func NewDonationOptionHandler(optionLogic *logic.DonationOptionLogic) *DonationOptionHandler {
	return &DonationOptionHandler{optionLogic: optionLogic}
}

// ListOptions 项目的启用档位; includeInactive=true 时返回全部, 仅项目管理者可用
func (h *DonationOptionHandler) ListOptions(c *gin.Context) {
	projectId, ok := parseIdParam(c, "id")
	if !ok {
		return
	}

	includeInactive := c.Query("includeInactive") == "true"
	options, err := h.optionLogic.ListOptions(c.Request.Context(), actorFrom(c), projectId, includeInactive)
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取捐款档位成功", ToDonationOptionResponseList(options))
}

func (h *DonationOptionHandler) CreateOption(c *gin.Context) {
	projectId, ok := parseIdParam(c, "id")
	if !ok {
		return
	}

	var req DonationOptionRequest
	if !bindJSON(c, &req) {
		return
	}

	option, err := h.optionLogic.CreateOption(c.Request.Context(), actorFrom(c), projectId, req.toOptionInput())
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "捐款档位已创建", ToDonationOptionResponse(option))
}

func (h *DonationOptionHandler) GetOption(c *gin.Context) {
	optionId, ok := parseIdParam(c, "optionId")
	if !ok {
		return
	}

	option, err := h.optionLogic.GetOption(c.Request.Context(), optionId)
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取捐款档位成功", ToDonationOptionResponse(option))
}

func (h *DonationOptionHandler) UpdateOption(c *gin.Context) {
	optionId, ok := parseIdParam(c, "optionId")
	if !ok {
		return
	}

	var req DonationOptionRequest
	if !bindJSON(c, &req) {
		return
	}

	option, err := h.optionLogic.UpdateOption(c.Request.Context(), actorFrom(c), optionId, req.toOptionInput())
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "捐款档位已更新", ToDonationOptionResponse(option))
}

func (h *DonationOptionHandler) DeleteOption(c *gin.Context) {
	optionId, ok := parseIdParam(c, "optionId")
	if !ok {
		return
	}

	if err := h.optionLogic.DeleteOption(c.Request.Context(), actorFrom(c), optionId); err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "捐款档位已删除", nil)
}
