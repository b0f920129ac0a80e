package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoj3289/WeNectProject/internal/logic"
)

type StatsHandler struct {
	projectLogic *logic.ProjectLogic
}

func NewStatsHandler(projectLogic *logic.ProjectLogic) *StatsHandler {
	return &StatsHandler{projectLogic: projectLogic}
}

// GetSummary 平台汇总统计
func (h *StatsHandler) GetSummary(c *gin.Context) {
	stats, err := h.projectLogic.GetAllProjectStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取统计成功", stats)
}
