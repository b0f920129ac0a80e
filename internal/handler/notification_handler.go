package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoj3289/WeNectProject/internal/logic"
	"github.com/yoj3289/WeNectProject/internal/middleware"
)

// NotificationHandler 站内通知, 所有接口需要登录
type NotificationHandler struct {
	notificationLogic *logic.NotificationLogic
}

func NewNotificationHandler(notificationLogic *logic.NotificationLogic) *NotificationHandler {
	return &NotificationHandler{notificationLogic: notificationLogic}
}

func (h *NotificationHandler) List(c *gin.Context) {
	userId, _ := middleware.UserId(c)
	page := logic.Page{Page: queryInt(c, "page", 1), PageSize: queryInt(c, "page_size", 20)}

	notifications, total, err := h.notificationLogic.List(c.Request.Context(), userId, page)
	if err != nil {
		respondError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取通知成功", gin.H{
		"notifications": ToNotificationResponseList(notifications),
		"pagination":    newPagination(page.Page, page.PageSize, total),
	})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userId, _ := middleware.UserId(c)
	count, err := h.notificationLogic.UnreadCount(c.Request.Context(), userId)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "获取未读数量成功", gin.H{"count": count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseIdParam(c, "id")
	if !ok {
		return
	}
	userId, _ := middleware.UserId(c)
	if err := h.notificationLogic.MarkRead(c.Request.Context(), userId, id); err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "已标记为已读", nil)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userId, _ := middleware.UserId(c)
	updated, err := h.notificationLogic.MarkAllRead(c.Request.Context(), userId)
	if err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "全部标记为已读", gin.H{"updated": updated})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := parseIdParam(c, "id")
	if !ok {
		return
	}
	userId, _ := middleware.UserId(c)
	if err := h.notificationLogic.Delete(c.Request.Context(), userId, id); err != nil {
		respondError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "通知已删除", nil)
}
