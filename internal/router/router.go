package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoj3289/WeNectProject/internal/config"
	"github.com/yoj3289/WeNectProject/internal/handler"
	"github.com/yoj3289/WeNectProject/internal/logic"
	"github.com/yoj3289/WeNectProject/internal/middleware"
)

// Deps 路由依赖的业务逻辑
type Deps struct {
	Projects      *logic.ProjectLogic
	Donations     *logic.DonationLogic
	Notifications *logic.NotificationLogic
	Options       *logic.DonationOptionLogic
}

func Setup(cfg *config.Config, deps Deps) *gin.Engine {
	registerValidators()

	r := gin.New()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.Server.CORSOrigins))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "donation-service",
		})
	})

	// 本地存储的附件直接由服务提供
	if cfg.Storage.Driver == "local" && strings.HasPrefix(cfg.Storage.BaseURL, "/") {
		r.Static(cfg.Storage.BaseURL, cfg.Storage.LocalDir)
	}

	projectHandler := handler.NewProjectHandler(deps.Projects, deps.Donations)
	donationHandler := handler.NewDonationHandler(deps.Donations)
	paymentHandler := handler.NewPaymentHandler(deps.Donations)
	notificationHandler := handler.NewNotificationHandler(deps.Notifications)
	statsHandler := handler.NewStatsHandler(deps.Projects)
	optionHandler := handler.NewDonationOptionHandler(deps.Options)

	// API版本组
	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.Auth.JWTSecret))
	{
		// 项目相关路由
		projects := v1.Group("/projects")
		{
			projects.GET("", projectHandler.GetProjects)
			projects.GET("/popular", projectHandler.GetPopularProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.GET("/:id/donations", projectHandler.GetProjectDonations)
			projects.GET("/:id/stats", projectHandler.GetProjectStats)
			projects.GET("/:id/options", optionHandler.ListOptions)

			manage := projects.Group("", middleware.RequireUser())
			manage.POST("", projectHandler.CreateProject)
			manage.PUT("/:id", projectHandler.UpdateProject)
			manage.POST("/:id/cancel", projectHandler.CancelProject)
			manage.DELETE("/:id", projectHandler.DeleteProject)
			manage.POST("/:id/media", projectHandler.UploadMedia)
			manage.DELETE("/:id/media/:mediaId", projectHandler.DeleteMedia)
			manage.POST("/:id/options", optionHandler.CreateOption)

			projects.POST("/:id/recalculate", middleware.RequireAdmin(), projectHandler.RecalculateAggregate)
		}

		// 捐款档位
		options := v1.Group("/donation-options")
		{
			options.GET("/:optionId", optionHandler.GetOption)
			options.PUT("/:optionId", middleware.RequireUser(), optionHandler.UpdateOption)
			options.DELETE("/:optionId", middleware.RequireUser(), optionHandler.DeleteOption)
		}

		// 捐款相关路由
		donations := v1.Group("/donations")
		{
			donations.POST("", donationHandler.CreateDonation)
			donations.GET("/recent", donationHandler.GetRecentDonations)
			donations.GET("/order/:orderId", donationHandler.GetDonationByOrderId)
			donations.GET("/me", middleware.RequireUser(), donationHandler.GetMyDonations)
		}

		// 支付与网关回调
		payments := v1.Group("/payments")
		{
			payments.POST("/kakao/ready", paymentHandler.KakaoReady)
			payments.GET("/kakao/success", paymentHandler.KakaoSuccess)
			payments.GET("/kakao/cancel", paymentHandler.KakaoCancel)
			payments.GET("/kakao/fail", paymentHandler.KakaoFail)
			payments.POST("/:orderId/ready", paymentHandler.Ready)
		}

		notifications := v1.Group("/notifications", middleware.RequireUser())
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.DELETE("/:id", notificationHandler.Delete)
		}

		v1.GET("/stats/summary", statsHandler.GetSummary)
	}

	return r
}

// CORS中间件, 只回显白名单内的 Origin; 白名单含 "*" 时放行全部
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowed["*"] || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
