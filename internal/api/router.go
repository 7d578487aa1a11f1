package api

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stanley00316/election-system-demo-sub002/config"
	"github.com/stanley00316/election-system-demo-sub002/internal/api/handler"
	"github.com/stanley00316/election-system-demo-sub002/internal/api/middleware"
	"github.com/stanley00316/election-system-demo-sub002/internal/repository"
)

type Router struct {
	publicHandler   *handler.PublicHandler
	userHandler     *handler.UserHandler
	promoterHandler *handler.PromoterHandler
	adminHandler    *handler.AdminHandler
	promoterRepo    *repository.PromoterRepository
	rdb             *redis.Client
	cfg             *config.Config
}

func NewRouter(
	publicHandler *handler.PublicHandler,
	userHandler *handler.UserHandler,
	promoterHandler *handler.PromoterHandler,
	adminHandler *handler.AdminHandler,
	promoterRepo *repository.PromoterRepository,
	rdb *redis.Client,
	cfg *config.Config,
) *Router {
	return &Router{
		publicHandler:   publicHandler,
		userHandler:     userHandler,
		promoterHandler: promoterHandler,
		adminHandler:    adminHandler,
		promoterRepo:    promoterRepo,
		rdb:             rdb,
		cfg:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	{
		// 公开接口，入站流量限流
		public := api.Group("")
		public.Use(middleware.RateLimit(r.rdb, r.cfg.RateLimit))
		{
			public.POST("/promoters/register", r.publicHandler.RegisterPromoter)
			public.POST("/promoter/login", r.publicHandler.PromoterLogin)
			public.GET("/codes/:code/validate", r.publicHandler.ValidateCode)
			public.POST("/track/ref", r.publicHandler.TrackRefClick)
			public.GET("/s/:code", r.publicHandler.ResolveShareLink)
			public.GET("/s/:code/qr", r.publicHandler.ShareLinkQR)
			public.GET("/trials/:code/info", r.publicHandler.GetTrialInfo)
		}

		// 平台用户
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			authenticated.POST("/trials/claim", r.userHandler.ClaimTrial)
			authenticated.POST("/referrals/apply", r.userHandler.ApplyReferral)
		}

		// 推广员后台
		promoter := api.Group("/promoter")
		promoter.Use(middleware.PromoterAuth(r.cfg.JWT.Secret, r.promoterRepo))
		{
			promoter.GET("/profile", r.promoterHandler.GetProfile)
			promoter.PUT("/profile", r.promoterHandler.UpdateProfile)
			promoter.GET("/stats", r.promoterHandler.GetStats)
			promoter.GET("/referrals", r.promoterHandler.ListReferrals)
			promoter.GET("/share-links", r.promoterHandler.ListShareLinks)
			promoter.POST("/share-links", r.promoterHandler.CreateShareLink)
			promoter.GET("/share-links/:id/clicks", r.promoterHandler.ListShareLinkClicks)
			promoter.POST("/share-links/:id/disable", r.promoterHandler.DisableShareLink)
			promoter.POST("/share-links/:id/enable", r.promoterHandler.EnableShareLink)
			promoter.GET("/trial-invites", r.promoterHandler.ListTrialInvites)
			promoter.POST("/trial-invites", r.promoterHandler.CreateTrialInvite)
		}

		// 管理端
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.RequireAdmin())
		{
			admin.GET("/promoters", r.adminHandler.ListPromoters)
			admin.POST("/promoters", r.adminHandler.CreatePromoter)
			admin.POST("/promoters/:id/approve", r.adminHandler.ApprovePromoter)
			admin.POST("/promoters/:id/suspend", r.adminHandler.SuspendPromoter)
			admin.POST("/promoters/:id/activate", r.adminHandler.ActivatePromoter)
			admin.POST("/promoters/:id/deactivate", r.adminHandler.DeactivatePromoter)
			admin.GET("/trial-invites", r.adminHandler.ListTrialInvites)
			admin.POST("/trial-invites/:id/extend", r.adminHandler.ExtendTrialInvite)
			admin.POST("/trial-invites/:id/cancel", r.adminHandler.CancelTrialInvite)
			admin.GET("/stats/funnel", r.adminHandler.GetFunnel)
			admin.GET("/stats/leaderboard", r.adminHandler.GetLeaderboard)
		}

		// 支付侧回调
		internal := api.Group("/internal")
		internal.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.RequireAdmin())
		{
			internal.POST("/billing/events", r.adminHandler.HandleBillingEvent)
		}
	}

	return engine
}
