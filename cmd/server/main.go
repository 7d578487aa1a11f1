package main

import (
	"fmt"
	"log"

	"github.com/stanley00316/election-system-demo-sub002/config"
	"github.com/stanley00316/election-system-demo-sub002/internal/api"
	"github.com/stanley00316/election-system-demo-sub002/internal/api/handler"
	"github.com/stanley00316/election-system-demo-sub002/internal/database"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/cron"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/refcode"
	"github.com/stanley00316/election-system-demo-sub002/internal/repository"
	"github.com/stanley00316/election-system-demo-sub002/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 配额时区
	quotaLoc, err := cfg.Promoter.QuotaLocation()
	if err != nil {
		log.Fatalf("Invalid quota timezone: %v", err)
	}

	// 码生成器
	refGen, err := refcode.New(cfg.Promoter.CodeAlphabet, cfg.Promoter.ReferralCodeLength, "")
	if err != nil {
		log.Fatalf("Failed to init referral code generator: %v", err)
	}
	shareGen, err := refcode.New(cfg.Promoter.CodeAlphabet, cfg.Promoter.ShareCodeLength, "")
	if err != nil {
		log.Fatalf("Failed to init share code generator: %v", err)
	}
	trialGen, err := refcode.New(cfg.Promoter.CodeAlphabet, cfg.Promoter.TrialCodeLength, cfg.Promoter.TrialCodePrefix)
	if err != nil {
		log.Fatalf("Failed to init trial code generator: %v", err)
	}

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	promoterRepo := repository.NewPromoterRepository(db)
	shareLinkRepo := repository.NewShareLinkRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	inviteRepo := repository.NewTrialInviteRepository(db)

	// 初始化 Service
	quotaService := service.NewQuotaService(quotaLoc)
	billingService := service.NewBillingService(cfg)
	promoterService := service.NewPromoterService(promoterRepo, shareLinkRepo, refGen, shareGen, cfg)
	attributionService := service.NewAttributionService(promoterRepo, userRepo, shareLinkRepo, cfg)
	trialService := service.NewTrialService(db, promoterRepo, inviteRepo, quotaService, billingService, trialGen, cfg)
	referralService := service.NewReferralService(promoterRepo, referralRepo, quotaService)
	statsService := service.NewStatsService(promoterRepo, shareLinkRepo, referralRepo, inviteRepo)

	// 初始化 Handler
	publicHandler := handler.NewPublicHandler(promoterService, attributionService, trialService, billingService)
	userHandler := handler.NewUserHandler(trialService, referralService)
	promoterHandler := handler.NewPromoterHandler(promoterService, trialService, referralService, statsService)
	adminHandler := handler.NewAdminHandler(promoterService, trialService, referralService, statsService)

	// 定时任务：过期试用清扫
	cronService := cron.NewService(trialService, cfg.Sweep.Spec)
	if err := cronService.Start(); err != nil {
		log.Fatalf("Failed to start cron: %v", err)
	}
	defer cronService.Stop()
	log.Println("Trial expiry sweeper scheduled")

	// 初始化 Router
	router := api.NewRouter(
		publicHandler,
		userHandler,
		promoterHandler,
		adminHandler,
		promoterRepo,
		rdb,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
