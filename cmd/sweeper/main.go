package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/stanley00316/election-system-demo-sub002/config"
	"github.com/stanley00316/election-system-demo-sub002/internal/database"
	"github.com/stanley00316/election-system-demo-sub002/internal/repository"
)

var dryRun = flag.Bool("dry-run", false, "Count overdue invites without updating them")

// 一次性的过期试用清扫，给不跑常驻 cron 的部署用（crontab / k8s CronJob）
func main() {
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	now := time.Now()
	inviteRepo := repository.NewTrialInviteRepository(db)

	if *dryRun {
		count, err := inviteRepo.CountOverdue(now)
		if err != nil {
			log.Fatalf("Failed to count overdue invites: %v", err)
		}
		log.Printf("DRY RUN: %d overdue trial invites would be expired", count)
		return
	}

	swept, err := inviteRepo.ExpireOverdue(now)
	if err != nil {
		log.Fatalf("Failed to expire overdue invites: %v", err)
	}
	log.Printf("Expired %d overdue trial invites", swept)
}
