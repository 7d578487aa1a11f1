// Package cron 定时任务：过期试用邀请的批量收口
package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultSpec = "@every 10m"

// Sweeper 由 service 层实现
type Sweeper interface {
	ExpireOverdue(now time.Time) (int64, error)
}

type Service struct {
	cron    *cron.Cron
	sweeper Sweeper
	spec    string
}

func NewService(sweeper Sweeper, spec string) *Service {
	if spec == "" {
		spec = defaultSpec
	}
	return &Service{
		cron:    cron.New(),
		sweeper: sweeper,
		spec:    spec,
	}
}

func (s *Service) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunNow); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Service) Stop() {
	s.cron.Stop()
}

// RunNow 立即执行一次清扫。重复执行安全，已终态的邀请不会被再次改动
func (s *Service) RunNow() {
	swept, err := s.sweeper.ExpireOverdue(time.Now())
	if err != nil {
		log.Printf("试用过期清扫失败: %v", err)
		return
	}
	if swept > 0 {
		log.Printf("试用过期清扫完成，处理 %d 条", swept)
	}
}
