package service

import (
	"sort"
	"sync"
	"time"

	"github.com/stanley00316/election-system-demo-sub002/internal/model"
	"github.com/stanley00316/election-system-demo-sub002/internal/model/dto"
	"github.com/stanley00316/election-system-demo-sub002/internal/repository"
)

type StatsService struct {
	promoterRepo  *repository.PromoterRepository
	shareLinkRepo *repository.ShareLinkRepository
	referralRepo  *repository.ReferralRepository
	inviteRepo    *repository.TrialInviteRepository
}

func NewStatsService(
	promoterRepo *repository.PromoterRepository,
	shareLinkRepo *repository.ShareLinkRepository,
	referralRepo *repository.ReferralRepository,
	inviteRepo *repository.TrialInviteRepository,
) *StatsService {
	return &StatsService{
		promoterRepo:  promoterRepo,
		shareLinkRepo: shareLinkRepo,
		referralRepo:  referralRepo,
		inviteRepo:    inviteRepo,
	}
}

// statsCollector 并发取数，只保留第一个错误
type statsCollector struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	firstErr error
}

func (c *statsCollector) run(fn func() error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := fn(); err != nil {
			c.mu.Lock()
			if c.firstErr == nil {
				c.firstErr = err
			}
			c.mu.Unlock()
		}
	}()
}

func (c *statsCollector) wait() error {
	c.wg.Wait()
	return c.firstErr
}

// PromoterStats 单个推广员的推广面板
func (s *StatsService) PromoterStats(promoterID int64) (*dto.PromoterStats, error) {
	if _, err := s.promoterRepo.GetByID(promoterID); err != nil {
		return nil, ErrPromoterNotFound
	}

	stats := &dto.PromoterStats{}
	var c statsCollector

	c.run(func() (err error) {
		stats.TotalClicks, err = s.shareLinkRepo.CountClicksByPromoter(promoterID)
		return
	})
	c.run(func() (err error) {
		stats.TotalReferrals, err = s.referralRepo.CountByPromoter(promoterID)
		return
	})
	c.run(func() (err error) {
		stats.RegisteredCount, err = s.referralRepo.CountByPromoterAndStatuses(promoterID, []model.ReferralStatus{
			model.ReferralStatusRegistered, model.ReferralStatusSubscribed, model.ReferralStatusRenewed,
		})
		return
	})
	c.run(func() (err error) {
		stats.SubscribedCount, err = s.referralRepo.CountByPromoterAndStatuses(promoterID, []model.ReferralStatus{
			model.ReferralStatusSubscribed, model.ReferralStatusRenewed,
		})
		return
	})
	c.run(func() (err error) {
		stats.RenewedCount, err = s.referralRepo.CountByPromoterAndStatuses(promoterID, []model.ReferralStatus{
			model.ReferralStatusRenewed,
		})
		return
	})
	c.run(func() (err error) {
		stats.TrialIssued, err = s.inviteRepo.CountByPromoterSince(promoterID, time.Time{})
		return
	})
	c.run(func() (err error) {
		stats.TrialActivated, err = s.inviteRepo.CountByPromoterAndStatuses(promoterID, []model.TrialInviteStatus{
			model.TrialInviteStatusActivated, model.TrialInviteStatusActive, model.TrialInviteStatusConverted,
		})
		return
	})
	c.run(func() (err error) {
		stats.TrialConverted, err = s.inviteRepo.CountByPromoterAndStatuses(promoterID, []model.TrialInviteStatus{
			model.TrialInviteStatusConverted,
		})
		return
	})

	if err := c.wait(); err != nil {
		return nil, err
	}

	if stats.TotalReferrals > 0 {
		stats.ConversionRate = float64(stats.SubscribedCount) / float64(stats.TotalReferrals)
	}
	return stats, nil
}

// GlobalFunnel 全局转化漏斗
func (s *StatsService) GlobalFunnel() (*dto.GlobalFunnel, error) {
	funnel := &dto.GlobalFunnel{}
	var c statsCollector

	c.run(func() (err error) {
		funnel.ClickedCount, err = s.shareLinkRepo.CountAllClicks()
		return
	})
	c.run(func() (err error) {
		funnel.RegisteredCount, err = s.referralRepo.CountAll()
		return
	})
	c.run(func() (err error) {
		funnel.TrialCount, err = s.inviteRepo.CountByStatuses([]model.TrialInviteStatus{
			model.TrialInviteStatusActivated, model.TrialInviteStatusActive, model.TrialInviteStatusConverted,
		})
		return
	})
	c.run(func() (err error) {
		funnel.SubscribedCount, err = s.referralRepo.CountByStatuses([]model.ReferralStatus{
			model.ReferralStatusSubscribed, model.ReferralStatusRenewed,
		})
		return
	})
	c.run(func() (err error) {
		funnel.RenewedCount, err = s.referralRepo.CountByStatuses([]model.ReferralStatus{
			model.ReferralStatusRenewed,
		})
		return
	})

	if err := c.wait(); err != nil {
		return nil, err
	}
	return funnel, nil
}

// Leaderboard 推广排行：成功推荐 + 试用转化合计，按得分降序，同分按 ID 升序稳定排序
func (s *StatsService) Leaderboard(limit int) ([]*dto.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	successes, err := s.referralRepo.GroupSuccessByPromoter()
	if err != nil {
		return nil, err
	}
	converted, err := s.inviteRepo.GroupConvertedByPromoter()
	if err != nil {
		return nil, err
	}

	merged := make(map[int64]*dto.LeaderboardEntry)
	for _, row := range successes {
		merged[row.PromoterID] = &dto.LeaderboardEntry{
			PromoterID:   row.PromoterID,
			SuccessCount: row.Count,
		}
	}
	for _, row := range converted {
		entry, ok := merged[row.PromoterID]
		if !ok {
			entry = &dto.LeaderboardEntry{PromoterID: row.PromoterID}
			merged[row.PromoterID] = entry
		}
		entry.TrialConverted = row.Count
	}

	entries := make([]*dto.LeaderboardEntry, 0, len(merged))
	ids := make([]int64, 0, len(merged))
	for id, entry := range merged {
		entry.Score = entry.SuccessCount + entry.TrialConverted
		entries = append(entries, entry)
		ids = append(ids, id)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].PromoterID < entries[j].PromoterID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	promoters, err := s.promoterRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(promoters))
	for _, p := range promoters {
		names[p.ID] = p.Name
	}
	for _, entry := range entries {
		entry.PromoterName = names[entry.PromoterID]
	}
	return entries, nil
}
