package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/stanley00316/election-system-demo-sub002/internal/model"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/metrics"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/refcode"
	"github.com/stanley00316/election-system-demo-sub002/internal/repository"
)

var (
	ErrReferralCodeInvalid = errors.New("推荐码无效")
	ErrSelfReferral        = errors.New("不能使用自己的推荐码")
	ErrAlreadyReferred     = errors.New("该用户已有推荐记录")
	ErrReferralNotFound    = errors.New("推荐记录不存在")
	ErrInvalidTransition   = errors.New("推荐状态不允许该变更")
)

type ReferralService struct {
	promoterRepo *repository.PromoterRepository
	referralRepo *repository.ReferralRepository
	quota        *QuotaService
}

func NewReferralService(
	promoterRepo *repository.PromoterRepository,
	referralRepo *repository.ReferralRepository,
	quota *QuotaService,
) *ReferralService {
	return &ReferralService{
		promoterRepo: promoterRepo,
		referralRepo: referralRepo,
		quota:        quota,
	}
}

// Apply 已注册用户填写推广员推荐码。
// 一个用户终身只有一条推荐记录，重复申请返回冲突而不是静默忽略
func (s *ReferralService) Apply(userID int64, code string) (*model.PromoterReferral, error) {
	promoter, err := s.promoterRepo.GetByReferralCode(refcode.Normalize(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferralCodeInvalid
		}
		return nil, err
	}

	// 自荐拦截先于状态检查：无论推广员状态如何都拒绝
	if promoter.UserID != nil && *promoter.UserID == userID {
		return nil, ErrSelfReferral
	}

	if !promoter.CanOperate() {
		return nil, ErrReferralCodeInvalid
	}

	now := time.Now()
	referral := &model.PromoterReferral{
		PromoterID:     promoter.ID,
		ReferredUserID: userID,
		Status:         model.ReferralStatusRegistered,
		RegisteredAt:   &now,
	}

	if err := s.referralRepo.Create(referral); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyReferred
		}
		return nil, err
	}

	metrics.ReferralsApplied.Inc()
	return referral, nil
}

// MarkSubscribed 计费侧通知：被推荐用户完成首次订阅。
// 只推进已存在的行，绝不新建；amount 为订阅金额，按比例奖励时参与计算
func (s *ReferralService) MarkSubscribed(referredUserID int64, amount float64) (*model.PromoterReferral, error) {
	referral, err := s.referralRepo.GetByReferredUserID(referredUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferralNotFound
		}
		return nil, err
	}

	if !referral.Status.CanTransitionTo(model.ReferralStatusSubscribed) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	referral.Status = model.ReferralStatusSubscribed
	referral.SubscribedAt = &now
	referral.RewardAmount = s.computeReward(referral.PromoterID, amount, now)

	if err := s.referralRepo.Update(referral); err != nil {
		return nil, err
	}

	return referral, nil
}

// MarkRenewed 计费侧通知：被推荐用户续订
func (s *ReferralService) MarkRenewed(referredUserID int64) (*model.PromoterReferral, error) {
	referral, err := s.referralRepo.GetByReferredUserID(referredUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferralNotFound
		}
		return nil, err
	}

	if !referral.Status.CanTransitionTo(model.ReferralStatusRenewed) {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	referral.Status = model.ReferralStatusRenewed
	referral.RenewedAt = &now

	if err := s.referralRepo.Update(referral); err != nil {
		return nil, err
	}

	return referral, nil
}

// computeReward 只读取配置好的奖励公式，不做任何额外计价。
// 月度奖励上限打满后本次不发放（记录保留，金额为空）
func (s *ReferralService) computeReward(promoterID int64, amount float64, now time.Time) *float64 {
	promoter, err := s.promoterRepo.GetByID(promoterID)
	if err != nil || promoter.RewardConfig == nil {
		return nil
	}

	cfg := promoter.RewardConfig
	if cfg.MaxRewardsPerMonth != nil {
		granted, err := s.referralRepo.CountRewardedSince(promoterID, s.quota.MonthStart(now))
		if err != nil || granted >= int64(*cfg.MaxRewardsPerMonth) {
			return nil
		}
	}

	var reward float64
	switch cfg.RewardType {
	case model.RewardTypeFixedAmount:
		reward = cfg.RewardValue
	case model.RewardTypePercentage:
		reward = amount * cfg.RewardValue / 100
	default:
		// NONE 和订阅延长型没有现金奖励
		return nil
	}

	return &reward
}

// ListByPromoter 推广员后台的推荐列表
func (s *ReferralService) ListByPromoter(promoterID int64, page, pageSize int) ([]*model.PromoterReferral, int64, error) {
	return s.referralRepo.ListByPromoter(promoterID, page, pageSize)
}
