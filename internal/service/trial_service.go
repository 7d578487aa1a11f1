package service

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/stanley00316/election-system-demo-sub002/config"
	"github.com/stanley00316/election-system-demo-sub002/internal/model"
	"github.com/stanley00316/election-system-demo-sub002/internal/model/dto"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/metrics"
	"github.com/stanley00316/election-system-demo-sub002/internal/pkg/refcode"
	"github.com/stanley00316/election-system-demo-sub002/internal/repository"
)

var (
	ErrInviteNotFound      = errors.New("邀请码不存在")
	ErrInviteNotRedeemable = errors.New("邀请码已被使用或不可兑换")
	ErrInviteNotExtendable = errors.New("只有已激活的邀请可以延期")
	ErrInviteTerminal      = errors.New("邀请已处于终态，不能再变更")
	ErrPromoterNotAllowed  = errors.New("推广员未通过审核或已停用")
	ErrInvalidInviteMethod = errors.New("无效的邀请方式")
	ErrInvalidChannel      = errors.New("无效的分享渠道")
)

type TrialService struct {
	db           *gorm.DB
	cfg          *config.Config
	promoterRepo *repository.PromoterRepository
	inviteRepo   *repository.TrialInviteRepository
	quota        *QuotaService
	billing      Billing
	trialGen     *refcode.Generator

	// 推广员级互斥锁：配额计数和插入之间的窗口必须串行
	issueLocks sync.Map
}

func NewTrialService(
	db *gorm.DB,
	promoterRepo *repository.PromoterRepository,
	inviteRepo *repository.TrialInviteRepository,
	quota *QuotaService,
	billing Billing,
	trialGen *refcode.Generator,
	cfg *config.Config,
) *TrialService {
	return &TrialService{
		db:           db,
		cfg:          cfg,
		promoterRepo: promoterRepo,
		inviteRepo:   inviteRepo,
		quota:        quota,
		billing:      billing,
		trialGen:     trialGen,
	}
}

func (s *TrialService) lockFor(promoterID int64) *sync.Mutex {
	v, _ := s.issueLocks.LoadOrStore(promoterID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// CreateInvite 配额闸门把守的签发入口
func (s *TrialService) CreateInvite(promoterID int64, req *dto.CreateTrialInviteRequest) (*model.TrialInvite, error) {
	promoter, err := s.promoterRepo.GetByID(promoterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPromoterNotFound
		}
		return nil, err
	}
	if !promoter.CanOperate() {
		return nil, ErrPromoterNotAllowed
	}

	method := model.InviteMethodCode
	if req.InviteMethod != "" {
		method = model.InviteMethod(req.InviteMethod)
		if !method.Valid() {
			return nil, ErrInvalidInviteMethod
		}
	}

	var channel *model.ShareChannel
	if req.Channel != nil && *req.Channel != "" {
		ch := model.ShareChannel(*req.Channel)
		if !ch.Valid() {
			return nil, ErrInvalidChannel
		}
		channel = &ch
	}

	days := req.TrialDays
	if days == 0 && promoter.TrialConfig != nil {
		days = promoter.TrialConfig.DefaultTrialDays
	}

	// 固定套餐的推广员只能发固定套餐
	planID := req.PlanID
	if promoter.TrialConfig != nil && promoter.TrialConfig.TrialPlanID != nil {
		planID = promoter.TrialConfig.TrialPlanID
	}

	mu := s.lockFor(promoterID)
	mu.Lock()
	defer mu.Unlock()

	var invite *model.TrialInvite
	err = s.db.Transaction(func(tx *gorm.DB) error {
		txInvites := s.inviteRepo.WithTx(tx)

		if err := s.quota.AuthorizeIssuance(txInvites, promoter.TrialConfig, promoterID, days, time.Now()); err != nil {
			return err
		}

		// 领取唯一邀请码：唯一约束冲突就换一个码重试
		for attempt := 0; attempt < refcode.MaxAttempts; attempt++ {
			candidate := &model.TrialInvite{
				Code:         s.trialGen.Generate(),
				PromoterID:   promoterID,
				TrialDays:    days,
				InviteMethod: method,
				Channel:      channel,
				InviteeName:  req.InviteeName,
				InviteePhone: req.InviteePhone,
				InviteeEmail: req.InviteeEmail,
				Status:       model.TrialInviteStatusPending,
				PlanID:       planID,
			}
			err := txInvites.Create(candidate)
			if err == nil {
				invite = candidate
				return nil
			}
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return err
			}
		}
		return refcode.ErrExhausted
	})
	if err != nil {
		var deny *DenyError
		if errors.As(err, &deny) {
			metrics.TrialInvitesDenied.WithLabelValues(string(deny.Reason)).Inc()
		}
		return nil, err
	}

	metrics.TrialInvitesIssued.Inc()
	return invite, nil
}

// ClaimTrial 兑换试用码。订阅创建和状态迁移同一事务，计费失败整体回滚
func (s *TrialService) ClaimTrial(userID int64, code string) (*model.Subscription, error) {
	code = refcode.Normalize(code)

	var sub *model.Subscription
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txInvites := s.inviteRepo.WithTx(tx)

		invite, err := txInvites.GetByCode(code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInviteNotFound
			}
			return err
		}

		if !invite.Status.Redeemable() {
			return ErrInviteNotRedeemable
		}

		sub, err = s.billing.StartTrialFromInvite(tx, userID, invite)
		if err != nil {
			return err
		}

		now := time.Now()
		expiresAt := now.AddDate(0, 0, invite.TrialDays)

		// 读到可兑换不代表写时还可兑换，状态迁移必须带条件；
		// 没改到行就整体回滚，订阅不会落库
		claimed, err := txInvites.MarkActivatedIfRedeemable(invite.ID, map[string]interface{}{
			"status":            model.TrialInviteStatusActivated,
			"activated_user_id": userID,
			"activated_at":      now,
			"expires_at":        expiresAt,
		})
		if err != nil {
			return err
		}
		if !claimed {
			return ErrInviteNotRedeemable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TrialsClaimed.Inc()
	return sub, nil
}

// GetTrialInfo 兑换前预览。无效码不报错，返回不可用；
// 每次查看都计入 link_click_count，不受状态和配额限制
func (s *TrialService) GetTrialInfo(code string, planName func(string) string) (*dto.TrialInviteInfo, error) {
	invite, err := s.inviteRepo.GetByCode(refcode.Normalize(code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.TrialInviteInfo{IsAvailable: false}, nil
		}
		return nil, err
	}

	if err := s.inviteRepo.IncrementLinkClicks(invite.ID, time.Now()); err != nil {
		return nil, err
	}

	info := &dto.TrialInviteInfo{
		Code:        invite.Code,
		TrialDays:   invite.TrialDays,
		IsAvailable: invite.Status.Redeemable(),
	}

	planID := s.cfg.Billing.DefaultTrialPlanID
	if invite.PlanID != nil && *invite.PlanID != "" {
		planID = *invite.PlanID
	}
	if planName != nil {
		info.PlanName = planName(planID)
	} else {
		info.PlanName = planID
	}

	return info, nil
}

// MarkSent 邀请已发出（短信 / LINE 送达回执）
func (s *TrialService) MarkSent(inviteID int64) error {
	invite, err := s.inviteRepo.GetByID(inviteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return err
	}

	if !invite.Status.CanTransitionTo(model.TrialInviteStatusSent) {
		return ErrInviteNotRedeemable
	}

	return s.inviteRepo.UpdateFields(inviteID, map[string]interface{}{
		"status": model.TrialInviteStatusSent,
	})
}

// Extend 管理员延期：只允许 ACTIVATED / ACTIVE，过期时间向后推
func (s *TrialService) Extend(inviteID int64, days int) (*model.TrialInvite, error) {
	invite, err := s.inviteRepo.GetByID(inviteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}

	if invite.Status != model.TrialInviteStatusActivated && invite.Status != model.TrialInviteStatusActive {
		return nil, ErrInviteNotExtendable
	}

	base := time.Now()
	if invite.ExpiresAt != nil {
		base = *invite.ExpiresAt
	}
	newExpiry := base.AddDate(0, 0, days)

	if err := s.inviteRepo.UpdateFields(inviteID, map[string]interface{}{
		"expires_at": newExpiry,
	}); err != nil {
		return nil, err
	}

	invite.ExpiresAt = &newExpiry
	return invite, nil
}

// Cancel 管理员取消：任何非终态都允许，直接进 CANCELLED
func (s *TrialService) Cancel(inviteID int64) error {
	invite, err := s.inviteRepo.GetByID(inviteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return err
	}

	if invite.Status.Terminal() {
		return ErrInviteTerminal
	}

	return s.inviteRepo.UpdateFields(inviteID, map[string]interface{}{
		"status": model.TrialInviteStatusCancelled,
	})
}

// MarkActive 计费确认试用订阅生效
func (s *TrialService) MarkActive(userID int64) error {
	invite, err := s.inviteRepo.GetRedeemedByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return err
	}

	if !invite.Status.CanTransitionTo(model.TrialInviteStatusActive) {
		return nil // 已经 ACTIVE，重复回调无操作
	}

	return s.inviteRepo.UpdateFields(invite.ID, map[string]interface{}{
		"status": model.TrialInviteStatusActive,
	})
}

// MarkConverted 计费确认试用转正式付费
func (s *TrialService) MarkConverted(userID int64) error {
	invite, err := s.inviteRepo.GetRedeemedByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInviteNotFound
		}
		return err
	}

	if !invite.Status.CanTransitionTo(model.TrialInviteStatusConverted) {
		return ErrInviteTerminal
	}

	return s.inviteRepo.UpdateFields(invite.ID, map[string]interface{}{
		"status": model.TrialInviteStatusConverted,
	})
}

// ExpireOverdue 过期扫描，幂等，可由调度器反复执行
func (s *TrialService) ExpireOverdue(now time.Time) (int64, error) {
	return s.inviteRepo.ExpireOverdue(now)
}

// ListByPromoter 推广员后台的邀请列表
func (s *TrialService) ListByPromoter(promoterID int64, page, pageSize int) ([]*model.TrialInvite, int64, error) {
	return s.inviteRepo.ListByPromoter(promoterID, page, pageSize)
}

// List 管理端全量列表
func (s *TrialService) List(page, pageSize int, status string) ([]*model.TrialInvite, int64, error) {
	return s.inviteRepo.List(page, pageSize, status)
}
