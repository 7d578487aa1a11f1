package service

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stanley00316/election-system-demo-sub002/config"
	"github.com/stanley00316/election-system-demo-sub002/internal/model"
)

// Billing 计费协作方。兑换流程在同一事务里调用它，
// 失败时整个兑换回滚，不会出现已激活却没有订阅的邀请
type Billing interface {
	StartTrialFromInvite(tx *gorm.DB, userID int64, invite *model.TrialInvite) (*model.Subscription, error)
}

type BillingService struct {
	cfg *config.Config
}

func NewBillingService(cfg *config.Config) *BillingService {
	return &BillingService{cfg: cfg}
}

// StartTrialFromInvite 为兑换用户开通试用订阅
func (s *BillingService) StartTrialFromInvite(tx *gorm.DB, userID int64, invite *model.TrialInvite) (*model.Subscription, error) {
	planID := s.cfg.Billing.DefaultTrialPlanID
	if invite.PlanID != nil && *invite.PlanID != "" {
		planID = *invite.PlanID
	}

	now := time.Now()
	sub := &model.Subscription{
		UserID:        userID,
		PlanID:        planID,
		Status:        model.SubscriptionStatusTrial,
		TrialInviteID: &invite.ID,
		StartedAt:     now,
		ExpiresAt:     now.AddDate(0, 0, invite.TrialDays),
		TransactionID: uuid.NewString(),
	}

	if err := tx.Create(sub).Error; err != nil {
		return nil, err
	}

	return sub, nil
}

// PlanName 套餐展示名，未配置时回退到套餐 ID
func (s *BillingService) PlanName(planID string) string {
	if name, ok := s.cfg.Billing.PlanNames[planID]; ok {
		return name
	}
	return planID
}
