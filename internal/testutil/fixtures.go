package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/stanley00316/election-system-demo-sub002/internal/model"
)

var fixtureSeq int64

func nextSeq() int64 {
	return atomic.AddInt64(&fixtureSeq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	seq := nextSeq()
	email := fmt.Sprintf("user_%d@example.com", seq)
	user := &model.User{
		Name:  fmt.Sprintf("testuser_%d", seq),
		Email: &email,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUserReferralCode 设置用户推荐码
func WithUserReferralCode(code string) func(*model.User) {
	return func(u *model.User) {
		u.ReferralCode = &code
	}
}

// TestPromoter 创建测试推广员，默认已审核通过且启用
func TestPromoter(t *testing.T, db *gorm.DB, opts ...func(*model.Promoter)) *model.Promoter {
	t.Helper()

	seq := nextSeq()
	promoter := &model.Promoter{
		Name:         fmt.Sprintf("promoter_%d", seq),
		Phone:        fmt.Sprintf("0912%06d", seq),
		Type:         model.PromoterTypeExternal,
		Status:       model.PromoterStatusApproved,
		IsActive:     true,
		ReferralCode: fmt.Sprintf("PROMO%03d", seq%1000),
	}

	for _, opt := range opts {
		opt(promoter)
	}

	if err := db.Create(promoter).Error; err != nil {
		t.Fatalf("Failed to create test promoter: %v", err)
	}

	return promoter
}

// WithStatus 设置推广员状态
func WithStatus(status model.PromoterStatus) func(*model.Promoter) {
	return func(p *model.Promoter) {
		p.Status = status
	}
}

// WithActive 设置启用标记
func WithActive(active bool) func(*model.Promoter) {
	return func(p *model.Promoter) {
		p.IsActive = active
	}
}

// WithReferralCode 设置推荐码
func WithReferralCode(code string) func(*model.Promoter) {
	return func(p *model.Promoter) {
		p.ReferralCode = code
	}
}

// WithUserID 绑定平台账号
func WithUserID(userID int64) func(*model.Promoter) {
	return func(p *model.Promoter) {
		p.UserID = &userID
	}
}

// WithPasswordHash 设置密码哈希
func WithPasswordHash(hash string) func(*model.Promoter) {
	return func(p *model.Promoter) {
		p.PasswordHash = &hash
	}
}

// WithTrialConfig 设置试用签发配置
func WithTrialConfig(cfg *model.TrialConfig) func(*model.Promoter) {
	return func(p *model.Promoter) {
		p.TrialConfig = cfg
	}
}

// WithRewardConfig 设置奖励配置
func WithRewardConfig(cfg *model.RewardConfig) func(*model.Promoter) {
	return func(p *model.Promoter) {
		p.RewardConfig = cfg
	}
}

// TestShareLink 创建测试分享链接
func TestShareLink(t *testing.T, db *gorm.DB, promoterID int64, opts ...func(*model.ShareLink)) *model.ShareLink {
	t.Helper()

	link := &model.ShareLink{
		PromoterID: promoterID,
		Code:       fmt.Sprintf("SHARE%05d", nextSeq()),
		Channel:    model.ChannelLine,
		IsActive:   true,
	}

	for _, opt := range opts {
		opt(link)
	}

	if err := db.Create(link).Error; err != nil {
		t.Fatalf("Failed to create test share link: %v", err)
	}

	return link
}

// WithChannel 设置分享渠道
func WithChannel(channel model.ShareChannel) func(*model.ShareLink) {
	return func(l *model.ShareLink) {
		l.Channel = channel
	}
}

// WithExpiresAt 设置链接过期时间
func WithExpiresAt(expiresAt time.Time) func(*model.ShareLink) {
	return func(l *model.ShareLink) {
		l.ExpiresAt = &expiresAt
	}
}

// WithLinkActive 设置链接启用标记
func WithLinkActive(active bool) func(*model.ShareLink) {
	return func(l *model.ShareLink) {
		l.IsActive = active
	}
}

// TestReferral 创建测试推荐记录，默认 REGISTERED
func TestReferral(t *testing.T, db *gorm.DB, promoterID, referredUserID int64, opts ...func(*model.PromoterReferral)) *model.PromoterReferral {
	t.Helper()

	now := time.Now()
	referral := &model.PromoterReferral{
		PromoterID:     promoterID,
		ReferredUserID: referredUserID,
		Status:         model.ReferralStatusRegistered,
		RegisteredAt:   &now,
	}

	for _, opt := range opts {
		opt(referral)
	}

	if err := db.Create(referral).Error; err != nil {
		t.Fatalf("Failed to create test referral: %v", err)
	}

	return referral
}

// WithReferralStatus 设置推荐状态
func WithReferralStatus(status model.ReferralStatus) func(*model.PromoterReferral) {
	return func(r *model.PromoterReferral) {
		r.Status = status
	}
}

// TestTrialInvite 创建测试试用邀请，默认 PENDING
func TestTrialInvite(t *testing.T, db *gorm.DB, promoterID int64, opts ...func(*model.TrialInvite)) *model.TrialInvite {
	t.Helper()

	invite := &model.TrialInvite{
		Code:         fmt.Sprintf("T%06d", nextSeq()),
		PromoterID:   promoterID,
		TrialDays:    7,
		InviteMethod: model.InviteMethodCode,
		Status:       model.TrialInviteStatusPending,
	}

	for _, opt := range opts {
		opt(invite)
	}

	if err := db.Create(invite).Error; err != nil {
		t.Fatalf("Failed to create test trial invite: %v", err)
	}

	return invite
}

// WithInviteStatus 设置邀请状态
func WithInviteStatus(status model.TrialInviteStatus) func(*model.TrialInvite) {
	return func(i *model.TrialInvite) {
		i.Status = status
	}
}

// WithInviteExpiresAt 设置邀请过期时间
func WithInviteExpiresAt(expiresAt time.Time) func(*model.TrialInvite) {
	return func(i *model.TrialInvite) {
		i.ExpiresAt = &expiresAt
	}
}

// WithActivatedUser 设置兑换用户
func WithActivatedUser(userID int64, activatedAt time.Time) func(*model.TrialInvite) {
	return func(i *model.TrialInvite) {
		i.Status = model.TrialInviteStatusActivated
		i.ActivatedUserID = &userID
		i.ActivatedAt = &activatedAt
	}
}
