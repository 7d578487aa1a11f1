package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/stanley00316/election-system-demo-sub002/internal/model"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

// Create 依赖 referred_user_id 唯一约束，由调用方处理 gorm.ErrDuplicatedKey
func (r *ReferralRepository) Create(referral *model.PromoterReferral) error {
	return r.db.Create(referral).Error
}

func (r *ReferralRepository) GetByReferredUserID(userID int64) (*model.PromoterReferral, error) {
	var referral model.PromoterReferral
	err := r.db.Where("referred_user_id = ?", userID).First(&referral).Error
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

func (r *ReferralRepository) Update(referral *model.PromoterReferral) error {
	return r.db.Save(referral).Error
}

func (r *ReferralRepository) ListByPromoter(promoterID int64, page, pageSize int) ([]*model.PromoterReferral, int64, error) {
	query := r.db.Model(&model.PromoterReferral{}).Where("promoter_id = ?", promoterID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var referrals []*model.PromoterReferral
	err := query.Order("id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&referrals).Error
	if err != nil {
		return nil, 0, err
	}

	return referrals, total, nil
}

func (r *ReferralRepository) CountByPromoter(promoterID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.PromoterReferral{}).
		Where("promoter_id = ?", promoterID).
		Count(&count).Error
	return count, err
}

// CountByPromoterAndStatuses 漏斗阶段计数：阶段按状态集合取子集
func (r *ReferralRepository) CountByPromoterAndStatuses(promoterID int64, statuses []model.ReferralStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.PromoterReferral{}).
		Where("promoter_id = ? AND status IN ?", promoterID, statuses).
		Count(&count).Error
	return count, err
}

func (r *ReferralRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.PromoterReferral{}).Count(&count).Error
	return count, err
}

func (r *ReferralRepository) CountByStatuses(statuses []model.ReferralStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.PromoterReferral{}).
		Where("status IN ?", statuses).
		Count(&count).Error
	return count, err
}

// CountRewardedSince 本月已发放奖励的推荐数（奖励月度上限用）
func (r *ReferralRepository) CountRewardedSince(promoterID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.PromoterReferral{}).
		Where("promoter_id = ? AND reward_amount IS NOT NULL AND subscribed_at >= ?", promoterID, since).
		Count(&count).Error
	return count, err
}

// PromoterCount 分组聚合行
type PromoterCount struct {
	PromoterID int64
	Count      int64
}

// GroupSuccessByPromoter 各推广员的成功推荐数（SUBSCRIBED 及之后）
func (r *ReferralRepository) GroupSuccessByPromoter() ([]PromoterCount, error) {
	var rows []PromoterCount
	err := r.db.Model(&model.PromoterReferral{}).
		Select("promoter_id, COUNT(*) AS count").
		Where("status IN ?", []model.ReferralStatus{model.ReferralStatusSubscribed, model.ReferralStatusRenewed}).
		Group("promoter_id").
		Scan(&rows).Error
	return rows, err
}
