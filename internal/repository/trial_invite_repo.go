package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/stanley00316/election-system-demo-sub002/internal/model"
)

type TrialInviteRepository struct {
	db *gorm.DB
}

func NewTrialInviteRepository(db *gorm.DB) *TrialInviteRepository {
	return &TrialInviteRepository{db: db}
}

// WithTx 返回绑定到事务句柄的仓库副本；配额计数和插入必须共用一个事务
func (r *TrialInviteRepository) WithTx(tx *gorm.DB) *TrialInviteRepository {
	return &TrialInviteRepository{db: tx}
}

// Create 依赖 code 唯一约束，冲突由调用方重试
func (r *TrialInviteRepository) Create(invite *model.TrialInvite) error {
	return r.db.Create(invite).Error
}

func (r *TrialInviteRepository) GetByCode(code string) (*model.TrialInvite, error) {
	var invite model.TrialInvite
	err := r.db.Where("code = ?", code).First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *TrialInviteRepository) GetByID(id int64) (*model.TrialInvite, error) {
	var invite model.TrialInvite
	err := r.db.Where("id = ?", id).First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *TrialInviteRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.TrialInvite{}).Where("id = ?", id).Updates(fields).Error
}

// MarkActivatedIfRedeemable 状态条件写进 WHERE，两个并发兑换只有一个能改到行。
// 返回 false 表示没抢到（已被兑换或已作废）
func (r *TrialInviteRepository) MarkActivatedIfRedeemable(id int64, fields map[string]interface{}) (bool, error) {
	result := r.db.Model(&model.TrialInvite{}).
		Where("id = ? AND status IN ?", id,
			[]model.TrialInviteStatus{model.TrialInviteStatusPending, model.TrialInviteStatusSent}).
		Updates(fields)
	return result.RowsAffected == 1, result.Error
}

// CountByPromoterSince 推广员自 since 起签发的邀请数；since 为零值时统计全部
func (r *TrialInviteRepository) CountByPromoterSince(promoterID int64, since time.Time) (int64, error) {
	query := r.db.Model(&model.TrialInvite{}).Where("promoter_id = ?", promoterID)
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *TrialInviteRepository) ListByPromoter(promoterID int64, page, pageSize int) ([]*model.TrialInvite, int64, error) {
	query := r.db.Model(&model.TrialInvite{}).Where("promoter_id = ?", promoterID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invites []*model.TrialInvite
	err := query.Order("id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&invites).Error
	if err != nil {
		return nil, 0, err
	}

	return invites, total, nil
}

// List 管理端全量列表，可按状态过滤
func (r *TrialInviteRepository) List(page, pageSize int, status string) ([]*model.TrialInvite, int64, error) {
	query := r.db.Model(&model.TrialInvite{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invites []*model.TrialInvite
	err := query.Order("id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&invites).Error
	if err != nil {
		return nil, 0, err
	}

	return invites, total, nil
}

// IncrementLinkClicks 预览计数，存储层原子自增
func (r *TrialInviteRepository) IncrementLinkClicks(id int64, now time.Time) error {
	return r.db.Model(&model.TrialInvite{}).Where("id = ?", id).Updates(map[string]interface{}{
		"link_click_count": gorm.Expr("link_click_count + 1"),
		"last_clicked_at":  now,
	}).Error
}

// GetRedeemedByUser 用户已激活且未终结的邀请（计费转化回调用）
func (r *TrialInviteRepository) GetRedeemedByUser(userID int64) (*model.TrialInvite, error) {
	var invite model.TrialInvite
	err := r.db.Where("activated_user_id = ? AND status IN ?", userID,
		[]model.TrialInviteStatus{model.TrialInviteStatusActivated, model.TrialInviteStatusActive}).
		Order("activated_at DESC").
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

// ExpireOverdue 把过期的已激活邀请批量置为 EXPIRED；对已是 EXPIRED 的行天然无操作
func (r *TrialInviteRepository) ExpireOverdue(now time.Time) (int64, error) {
	result := r.overdueQuery(now).Update("status", model.TrialInviteStatusExpired)
	return result.RowsAffected, result.Error
}

// CountOverdue 统计将被 ExpireOverdue 清扫的行数，两者共用同一谓词
func (r *TrialInviteRepository) CountOverdue(now time.Time) (int64, error) {
	var count int64
	err := r.overdueQuery(now).Count(&count).Error
	return count, err
}

func (r *TrialInviteRepository) overdueQuery(now time.Time) *gorm.DB {
	return r.db.Model(&model.TrialInvite{}).
		Where("status IN ? AND expires_at < ?",
			[]model.TrialInviteStatus{model.TrialInviteStatusActivated, model.TrialInviteStatusActive}, now)
}

func (r *TrialInviteRepository) CountByStatuses(statuses []model.TrialInviteStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.TrialInvite{}).
		Where("status IN ?", statuses).
		Count(&count).Error
	return count, err
}

func (r *TrialInviteRepository) CountByPromoterAndStatuses(promoterID int64, statuses []model.TrialInviteStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.TrialInvite{}).
		Where("promoter_id = ? AND status IN ?", promoterID, statuses).
		Count(&count).Error
	return count, err
}

// GroupConvertedByPromoter 各推广员的试用转化数
func (r *TrialInviteRepository) GroupConvertedByPromoter() ([]PromoterCount, error) {
	var rows []PromoterCount
	err := r.db.Model(&model.TrialInvite{}).
		Select("promoter_id, COUNT(*) AS count").
		Where("status = ?", model.TrialInviteStatusConverted).
		Group("promoter_id").
		Scan(&rows).Error
	return rows, err
}
