package repository

import (
	"gorm.io/gorm"

	"github.com/stanley00316/election-system-demo-sub002/internal/model"
)

type ShareLinkRepository struct {
	db *gorm.DB
}

func NewShareLinkRepository(db *gorm.DB) *ShareLinkRepository {
	return &ShareLinkRepository{db: db}
}

func (r *ShareLinkRepository) Create(link *model.ShareLink) error {
	return r.db.Create(link).Error
}

func (r *ShareLinkRepository) GetByCode(code string) (*model.ShareLink, error) {
	var link model.ShareLink
	err := r.db.Where("code = ?", code).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *ShareLinkRepository) GetByID(id int64) (*model.ShareLink, error) {
	var link model.ShareLink
	err := r.db.Where("id = ?", id).First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *ShareLinkRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.ShareLink{}).Where("id = ?", id).Updates(fields).Error
}

// GetRefLink 查询推广员的裸推荐码渠道链接
func (r *ShareLinkRepository) GetRefLink(promoterID int64) (*model.ShareLink, error) {
	var link model.ShareLink
	err := r.db.Where("promoter_id = ? AND channel = ?", promoterID, model.ChannelRefLink).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *ShareLinkRepository) ListByPromoter(promoterID int64) ([]*model.ShareLink, error) {
	var links []*model.ShareLink
	err := r.db.Where("promoter_id = ?", promoterID).Order("id DESC").Find(&links).Error
	return links, err
}

// RecordClick 追加点击流水并原子自增计数，两个写动作同一事务
func (r *ShareLinkRepository) RecordClick(click *model.ShareLinkClick) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(click).Error; err != nil {
			return err
		}
		return tx.Model(&model.ShareLink{}).
			Where("id = ?", click.ShareLinkID).
			Update("click_count", gorm.Expr("click_count + 1")).Error
	})
}

// CountClicksByPromoter 推广员全部分享链接的点击总数
func (r *ShareLinkRepository) CountClicksByPromoter(promoterID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.ShareLinkClick{}).
		Joins("JOIN share_links ON share_links.id = share_link_clicks.share_link_id").
		Where("share_links.promoter_id = ?", promoterID).
		Count(&count).Error
	return count, err
}

func (r *ShareLinkRepository) CountAllClicks() (int64, error) {
	var count int64
	err := r.db.Model(&model.ShareLinkClick{}).Count(&count).Error
	return count, err
}

// ListClicks 审计用点击流水
func (r *ShareLinkRepository) ListClicks(shareLinkID int64, page, pageSize int) ([]*model.ShareLinkClick, int64, error) {
	query := r.db.Model(&model.ShareLinkClick{}).Where("share_link_id = ?", shareLinkID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clicks []*model.ShareLinkClick
	err := query.Order("id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&clicks).Error
	if err != nil {
		return nil, 0, err
	}

	return clicks, total, nil
}
