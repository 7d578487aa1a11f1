package repository

import (
	"gorm.io/gorm"

	"github.com/stanley00316/election-system-demo-sub002/internal/model"
)

type PromoterRepository struct {
	db *gorm.DB
}

func NewPromoterRepository(db *gorm.DB) *PromoterRepository {
	return &PromoterRepository{db: db}
}

func (r *PromoterRepository) Create(promoter *model.Promoter) error {
	return r.db.Create(promoter).Error
}

func (r *PromoterRepository) GetByID(id int64) (*model.Promoter, error) {
	var promoter model.Promoter
	err := r.db.Preload("RewardConfig").Preload("TrialConfig").
		Where("id = ?", id).First(&promoter).Error
	if err != nil {
		return nil, err
	}
	return &promoter, nil
}

func (r *PromoterRepository) GetByReferralCode(code string) (*model.Promoter, error) {
	var promoter model.Promoter
	err := r.db.Preload("RewardConfig").
		Where("referral_code = ?", code).First(&promoter).Error
	if err != nil {
		return nil, err
	}
	return &promoter, nil
}

func (r *PromoterRepository) GetByPhone(phone string) (*model.Promoter, error) {
	var promoter model.Promoter
	err := r.db.Where("phone = ?", phone).First(&promoter).Error
	if err != nil {
		return nil, err
	}
	return &promoter, nil
}

func (r *PromoterRepository) ExistsByPhone(phone string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Promoter{}).Where("phone = ?", phone).Count(&count).Error
	return count > 0, err
}

func (r *PromoterRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Promoter{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *PromoterRepository) Update(promoter *model.Promoter) error {
	return r.db.Save(promoter).Error
}

func (r *PromoterRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Promoter{}).Where("id = ?", id).Updates(fields).Error
}

func (r *PromoterRepository) List(page, pageSize int, status string) ([]*model.Promoter, int64, error) {
	query := r.db.Model(&model.Promoter{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var promoters []*model.Promoter
	err := query.Preload("RewardConfig").Preload("TrialConfig").
		Order("id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&promoters).Error
	if err != nil {
		return nil, 0, err
	}

	return promoters, total, nil
}

// GetByIDs 排行榜合并推广员名字用
func (r *PromoterRepository) GetByIDs(ids []int64) ([]*model.Promoter, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var promoters []*model.Promoter
	err := r.db.Where("id IN ?", ids).Find(&promoters).Error
	return promoters, err
}
