package repo

import (
	"errors"

	"gorm.io/gorm"

	"b2b-market-api/internal/domain"
)

type InquiryRepo struct{ db *gorm.DB }

func NewInquiryRepo(db *gorm.DB) *InquiryRepo { return &InquiryRepo{db: db} }

func (r *InquiryRepo) Create(i *domain.Inquiry) error { return r.db.Create(i).Error }

func (r *InquiryRepo) FindByID(id string) (*domain.Inquiry, error) {
	var i domain.Inquiry
	err := r.db.First(&i, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &i, err
}

// FindByIDPopulated 详情页带出商品与双方摘要
func (r *InquiryRepo) FindByIDPopulated(id string) (*domain.Inquiry, error) {
	var i domain.Inquiry
	err := r.db.
		Preload("Product").Preload("Buyer").Preload("Seller").
		First(&i, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &i, err
}

func (r *InquiryRepo) List(f domain.InquiryFilter, page, limit int) ([]domain.Inquiry, int64, error) {
	tx := r.inquiryQuery(f)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var inquiries []domain.Inquiry
	err := tx.
		Preload("Product").Preload("Buyer").Preload("Seller").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&inquiries).Error
	return inquiries, total, err
}

func (r *InquiryRepo) Update(i *domain.Inquiry) error { return r.db.Save(i).Error }

func (r *InquiryRepo) Count(f domain.InquiryFilter) (int64, error) {
	var n int64
	err := r.inquiryQuery(f).Count(&n).Error
	return n, err
}

func (r *InquiryRepo) inquiryQuery(f domain.InquiryFilter) *gorm.DB {
	tx := r.db.Model(&domain.Inquiry{})
	if f.BuyerID != "" {
		tx = tx.Where("buyer_id = ?", f.BuyerID)
	}
	if f.SellerID != "" {
		tx = tx.Where("seller_id = ?", f.SellerID)
	}
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if f.CreatedAfter != nil {
		tx = tx.Where("created_at >= ?", *f.CreatedAfter)
	}
	return tx
}
