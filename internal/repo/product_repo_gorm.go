package repo

import (
	"errors"

	"gorm.io/gorm"

	"b2b-market-api/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(p *domain.Product) error { return r.db.Create(p).Error }

func (r *ProductRepo) FindByID(id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.
		Preload("Category").Preload("Seller").
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

// FindByIDOrSlug 详情页既接受 ID 也接受 slug
func (r *ProductRepo) FindByIDOrSlug(key string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.
		Preload("Category").Preload("Seller").
		First(&p, "id = ? OR slug = ?", key, key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *ProductRepo) List(f domain.ProductFilter, page, limit int) ([]domain.Product, int64, error) {
	tx := r.productQuery(f)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.Sort {
	case domain.SortPriceAsc:
		tx = tx.Order("price_min ASC")
	case domain.SortPriceDesc:
		tx = tx.Order("price_min DESC")
	case domain.SortPopular:
		tx = tx.Order("view_count DESC")
	case domain.SortName:
		tx = tx.Order("name ASC")
	default:
		tx = tx.Order("created_at DESC")
	}

	var products []domain.Product
	err := tx.
		Preload("Category").Preload("Seller").
		Offset((page - 1) * limit).Limit(limit).
		Find(&products).Error
	return products, total, err
}

func (r *ProductRepo) Update(p *domain.Product) error { return r.db.Save(p).Error }

func (r *ProductRepo) UpdateFields(id string, fields map[string]any) error {
	return r.db.Model(&domain.Product{}).Where("id = ?", id).Updates(fields).Error
}

func (r *ProductRepo) Delete(id string) error {
	return r.db.Delete(&domain.Product{}, "id = ?", id).Error
}

// IncrementViews 原子自增，近似计数允许并发下不丢更新但不做更强保证
func (r *ProductRepo) IncrementViews(id string) error {
	return r.db.Model(&domain.Product{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *ProductRepo) IncrementInquiries(id string) error {
	return r.db.Model(&domain.Product{}).Where("id = ?", id).
		UpdateColumn("inquiry_count", gorm.Expr("inquiry_count + 1")).Error
}

func (r *ProductRepo) Count(f domain.ProductFilter) (int64, error) {
	var n int64
	err := r.productQuery(f).Count(&n).Error
	return n, err
}

func (r *ProductRepo) productQuery(f domain.ProductFilter) *gorm.DB {
	tx := r.db.Model(&domain.Product{})
	if f.VisibleOnly {
		tx = tx.Where("is_active = ? AND is_approved = ?", true, true)
	}
	if f.ApprovedOnly != nil {
		tx = tx.Where("is_approved = ?", *f.ApprovedOnly)
	}
	if f.ActiveOnly != nil {
		tx = tx.Where("is_active = ?", *f.ActiveOnly)
	}
	if f.SellerID != "" {
		tx = tx.Where("seller_id = ?", f.SellerID)
	}
	if f.CategoryID != "" {
		tx = tx.Where("category_id = ?", f.CategoryID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		tx = tx.Where("name LIKE ? OR description LIKE ? OR tags LIKE ?", like, like, like)
	}
	if f.MinPrice != nil {
		tx = tx.Where("price_min >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		tx = tx.Where("price_min <= ?", *f.MaxPrice)
	}
	if f.Featured {
		tx = tx.Where("is_featured = ?", true)
	}
	if f.CreatedAfter != nil {
		tx = tx.Where("created_at >= ?", *f.CreatedAfter)
	}
	return tx
}
