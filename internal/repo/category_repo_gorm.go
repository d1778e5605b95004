package repo

import (
	"errors"

	"gorm.io/gorm"

	"b2b-market-api/internal/domain"
)

type CategoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Create(c *domain.Category) error { return r.db.Create(c).Error }

func (r *CategoryRepo) FindByID(id string) (*domain.Category, error) {
	var c domain.Category
	err := r.db.First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *CategoryRepo) FindByIDOrSlug(key string) (*domain.Category, error) {
	var c domain.Category
	err := r.db.First(&c, "id = ? OR slug = ?", key, key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

// FindByName 大小写不敏感的查重
func (r *CategoryRepo) FindByName(name string) (*domain.Category, error) {
	var c domain.Category
	err := r.db.First(&c, "LOWER(name) = LOWER(?)", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *CategoryRepo) ListActive() ([]domain.Category, error) {
	var cats []domain.Category
	err := r.db.
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&cats).Error
	return cats, err
}

func (r *CategoryRepo) Update(c *domain.Category) error { return r.db.Save(c).Error }

func (r *CategoryRepo) Delete(id string) error {
	return r.db.Delete(&domain.Category{}, "id = ?", id).Error
}

func (r *CategoryRepo) CountActive() (int64, error) {
	var n int64
	err := r.db.Model(&domain.Category{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}
