package repo

import (
	"errors"

	"gorm.io/gorm"

	"b2b-market-api/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(u *domain.User) error { return r.db.Create(u).Error }

func (r *UserRepo) FindByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.db.First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) FindByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.db.First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) List(f domain.UserFilter, page, limit int) ([]domain.User, int64, error) {
	tx := r.userQuery(f)
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	err := tx.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&users).Error
	return users, total, err
}

func (r *UserRepo) Update(u *domain.User) error { return r.db.Save(u).Error }

// UpdateFields 列级更新，返回更新后的记录
func (r *UserRepo) UpdateFields(id string, fields map[string]any) (*domain.User, error) {
	if err := r.db.Model(&domain.User{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, err
	}
	return r.FindByID(id)
}

// Count 管理端看板用
func (r *UserRepo) Count(f domain.UserFilter) (int64, error) {
	var n int64
	err := r.userQuery(f).Count(&n).Error
	return n, err
}

// FindPublicSellers 公开卖家精选位
func (r *UserRepo) FindPublicSellers(limit int) ([]domain.User, error) {
	var sellers []domain.User
	err := r.db.
		Where("role = ? AND is_active = ? AND is_approved = ?", domain.RoleSeller, true, true).
		Limit(limit).
		Find(&sellers).Error
	return sellers, err
}

func (r *UserRepo) userQuery(f domain.UserFilter) *gorm.DB {
	tx := r.db.Model(&domain.User{})
	if f.Role != "" {
		tx = tx.Where("role = ?", f.Role)
	}
	if f.Approved != nil {
		tx = tx.Where("is_approved = ?", *f.Approved)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		tx = tx.Where("name LIKE ? OR email LIKE ? OR company_name LIKE ?", like, like, like)
	}
	if f.CreatedAfter != nil {
		tx = tx.Where("created_at >= ?", *f.CreatedAfter)
	}
	return tx
}
