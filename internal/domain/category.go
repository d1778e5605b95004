package domain

import "time"

type Category struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`
	Name        string  `gorm:"size:100;not null" json:"name"`
	Slug        string  `gorm:"uniqueIndex;size:120" json:"slug"`
	Description string  `gorm:"size:500" json:"description"`
	Icon        string  `gorm:"size:100" json:"icon"`
	Image       string  `gorm:"size:255" json:"image"`
	ParentID    *string `gorm:"size:36;index" json:"parent"` // 自引用，仅用于展示分组
	SortOrder   int     `gorm:"not null;default:0" json:"sortOrder"`
	IsActive    bool    `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Category) TableName() string { return "categories" }

type CategoryRepository interface {
	Create(c *Category) error
	FindByID(id string) (*Category, error)
	FindByIDOrSlug(key string) (*Category, error)
	FindByName(name string) (*Category, error)
	ListActive() ([]Category, error)
	Update(c *Category) error
	// Delete 无级联校验：引用该分类的商品保留悬挂引用
	Delete(id string) error
	CountActive() (int64, error)
}
