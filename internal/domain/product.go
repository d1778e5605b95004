package domain

import (
	"strconv"
	"strings"
	"time"
)

// 商品排序选项（公开列表）
const (
	SortNewest    = ""
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortPopular   = "popular"
	SortName      = "name"
)

type Product struct {
	ID               string `gorm:"primaryKey;size:36" json:"id"`
	Name             string `gorm:"size:200;not null" json:"name"`
	Slug             string `gorm:"index;size:220" json:"slug"`
	Description      string `gorm:"size:5000;not null" json:"description"`
	ShortDescription string `gorm:"size:300" json:"shortDescription"`

	CategoryID string `gorm:"size:36;index;not null" json:"category"`
	SellerID   string `gorm:"size:36;index;not null" json:"seller"`

	Images StringList `gorm:"type:text" json:"images"`

	PriceMin  float64 `gorm:"not null" json:"priceMin"`
	PriceMax  float64 `json:"priceMax"`
	PriceUnit string  `gorm:"size:32;default:'per piece'" json:"priceUnit"`
	Currency  string  `gorm:"size:8;default:INR" json:"currency"`

	MOQ     int    `gorm:"not null;default:1" json:"moq"`
	MOQUnit string `gorm:"size:32;default:pieces" json:"moqUnit"`

	Specifications SpecList   `gorm:"type:text" json:"specifications"`
	Tags           StringList `gorm:"type:text" json:"tags"`

	IsActive   bool `gorm:"not null;default:true;index:idx_products_visible" json:"isActive"`
	IsApproved bool `gorm:"not null;default:false;index:idx_products_visible" json:"isApproved"`
	IsFeatured bool `gorm:"not null;default:false" json:"isFeatured"`

	// 近似计数，只增不减
	ViewCount    int64 `gorm:"not null;default:0" json:"viewCount"`
	InquiryCount int64 `gorm:"not null;default:0" json:"inquiryCount"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Category *Category `gorm:"foreignKey:CategoryID;references:ID" json:"categoryInfo,omitempty"`
	Seller   *User     `gorm:"foreignKey:SellerID;references:ID" json:"sellerInfo,omitempty"`
}

func (Product) TableName() string { return "products" }

// PubliclyVisible 公开可见 = 上架 且 已审批
func (p *Product) PubliclyVisible() bool { return p.IsActive && p.IsApproved }

// ClampPrices priceMax 不得低于 priceMin，低则抬到 priceMin
func (p *Product) ClampPrices() {
	if p.PriceMax != 0 && p.PriceMax < p.PriceMin {
		p.PriceMax = p.PriceMin
	}
}

// RefreshSlug 按名称重算 slug，时间戳后缀保证唯一，改名时调用
func (p *Product) RefreshSlug(now time.Time) {
	p.Slug = Slugify(p.Name) + "-" + strconv.FormatInt(now.UnixMilli(), 36)
}

// ApplyApproval 审批与上架联动：通过即上架，驳回即下架
func (p *Product) ApplyApproval(approved bool) {
	p.IsApproved = approved
	p.IsActive = approved
}

// CanModify 仅属主卖家或管理员可改/删
func (p *Product) CanModify(actor *User) bool {
	return actor.ID == p.SellerID || actor.IsAdmin()
}

// Slugify 小写化并把非字母数字折叠为 '-'
func Slugify(name string) string {
	var b strings.Builder
	prevDash := true // 抑制前导 '-'
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			prevDash = false
		} else if !prevDash {
			b.WriteByte('-')
			prevDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ProductFilter 商品列表筛选（公开/卖家/管理端共用）
type ProductFilter struct {
	Search       string
	CategoryID   string
	SellerID     string
	MinPrice     *float64
	MaxPrice     *float64
	Featured     bool
	VisibleOnly  bool // isActive AND isApproved
	ApprovedOnly *bool
	ActiveOnly   *bool
	Sort         string
	CreatedAfter *time.Time
}

type ProductRepository interface {
	Create(p *Product) error
	FindByID(id string) (*Product, error)
	FindByIDOrSlug(key string) (*Product, error)
	List(f ProductFilter, page, limit int) ([]Product, int64, error)
	Update(p *Product) error
	UpdateFields(id string, fields map[string]any) error
	Delete(id string) error
	// 原子自增，避免读改写丢更新
	IncrementViews(id string) error
	IncrementInquiries(id string) error
	Count(f ProductFilter) (int64, error)
}
