package domain

import (
	"strings"
	"time"
)

// 询盘状态机：pending → read → responded。
// closed 在枚举中声明但没有任何接口触发它（沿用既有行为，不自行发明触发条件）。
const (
	InquiryPending   = "pending"
	InquiryRead      = "read"
	InquiryResponded = "responded"
	InquiryClosed    = "closed"
)

type Inquiry struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// 创建后不可变：buyer 为发起方，seller 为商品当时的属主快照
	BuyerID   string `gorm:"size:36;index:idx_inquiries_buyer;not null" json:"buyer"`
	SellerID  string `gorm:"size:36;index:idx_inquiries_seller;not null" json:"seller"`
	ProductID string `gorm:"size:36;index;not null" json:"product"`

	Subject string `gorm:"size:200;not null" json:"subject"`
	Message string `gorm:"size:2000;not null" json:"message"`

	Quantity     int    `json:"quantity"`
	QuantityUnit string `gorm:"size:32" json:"quantityUnit"`

	Status string `gorm:"size:16;not null;default:pending;index" json:"status"`

	SellerResponse string     `gorm:"size:2000" json:"sellerResponse"`
	RespondedAt    *time.Time `json:"respondedAt"`

	BuyerPhone       string `gorm:"size:32" json:"buyerPhone"`
	BuyerCompany     string `gorm:"size:200" json:"buyerCompany"`
	DeliveryLocation string `gorm:"size:255" json:"deliveryLocation"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_inquiries_buyer;index:idx_inquiries_seller" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Product *Product `gorm:"foreignKey:ProductID;references:ID" json:"productInfo,omitempty"`
	Buyer   *User    `gorm:"foreignKey:BuyerID;references:ID" json:"buyerInfo,omitempty"`
	Seller  *User    `gorm:"foreignKey:SellerID;references:ID" json:"sellerInfo,omitempty"`
}

func (Inquiry) TableName() string { return "inquiries" }

// NewInquiry 绑定 (buyer, seller, product)。seller 取自商品当前属主，
// 此后商品易主不回溯修改历史询盘。
func NewInquiry(id string, buyer *User, product *Product, subject, message string) *Inquiry {
	return &Inquiry{
		ID:        id,
		BuyerID:   buyer.ID,
		SellerID:  product.SellerID,
		ProductID: product.ID,
		Subject:   strings.TrimSpace(subject),
		Message:   message,
		Status:    InquiryPending,
	}
}

// CanView 买方、卖方本人或管理员可查看详情
func (i *Inquiry) CanView(actor *User) bool {
	return actor.ID == i.BuyerID || actor.ID == i.SellerID || actor.IsAdmin()
}

// IsAddressedSeller respond/read 仅限被询问的卖家
func (i *Inquiry) IsAddressedSeller(actor *User) bool {
	return actor.ID == i.SellerID
}

// MarkRead pending → read；其它状态下静默不动（容忍 UI 幂等轮询），返回是否发生变更
func (i *Inquiry) MarkRead() bool {
	if i.Status != InquiryPending {
		return false
	}
	i.Status = InquiryRead
	return true
}

// Respond 写入回复并置 responded。二次回复覆盖前一次（沿用既有行为）。
// 回复去除首尾空白后不得为空。
func (i *Inquiry) Respond(response string, now time.Time) bool {
	if strings.TrimSpace(response) == "" {
		return false
	}
	i.SellerResponse = response
	i.Status = InquiryResponded
	i.RespondedAt = &now
	return true
}

// InquiryFilter 买家/卖家收件箱筛选
type InquiryFilter struct {
	BuyerID      string
	SellerID     string
	Status       string
	CreatedAfter *time.Time
}

type InquiryRepository interface {
	Create(i *Inquiry) error
	FindByID(id string) (*Inquiry, error)
	FindByIDPopulated(id string) (*Inquiry, error)
	List(f InquiryFilter, page, limit int) ([]Inquiry, int64, error)
	Update(i *Inquiry) error
	Count(f InquiryFilter) (int64, error)
}
