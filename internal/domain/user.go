package domain

import (
	"time"
)

// 角色固定三选一，注册后不再变更
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

type User struct {
	ID           string `gorm:"primaryKey;size:36" json:"id"`
	Name         string `gorm:"size:64;not null" json:"name"`
	Email        string `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string `gorm:"size:100;not null" json:"-"`
	Role         string `gorm:"size:16;not null;default:buyer;index" json:"role"` // buyer/seller/admin
	Phone        string `gorm:"size:32" json:"phone"`
	Avatar       string `gorm:"size:255" json:"avatar"`

	// 审批/禁用开关：isApproved 仅对 seller 有意义
	IsApproved bool `gorm:"not null;default:false" json:"isApproved"`
	IsActive   bool `gorm:"not null;default:true" json:"isActive"`

	// 企业资料（seller 展示用）
	CompanyName        string `gorm:"size:200" json:"companyName"`
	CompanyDescription string `gorm:"size:2000" json:"companyDescription"`
	CompanyAddress     string `gorm:"size:500" json:"companyAddress"`
	GSTNumber          string `gorm:"size:32" json:"gstNumber"`
	Website            string `gorm:"size:255" json:"website"`
	EstablishedYear    int    `json:"establishedYear"`
	EmployeeCount      string `gorm:"size:32" json:"employeeCount"`
	AnnualTurnover     string `gorm:"size:32" json:"annualTurnover"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

func (u *User) IsSeller() bool { return u.Role == RoleSeller }
func (u *User) IsAdmin() bool  { return u.Role == RoleAdmin }

// CanListProducts 卖家发品前置条件：已通过审批（isActive 由登录关卡保证）
func (u *User) CanListProducts() bool {
	return u.Role == RoleSeller && u.IsApproved
}

// PubliclyVisibleSeller 公开卖家页仅展示已审批且未被禁用的卖家
func (u *User) PubliclyVisibleSeller() bool {
	return u.Role == RoleSeller && u.IsActive && u.IsApproved
}

// ProfileFields 各角色允许通过 profile 接口修改的列白名单
func ProfileFields(role string) []string {
	fields := []string{"name", "phone", "avatar"}
	if role == RoleSeller {
		fields = append(fields,
			"company_name", "company_description", "company_address",
			"gst_number", "website", "established_year",
			"employee_count", "annual_turnover",
		)
	}
	return fields
}

type UserRepository interface {
	Create(u *User) error
	FindByID(id string) (*User, error)
	FindByEmail(email string) (*User, error)
	List(f UserFilter, page, limit int) ([]User, int64, error)
	Update(u *User) error
	UpdateFields(id string, fields map[string]any) (*User, error)
	Count(f UserFilter) (int64, error)
	FindPublicSellers(limit int) ([]User, error)
}

// UserFilter 管理端用户列表筛选
type UserFilter struct {
	Role         string
	Approved     *bool
	Search       string // name/email/companyName 模糊
	CreatedAfter *time.Time
}
