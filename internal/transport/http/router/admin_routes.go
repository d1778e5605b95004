package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"b2b-market-api/internal/core/events"
	"b2b-market-api/internal/domain"
	"b2b-market-api/internal/repo"
	httpez "b2b-market-api/internal/transport/http/ez"
	resp "b2b-market-api/internal/transport/http/response"
)

func init() { Register(adminModule{}) }

type adminModule struct{}

func (adminModule) Priority() int { return 60 }

// MountAdmin 管理端：看板、用户审批/禁用、商品审核。
// 分组本身已要求 admin 角色。
func (adminModule) MountAdmin(admin *gin.RouterGroup, d *Deps) {
	users := repo.NewUserRepo(d.DB)
	products := repo.NewProductRepo(d.DB)
	inquiries := repo.NewInquiryRepo(d.DB)
	categories := repo.NewCategoryRepo(d.DB)
	ez := httpez.New(admin)

	// GET /analytics 运营看板
	type analyticsOut struct {
		Users struct {
			TotalBuyers    int64 `json:"totalBuyers"`
			TotalSellers   int64 `json:"totalSellers"`
			PendingSellers int64 `json:"pendingSellers"`
			RecentSignups  int64 `json:"recentSignups"`
		} `json:"users"`
		Products struct {
			Total         int64 `json:"total"`
			Pending       int64 `json:"pending"`
			Active        int64 `json:"active"`
			RecentlyAdded int64 `json:"recentlyAdded"`
		} `json:"products"`
		Inquiries struct {
			Total           int64 `json:"total"`
			Pending         int64 `json:"pending"`
			RecentInquiries int64 `json:"recentInquiries"`
		} `json:"inquiries"`
		Categories int64 `json:"categories"`
	}
	httpez.RegisterAction[struct{}, analyticsOut](ez, d.DB, httpez.Action[struct{}, analyticsOut]{
		Method: http.MethodGet,
		Path:   "/analytics",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (analyticsOut, error) {
			var out analyticsOut
			fail := func(err error) (analyticsOut, error) {
				return analyticsOut{}, httpez.Internal("load analytics failed", err)
			}

			notApproved := false
			thirtyDaysAgo := time.Now().AddDate(0, 0, -30)
			var err error

			if out.Users.TotalBuyers, err = users.Count(domain.UserFilter{Role: domain.RoleBuyer}); err != nil {
				return fail(err)
			}
			if out.Users.TotalSellers, err = users.Count(domain.UserFilter{Role: domain.RoleSeller}); err != nil {
				return fail(err)
			}
			if out.Users.PendingSellers, err = users.Count(domain.UserFilter{Role: domain.RoleSeller, Approved: &notApproved}); err != nil {
				return fail(err)
			}
			if out.Users.RecentSignups, err = users.Count(domain.UserFilter{CreatedAfter: &thirtyDaysAgo}); err != nil {
				return fail(err)
			}

			if out.Products.Total, err = products.Count(domain.ProductFilter{}); err != nil {
				return fail(err)
			}
			if out.Products.Pending, err = products.Count(domain.ProductFilter{ApprovedOnly: &notApproved}); err != nil {
				return fail(err)
			}
			if out.Products.Active, err = products.Count(domain.ProductFilter{VisibleOnly: true}); err != nil {
				return fail(err)
			}
			if out.Products.RecentlyAdded, err = products.Count(domain.ProductFilter{CreatedAfter: &thirtyDaysAgo}); err != nil {
				return fail(err)
			}

			if out.Inquiries.Total, err = inquiries.Count(domain.InquiryFilter{}); err != nil {
				return fail(err)
			}
			if out.Inquiries.Pending, err = inquiries.Count(domain.InquiryFilter{Status: domain.InquiryPending}); err != nil {
				return fail(err)
			}
			if out.Inquiries.RecentInquiries, err = inquiries.Count(domain.InquiryFilter{CreatedAfter: &thirtyDaysAgo}); err != nil {
				return fail(err)
			}

			if out.Categories, err = categories.CountActive(); err != nil {
				return fail(err)
			}
			return out, nil
		},
	})

	// GET /users 用户列表（role/approved/search 筛选）
	type usersQ struct {
		Role     string `form:"role"`
		Approved string `form:"approved"`
		Search   string `form:"search"`
		Page     int    `form:"page,default=1"`
		Limit    int    `form:"limit,default=20"`
	}
	httpez.RegisterAction[usersQ, httpez.Paged](ez, d.DB, httpez.Action[usersQ, httpez.Paged]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, tx *gorm.DB, in *usersQ) (httpez.Paged, error) {
			f := domain.UserFilter{Role: in.Role, Search: strings.TrimSpace(in.Search)}
			switch in.Approved {
			case "true":
				t := true
				f.Approved = &t
			case "false":
				fa := false
				f.Approved = &fa
			}
			page := resp.NewPage(in.Page, in.Limit)
			items, total, err := users.List(f, page.Page, page.Limit)
			if err != nil {
				return httpez.Paged{}, httpez.Internal("list users failed", err)
			}
			return httpez.Paged{Items: items, Page: page.WithTotal(total)}, nil
		},
	})

	// PUT /users/:id/approve 审批/撤销卖家；目标必须是 seller
	type approveIn struct {
		Approved *bool `json:"approved" binding:"required"`
	}
	httpez.RegisterAction[approveIn, *domain.User](ez, d.DB, httpez.Action[approveIn, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id/approve",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *approveIn) (*domain.User, error) {
			u, err := users.FindByID(c.Param("id"))
			if err != nil {
				return nil, httpez.Internal("load user failed", err)
			}
			if u == nil {
				return nil, httpez.NotFound("user not found")
			}
			if u.Role != domain.RoleSeller {
				return nil, httpez.BadRequest("user is not a seller")
			}
			u.IsApproved = *in.Approved
			if err := users.Update(u); err != nil {
				return nil, httpez.Internal("save user failed", err)
			}
			if *in.Approved {
				d.Events.Publish(events.SellerApproved, gin.H{"sellerId": u.ID})
			}
			return u, nil
		},
	})

	// PUT /users/:id/toggle-active 禁用/恢复账号；管理员账号不可禁用
	httpez.RegisterAction[struct{}, *domain.User](ez, d.DB, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id/toggle-active",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (*domain.User, error) {
			u, err := users.FindByID(c.Param("id"))
			if err != nil {
				return nil, httpez.Internal("load user failed", err)
			}
			if u == nil {
				return nil, httpez.NotFound("user not found")
			}
			if u.IsAdmin() {
				return nil, httpez.BadRequest("cannot deactivate admin accounts")
			}
			u.IsActive = !u.IsActive
			if err := users.Update(u); err != nil {
				return nil, httpez.Internal("save user failed", err)
			}
			return u, nil
		},
	})

	// GET /products 商品审核队列
	type moderationQ struct {
		Status string `form:"status"` // pending / approved / inactive
		Search string `form:"search"`
		Page   int    `form:"page,default=1"`
		Limit  int    `form:"limit,default=20"`
	}
	httpez.RegisterAction[moderationQ, httpez.Paged](ez, d.DB, httpez.Action[moderationQ, httpez.Paged]{
		Method: http.MethodGet,
		Path:   "/products",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, tx *gorm.DB, in *moderationQ) (httpez.Paged, error) {
			f := domain.ProductFilter{Search: strings.TrimSpace(in.Search)}
			t, fa := true, false
			switch in.Status {
			case "pending":
				f.ApprovedOnly = &fa
			case "approved":
				f.ApprovedOnly = &t
			case "inactive":
				f.ActiveOnly = &fa
			}
			page := resp.NewPage(in.Page, in.Limit)
			items, total, err := products.List(f, page.Page, page.Limit)
			if err != nil {
				return httpez.Paged{}, httpez.Internal("list products failed", err)
			}
			return httpez.Paged{Items: items, Page: page.WithTotal(total)}, nil
		},
	})

	// PUT /products/:id/approve 审批联动上架，驳回联动下架
	httpez.RegisterAction[approveIn, *domain.Product](ez, d.DB, httpez.Action[approveIn, *domain.Product]{
		Method: http.MethodPut,
		Path:   "/products/:id/approve",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *approveIn) (*domain.Product, error) {
			p, err := products.FindByID(c.Param("id"))
			if err != nil {
				return nil, httpez.Internal("load product failed", err)
			}
			if p == nil {
				return nil, httpez.NotFound("product not found")
			}
			p.ApplyApproval(*in.Approved)
			if err := products.UpdateFields(p.ID, map[string]any{
				"is_approved": p.IsApproved,
				"is_active":   p.IsActive,
			}); err != nil {
				return nil, httpez.Internal("save product failed", err)
			}
			if *in.Approved {
				d.Events.Publish(events.ProductApproved, gin.H{"productId": p.ID, "seller": p.SellerID})
			}
			return p, nil
		},
	})

	// PUT /products/:id/feature 精选位开关
	httpez.RegisterAction[struct{}, *domain.Product](ez, d.DB, httpez.Action[struct{}, *domain.Product]{
		Method: http.MethodPut,
		Path:   "/products/:id/feature",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (*domain.Product, error) {
			p, err := products.FindByID(c.Param("id"))
			if err != nil {
				return nil, httpez.Internal("load product failed", err)
			}
			if p == nil {
				return nil, httpez.NotFound("product not found")
			}
			p.IsFeatured = !p.IsFeatured
			if err := products.UpdateFields(p.ID, map[string]any{"is_featured": p.IsFeatured}); err != nil {
				return nil, httpez.Internal("save product failed", err)
			}
			return p, nil
		},
	})

	// DELETE /products/:id 管理员硬删
	httpez.RegisterAction[struct{}, gin.H](ez, d.DB, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/products/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			p, err := products.FindByID(id)
			if err != nil {
				return nil, httpez.Internal("load product failed", err)
			}
			if p == nil {
				return nil, httpez.NotFound("product not found")
			}
			if err := products.Delete(id); err != nil {
				return nil, httpez.Internal("delete product failed", err)
			}
			return gin.H{"id": id}, nil
		},
	})
}
