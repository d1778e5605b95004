package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"b2b-market-api/internal/core/cache"
	"b2b-market-api/internal/domain"
	"b2b-market-api/internal/repo"
	httpez "b2b-market-api/internal/transport/http/ez"
	resp "b2b-market-api/internal/transport/http/response"
)

func init() { Register(sellerModule{}) }

type sellerModule struct{}

func (sellerModule) Priority() int { return 35 }

// sellerCard 公开卖家摘要
type sellerCard struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	CompanyName        string `json:"companyName"`
	CompanyDescription string `json:"companyDescription"`
	CompanyAddress     string `json:"companyAddress"`
	Avatar             string `json:"avatar"`
	EstablishedYear    int    `json:"establishedYear"`
	EmployeeCount      string `json:"employeeCount"`
	Website            string `json:"website"`
	ProductCount       int64  `json:"productCount"`
}

func (sellerModule) MountAPI(api *gin.RouterGroup, d *Deps) {
	users := repo.NewUserRepo(d.DB)
	products := repo.NewProductRepo(d.DB)
	pub := httpez.New(api)

	visibleCount := func(sellerID string) (int64, error) {
		return products.Count(domain.ProductFilter{SellerID: sellerID, VisibleOnly: true})
	}

	// GET /api/sellers/featured 精选卖家（读穿缓存）
	httpez.RegisterAction[struct{}, []sellerCard](pub, d.DB, httpez.Action[struct{}, []sellerCard]{
		Method: http.MethodGet,
		Path:   "/sellers/featured",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) ([]sellerCard, error) {
			out, err := cache.GetOrLoadJSON(d.Cache, c.Request.Context(), "sellers:featured", 5*time.Minute,
				func(ctx context.Context) (*[]sellerCard, error) {
					sellers, e := users.FindPublicSellers(8)
					if e != nil {
						return nil, e
					}
					cards := make([]sellerCard, 0, len(sellers))
					for _, s := range sellers {
						n, e := visibleCount(s.ID)
						if e != nil {
							return nil, e
						}
						cards = append(cards, sellerToCard(&s, n))
					}
					return &cards, nil
				})
			if err != nil {
				return nil, httpez.Internal("list featured sellers failed", err)
			}
			if out == nil {
				return []sellerCard{}, nil
			}
			return *out, nil
		},
	})

	// GET /api/sellers/:id 公开卖家主页（仅已审批且未禁用）
	httpez.RegisterAction[struct{}, sellerCard](pub, d.DB, httpez.Action[struct{}, sellerCard]{
		Method: http.MethodGet,
		Path:   "/sellers/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (sellerCard, error) {
			u, err := users.FindByID(c.Param("id"))
			if err != nil {
				return sellerCard{}, httpez.Internal("load seller failed", err)
			}
			if u == nil || !u.PubliclyVisibleSeller() {
				return sellerCard{}, httpez.NotFound("seller not found")
			}
			n, err := visibleCount(u.ID)
			if err != nil {
				return sellerCard{}, httpez.Internal("count products failed", err)
			}
			return sellerToCard(u, n), nil
		},
	})

	// GET /api/sellers/:id/products 卖家公开商品列表
	type listQ struct {
		Page  int `form:"page,default=1"`
		Limit int `form:"limit,default=12"`
	}
	httpez.RegisterAction[listQ, httpez.Paged](pub, d.DB, httpez.Action[listQ, httpez.Paged]{
		Method: http.MethodGet,
		Path:   "/sellers/:id/products",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, tx *gorm.DB, in *listQ) (httpez.Paged, error) {
			page := resp.NewPage(in.Page, in.Limit)
			items, total, err := products.List(domain.ProductFilter{
				SellerID:    c.Param("id"),
				VisibleOnly: true,
			}, page.Page, page.Limit)
			if err != nil {
				return httpez.Paged{}, httpez.Internal("list seller products failed", err)
			}
			return httpez.Paged{Items: items, Page: page.WithTotal(total)}, nil
		},
	})
}

func sellerToCard(u *domain.User, productCount int64) sellerCard {
	return sellerCard{
		ID:                 u.ID,
		Name:               u.Name,
		CompanyName:        u.CompanyName,
		CompanyDescription: u.CompanyDescription,
		CompanyAddress:     u.CompanyAddress,
		Avatar:             u.Avatar,
		EstablishedYear:    u.EstablishedYear,
		EmployeeCount:      u.EmployeeCount,
		Website:            u.Website,
		ProductCount:       productCount,
	}
}
