package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"b2b-market-api/internal/domain"
	"b2b-market-api/internal/repo"
	httpez "b2b-market-api/internal/transport/http/ez"
	mdw "b2b-market-api/internal/transport/http/middleware"
	resp "b2b-market-api/internal/transport/http/response"
	"b2b-market-api/pkg/utils"
)

func init() { Register(productModule{}) }

type productModule struct{}

func (productModule) Priority() int { return 30 }

// 商品写入公共字段（创建/更新共用）
type productIn struct {
	Name             string        `json:"name" binding:"required,max=200"`
	Description      string        `json:"description" binding:"required,max=5000"`
	ShortDescription string        `json:"shortDescription" binding:"omitempty,max=300"`
	Category         string        `json:"category" binding:"required"`
	Images           []string      `json:"images"`
	PriceMin         float64       `json:"priceMin" binding:"required,gte=0"`
	PriceMax         float64       `json:"priceMax" binding:"omitempty,gte=0"`
	PriceUnit        string        `json:"priceUnit"`
	Currency         string        `json:"currency"`
	MOQ              int           `json:"moq" binding:"omitempty,gte=1"`
	MOQUnit          string        `json:"moqUnit"`
	Specifications   []domain.Spec `json:"specifications"`
	Tags             []string      `json:"tags"`
	IsActive         *bool         `json:"isActive"`
}

func (productModule) MountAPI(api *gin.RouterGroup, d *Deps) {
	products := repo.NewProductRepo(d.DB)
	categories := repo.NewCategoryRepo(d.DB)
	pub := httpez.New(api)

	// GET /api/products 公开列表：仅 isActive AND isApproved
	type listQ struct {
		Search   string `form:"search"`
		Category string `form:"category"`
		MinPrice string `form:"minPrice"`
		MaxPrice string `form:"maxPrice"`
		Sort     string `form:"sort"`
		Featured string `form:"featured"`
		Page     int    `form:"page,default=1"`
		Limit    int    `form:"limit,default=12"`
	}
	httpez.RegisterAction[listQ, httpez.Paged](pub, d.DB, httpez.Action[listQ, httpez.Paged]{
		Method: http.MethodGet,
		Path:   "/products",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, tx *gorm.DB, in *listQ) (httpez.Paged, error) {
			f := domain.ProductFilter{
				Search:      strings.TrimSpace(in.Search),
				VisibleOnly: true,
				Featured:    in.Featured == "true",
				Sort:        in.Sort,
			}
			if in.Category != "" {
				cat, err := categories.FindByIDOrSlug(in.Category)
				if err != nil {
					return httpez.Paged{}, httpez.Internal("resolve category failed", err)
				}
				if cat != nil {
					f.CategoryID = cat.ID
				}
			}
			if v, err := strconv.ParseFloat(in.MinPrice, 64); err == nil {
				f.MinPrice = &v
			}
			if v, err := strconv.ParseFloat(in.MaxPrice, 64); err == nil {
				f.MaxPrice = &v
			}

			page := resp.NewPage(in.Page, in.Limit)
			items, total, err := products.List(f, page.Page, page.Limit)
			if err != nil {
				return httpez.Paged{}, httpez.Internal("list products failed", err)
			}
			return httpez.Paged{Items: items, Page: page.WithTotal(total)}, nil
		},
	})

	// 卖家分组
	seller := api.Group("")
	seller.Use(mdw.AuthJWT(d.JWT, d.DB, domain.RoleSeller))
	ezSeller := httpez.New(seller)

	// GET /api/products/seller/my-products（先于 /:id 注册）
	type myQ struct {
		Status string `form:"status"` // active / pending / inactive
		Page   int    `form:"page,default=1"`
		Limit  int    `form:"limit,default=20"`
	}
	httpez.RegisterAction[myQ, httpez.Paged](ezSeller, d.DB, httpez.Action[myQ, httpez.Paged]{
		Method: http.MethodGet,
		Path:   "/products/seller/my-products",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, tx *gorm.DB, in *myQ) (httpez.Paged, error) {
			actor := httpez.Actor(c)
			pf := domain.ProductFilter{SellerID: actor.ID}
			t, fa := true, false
			switch in.Status {
			case "active":
				pf.ActiveOnly, pf.ApprovedOnly = &t, &t
			case "pending":
				pf.ApprovedOnly = &fa
			case "inactive":
				pf.ActiveOnly = &fa
			}
			page := resp.NewPage(in.Page, in.Limit)
			items, total, err := products.List(pf, page.Page, page.Limit)
			if err != nil {
				return httpez.Paged{}, httpez.Internal("list my products failed", err)
			}
			return httpez.Paged{Items: items, Page: page.WithTotal(total)}, nil
		},
	})

	// GET /api/products/:id 公开详情（ID 或 slug），浏览计数原子自增
	httpez.RegisterAction[struct{}, *domain.Product](pub, d.DB, httpez.Action[struct{}, *domain.Product]{
		Method: http.MethodGet,
		Path:   "/products/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (*domain.Product, error) {
			p, err := products.FindByIDOrSlug(c.Param("id"))
			if err != nil {
				return nil, httpez.Internal("load product failed", err)
			}
			if p == nil {
				return nil, httpez.NotFound("product not found")
			}
			if err := products.IncrementViews(p.ID); err != nil {
				d.Log.Warn("view count increment failed", zap.Error(err))
			} else {
				p.ViewCount++
			}
			return p, nil
		},
	})

	// POST /api/products：卖家须已审批
	httpez.RegisterAction[productIn, *domain.Product](ezSeller, d.DB, httpez.Action[productIn, *domain.Product]{
		Method:  http.MethodPost,
		Path:    "/products",
		Binder:  httpez.BindJSON,
		Created: true,
		Handler: func(c *gin.Context, tx *gorm.DB, in *productIn) (*domain.Product, error) {
			actor := httpez.Actor(c)
			if !actor.CanListProducts() {
				return nil, httpez.Forbidden("your seller account is pending approval")
			}

			p := &domain.Product{
				ID:               utils.NewID(),
				Name:             strings.TrimSpace(in.Name),
				Description:      in.Description,
				ShortDescription: in.ShortDescription,
				CategoryID:       in.Category,
				SellerID:         actor.ID,
				Images:           domain.StringList(in.Images),
				PriceMin:         in.PriceMin,
				PriceMax:         in.PriceMax,
				PriceUnit:        defaultStr(in.PriceUnit, "per piece"),
				Currency:         defaultStr(in.Currency, "INR"),
				MOQ:              defaultInt(in.MOQ, 1),
				MOQUnit:          defaultStr(in.MOQUnit, "pieces"),
				Specifications:   domain.SpecList(in.Specifications),
				Tags:             domain.StringList(in.Tags),
				IsActive:         true,
				IsApproved:       false, // 新品待管理员审批
			}
			p.ClampPrices()
			p.RefreshSlug(time.Now())

			if err := products.Create(p); err != nil {
				return nil, httpez.Internal("create product failed", err)
			}
			return p, nil
		},
	})

	// 卖家或管理员的改/删分组
	owner := api.Group("")
	owner.Use(mdw.AuthJWT(d.JWT, d.DB, domain.RoleSeller, domain.RoleAdmin))
	ezOwner := httpez.New(owner)

	// PUT /api/products/:id：属主或管理员
	httpez.RegisterAction[productIn, *domain.Product](ezOwner, d.DB, httpez.Action[productIn, *domain.Product]{
		Method: http.MethodPut,
		Path:   "/products/:id",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *productIn) (*domain.Product, error) {
			actor := httpez.Actor(c)
			p, err := products.FindByID(c.Param("id"))
			if err != nil {
				return nil, httpez.Internal("load product failed", err)
			}
			if p == nil {
				return nil, httpez.NotFound("product not found")
			}
			if !p.CanModify(actor) {
				return nil, httpez.Forbidden("not authorized to update this product")
			}

			renamed := strings.TrimSpace(in.Name) != p.Name
			p.Name = strings.TrimSpace(in.Name)
			p.Description = in.Description
			p.ShortDescription = in.ShortDescription
			p.CategoryID = in.Category
			if in.Images != nil {
				p.Images = domain.StringList(in.Images)
			}
			p.PriceMin = in.PriceMin
			p.PriceMax = in.PriceMax
			p.PriceUnit = defaultStr(in.PriceUnit, p.PriceUnit)
			p.Currency = defaultStr(in.Currency, p.Currency)
			p.MOQ = defaultInt(in.MOQ, p.MOQ)
			p.MOQUnit = defaultStr(in.MOQUnit, p.MOQUnit)
			if in.Specifications != nil {
				p.Specifications = domain.SpecList(in.Specifications)
			}
			if in.Tags != nil {
				p.Tags = domain.StringList(in.Tags)
			}
			if in.IsActive != nil {
				p.IsActive = *in.IsActive
			}
			// 属主不可经此接口变更
			p.ClampPrices()
			if renamed {
				p.RefreshSlug(time.Now())
			}

			if err := products.Update(p); err != nil {
				return nil, httpez.Internal("update product failed", err)
			}
			return p, nil
		},
	})

	// DELETE /api/products/:id
	httpez.RegisterAction[struct{}, gin.H](ezOwner, d.DB, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/products/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (gin.H, error) {
			actor := httpez.Actor(c)
			p, err := products.FindByID(c.Param("id"))
			if err != nil {
				return nil, httpez.Internal("load product failed", err)
			}
			if p == nil {
				return nil, httpez.NotFound("product not found")
			}
			if !p.CanModify(actor) {
				return nil, httpez.Forbidden("not authorized to delete this product")
			}
			if err := products.Delete(p.ID); err != nil {
				return nil, httpez.Internal("delete product failed", err)
			}
			return gin.H{"id": p.ID}, nil
		},
	})

	// DELETE /api/products/:id/images/:imageIndex
	httpez.RegisterAction[struct{}, *domain.Product](ezOwner, d.DB, httpez.Action[struct{}, *domain.Product]{
		Method: http.MethodDelete,
		Path:   "/products/:id/images/:imageIndex",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (*domain.Product, error) {
			actor := httpez.Actor(c)
			p, err := products.FindByID(c.Param("id"))
			if err != nil {
				return nil, httpez.Internal("load product failed", err)
			}
			if p == nil {
				return nil, httpez.NotFound("product not found")
			}
			if !p.CanModify(actor) {
				return nil, httpez.Forbidden("not authorized")
			}
			idx, err := strconv.Atoi(c.Param("imageIndex"))
			if err != nil || idx < 0 || idx >= len(p.Images) {
				return nil, httpez.BadRequest("invalid image index")
			}
			p.Images = append(p.Images[:idx], p.Images[idx+1:]...)
			if err := products.Update(p); err != nil {
				return nil, httpez.Internal("remove image failed", err)
			}
			return p, nil
		},
	})
}

func defaultStr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func defaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
