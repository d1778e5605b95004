package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"b2b-market-api/internal/core/cache"
	"b2b-market-api/internal/domain"
	"b2b-market-api/internal/repo"
	httpez "b2b-market-api/internal/transport/http/ez"
	mdw "b2b-market-api/internal/transport/http/middleware"
	"b2b-market-api/pkg/utils"
)

func init() { Register(categoryModule{}) }

type categoryModule struct{}

func (categoryModule) Priority() int { return 20 }

const categoryListKey = "categories:active"

func (categoryModule) MountAPI(api *gin.RouterGroup, d *Deps) {
	pub := httpez.New(api)
	categories := repo.NewCategoryRepo(d.DB)

	// GET /api/categories 活跃分类，读穿缓存
	httpez.RegisterAction[struct{}, []domain.Category](pub, d.DB, httpez.Action[struct{}, []domain.Category]{
		Method: http.MethodGet,
		Path:   "/categories",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) ([]domain.Category, error) {
			out, err := cache.GetOrLoadJSON(d.Cache, c.Request.Context(), categoryListKey, 5*time.Minute,
				func(ctx context.Context) (*[]domain.Category, error) {
					cats, e := categories.ListActive()
					if e != nil {
						return nil, e
					}
					return &cats, nil
				})
			if err != nil {
				return nil, httpez.Internal("list categories failed", err)
			}
			if out == nil {
				return []domain.Category{}, nil
			}
			return *out, nil
		},
	})

	// GET /api/categories/:id（ID 或 slug）
	httpez.RegisterAction[struct{}, *domain.Category](pub, d.DB, httpez.Action[struct{}, *domain.Category]{
		Method: http.MethodGet,
		Path:   "/categories/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (*domain.Category, error) {
			cat, err := categories.FindByIDOrSlug(c.Param("id"))
			if err != nil {
				return nil, httpez.Internal("load category failed", err)
			}
			if cat == nil {
				return nil, httpez.NotFound("category not found")
			}
			return cat, nil
		},
	})

	// 写操作仅管理员（与原 /api/categories 路由对齐，不走 /api/admin 前缀）
	adminOnly := api.Group("")
	adminOnly.Use(mdw.AuthJWT(d.JWT, d.DB, domain.RoleAdmin))
	mountCategoryWrites(httpez.New(adminOnly), d, categories)
}

// MountAdmin 同一套写接口也暴露在运维端
func (categoryModule) MountAdmin(admin *gin.RouterGroup, d *Deps) {
	mountCategoryWrites(httpez.New(admin), d, repo.NewCategoryRepo(d.DB))
}

func mountCategoryWrites(ez httpez.EZ, d *Deps, categories *repo.CategoryRepo) {
	type categoryIn struct {
		Name        string  `json:"name" binding:"required,max=100"`
		Description string  `json:"description" binding:"omitempty,max=500"`
		Icon        string  `json:"icon" binding:"omitempty,max=100"`
		Image       string  `json:"image" binding:"omitempty,max=255"`
		Parent      *string `json:"parent"`
		SortOrder   int     `json:"sortOrder"`
		IsActive    *bool   `json:"isActive"`
	}

	// POST /categories
	httpez.RegisterAction[categoryIn, *domain.Category](ez, d.DB, httpez.Action[categoryIn, *domain.Category]{
		Method:  http.MethodPost,
		Path:    "/categories",
		Binder:  httpez.BindJSON,
		Created: true,
		Handler: func(c *gin.Context, tx *gorm.DB, in *categoryIn) (*domain.Category, error) {
			name := strings.TrimSpace(in.Name)
			existing, err := categories.FindByName(name)
			if err != nil {
				return nil, httpez.Internal("check category failed", err)
			}
			if existing != nil {
				return nil, httpez.BadRequest("category already exists")
			}
			cat := &domain.Category{
				ID:          utils.NewID(),
				Name:        name,
				Slug:        domain.Slugify(name),
				Description: in.Description,
				Icon:        in.Icon,
				Image:       in.Image,
				ParentID:    in.Parent,
				SortOrder:   in.SortOrder,
				IsActive:    true,
			}
			if err := categories.Create(cat); err != nil {
				return nil, httpez.Internal("create category failed", err)
			}
			if d.Cache != nil {
				d.Cache.Invalidate(c.Request.Context(), categoryListKey)
			}
			return cat, nil
		},
	})

	// PUT /categories/:id
	httpez.RegisterAction[categoryIn, *domain.Category](ez, d.DB, httpez.Action[categoryIn, *domain.Category]{
		Method: http.MethodPut,
		Path:   "/categories/:id",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *categoryIn) (*domain.Category, error) {
			cat, err := categories.FindByID(c.Param("id"))
			if err != nil {
				return nil, httpez.Internal("load category failed", err)
			}
			if cat == nil {
				return nil, httpez.NotFound("category not found")
			}
			name := strings.TrimSpace(in.Name)
			if name != cat.Name {
				cat.Name = name
				cat.Slug = domain.Slugify(name)
			}
			cat.Description = in.Description
			cat.Icon = in.Icon
			cat.Image = in.Image
			cat.ParentID = in.Parent
			cat.SortOrder = in.SortOrder
			if in.IsActive != nil {
				cat.IsActive = *in.IsActive
			}
			if err := categories.Update(cat); err != nil {
				return nil, httpez.Internal("update category failed", err)
			}
			if d.Cache != nil {
				d.Cache.Invalidate(c.Request.Context(), categoryListKey)
			}
			return cat, nil
		},
	})

	// DELETE /categories/:id
	// 无级联校验：引用该分类的商品保留悬挂引用（既有行为，有意保留）
	httpez.RegisterAction[struct{}, gin.H](ez, d.DB, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/categories/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			cat, err := categories.FindByID(id)
			if err != nil {
				return nil, httpez.Internal("load category failed", err)
			}
			if cat == nil {
				return nil, httpez.NotFound("category not found")
			}
			if err := categories.Delete(id); err != nil {
				return nil, httpez.Internal("delete category failed", err)
			}
			if d.Cache != nil {
				d.Cache.Invalidate(c.Request.Context(), categoryListKey)
			}
			return gin.H{"id": id}, nil
		},
	})
}
