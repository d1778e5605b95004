package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"b2b-market-api/internal/core/auth"
	"b2b-market-api/internal/core/config"
	"b2b-market-api/internal/core/events"
	"b2b-market-api/internal/domain"
	"b2b-market-api/pkg/utils"
)

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	jwt    *auth.JWTer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Category{}, &domain.Product{}, &domain.Inquiry{},
	))

	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Hour}
	deps := &Deps{
		Log:    zap.NewNop(),
		DB:     db,
		JWT:    jwter,
		Events: events.Nop(),
		Upload: config.Upload{Dir: t.TempDir(), MaxFiles: 5},
	}
	return &testServer{engine: NewAPIEngine(deps), db: db, jwt: jwter}
}

type envelope struct {
	Code       int             `json:"code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
		Pages int   `json:"pages"`
	} `json:"pagination"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	}
	return w, env
}

// 直接落库一个用户并签发 token
func (s *testServer) seedUser(t *testing.T, role string, approved, active bool) (*domain.User, string) {
	t.Helper()
	u := &domain.User{
		ID:           utils.NewID(),
		Name:         "u-" + utils.NewID()[:8],
		Email:        utils.NewID() + "@example.com",
		PasswordHash: utils.HashPassword("secret123"),
		Role:         role,
		IsApproved:   approved,
		IsActive:     active,
	}
	require.NoError(t, s.db.Create(u).Error)
	tok, err := s.jwt.Issue(u.ID, u.Role)
	require.NoError(t, err)
	return u, tok
}

func (s *testServer) seedCategory(t *testing.T, name string) *domain.Category {
	t.Helper()
	c := &domain.Category{ID: utils.NewID(), Name: name, Slug: domain.Slugify(name), IsActive: true}
	require.NoError(t, s.db.Create(c).Error)
	return c
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Asha", "email": "Asha@Example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var out struct {
		User  domain.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, domain.RoleBuyer, out.User.Role)
	assert.Equal(t, "asha@example.com", out.User.Email)
	assert.NotEmpty(t, out.Token)

	t.Run("duplicate email rejected", func(t *testing.T) {
		w, _ := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
			"name": "Asha2", "email": "asha@example.com", "password": "secret123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("seller starts unapproved", func(t *testing.T) {
		w, env := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
			"name": "Vik", "email": "vik@example.com", "password": "secret123",
			"role": "seller", "companyName": "Vik Traders",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.Equal(t, domain.RoleSeller, out.User.Role)
		assert.False(t, out.User.IsApproved)
	})

	t.Run("login wrong password", func(t *testing.T) {
		w, _ := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "asha@example.com", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("login ok", func(t *testing.T) {
		w, env := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "asha@example.com", "password": "secret123",
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.NotEmpty(t, out.Token)
	})

	t.Run("me requires token", func(t *testing.T) {
		w, _ := s.do(t, http.MethodGet, "/api/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w, env := s.do(t, http.MethodGet, "/api/auth/me", out.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var me domain.User
		require.NoError(t, json.Unmarshal(env.Data, &me))
		assert.Equal(t, "asha@example.com", me.Email)
	})
}

// 全流程：卖家审批 → 发品 → 商品审批 → 公开可见 → 询盘往返
func TestMarketplaceFlow(t *testing.T) {
	s := newTestServer(t)
	_, adminTok := s.seedUser(t, domain.RoleAdmin, false, true)
	seller, sellerTok := s.seedUser(t, domain.RoleSeller, false, true)
	_, buyerTok := s.seedUser(t, domain.RoleBuyer, false, true)
	cat := s.seedCategory(t, "Industrial Metals")

	// 未审批卖家发品被拒
	newProduct := gin.H{
		"name": "Copper Wire 2mm", "description": "high conductivity",
		"category": cat.ID, "priceMin": 120.0, "priceMax": 80.0,
	}
	w, _ := s.do(t, http.MethodPost, "/api/products", sellerTok, newProduct)
	require.Equal(t, http.StatusForbidden, w.Code)

	// 管理员审批卖家
	w, _ = s.do(t, http.MethodPut, "/api/admin/users/"+seller.ID+"/approve", adminTok, gin.H{"approved": true})
	require.Equal(t, http.StatusOK, w.Code)

	// 再发品成功；priceMax 被抬到 priceMin
	w, env := s.do(t, http.MethodPost, "/api/products", sellerTok, newProduct)
	require.Equal(t, http.StatusCreated, w.Code)
	var p domain.Product
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.False(t, p.IsApproved)
	assert.Equal(t, 120.0, p.PriceMax)
	assert.Contains(t, p.Slug, "copper-wire-2mm-")
	assert.Equal(t, "per piece", p.PriceUnit)
	assert.Equal(t, "INR", p.Currency)

	// 未审批商品不进公开列表
	w, env = s.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(0), env.Pagination.Total)

	// 管理员审批商品：isApproved 与 isActive 同时为真
	w, env = s.do(t, http.MethodPut, "/api/admin/products/"+p.ID+"/approve", adminTok, gin.H{"approved": true})
	require.Equal(t, http.StatusOK, w.Code)
	var approved domain.Product
	require.NoError(t, json.Unmarshal(env.Data, &approved))
	assert.True(t, approved.IsApproved)
	assert.True(t, approved.IsActive)

	w, env = s.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), env.Pagination.Total)

	// 详情可用 slug 访问，浏览计数 +1
	w, env = s.do(t, http.MethodGet, "/api/products/"+p.Slug, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail domain.Product
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, int64(1), detail.ViewCount)

	// 买家发起询盘
	w, env = s.do(t, http.MethodPost, "/api/inquiries", buyerTok, gin.H{
		"productId": p.ID, "subject": "Bulk order", "message": "need 500 units",
		"quantity": 500, "quantityUnit": "meters",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var inq domain.Inquiry
	require.NoError(t, json.Unmarshal(env.Data, &inq))
	assert.Equal(t, domain.InquiryPending, inq.Status)
	assert.Equal(t, seller.ID, inq.SellerID)

	// 询盘计数已自增
	var after domain.Product
	require.NoError(t, s.db.First(&after, "id = ?", p.ID).Error)
	assert.Equal(t, int64(1), after.InquiryCount)

	// 卖家收件箱
	w, env = s.do(t, http.MethodGet, "/api/inquiries/seller-inquiries", sellerTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), env.Pagination.Total)

	// 标记已读，重复调用静默幂等
	w, env = s.do(t, http.MethodPut, "/api/inquiries/"+inq.ID+"/read", sellerTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &inq))
	assert.Equal(t, domain.InquiryRead, inq.Status)

	w, env = s.do(t, http.MethodPut, "/api/inquiries/"+inq.ID+"/read", sellerTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &inq))
	assert.Equal(t, domain.InquiryRead, inq.Status)

	// 卖家回复
	w, env = s.do(t, http.MethodPut, "/api/inquiries/"+inq.ID+"/respond", sellerTok, gin.H{
		"response": "we can ship in two weeks",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &inq))
	assert.Equal(t, domain.InquiryResponded, inq.Status)
	require.NotNil(t, inq.RespondedAt)

	// 二次回复覆盖
	w, env = s.do(t, http.MethodPut, "/api/inquiries/"+inq.ID+"/respond", sellerTok, gin.H{
		"response": "corrected: three weeks",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &inq))
	assert.Equal(t, "corrected: three weeks", inq.SellerResponse)

	// 买家收件箱里能看到回复后的状态与内容
	w, env = s.do(t, http.MethodGet, "/api/inquiries/my-inquiries", buyerTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var box []domain.Inquiry
	require.NoError(t, json.Unmarshal(env.Data, &box))
	require.Len(t, box, 1)
	assert.Equal(t, domain.InquiryResponded, box[0].Status)
	assert.Equal(t, "corrected: three weeks", box[0].SellerResponse)

	// 买家可看详情；无关买家 403
	w, _ = s.do(t, http.MethodGet, "/api/inquiries/"+inq.ID, buyerTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	_, strangerTok := s.seedUser(t, domain.RoleBuyer, false, true)
	w, _ = s.do(t, http.MethodGet, "/api/inquiries/"+inq.ID, strangerTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 管理员可看
	w, _ = s.do(t, http.MethodGet, "/api/inquiries/"+inq.ID, adminTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSelfInquiryRejected(t *testing.T) {
	s := newTestServer(t)
	buyer, buyerTok := s.seedUser(t, domain.RoleBuyer, false, true)
	cat := s.seedCategory(t, "Metals")

	// 人为构造一个属主即买家本人的商品
	p := &domain.Product{
		ID: utils.NewID(), Name: "Own Product", Slug: "own-product",
		Description: "d", CategoryID: cat.ID, SellerID: buyer.ID,
		PriceMin: 10, MOQ: 1, IsActive: true, IsApproved: true,
	}
	require.NoError(t, s.db.Create(p).Error)

	w, _ := s.do(t, http.MethodPost, "/api/inquiries", buyerTok, gin.H{
		"productId": p.ID, "subject": "hi", "message": "m",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 不留半成品记录
	var n int64
	require.NoError(t, s.db.Model(&domain.Inquiry{}).Count(&n).Error)
	assert.Equal(t, int64(0), n)
}

func TestInquiryRoleGates(t *testing.T) {
	s := newTestServer(t)
	_, sellerTok := s.seedUser(t, domain.RoleSeller, true, true)
	_, buyerTok := s.seedUser(t, domain.RoleBuyer, false, true)

	// 卖家不能发询盘
	w, _ := s.do(t, http.MethodPost, "/api/inquiries", sellerTok, gin.H{
		"productId": "x", "subject": "s", "message": "m",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 买家进不了卖家收件箱
	w, _ = s.do(t, http.MethodGet, "/api/inquiries/seller-inquiries", buyerTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 不存在的询盘
	w, _ = s.do(t, http.MethodGet, "/api/inquiries/nope", buyerTok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductOwnership(t *testing.T) {
	s := newTestServer(t)
	owner, ownerTok := s.seedUser(t, domain.RoleSeller, true, true)
	_, rivalTok := s.seedUser(t, domain.RoleSeller, true, true)
	_, adminTok := s.seedUser(t, domain.RoleAdmin, false, true)
	cat := s.seedCategory(t, "Metals")

	p := &domain.Product{
		ID: utils.NewID(), Name: "Steel Rod", Slug: "steel-rod",
		Description: "d", CategoryID: cat.ID, SellerID: owner.ID,
		PriceMin: 10, MOQ: 1, IsActive: true, IsApproved: true,
		Images: domain.StringList{"/uploads/a.jpg", "/uploads/b.jpg"},
	}
	require.NoError(t, s.db.Create(p).Error)

	update := gin.H{
		"name": "Steel Rod", "description": "updated",
		"category": cat.ID, "priceMin": 15.0,
	}

	w, _ := s.do(t, http.MethodPut, "/api/products/"+p.ID, rivalTok, update)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := s.do(t, http.MethodPut, "/api/products/"+p.ID, ownerTok, update)
	require.Equal(t, http.StatusOK, w.Code)
	var out domain.Product
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "updated", out.Description)
	// 未改名不换 slug
	assert.Equal(t, "steel-rod", out.Slug)

	t.Run("image removal bounds checked", func(t *testing.T) {
		w, _ := s.do(t, http.MethodDelete, "/api/products/"+p.ID+"/images/5", ownerTok, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w, env := s.do(t, http.MethodDelete, "/api/products/"+p.ID+"/images/0", ownerTok, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.Equal(t, domain.StringList{"/uploads/b.jpg"}, out.Images)
	})

	t.Run("admin can delete", func(t *testing.T) {
		w, _ := s.do(t, http.MethodDelete, "/api/products/"+p.ID, adminTok, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		w, _ = s.do(t, http.MethodGet, "/api/products/"+p.ID, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminUserModeration(t *testing.T) {
	s := newTestServer(t)
	admin, adminTok := s.seedUser(t, domain.RoleAdmin, false, true)
	buyer, _ := s.seedUser(t, domain.RoleBuyer, false, true)

	t.Run("approve rejects non-sellers", func(t *testing.T) {
		w, _ := s.do(t, http.MethodPut, "/api/admin/users/"+buyer.ID+"/approve", adminTok, gin.H{"approved": true})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("admin accounts cannot be deactivated", func(t *testing.T) {
		w, _ := s.do(t, http.MethodPut, "/api/admin/users/"+admin.ID+"/toggle-active", adminTok, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("deactivation kills login and existing tokens", func(t *testing.T) {
		w, _ := s.do(t, http.MethodPut, "/api/admin/users/"+buyer.ID+"/toggle-active", adminTok, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w, _ = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": buyer.Email, "password": "secret123"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		tok, err := s.jwt.Issue(buyer.ID, buyer.Role)
		require.NoError(t, err)
		w, _ = s.do(t, http.MethodGet, "/api/auth/me", tok, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing user 404", func(t *testing.T) {
		w, _ := s.do(t, http.MethodPut, "/api/admin/users/ghost/approve", adminTok, gin.H{"approved": true})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("user list filters by role", func(t *testing.T) {
		w, env := s.do(t, http.MethodGet, "/api/admin/users?role=buyer", adminTok, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, env.Pagination)
		assert.Equal(t, int64(1), env.Pagination.Total)
	})

	t.Run("admin surface closed to others", func(t *testing.T) {
		_, sellerTok := s.seedUser(t, domain.RoleSeller, true, true)
		w, _ := s.do(t, http.MethodGet, "/api/admin/users", sellerTok, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		w, _ = s.do(t, http.MethodGet, "/api/admin/users", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAdminProductModeration(t *testing.T) {
	s := newTestServer(t)
	_, adminTok := s.seedUser(t, domain.RoleAdmin, false, true)
	seller, _ := s.seedUser(t, domain.RoleSeller, true, true)
	cat := s.seedCategory(t, "Metals")

	p := &domain.Product{
		ID: utils.NewID(), Name: "Pending Widget", Slug: "pending-widget",
		Description: "d", CategoryID: cat.ID, SellerID: seller.ID,
		PriceMin: 10, MOQ: 1, IsActive: true, IsApproved: false,
	}
	require.NoError(t, s.db.Create(p).Error)

	t.Run("pending queue", func(t *testing.T) {
		w, env := s.do(t, http.MethodGet, "/api/admin/products?status=pending", adminTok, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(1), env.Pagination.Total)
	})

	t.Run("rejection deactivates", func(t *testing.T) {
		w, env := s.do(t, http.MethodPut, "/api/admin/products/"+p.ID+"/approve", adminTok, gin.H{"approved": false})
		require.Equal(t, http.StatusOK, w.Code)
		var out domain.Product
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.False(t, out.IsApproved)
		assert.False(t, out.IsActive)
	})

	t.Run("feature toggle", func(t *testing.T) {
		w, env := s.do(t, http.MethodPut, "/api/admin/products/"+p.ID+"/feature", adminTok, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out domain.Product
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.True(t, out.IsFeatured)

		w, env = s.do(t, http.MethodPut, "/api/admin/products/"+p.ID+"/feature", adminTok, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.False(t, out.IsFeatured)
	})

	t.Run("analytics counts", func(t *testing.T) {
		w, env := s.do(t, http.MethodGet, "/api/admin/analytics", adminTok, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out struct {
			Users struct {
				TotalSellers int64 `json:"totalSellers"`
			} `json:"users"`
			Products struct {
				Total int64 `json:"total"`
			} `json:"products"`
			Categories int64 `json:"categories"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.Equal(t, int64(1), out.Users.TotalSellers)
		assert.Equal(t, int64(1), out.Products.Total)
		assert.Equal(t, int64(1), out.Categories)
	})
}

func TestCategoryRoutes(t *testing.T) {
	s := newTestServer(t)
	_, adminTok := s.seedUser(t, domain.RoleAdmin, false, true)
	_, buyerTok := s.seedUser(t, domain.RoleBuyer, false, true)

	w, env := s.do(t, http.MethodPost, "/api/categories", adminTok, gin.H{
		"name": "Industrial Metals", "sortOrder": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var cat domain.Category
	require.NoError(t, json.Unmarshal(env.Data, &cat))
	assert.Equal(t, "industrial-metals", cat.Slug)

	t.Run("duplicate name case-insensitive", func(t *testing.T) {
		w, _ := s.do(t, http.MethodPost, "/api/categories", adminTok, gin.H{"name": "industrial metals"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("writes are admin-only", func(t *testing.T) {
		w, _ := s.do(t, http.MethodPost, "/api/categories", buyerTok, gin.H{"name": "Textiles"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("public list hides inactive", func(t *testing.T) {
		inactive := false
		w, _ := s.do(t, http.MethodPut, "/api/categories/"+cat.ID, adminTok, gin.H{
			"name": cat.Name, "isActive": inactive,
		})
		require.Equal(t, http.StatusOK, w.Code)

		w, env := s.do(t, http.MethodGet, "/api/categories", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var cats []domain.Category
		require.NoError(t, json.Unmarshal(env.Data, &cats))
		assert.Empty(t, cats)
	})

	t.Run("rename refreshes slug", func(t *testing.T) {
		w, env := s.do(t, http.MethodPut, "/api/categories/"+cat.ID, adminTok, gin.H{"name": "Heavy Metals"})
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(env.Data, &cat))
		assert.Equal(t, "heavy-metals", cat.Slug)
	})

	t.Run("lookup by slug", func(t *testing.T) {
		w, env := s.do(t, http.MethodGet, "/api/categories/heavy-metals", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got domain.Category
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, cat.ID, got.ID)
	})

	t.Run("delete", func(t *testing.T) {
		w, _ := s.do(t, http.MethodDelete, "/api/categories/"+cat.ID, adminTok, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		w, _ = s.do(t, http.MethodGet, "/api/categories/"+cat.ID, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPublicSellerSurface(t *testing.T) {
	s := newTestServer(t)
	visible, _ := s.seedUser(t, domain.RoleSeller, true, true)
	hidden, _ := s.seedUser(t, domain.RoleSeller, false, true)
	cat := s.seedCategory(t, "Metals")

	require.NoError(t, s.db.Create(&domain.Product{
		ID: utils.NewID(), Name: "P1", Slug: "p1", Description: "d",
		CategoryID: cat.ID, SellerID: visible.ID,
		PriceMin: 10, MOQ: 1, IsActive: true, IsApproved: true,
	}).Error)

	t.Run("featured lists approved active sellers", func(t *testing.T) {
		w, env := s.do(t, http.MethodGet, "/api/sellers/featured", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var cards []struct {
			ID           string `json:"id"`
			ProductCount int64  `json:"productCount"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &cards))
		require.Len(t, cards, 1)
		assert.Equal(t, visible.ID, cards[0].ID)
		assert.Equal(t, int64(1), cards[0].ProductCount)
	})

	t.Run("unapproved seller page is 404", func(t *testing.T) {
		w, _ := s.do(t, http.MethodGet, "/api/sellers/"+hidden.ID, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("seller products only visible ones", func(t *testing.T) {
		w, env := s.do(t, http.MethodGet, "/api/sellers/"+visible.ID+"/products", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, env.Pagination)
		assert.Equal(t, int64(1), env.Pagination.Total)
	})
}

func TestPublicProductFilters(t *testing.T) {
	s := newTestServer(t)
	seller, _ := s.seedUser(t, domain.RoleSeller, true, true)
	metals := s.seedCategory(t, "Metals")
	textiles := s.seedCategory(t, "Textiles")

	mk := func(name string, catID string, price float64, featured bool) {
		require.NoError(t, s.db.Create(&domain.Product{
			ID: utils.NewID(), Name: name, Slug: domain.Slugify(name), Description: "d",
			CategoryID: catID, SellerID: seller.ID,
			PriceMin: price, MOQ: 1, IsActive: true, IsApproved: true, IsFeatured: featured,
		}).Error)
	}
	mk("Copper Wire", metals.ID, 50, true)
	mk("Steel Rod", metals.ID, 500, false)
	mk("Cotton Roll", textiles.ID, 30, false)

	get := func(q string) envelope {
		w, env := s.do(t, http.MethodGet, "/api/products"+q, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		return env
	}

	assert.Equal(t, int64(3), get("").Pagination.Total)
	// 分类既可用 ID 也可用 slug
	assert.Equal(t, int64(2), get("?category="+metals.ID).Pagination.Total)
	assert.Equal(t, int64(1), get("?category=textiles").Pagination.Total)
	assert.Equal(t, int64(1), get("?featured=true").Pagination.Total)
	assert.Equal(t, int64(1), get("?minPrice=100&maxPrice=600").Pagination.Total)
	assert.Equal(t, int64(1), get("?search=cotton").Pagination.Total)

	t.Run("pagination clamped server side", func(t *testing.T) {
		env := get("?page=0&limit=999")
		assert.Equal(t, 1, env.Pagination.Page)
		assert.Equal(t, 50, env.Pagination.Limit)
	})
}

func TestSellerMyProducts(t *testing.T) {
	s := newTestServer(t)
	seller, sellerTok := s.seedUser(t, domain.RoleSeller, true, true)
	cat := s.seedCategory(t, "Metals")

	mk := func(name string, active, approved bool) {
		require.NoError(t, s.db.Create(&domain.Product{
			ID: utils.NewID(), Name: name, Slug: domain.Slugify(name), Description: "d",
			CategoryID: cat.ID, SellerID: seller.ID,
			PriceMin: 10, MOQ: 1, IsActive: active, IsApproved: approved,
		}).Error)
	}
	mk("live", true, true)
	mk("waiting", true, false)
	mk("parked", false, true)

	get := func(q string) envelope {
		w, env := s.do(t, http.MethodGet, "/api/products/seller/my-products"+q, sellerTok, nil)
		require.Equal(t, http.StatusOK, w.Code)
		return env
	}

	assert.Equal(t, int64(3), get("").Pagination.Total)
	assert.Equal(t, int64(1), get("?status=active").Pagination.Total)
	assert.Equal(t, int64(1), get("?status=pending").Pagination.Total)
	assert.Equal(t, int64(1), get("?status=inactive").Pagination.Total)
}

func TestProfileWhitelist(t *testing.T) {
	s := newTestServer(t)
	_, buyerTok := s.seedUser(t, domain.RoleBuyer, false, true)
	_, sellerTok := s.seedUser(t, domain.RoleSeller, true, true)

	t.Run("buyer cannot set company fields", func(t *testing.T) {
		w, env := s.do(t, http.MethodPut, "/api/auth/profile", buyerTok, gin.H{
			"name": "New Name", "companyName": "Sneaky Corp", "role": "admin",
		})
		require.Equal(t, http.StatusOK, w.Code)
		var u domain.User
		require.NoError(t, json.Unmarshal(env.Data, &u))
		assert.Equal(t, "New Name", u.Name)
		assert.Empty(t, u.CompanyName)
		assert.Equal(t, domain.RoleBuyer, u.Role)
	})

	t.Run("seller company fields allowed", func(t *testing.T) {
		w, env := s.do(t, http.MethodPut, "/api/auth/profile", sellerTok, gin.H{
			"companyName": "Acme Metals", "website": "https://acme.example",
		})
		require.Equal(t, http.StatusOK, w.Code)
		var u domain.User
		require.NoError(t, json.Unmarshal(env.Data, &u))
		assert.Equal(t, "Acme Metals", u.CompanyName)
		assert.Equal(t, "https://acme.example", u.Website)
	})
}

func TestChangePassword(t *testing.T) {
	s := newTestServer(t)
	u, tok := s.seedUser(t, domain.RoleBuyer, false, true)

	w, _ := s.do(t, http.MethodPut, "/api/auth/change-password", tok, gin.H{
		"currentPassword": "wrong", "newPassword": "newsecret",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPut, "/api/auth/change-password", tok, gin.H{
		"currentPassword": "secret123", "newPassword": "newsecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": u.Email, "password": "newsecret",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"ok":1}`, string(bytes.TrimSpace(w.Body.Bytes())))
}
