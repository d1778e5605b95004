package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"b2b-market-api/internal/domain"
	httpez "b2b-market-api/internal/transport/http/ez"
	mdw "b2b-market-api/internal/transport/http/middleware"
	"b2b-market-api/pkg/utils"
)

func init() { Register(authModule{}) }

type authModule struct{}

func (authModule) Priority() int { return 10 }

type authOut struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (authModule) MountAPI(api *gin.RouterGroup, d *Deps) {
	pub := httpez.New(api)

	// POST /api/auth/register：买家直接可用，卖家注册后待审批
	type registerIn struct {
		Name        string `json:"name" binding:"required,max=64"`
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required,min=6"`
		Role        string `json:"role" binding:"omitempty,oneof=buyer seller"`
		Phone       string `json:"phone" binding:"omitempty,max=32"`
		CompanyName string `json:"companyName" binding:"omitempty,max=200"`
	}
	httpez.RegisterAction[registerIn, authOut](pub, d.DB, httpez.Action[registerIn, authOut]{
		Method:  http.MethodPost,
		Path:    "/auth/register",
		Binder:  httpez.BindJSON,
		Created: true,
		Handler: func(c *gin.Context, tx *gorm.DB, in *registerIn) (authOut, error) {
			email := strings.ToLower(strings.TrimSpace(in.Email))

			var exists domain.User
			err := tx.First(&exists, "email = ?", email).Error
			if err == nil {
				return authOut{}, httpez.BadRequest("an account with this email already exists")
			}
			if err != gorm.ErrRecordNotFound {
				return authOut{}, httpez.Internal("register failed", err)
			}

			u := domain.User{
				ID:           utils.NewID(),
				Name:         strings.TrimSpace(in.Name),
				Email:        email,
				PasswordHash: utils.HashPassword(in.Password),
				Role:         domain.RoleBuyer,
				Phone:        in.Phone,
				IsActive:     true,
			}
			if in.Role == domain.RoleSeller {
				// 卖家需管理员审批后才能发品
				u.Role = domain.RoleSeller
				u.CompanyName = in.CompanyName
				u.IsApproved = false
			}
			if e := tx.Create(&u).Error; e != nil {
				return authOut{}, httpez.Internal("register failed", e)
			}
			tok, e := d.JWT.Issue(u.ID, u.Role)
			if e != nil {
				return authOut{}, httpez.Internal("issue token failed", e)
			}
			return authOut{User: &u, Token: tok}, nil
		},
	})

	// POST /api/auth/login
	type loginIn struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	httpez.RegisterAction[loginIn, authOut](pub, d.DB, httpez.Action[loginIn, authOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *loginIn) (authOut, error) {
			email := strings.ToLower(strings.TrimSpace(in.Email))

			var u domain.User
			if err := tx.First(&u, "email = ?", email).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return authOut{}, httpez.Unauthorized("invalid email or password")
				}
				return authOut{}, httpez.Internal("login failed", err)
			}
			if !u.IsActive {
				return authOut{}, httpez.Unauthorized("your account has been deactivated")
			}
			if !utils.CheckPassword(in.Password, u.PasswordHash) {
				return authOut{}, httpez.Unauthorized("invalid email or password")
			}
			tok, e := d.JWT.Issue(u.ID, u.Role)
			if e != nil {
				return authOut{}, httpez.Internal("issue token failed", e)
			}
			return authOut{User: &u, Token: tok}, nil
		},
	})

	// 需登录分组
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.JWT, d.DB))
	ezAuth := httpez.New(authed)

	// GET /api/auth/me
	httpez.RegisterAction[struct{}, *domain.User](ezAuth, d.DB, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (*domain.User, error) {
			return httpez.Actor(c), nil
		},
	})

	// PUT /api/auth/profile：按角色白名单更新
	httpez.RegisterAction[map[string]any, *domain.User](ezAuth, d.DB, httpez.Action[map[string]any, *domain.User]{
		Method: http.MethodPut,
		Path:   "/auth/profile",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *map[string]any) (*domain.User, error) {
			actor := httpez.Actor(c)

			// JSON 字段名 → 列名
			colOf := map[string]string{
				"name": "name", "phone": "phone", "avatar": "avatar",
				"companyName": "company_name", "companyDescription": "company_description",
				"companyAddress": "company_address", "gstNumber": "gst_number",
				"website": "website", "establishedYear": "established_year",
				"employeeCount": "employee_count", "annualTurnover": "annual_turnover",
			}
			allowed := map[string]struct{}{}
			for _, col := range domain.ProfileFields(actor.Role) {
				allowed[col] = struct{}{}
			}

			updates := map[string]any{}
			for k, v := range *in {
				col, known := colOf[k]
				if !known {
					continue
				}
				if _, ok := allowed[col]; ok {
					updates[col] = v
				}
			}
			if len(updates) == 0 {
				return actor, nil
			}
			if err := tx.Model(&domain.User{}).Where("id = ?", actor.ID).Updates(updates).Error; err != nil {
				return nil, httpez.Internal("update profile failed", err)
			}
			var u domain.User
			if err := tx.First(&u, "id = ?", actor.ID).Error; err != nil {
				return nil, httpez.Internal("reload profile failed", err)
			}
			return &u, nil
		},
	})

	// PUT /api/auth/change-password
	type pwIn struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required,min=6"`
	}
	type pwOut struct {
		Token string `json:"token"`
	}
	httpez.RegisterAction[pwIn, pwOut](ezAuth, d.DB, httpez.Action[pwIn, pwOut]{
		Method: http.MethodPut,
		Path:   "/auth/change-password",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *pwIn) (pwOut, error) {
			actor := httpez.Actor(c)
			if !utils.CheckPassword(in.CurrentPassword, actor.PasswordHash) {
				return pwOut{}, httpez.Unauthorized("current password is incorrect")
			}
			hash := utils.HashPassword(in.NewPassword)
			if err := tx.Model(&domain.User{}).Where("id = ?", actor.ID).
				Update("password_hash", hash).Error; err != nil {
				return pwOut{}, httpez.Internal("change password failed", err)
			}
			tok, e := d.JWT.Issue(actor.ID, actor.Role)
			if e != nil {
				return pwOut{}, httpez.Internal("issue token failed", e)
			}
			return pwOut{Token: tok}, nil
		},
	})

	// GET /api/users/:id 公开用户摘要
	type publicUser struct {
		ID                 string `json:"id"`
		Name               string `json:"name"`
		Role               string `json:"role"`
		CompanyName        string `json:"companyName"`
		CompanyDescription string `json:"companyDescription"`
		CompanyAddress     string `json:"companyAddress"`
		Avatar             string `json:"avatar"`
		EstablishedYear    int    `json:"establishedYear"`
	}
	httpez.RegisterAction[struct{}, publicUser](pub, d.DB, httpez.Action[struct{}, publicUser]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (publicUser, error) {
			var u domain.User
			if err := tx.First(&u, "id = ?", c.Param("id")).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					return publicUser{}, httpez.NotFound("user not found")
				}
				return publicUser{}, httpez.Internal("load user failed", err)
			}
			return publicUser{
				ID: u.ID, Name: u.Name, Role: u.Role,
				CompanyName: u.CompanyName, CompanyDescription: u.CompanyDescription,
				CompanyAddress: u.CompanyAddress, Avatar: u.Avatar,
				EstablishedYear: u.EstablishedYear,
			}, nil
		},
	})
}
