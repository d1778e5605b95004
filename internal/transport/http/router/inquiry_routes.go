package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"b2b-market-api/internal/core/events"
	"b2b-market-api/internal/domain"
	"b2b-market-api/internal/repo"
	httpez "b2b-market-api/internal/transport/http/ez"
	mdw "b2b-market-api/internal/transport/http/middleware"
	resp "b2b-market-api/internal/transport/http/response"
	"b2b-market-api/pkg/utils"
)

func init() { Register(inquiryModule{}) }

type inquiryModule struct{}

func (inquiryModule) Priority() int { return 40 }

func (inquiryModule) MountAPI(api *gin.RouterGroup, d *Deps) {
	inquiries := repo.NewInquiryRepo(d.DB)
	products := repo.NewProductRepo(d.DB)

	buyer := api.Group("")
	buyer.Use(mdw.AuthJWT(d.JWT, d.DB, domain.RoleBuyer))
	ezBuyer := httpez.New(buyer)

	seller := api.Group("")
	seller.Use(mdw.AuthJWT(d.JWT, d.DB, domain.RoleSeller))
	ezSeller := httpez.New(seller)

	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.JWT, d.DB))
	ezAuthed := httpez.New(authed)

	// POST /api/inquiries：买家发起。seller 取商品当时属主快照，
	// 商品询盘计数原子 +1（与插入非同事务，计数仅为近似遥测）。
	type createIn struct {
		ProductID        string `json:"productId" binding:"required"`
		Subject          string `json:"subject" binding:"required,max=200"`
		Message          string `json:"message" binding:"required,max=2000"`
		Quantity         int    `json:"quantity" binding:"omitempty,gte=1"`
		QuantityUnit     string `json:"quantityUnit" binding:"omitempty,max=32"`
		BuyerPhone       string `json:"buyerPhone" binding:"omitempty,max=32"`
		BuyerCompany     string `json:"buyerCompany" binding:"omitempty,max=200"`
		DeliveryLocation string `json:"deliveryLocation" binding:"omitempty,max=255"`
	}
	httpez.RegisterAction[createIn, *domain.Inquiry](ezBuyer, d.DB, httpez.Action[createIn, *domain.Inquiry]{
		Method:  http.MethodPost,
		Path:    "/inquiries",
		Binder:  httpez.BindJSON,
		Created: true,
		Handler: func(c *gin.Context, tx *gorm.DB, in *createIn) (*domain.Inquiry, error) {
			actor := httpez.Actor(c)

			p, err := products.FindByID(in.ProductID)
			if err != nil {
				return nil, httpez.Internal("load product failed", err)
			}
			if p == nil {
				return nil, httpez.NotFound("product not found")
			}
			// 不允许自询
			if p.SellerID == actor.ID {
				return nil, httpez.BadRequest("you cannot send an inquiry for your own product")
			}

			i := domain.NewInquiry(utils.NewID(), actor, p, in.Subject, in.Message)
			i.Quantity = in.Quantity
			i.QuantityUnit = in.QuantityUnit
			i.BuyerPhone = in.BuyerPhone
			i.BuyerCompany = in.BuyerCompany
			i.DeliveryLocation = in.DeliveryLocation

			if err := inquiries.Create(i); err != nil {
				return nil, httpez.Internal("create inquiry failed", err)
			}
			if err := products.IncrementInquiries(p.ID); err != nil {
				d.Log.Warn("inquiry count increment failed", zap.Error(err))
			}

			d.Events.Publish(events.InquiryCreated, gin.H{
				"inquiryId": i.ID, "buyer": i.BuyerID, "seller": i.SellerID, "product": i.ProductID,
			})

			out, err := inquiries.FindByIDPopulated(i.ID)
			if err != nil || out == nil {
				return i, nil
			}
			return out, nil
		},
	})

	// GET /api/inquiries/my-inquiries 买家收件箱
	type boxQ struct {
		Status string `form:"status"`
		Page   int    `form:"page,default=1"`
		Limit  int    `form:"limit,default=20"`
	}
	httpez.RegisterAction[boxQ, httpez.Paged](ezBuyer, d.DB, httpez.Action[boxQ, httpez.Paged]{
		Method: http.MethodGet,
		Path:   "/inquiries/my-inquiries",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, tx *gorm.DB, in *boxQ) (httpez.Paged, error) {
			actor := httpez.Actor(c)
			page := resp.NewPage(in.Page, in.Limit)
			items, total, err := inquiries.List(domain.InquiryFilter{
				BuyerID: actor.ID, Status: in.Status,
			}, page.Page, page.Limit)
			if err != nil {
				return httpez.Paged{}, httpez.Internal("list inquiries failed", err)
			}
			return httpez.Paged{Items: items, Page: page.WithTotal(total)}, nil
		},
	})

	// GET /api/inquiries/seller-inquiries 卖家收件箱
	httpez.RegisterAction[boxQ, httpez.Paged](ezSeller, d.DB, httpez.Action[boxQ, httpez.Paged]{
		Method: http.MethodGet,
		Path:   "/inquiries/seller-inquiries",
		Binder: httpez.BindQuery,
		Handler: func(c *gin.Context, tx *gorm.DB, in *boxQ) (httpez.Paged, error) {
			actor := httpez.Actor(c)
			page := resp.NewPage(in.Page, in.Limit)
			items, total, err := inquiries.List(domain.InquiryFilter{
				SellerID: actor.ID, Status: in.Status,
			}, page.Page, page.Limit)
			if err != nil {
				return httpez.Paged{}, httpez.Internal("list inquiries failed", err)
			}
			return httpez.Paged{Items: items, Page: page.WithTotal(total)}, nil
		},
	})

	// PUT /api/inquiries/:id/respond：仅被询问的卖家。
	// 二次回复覆盖前一次回复与时间戳（沿用既有行为）。
	type respondIn struct {
		Response string `json:"response" binding:"required"`
	}
	httpez.RegisterAction[respondIn, *domain.Inquiry](ezSeller, d.DB, httpez.Action[respondIn, *domain.Inquiry]{
		Method: http.MethodPut,
		Path:   "/inquiries/:id/respond",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *respondIn) (*domain.Inquiry, error) {
			actor := httpez.Actor(c)
			if strings.TrimSpace(in.Response) == "" {
				return nil, httpez.BadRequest("response message is required")
			}
			i, err := inquiries.FindByID(c.Param("id"))
			if err != nil {
				return nil, httpez.Internal("load inquiry failed", err)
			}
			if i == nil {
				return nil, httpez.NotFound("inquiry not found")
			}
			if !i.IsAddressedSeller(actor) {
				return nil, httpez.Forbidden("not authorized to respond to this inquiry")
			}
			i.Respond(in.Response, time.Now())
			if err := inquiries.Update(i); err != nil {
				return nil, httpez.Internal("save response failed", err)
			}

			d.Events.Publish(events.InquiryResponded, gin.H{
				"inquiryId": i.ID, "seller": i.SellerID, "buyer": i.BuyerID,
			})

			out, err := inquiries.FindByIDPopulated(i.ID)
			if err != nil || out == nil {
				return i, nil
			}
			return out, nil
		},
	})

	// PUT /api/inquiries/:id/read：pending → read，其余状态静默返回原记录
	httpez.RegisterAction[struct{}, *domain.Inquiry](ezSeller, d.DB, httpez.Action[struct{}, *domain.Inquiry]{
		Method: http.MethodPut,
		Path:   "/inquiries/:id/read",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (*domain.Inquiry, error) {
			actor := httpez.Actor(c)
			i, err := inquiries.FindByID(c.Param("id"))
			if err != nil {
				return nil, httpez.Internal("load inquiry failed", err)
			}
			if i == nil {
				return nil, httpez.NotFound("inquiry not found")
			}
			if !i.IsAddressedSeller(actor) {
				return nil, httpez.Forbidden("not authorized")
			}
			if i.MarkRead() {
				if err := inquiries.Update(i); err != nil {
					return nil, httpez.Internal("save inquiry failed", err)
				}
			}
			return i, nil
		},
	})

	// GET /api/inquiries/:id：买方、卖方或管理员
	httpez.RegisterAction[struct{}, *domain.Inquiry](ezAuthed, d.DB, httpez.Action[struct{}, *domain.Inquiry]{
		Method: http.MethodGet,
		Path:   "/inquiries/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (*domain.Inquiry, error) {
			actor := httpez.Actor(c)
			i, err := inquiries.FindByIDPopulated(c.Param("id"))
			if err != nil {
				return nil, httpez.Internal("load inquiry failed", err)
			}
			if i == nil {
				return nil, httpez.NotFound("inquiry not found")
			}
			if !i.CanView(actor) {
				return nil, httpez.Forbidden("not authorized")
			}
			return i, nil
		},
	})
}
