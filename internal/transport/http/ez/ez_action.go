package ez

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"b2b-market-api/internal/domain"
	resp "b2b-market-api/internal/transport/http/response"
)

/* ================== 轻封装 ================== */

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// Actor 鉴权中间件放进上下文的当前请求用户
func Actor(c *gin.Context) *domain.User {
	if v, ok := c.Get("actor"); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// 处理 multipart/form-data 多文件上传
func POSTFILES(e EZ, path string, fieldName string, maxFiles int, h func(c *gin.Context, files []*multipart.FileHeader) (any, error)) {
	e.g.POST(path, func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			writeErr(c, BadRequest("invalid multipart form: "+err.Error()))
			return
		}
		files := form.File[fieldName]
		if len(files) == 0 {
			writeErr(c, BadRequest("no files uploaded"))
			return
		}
		if maxFiles > 0 && len(files) > maxFiles {
			writeErr(c, BadRequest("too many files"))
			return
		}

		data, err := h(c, files)
		if err != nil {
			writeErr(c, err)
			return
		}
		c.JSON(http.StatusOK, resp.OK(data))
	})
}

/* ================== Action（非 CRUD 一行注册） ================== */

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.PostForm 取
)

// 统一错误对象（code 即 HTTP 状态码）
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }

// Internal 不向调用方泄露内部细节，原因只进日志（挂在 gin.Context.Errors）
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Paged 让 Handler 返回带分页块的列表
type Paged struct {
	Items any
	Page  *resp.Page
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "DELETE"
	Path    string // 例："/inquiries/:id/respond"
	Binder  Binder
	Created bool // 成功时回 201
	UseTx   bool // 是否包事务（gorm.Transaction）
	Handler func(c *gin.Context, db *gorm.DB, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, db *gorm.DB, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone
		}
		if bindErr != nil {
			writeErr(c, BadRequest(bindErr.Error()))
			return
		}

		run := func(tx *gorm.DB) (O, error) { return a.Handler(c, tx, &in) }
		var out O
		var err error
		if a.UseTx {
			err = db.WithContext(c).Transaction(func(tx *gorm.DB) error {
				o, e := run(tx)
				out = o
				return e
			})
		} else {
			out, err = run(db.WithContext(c))
		}

		if err != nil {
			writeErr(c, err)
			return
		}

		status := http.StatusOK
		if a.Created {
			status = http.StatusCreated
		}
		if p, ok := any(out).(Paged); ok {
			c.JSON(status, resp.OKPaged(p.Items, p.Page))
			return
		}
		c.JSON(status, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

// writeErr 统一错误映射：AErr 按自带状态码，其余一律 500 且不外泄细节
func writeErr(c *gin.Context, err error) {
	var ae *AErr
	if errors.As(err, &ae) {
		if ae.Err != nil {
			_ = c.Error(ae.Err)
		}
		c.JSON(resp.HTTPStatus(ae.Code), resp.Error(ae.Code, ae.Msg))
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, resp.Error(resp.CodeServerError, "server error"))
}
