package response

type Resp struct {
	Code       int         `json:"code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
	Pagination *Page       `json:"pagination,omitempty"`
}

// Page 列表响应统一分页块
type Page struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// NewPage 服务端钳制：page >= 1，1 <= limit <= 50
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) WithTotal(total int64) *Page {
	p.Total = total
	p.Pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return &p
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

// OK 成功响应
func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// OKPaged 成功 + 分页
func OKPaged(data interface{}, page *Page) Resp {
	r := OK(data)
	r.Pagination = page
	return r
}

// Error 失败响应（可传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}
