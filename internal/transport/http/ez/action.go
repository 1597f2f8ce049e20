package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-contacts-api/internal/domain"
	resp "go-contacts-api/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindForm  Binder = "form"  // 从 form-encoded 绑定（login 用）
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.PostForm 取
)

// 统一错误对象（配合 resp.Error(int, msg)）
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

func BadRequest(msg string) error    { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error  { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error     { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error      { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Conflict(msg string) error      { return &AErr{Code: resp.CodeConflict, Msg: msg} }
func Unprocessable(msg string) error { return &AErr{Code: resp.CodeUnprocessable, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// mapErr 仓储层哨兵错误 → 业务码；透传已是 *AErr 的，兜底 500
func mapErr(err error) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return &AErr{Code: resp.CodeNotFound, Msg: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return &AErr{Code: resp.CodeConflict, Msg: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return &AErr{Code: resp.CodeUnauthorized, Msg: err.Error()}
	case errors.Is(err, domain.ErrInvalidRole):
		return &AErr{Code: resp.CodeBadRequest, Msg: err.Error()}
	}
	return &AErr{Code: resp.CodeServerError, Msg: "", Err: err}
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "DELETE"
	Path    string // 例："/register"、"/verify/:id"
	Binder  Binder // 绑定方式
	Auth    bool   // 是否要求登录（检查 userId）
	UseTx   bool   // 是否包事务（gorm.Transaction）
	Status  int    // 成功状态码，0 按 200
	Handler func(c *gin.Context, db *gorm.DB, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口（传入 *gorm.DB）
func RegisterAction[I any, O any](e EZ, db *gorm.DB, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权（中间件解析成功才会有 userId）
		if a.Auth {
			if c.GetUint("userId") == 0 {
				c.JSON(http.StatusUnauthorized, resp.Error(resp.CodeUnauthorized, "unauthorized"))
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindForm:
			bindErr = c.ShouldBind(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			c.JSON(http.StatusUnprocessableEntity, resp.Error(resp.CodeUnprocessable, bindErr.Error()))
			return
		}

		// 3) 执行（可选事务）
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

		// 4) 统一错误映射（真实 HTTP 状态码）
		if err != nil {
			ae := mapErr(err)
			c.JSON(resp.HTTPStatus(ae.Code), resp.Error(ae.Code, ae.Error()))
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
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
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}
