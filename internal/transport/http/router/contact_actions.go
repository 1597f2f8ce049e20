package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-contacts-api/internal/domain"
	"go-contacts-api/internal/repo"
	httpez "go-contacts-api/internal/transport/http/ez"
)

// contactIn 创建/更新共用；birthday 只收 YYYY-MM-DD
type contactIn struct {
	FirstName string `json:"first_name" binding:"required,max=64"`
	LastName  string `json:"last_name"  binding:"required,max=64"`
	Email     string `json:"email"      binding:"required,email"`
	Phone     string `json:"phone"      binding:"required,max=32"`
	Birthday  string `json:"birthday"   binding:"required,datetime=2006-01-02"`
	Extra     string `json:"extra"      binding:"omitempty,max=500"`
}

func (in *contactIn) toContact() *domain.Contact {
	// binding 已校验格式，这里不会失败
	bday, _ := time.Parse("2006-01-02", in.Birthday)
	return &domain.Contact{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Birthday:  bday,
		Extra:     in.Extra,
	}
}

func mountContactActions(authed *gin.RouterGroup, db *gorm.DB, d Deps) {
	e := httpez.New(authed)

	// --- POST /contacts ---
	httpez.RegisterAction[contactIn, *domain.Contact](e, db, httpez.Action[contactIn, *domain.Contact]{
		Method: http.MethodPost,
		Path:   "",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, tx *gorm.DB, in *contactIn) (*domain.Contact, error) {
			return repo.NewContactRepo(tx).Create(c.GetUint("userId"), in.toContact())
		},
	})

	// --- GET /contacts ---
	type listQ struct {
		Skip  int `form:"skip,default=0"`
		Limit int `form:"limit,default=100"`
	}
	httpez.RegisterAction[listQ, []domain.Contact](e, db, httpez.Action[listQ, []domain.Contact]{
		Method: http.MethodGet,
		Path:   "",
		Binder: httpez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, tx *gorm.DB, in *listQ) ([]domain.Contact, error) {
			if in.Skip < 0 {
				in.Skip = 0
			}
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 100
			}
			return repo.NewContactRepo(tx).List(c.GetUint("userId"), in.Skip, in.Limit)
		},
	})

	// --- GET /contacts/search?q= ---
	type searchQ struct {
		Q string `form:"q" binding:"required,min=1"`
	}
	httpez.RegisterAction[searchQ, []domain.Contact](e, db, httpez.Action[searchQ, []domain.Contact]{
		Method: http.MethodGet,
		Path:   "/search",
		Binder: httpez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, tx *gorm.DB, in *searchQ) ([]domain.Contact, error) {
			return repo.NewContactRepo(tx).Search(c.GetUint("userId"), in.Q)
		},
	})

	// --- GET /contacts/birthdays/upcoming ---
	httpez.RegisterAction[struct{}, []domain.Contact](e, db, httpez.Action[struct{}, []domain.Contact]{
		Method: http.MethodGet,
		Path:   "/birthdays/upcoming",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) ([]domain.Contact, error) {
			return repo.NewContactRepo(tx).UpcomingBirthdays(c.GetUint("userId"), time.Now())
		},
	})

	// --- GET /contacts/:id ---
	httpez.RegisterAction[struct{}, *domain.Contact](e, db, httpez.Action[struct{}, *domain.Contact]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (*domain.Contact, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, httpez.BadRequest("invalid id")
			}
			return repo.NewContactRepo(tx).Get(c.GetUint("userId"), id)
		},
	})

	// --- PUT /contacts/:id ---
	httpez.RegisterAction[contactIn, *domain.Contact](e, db, httpez.Action[contactIn, *domain.Contact]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, tx *gorm.DB, in *contactIn) (*domain.Contact, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, httpez.BadRequest("invalid id")
			}
			return repo.NewContactRepo(tx).Update(c.GetUint("userId"), id, in.toContact())
		},
	})

	// --- DELETE /contacts/:id ---
	httpez.RegisterAction[struct{}, bool](e, db, httpez.Action[struct{}, bool]{
		Method: http.MethodDelete,
		Path:   "/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (bool, error) {
			id, err := paramID(c)
			if err != nil {
				return false, httpez.BadRequest("invalid id")
			}
			if err := repo.NewContactRepo(tx).Delete(c.GetUint("userId"), id); err != nil {
				return false, err
			}
			// 成功只会是 true；删不到走 NotFound
			return true, nil
		},
	})
}
