package router

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-contacts-api/internal/core/cache"
	"go-contacts-api/internal/domain"
	"go-contacts-api/internal/repo"
	httpez "go-contacts-api/internal/transport/http/ez"
)

// profileProj 缓存和 /me 用的公开投影（不含哈希等敏感列）
type profileProj struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func projOf(u *domain.User) profileProj {
	return profileProj{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

func mountUserActions(public, authed *gin.RouterGroup, db *gorm.DB, d Deps) {
	ezPublic := httpez.New(public)
	ezAuth := httpez.New(authed)

	// --- POST /users/register ---
	type registerIn struct {
		Username string `json:"username" binding:"required,min=3,max=64"`
		Email    string `json:"email"    binding:"required,email"`
		Password string `json:"password" binding:"required,min=6,max=72"` // bcrypt 上限 72 字节
	}
	httpez.RegisterAction[registerIn, *domain.User](ezPublic, db, httpez.Action[registerIn, *domain.User]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, tx *gorm.DB, in *registerIn) (*domain.User, error) {
			u, err := repo.NewUserRepo(tx).Register(in.Username, in.Email, in.Password)
			if err != nil {
				return nil, err
			}
			// 验证邮件 best-effort，失败不影响注册
			if d.Mailer != nil {
				if err := d.Mailer.SendVerification(u.Email, u.ID); err != nil {
					d.Log.Warn("send verification mail", zap.Uint("user_id", u.ID), zap.Error(err))
				}
			}
			return u, nil
		},
	})

	// --- POST /users/login（form-encoded）---
	type loginIn struct {
		Username string `form:"username" binding:"required"`
		Password string `form:"password" binding:"required"`
	}
	type tokenOut struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
	}
	httpez.RegisterAction[loginIn, tokenOut](ezPublic, db, httpez.Action[loginIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: httpez.BindForm,
		Handler: func(c *gin.Context, tx *gorm.DB, in *loginIn) (tokenOut, error) {
			u, err := repo.NewUserRepo(tx).Authenticate(in.Username, in.Password)
			if errors.Is(err, domain.ErrUnauthorized) {
				// 用户名不存在和密码错误同一个响应
				return tokenOut{}, httpez.Unauthorized("invalid credentials")
			}
			if err != nil {
				return tokenOut{}, httpez.Internal("login failed", err)
			}
			access, err := d.JWT.IssueAccess(u.ID, u.Email)
			if err != nil {
				return tokenOut{}, httpez.Internal("issue token failed", err)
			}
			refresh, err := d.JWT.IssueRefresh(u.ID, u.Email)
			if err != nil {
				return tokenOut{}, httpez.Internal("issue token failed", err)
			}
			// 登录顺手写缓存
			d.Profiles.Write(c, u.ID, projOf(u))
			return tokenOut{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
		},
	})

	// --- POST /users/refresh ---
	type refreshIn struct {
		Token string `json:"token" binding:"required"`
	}
	httpez.RegisterAction[refreshIn, tokenOut](ezPublic, db, httpez.Action[refreshIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/refresh",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *refreshIn) (tokenOut, error) {
			claims, err := d.JWT.ParseRefresh(in.Token)
			if err != nil {
				return tokenOut{}, httpez.Unauthorized("invalid refresh token")
			}
			access, err := d.JWT.IssueAccess(claims.UserID, claims.Email)
			if err != nil {
				return tokenOut{}, httpez.Internal("issue token failed", err)
			}
			// 刷新令牌原样带回
			return tokenOut{AccessToken: access, RefreshToken: in.Token, TokenType: "bearer"}, nil
		},
	})

	// --- GET /users/verify/:id ---
	httpez.RegisterAction[struct{}, *domain.User](ezPublic, db, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/verify/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (*domain.User, error) {
			id, err := paramID(c)
			if err != nil {
				return nil, httpez.BadRequest("invalid id")
			}
			u, err := repo.NewUserRepo(tx).VerifyEmail(id)
			if err != nil {
				return nil, err
			}
			// 底层变更：先删再写，避免读到旧值
			d.Profiles.Invalidate(c, u.ID)
			d.Profiles.Write(c, u.ID, projOf(u))
			return u, nil
		},
	})

	// --- GET /users/me（cache-aside 读加速）---
	httpez.RegisterAction[struct{}, *profileProj](ezAuth, db, httpez.Action[struct{}, *profileProj]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (*profileProj, error) {
			uid := c.GetUint("userId")
			// singleflight 回源：缓存命中直接返回，miss 查库并回填
			out, err := cache.GetOrLoadJSON[profileProj](
				d.Profiles.C, c, d.Profiles.Key(uid), d.Profiles.TTL,
				func(ctx context.Context) (*profileProj, error) {
					u, err := repo.NewUserRepo(tx).FindByID(uid)
					if err != nil {
						return nil, err
					}
					p := projOf(u)
					return &p, nil
				},
			)
			if err != nil {
				return nil, err
			}
			if out == nil {
				return nil, httpez.NotFound("user not found")
			}
			return out, nil
		},
	})

	// --- POST /users/avatar（仅 admin）---
	httpez.RegisterAction[struct{}, *domain.User](ezAuth, db, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodPost,
		Path:   "/avatar",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (*domain.User, error) {
			fh, err := c.FormFile("file")
			if err != nil {
				return nil, httpez.Unprocessable("file required")
			}
			users := repo.NewUserRepo(tx)
			me, err := users.FindByID(c.GetUint("userId"))
			if err != nil || me.Role != domain.RoleAdmin {
				// 用户不存在和非 admin 同一响应
				return nil, httpez.Forbidden("only admin can change avatar")
			}
			if d.Avatars == nil {
				return nil, httpez.Internal("avatar storage not configured", nil)
			}
			f, err := fh.Open()
			if err != nil {
				return nil, httpez.BadRequest("invalid file")
			}
			defer f.Close()
			url, err := d.Avatars.Upload(c, f, fh.Size, fh.Filename, fh.Header.Get("Content-Type"))
			if err != nil {
				return nil, httpez.Internal("upload failed", err)
			}
			u, err := users.UpdateAvatar(me.ID, url)
			if err != nil {
				return nil, err
			}
			d.Profiles.Invalidate(c, u.ID)
			d.Profiles.Write(c, u.ID, projOf(u))
			return u, nil
		},
	})

	// --- POST /users/request-reset ---
	type resetReqIn struct {
		Email string `json:"email" binding:"required,email"`
	}
	httpez.RegisterAction[resetReqIn, gin.H](ezPublic, db, httpez.Action[resetReqIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/request-reset",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *resetReqIn) (gin.H, error) {
			u, err := repo.NewUserRepo(tx).FindByEmail(in.Email)
			if err != nil {
				// 不暴露邮箱是否注册过
				return gin.H{"msg": "If the account exists, reset instructions have been sent."}, nil
			}
			token, err := d.JWT.IssueReset(u.ID)
			if err != nil {
				return nil, httpez.Internal("issue token failed", err)
			}
			if d.Mailer != nil {
				if err := d.Mailer.SendReset(u.Email, token); err != nil {
					d.Log.Warn("send reset mail", zap.Uint("user_id", u.ID), zap.Error(err))
				}
			}
			if d.TestMode {
				return gin.H{"msg": "Reset token generated", "reset_token": token}, nil
			}
			return gin.H{"msg": "If the account exists, reset instructions have been sent."}, nil
		},
	})

	// --- POST /users/reset-password ---
	type resetIn struct {
		ResetToken  string `json:"reset_token"  binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
	}
	httpez.RegisterAction[resetIn, gin.H](ezPublic, db, httpez.Action[resetIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/reset-password",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *resetIn) (gin.H, error) {
			uid, err := d.JWT.ParseReset(in.ResetToken)
			if err != nil {
				return nil, httpez.BadRequest("invalid or expired token")
			}
			if _, err := repo.NewUserRepo(tx).UpdatePassword(uid, in.NewPassword); err != nil {
				return nil, err
			}
			return gin.H{"msg": "Password updated"}, nil
		},
	})

	// --- POST /users/set-role（仅 admin）---
	type setRoleIn struct {
		UserID uint   `json:"user_id" binding:"required"`
		Role   string `json:"role"    binding:"required"`
	}
	httpez.RegisterAction[setRoleIn, *domain.User](ezAuth, db, httpez.Action[setRoleIn, *domain.User]{
		Method: http.MethodPost,
		Path:   "/set-role",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, tx *gorm.DB, in *setRoleIn) (*domain.User, error) {
			users := repo.NewUserRepo(tx)
			me, err := users.FindByID(c.GetUint("userId"))
			if err != nil {
				return nil, httpez.NotFound("requester not found")
			}
			if me.Role != domain.RoleAdmin {
				return nil, httpez.Forbidden("only admin can change user roles")
			}
			u, err := users.SetRole(in.UserID, in.Role)
			if err != nil {
				return nil, err
			}
			d.Profiles.Invalidate(c, u.ID)
			d.Profiles.Write(c, u.ID, projOf(u))
			return u, nil
		},
	})
}

func paramID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
