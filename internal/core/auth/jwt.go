package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 访问/刷新令牌载荷（不含角色，角色每次查库）
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// ResetClaims 重置令牌只携带 user_id，和访问令牌不可互换。
// Email 只在解析侧使用：访问令牌带 email，塞进重置通道会被拒，
// 即使三套密钥配置成同一个值
type ResetClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTer 三套独立的 (key, ttl)：access / refresh / reset
type JWTer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	ResetSecret   []byte
	Issuer        string
	AccessTTL     time.Duration // 默认 30min
	RefreshTTL    time.Duration // 默认 7d
	ResetTTL      time.Duration // 默认 15min
}

func (j *JWTer) IssueAccess(uid uint, email string) (string, error) {
	return j.issue(uid, email, j.AccessSecret, j.AccessTTL)
}

func (j *JWTer) IssueRefresh(uid uint, email string) (string, error) {
	return j.issue(uid, email, j.RefreshSecret, j.RefreshTTL)
}

func (j *JWTer) issue(uid uint, email string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: uid,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTer) IssueReset(uid uint) (string, error) {
	now := time.Now()
	claims := ResetClaims{
		UserID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ResetTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.ResetSecret)
}

// ParseAccess 任何失败（签名/结构/过期）统一返回 error，
// 调用方一律当未认证处理，不区分原因
func (j *JWTer) ParseAccess(tokenStr string) (*Claims, error) {
	return j.parse(tokenStr, j.AccessSecret)
}

func (j *JWTer) ParseRefresh(tokenStr string) (*Claims, error) {
	return j.parse(tokenStr, j.RefreshSecret)
}

func (j *JWTer) parse(tokenStr string, secret []byte) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return secret, nil
	}, jwt.WithIssuer(j.Issuer))

	if err != nil {
		return nil, err
	}
	// 访问/刷新令牌必须带 email；重置令牌没有，密钥撞车也换不进来
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.UserID == 0 || c.Email == "" {
		return nil, errors.New("invalid token")
	}
	return c, nil
}

// ParseReset 校验重置令牌并返回 user_id
func (j *JWTer) ParseReset(tokenStr string) (uint, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &ResetClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.ResetSecret, nil
	}, jwt.WithIssuer(j.Issuer))

	if err != nil {
		return 0, err
	}
	// 带 email 的是访问/刷新令牌，不是重置令牌
	c, ok := t.Claims.(*ResetClaims)
	if !ok || !t.Valid || c.UserID == 0 || c.Email != "" {
		return 0, errors.New("invalid token")
	}
	return c.UserID, nil
}
