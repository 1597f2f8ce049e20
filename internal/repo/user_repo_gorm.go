package repo

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"go-contacts-api/internal/domain"
	"go-contacts-api/pkg/utils"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// Register 先查 email 再查 username（顺序固定），都冲突按先查到的报。
// 并发窗口由唯一索引兜底，撞上也归一成 Conflict。
func (r *UserRepo) Register(username, email, password string) (*domain.User, error) {
	var count int64
	if err := r.db.Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	}
	if err := r.db.Model(&domain.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: username already taken", domain.ErrConflict)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		Role:         domain.RoleUser,
	}
	if err := r.db.Create(u).Error; err != nil {
		if isDupKey(err) {
			return nil, fmt.Errorf("%w: email or username already taken", domain.ErrConflict)
		}
		return nil, err
	}
	return u, nil
}

// Authenticate 用户名不存在和密码不对返回同一个错误，不给枚举信号
func (r *UserRepo) Authenticate(username, password string) (*domain.User, error) {
	var u domain.User
	err := r.db.Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.ErrUnauthorized
	}
	return &u, nil
}

func (r *UserRepo) FindByID(id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.db.First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// VerifyEmail 幂等：已验证再验证不报错
func (r *UserRepo) VerifyEmail(id uint) (*domain.User, error) {
	u, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	u.IsVerified = true
	if err := r.db.Save(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateAvatar 无条件覆盖；鉴权和缓存失效都是调用方的事
func (r *UserRepo) UpdateAvatar(id uint, url string) (*domain.User, error) {
	u, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	u.AvatarURL = url
	if err := r.db.Save(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) UpdatePassword(id uint, password string) (*domain.User, error) {
	u, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	if err := r.db.Save(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// SetRole 角色先过白名单再落库
func (r *UserRepo) SetRole(id uint, role string) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	u, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	u.Role = role
	if err := r.db.Save(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// isDupKey 不依赖 gorm.ErrDuplicatedKey，避免驱动/版本差异
func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
