package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole 角色白名单校验（入库前）
func ValidRole(r string) bool { return r == RoleUser || r == RoleAdmin }

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	IsVerified   bool      `gorm:"not null;default:false" json:"is_verified"`
	AvatarURL    string    `gorm:"size:512" json:"avatar_url"`
	Role         string    `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Register(username, email, password string) (*User, error)
	Authenticate(username, password string) (*User, error)
	FindByID(id uint) (*User, error)
	FindByEmail(email string) (*User, error)
	VerifyEmail(id uint) (*User, error)
	UpdateAvatar(id uint, url string) (*User, error)
	UpdatePassword(id uint, password string) (*User, error)
	SetRole(id uint, role string) (*User, error)
}
