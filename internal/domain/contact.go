package domain

import "time"

type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"size:64;not null" json:"first_name"`
	LastName  string    `gorm:"size:64;not null" json:"last_name"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"` // 全表唯一（不是按 owner 唯一）
	Phone     string    `gorm:"size:32;not null" json:"phone"`
	Birthday  time.Time `gorm:"type:date;not null" json:"birthday"`
	Extra     string    `gorm:"size:500" json:"extra"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Contact) TableName() string { return "contacts" }

// ContactRepository 所有操作都以 ownerID 为边界；
// 查不到和不属于自己统一返回 ErrNotFound
type ContactRepository interface {
	Create(ownerID uint, in *Contact) (*Contact, error)
	List(ownerID uint, offset, limit int) ([]Contact, error)
	Get(ownerID, id uint) (*Contact, error)
	Update(ownerID, id uint, in *Contact) (*Contact, error)
	Delete(ownerID, id uint) error
	Search(ownerID uint, q string) ([]Contact, error)
	UpcomingBirthdays(ownerID uint, today time.Time) ([]Contact, error)
}
