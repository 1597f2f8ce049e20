package repo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"go-contacts-api/internal/domain"
)

type ContactRepo struct{ db *gorm.DB }

func NewContactRepo(db *gorm.DB) *ContactRepo { return &ContactRepo{db: db} }

// Create 联系人 email 全表唯一（刻意不按 owner 划分）
func (r *ContactRepo) Create(ownerID uint, in *domain.Contact) (*domain.Contact, error) {
	var count int64
	if err := r.db.Model(&domain.Contact{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: contact with this email already exists", domain.ErrConflict)
	}

	in.ID = 0
	in.UserID = ownerID
	if err := r.db.Create(in).Error; err != nil {
		if isDupKey(err) {
			return nil, fmt.Errorf("%w: contact with this email already exists", domain.ErrConflict)
		}
		return nil, err
	}
	return in, nil
}

func (r *ContactRepo) List(ownerID uint, offset, limit int) ([]domain.Contact, error) {
	var cs []domain.Contact
	err := r.db.Where("user_id = ?", ownerID).
		Order("id").
		Offset(offset).Limit(limit).
		Find(&cs).Error
	if err != nil {
		return nil, err
	}
	return cs, nil
}

// Get 不存在和不属于自己统一 NotFound
func (r *ContactRepo) Get(ownerID, id uint) (*domain.Contact, error) {
	var c domain.Contact
	err := r.db.Where("id = ? AND user_id = ?", id, ownerID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update 可变字段整体替换；email 撞唯一索引归一成 Conflict
func (r *ContactRepo) Update(ownerID, id uint, in *domain.Contact) (*domain.Contact, error) {
	c, err := r.Get(ownerID, id)
	if err != nil {
		return nil, err
	}
	c.FirstName = in.FirstName
	c.LastName = in.LastName
	c.Email = in.Email
	c.Phone = in.Phone
	c.Birthday = in.Birthday
	c.Extra = in.Extra
	if err := r.db.Save(c).Error; err != nil {
		if isDupKey(err) {
			return nil, fmt.Errorf("%w: contact with this email already exists", domain.ErrConflict)
		}
		return nil, err
	}
	return c, nil
}

func (r *ContactRepo) Delete(ownerID, id uint) error {
	res := r.db.Where("id = ? AND user_id = ?", id, ownerID).Delete(&domain.Contact{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Search 大小写不敏感子串匹配，四个字段 OR；空结果不是错误
func (r *ContactRepo) Search(ownerID uint, q string) ([]domain.Contact, error) {
	like := "%" + strings.ToLower(q) + "%"
	var cs []domain.Contact
	err := r.db.Where("user_id = ?", ownerID).
		Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?",
			like, like, like, like).
		Order("id").
		Find(&cs).Error
	if err != nil {
		return nil, err
	}
	return cs, nil
}

// UpcomingBirthdays 生日归一到今年后落在 [today, today+7d]（含端点）的联系人。
// 月日比较在 Go 里做，不依赖各数据库的日期函数。
func (r *ContactRepo) UpcomingBirthdays(ownerID uint, today time.Time) ([]domain.Contact, error) {
	var cs []domain.Contact
	if err := r.db.Where("user_id = ?", ownerID).Order("id").Find(&cs).Error; err != nil {
		return nil, err
	}

	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	out := make([]domain.Contact, 0, len(cs))
	for _, c := range cs {
		// time.Date 会把非闰年的 2/29 归一成 3/1，正好是既定策略
		n := time.Date(from.Year(), c.Birthday.Month(), c.Birthday.Day(), 0, 0, 0, 0, time.UTC)
		if !n.Before(from) && !n.After(to) {
			out = append(out, c)
		}
	}
	return out, nil
}
