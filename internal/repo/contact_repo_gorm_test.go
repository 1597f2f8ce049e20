package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-contacts-api/internal/domain"
)

func bday(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newContact(first, last, email string, b time.Time) *domain.Contact {
	return &domain.Contact{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Phone:     "+1-555-0100",
		Birthday:  b,
	}
}

func TestContactCreateAndGet(t *testing.T) {
	t.Parallel()
	r := NewContactRepo(openTestDB(t))

	c, err := r.Create(1, newContact("John", "Doe", "john@example.com", bday(1990, time.June, 12)))
	require.NoError(t, err)
	require.NotZero(t, c.ID)
	require.Equal(t, uint(1), c.UserID)

	got, err := r.Get(1, c.ID)
	require.NoError(t, err)
	require.Equal(t, "john@example.com", got.Email)
}

func TestContactOwnershipMergedNotFound(t *testing.T) {
	t.Parallel()
	r := NewContactRepo(openTestDB(t))

	c, err := r.Create(1, newContact("John", "Doe", "john@example.com", bday(1990, time.June, 12)))
	require.NoError(t, err)

	// 别人的和不存在的不可区分
	_, errOther := r.Get(2, c.ID)
	_, errMissing := r.Get(1, c.ID+100)
	require.ErrorIs(t, errOther, domain.ErrNotFound)
	require.ErrorIs(t, errMissing, domain.ErrNotFound)
	require.Equal(t, errOther, errMissing)

	_, err = r.Update(2, c.ID, newContact("X", "Y", "x@example.com", bday(1990, time.June, 12)))
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.ErrorIs(t, r.Delete(2, c.ID), domain.ErrNotFound)

	// 原记录没被动过
	got, err := r.Get(1, c.ID)
	require.NoError(t, err)
	require.Equal(t, "John", got.FirstName)
}

func TestContactEmailGloballyUnique(t *testing.T) {
	t.Parallel()
	r := NewContactRepo(openTestDB(t))

	_, err := r.Create(1, newContact("John", "Doe", "dup@example.com", bday(1990, time.June, 12)))
	require.NoError(t, err)

	// 跨 owner 也冲突
	_, err = r.Create(2, newContact("Jane", "Roe", "dup@example.com", bday(1991, time.July, 1)))
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestContactUpdate(t *testing.T) {
	t.Parallel()
	r := NewContactRepo(openTestDB(t))

	c, err := r.Create(1, newContact("John", "Doe", "john@example.com", bday(1990, time.June, 12)))
	require.NoError(t, err)

	got, err := r.Update(1, c.ID, newContact("Johnny", "Doe", "johnny@example.com", bday(1990, time.June, 13)))
	require.NoError(t, err)
	require.Equal(t, "Johnny", got.FirstName)
	require.Equal(t, "johnny@example.com", got.Email)
	require.Equal(t, c.ID, got.ID)

	// 改成别人占用的 email → 冲突
	other, err := r.Create(1, newContact("Jane", "Roe", "jane@example.com", bday(1991, time.July, 1)))
	require.NoError(t, err)
	_, err = r.Update(1, other.ID, newContact("Jane", "Roe", "johnny@example.com", bday(1991, time.July, 1)))
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestContactDelete(t *testing.T) {
	t.Parallel()
	r := NewContactRepo(openTestDB(t))

	c, err := r.Create(1, newContact("John", "Doe", "john@example.com", bday(1990, time.June, 12)))
	require.NoError(t, err)

	require.NoError(t, r.Delete(1, c.ID))
	require.ErrorIs(t, r.Delete(1, c.ID), domain.ErrNotFound)
	_, err = r.Get(1, c.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContactListPagination(t *testing.T) {
	t.Parallel()
	r := NewContactRepo(openTestDB(t))

	emails := []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"}
	for i, e := range emails {
		_, err := r.Create(1, newContact("N", "N", e, bday(1990, time.January, i+1)))
		require.NoError(t, err)
	}
	// 另一个 owner 的不混进来
	_, err := r.Create(2, newContact("N", "N", "other@x.com", bday(1990, time.January, 1)))
	require.NoError(t, err)

	all, err := r.List(1, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 4)

	page, err := r.List(1, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "b@x.com", page[0].Email)
	require.Equal(t, "c@x.com", page[1].Email)
}

func TestContactSearch(t *testing.T) {
	t.Parallel()
	r := NewContactRepo(openTestDB(t))

	_, err := r.Create(1, newContact("John", "Smith", "john.smith@example.com", bday(1990, time.June, 12)))
	require.NoError(t, err)
	_, err = r.Create(1, newContact("Jane", "Doe", "jane@example.com", bday(1991, time.July, 1)))
	require.NoError(t, err)
	_, err = r.Create(2, newContact("Johnny", "Other", "johnny@other.com", bday(1992, time.August, 2)))
	require.NoError(t, err)

	// 大小写不敏感，姓名/邮箱都能命中
	got, err := r.Search(1, "JOHN")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Smith", got[0].LastName)

	got, err = r.Search(1, "example.com")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// 空结果不是错误
	got, err = r.Search(1, "zzz-no-match")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestUpcomingBirthdaysWindow(t *testing.T) {
	t.Parallel()
	r := NewContactRepo(openTestDB(t))

	today := bday(2024, time.June, 10)
	cases := []struct {
		email string
		b     time.Time
		want  bool
	}{
		{"today@x.com", bday(1990, time.June, 10), true},     // 当天含
		{"in2@x.com", bday(1985, time.June, 12), true},       // 窗口内
		{"edge7@x.com", bday(2000, time.June, 17), true},     // +7 边界含
		{"out8@x.com", bday(2000, time.June, 18), false},     // 过界
		{"yesterday@x.com", bday(1999, time.June, 9), false}, // 已过
		{"faraway@x.com", bday(1970, time.December, 25), false},
	}
	for _, c := range cases {
		_, err := r.Create(1, newContact("N", "N", c.email, c.b))
		require.NoError(t, err)
	}
	// 别人的哪怕在窗口内也不算
	_, err := r.Create(2, newContact("N", "N", "other@x.com", bday(1990, time.June, 11)))
	require.NoError(t, err)

	got, err := r.UpcomingBirthdays(1, today)
	require.NoError(t, err)

	found := map[string]bool{}
	for _, c := range got {
		found[c.Email] = true
	}
	for _, c := range cases {
		require.Equal(t, c.want, found[c.email], c.email)
	}
	require.False(t, found["other@x.com"])
}

func TestUpcomingBirthdaysLeapDay(t *testing.T) {
	t.Parallel()
	r := NewContactRepo(openTestDB(t))

	_, err := r.Create(1, newContact("Leap", "Kid", "leap@x.com", bday(1996, time.February, 29)))
	require.NoError(t, err)

	// 非闰年 2/29 归一成 3/1，窗口覆盖 3/1 时应命中
	got, err := r.UpcomingBirthdays(1, bday(2023, time.February, 26))
	require.NoError(t, err)
	require.Len(t, got, 1)

	// 窗口只到 2/28 时不命中
	got, err = r.UpcomingBirthdays(1, bday(2023, time.February, 19))
	require.NoError(t, err)
	require.Empty(t, got)

	// 闰年按真实的 2/29 算
	got, err = r.UpcomingBirthdays(1, bday(2024, time.February, 26))
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestUpcomingBirthdaysYearIgnored(t *testing.T) {
	t.Parallel()
	r := NewContactRepo(openTestDB(t))

	// 出生年份不影响窗口判断
	_, err := r.Create(1, newContact("Old", "Timer", "old@x.com", bday(1950, time.June, 12)))
	require.NoError(t, err)
	_, err = r.Create(1, newContact("Young", "One", "young@x.com", bday(2020, time.June, 12)))
	require.NoError(t, err)

	got, err := r.UpcomingBirthdays(1, bday(2024, time.June, 10))
	require.NoError(t, err)
	require.Len(t, got, 2)
}
