package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestJWTer() *JWTer {
	return &JWTer{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		ResetSecret:   []byte("reset-secret"),
		Issuer:        "contacts-api-test",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		ResetTTL:      time.Minute,
	}
}

func TestAccessRoundTrip(t *testing.T) {
	t.Parallel()
	j := newTestJWTer()

	tok, err := j.IssueAccess(42, "alice@example.com")
	require.NoError(t, err)

	c, err := j.ParseAccess(tok)
	require.NoError(t, err)
	require.Equal(t, uint(42), c.UserID)
	require.Equal(t, "alice@example.com", c.Email)
}

func TestRefreshRoundTrip(t *testing.T) {
	t.Parallel()
	j := newTestJWTer()

	tok, err := j.IssueRefresh(7, "bob@example.com")
	require.NoError(t, err)

	c, err := j.ParseRefresh(tok)
	require.NoError(t, err)
	require.Equal(t, uint(7), c.UserID)
}

func TestTokensNotInterchangeable(t *testing.T) {
	t.Parallel()
	j := newTestJWTer()

	// 刷新令牌不能当访问令牌用（密钥独立）
	refresh, err := j.IssueRefresh(1, "a@b.c")
	require.NoError(t, err)
	_, err = j.ParseAccess(refresh)
	require.Error(t, err)

	// 重置令牌同理
	reset, err := j.IssueReset(1)
	require.NoError(t, err)
	_, err = j.ParseAccess(reset)
	require.Error(t, err)

	// 访问令牌也进不了重置通道
	access, err := j.IssueAccess(1, "a@b.c")
	require.NoError(t, err)
	_, err = j.ParseReset(access)
	require.Error(t, err)
}

func TestTokensNotInterchangeableWithSharedKeys(t *testing.T) {
	t.Parallel()
	j := newTestJWTer()
	shared := []byte("one-key-for-all")
	j.AccessSecret, j.RefreshSecret, j.ResetSecret = shared, shared, shared

	// 三套密钥配成同一个值，令牌种类照样不可互换
	reset, err := j.IssueReset(1)
	require.NoError(t, err)
	_, err = j.ParseAccess(reset)
	require.Error(t, err)
	_, err = j.ParseRefresh(reset)
	require.Error(t, err)

	access, err := j.IssueAccess(1, "a@b.c")
	require.NoError(t, err)
	_, err = j.ParseReset(access)
	require.Error(t, err)

	// 各自的正常通道不受影响
	uid, err := j.ParseReset(reset)
	require.NoError(t, err)
	require.Equal(t, uint(1), uid)
	c, err := j.ParseAccess(access)
	require.NoError(t, err)
	require.Equal(t, uint(1), c.UserID)
}

func TestExpiredAccessRejected(t *testing.T) {
	t.Parallel()
	j := newTestJWTer()
	j.AccessTTL = -time.Second

	tok, err := j.IssueAccess(5, "x@y.z")
	require.NoError(t, err)

	_, err = j.ParseAccess(tok)
	require.Error(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	t.Parallel()
	j := newTestJWTer()

	tok, err := j.IssueAccess(5, "x@y.z")
	require.NoError(t, err)

	other := newTestJWTer()
	other.AccessSecret = []byte("different")
	_, err = other.ParseAccess(tok)
	require.Error(t, err)
}

func TestWrongIssuerRejected(t *testing.T) {
	t.Parallel()
	j := newTestJWTer()

	tok, err := j.IssueAccess(5, "x@y.z")
	require.NoError(t, err)

	other := newTestJWTer()
	other.Issuer = "someone-else"
	_, err = other.ParseAccess(tok)
	require.Error(t, err)
}

func TestResetRoundTrip(t *testing.T) {
	t.Parallel()
	j := newTestJWTer()

	tok, err := j.IssueReset(99)
	require.NoError(t, err)

	uid, err := j.ParseReset(tok)
	require.NoError(t, err)
	require.Equal(t, uint(99), uid)
}

func TestMalformedTokenRejected(t *testing.T) {
	t.Parallel()
	j := newTestJWTer()

	_, err := j.ParseAccess("not.a.jwt")
	require.Error(t, err)
	_, err = j.ParseReset("")
	require.Error(t, err)
}
