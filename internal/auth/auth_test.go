package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	t.Run("round trip", func(t *testing.T) {
		token, err := m.Generate("u-1", "jane@example.com", "user")
		require.NoError(t, err)

		claims, err := m.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "u-1", claims.ID)
		assert.Equal(t, "jane@example.com", claims.Email)
		assert.Equal(t, "user", claims.Role)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewTokenManager("other", time.Hour).Generate("u-1", "a@b.c", "user")
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewTokenManager("secret", time.Hour)
		expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := expired.Generate("u-1", "a@b.c", "user")
		require.NoError(t, err)

		_, err = m.Verify(token)
		assert.Error(t, err)
	})

	t.Run("expiry follows the manager clock", func(t *testing.T) {
		issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		clock := issued
		fake := NewTokenManager("secret", time.Hour)
		fake.now = func() time.Time { return clock }

		token, err := fake.Generate("u-1", "a@b.c", "user")
		require.NoError(t, err)

		clock = issued.Add(59 * time.Minute)
		_, err = fake.Verify(token)
		assert.NoError(t, err)

		clock = issued.Add(61 * time.Minute)
		_, err = fake.Verify(token)
		assert.ErrorIs(t, err, ErrTokenExpired)

		clock = issued.Add(-time.Minute)
		_, err = fake.Verify(token)
		assert.ErrorIs(t, err, ErrTokenExpired, "issued in the future")
	})

	t.Run("missing expiry", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{ID: "u-1"})
		signed, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = m.Verify(signed)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify("not-a-token")
		assert.Error(t, err)
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ID: "u-1"})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.Verify(signed)
		assert.Error(t, err)
	})

	t.Run("missing id", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
		})
		signed, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = m.Verify(signed)
		assert.True(t, errors.Is(err, ErrInvalidToken))
	})
}

func TestPassword(t *testing.T) {
	hashed, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hashed)

	ok, err := ComparePassword(hashed, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ComparePassword(hashed, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ComparePassword("not-a-hash", "secret1")
	assert.Error(t, err)
}
