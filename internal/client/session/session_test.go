package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestFromAccessToken_ValidToken(t *testing.T) {
	raw := makeToken(t, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	id := FromAccessToken(raw)
	require.NotNil(t, id)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, raw, id.Token)
}

func TestFromAccessToken_NoExpiryIsAccepted(t *testing.T) {
	raw := makeToken(t, jwt.RegisteredClaims{Subject: "u2"})
	id := FromAccessToken(raw)
	require.NotNil(t, id)
	assert.Equal(t, "u2", id.UserID)
}

func TestFromAccessToken_AnonymousCases(t *testing.T) {
	expired := makeToken(t, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	noSubject := makeToken(t, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "garbage", raw: "not-a-jwt"},
		{name: "expired", raw: expired},
		{name: "no subject", raw: noSubject},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Nil(t, FromAccessToken(tc.raw))
		})
	}
}
