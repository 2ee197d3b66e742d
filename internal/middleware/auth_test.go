package middleware

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestIssueAndParseToken(t *testing.T) {
	t.Parallel()

	signed, issued, err := IssueToken(testSecret, 42, "alice", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	assert.NotEmpty(t, issued.JTI)

	claims, err := ParseToken(testSecret, signed)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, issued.JTI, claims.JTI)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestIssueToken_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, _, err := IssueToken("", 1, "alice", time.Hour)
	assert.Error(t, err)
}

func TestParseToken_Rejects(t *testing.T) {
	t.Parallel()

	sign := func(claims jwt.MapClaims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"sub": "7",
			"iss": TokenIssuer,
			"aud": TokenAudience,
			"exp": time.Now().Add(time.Hour).Unix(),
		}
	}

	expired := base()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()
	wrongIssuer := base()
	wrongIssuer["iss"] = "someone-else"
	wrongAudience := base()
	wrongAudience["aud"] = "other-client"
	noSubject := base()
	delete(noSubject, "sub")
	numericSubject := base()
	numericSubject["sub"] = 7
	noExpiry := base()
	delete(noExpiry, "exp")

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "wrong secret", token: sign(base(), jwt.SigningMethodHS256, []byte("other-secret"))},
		{name: "expired", token: sign(expired, jwt.SigningMethodHS256, []byte(testSecret))},
		{name: "wrong issuer", token: sign(wrongIssuer, jwt.SigningMethodHS256, []byte(testSecret))},
		{name: "wrong audience", token: sign(wrongAudience, jwt.SigningMethodHS256, []byte(testSecret))},
		{name: "missing subject", token: sign(noSubject, jwt.SigningMethodHS256, []byte(testSecret))},
		{name: "numeric subject", token: sign(numericSubject, jwt.SigningMethodHS256, []byte(testSecret))},
		{name: "missing expiry", token: sign(noExpiry, jwt.SigningMethodHS256, []byte(testSecret))},
		{name: "none algorithm", token: sign(base(), jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			claims, err := ParseToken(testSecret, tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer abc"))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken("Bearer"))
	assert.Empty(t, BearerToken(""))
}
