package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cheap parameters, the defaults make the suite slow
func testArgon() *ArgonHash {
	return &ArgonHash{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestArgonRoundTrip(t *testing.T) {
	a := testArgon()

	hash, err := a.GenerateFromPassword("correct horse")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$v=19$m=1024,t=1,p=1$")

	ok, err := a.VerifyPasswd("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.VerifyPasswd("battery staple", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgonSaltsDiffer(t *testing.T) {
	a := testArgon()

	h1, err := a.GenerateFromPassword("password1")
	require.NoError(t, err)
	h2, err := a.GenerateFromPassword("password1")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestArgonVerifyUsesEncodedParams(t *testing.T) {
	hash, err := testArgon().GenerateFromPassword("password1")
	require.NoError(t, err)

	ok, err := New().VerifyPasswd("password1", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgonInvalidHash(t *testing.T) {
	a := testArgon()

	for _, h := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$AAAA$AAAA",
		"$argon2id$v=19$m=x,t=1,p=1$AAAA$AAAA",
		"$argon2id$v=19$m=1,t=1,p=1$!!!$AAAA",
	} {
		_, err := a.VerifyPasswd("password1", h)
		assert.ErrorIs(t, err, ErrInvalidHash, h)
	}
}

func setSecret(t *testing.T) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("jwt.secret", "test-secret")
	viper.Set("jwt.expire_minutes", 60)
}

func TestAuthTokenRoundTrip(t *testing.T) {
	setSecret(t)

	now := time.Now()
	token, exp, err := MakeAuthToken("0b7f6c1e-user", now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), exp, time.Second)

	sub, err := ParseAuthToken(token)
	require.NoError(t, err)
	assert.Equal(t, "0b7f6c1e-user", sub)
}

func TestAuthTokenExpired(t *testing.T) {
	setSecret(t)

	token, _, err := MakeAuthToken("u1", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = ParseAuthToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAuthTokenWrongSecret(t *testing.T) {
	setSecret(t)

	token, _, err := MakeAuthToken("u1", time.Now())
	require.NoError(t, err)

	viper.Set("jwt.secret", "another-secret")

	_, err = ParseAuthToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAuthTokenRejectsOtherAlgorithms(t *testing.T) {
	setSecret(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ParseAuthToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
