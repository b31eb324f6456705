package auth

import (
	"encoding/base64"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sciclub/clubsite/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

func TestHashPassword(t *testing.T) {
	hp := HashPassword("correct horse battery staple")
	assert.Equal(t, Argon2id, hp.Algorithm)
	assert.False(t, hp.IsOutdated())

	t.Run("round trip through the stored string", func(t *testing.T) {
		parsed, err := ParsePasswordString(hp.String())
		require.Nil(t, err)
		assert.Equal(t, hp, parsed)
	})
	t.Run("correct password", func(t *testing.T) {
		ok, err := CheckPassword("correct horse battery staple", hp)
		require.Nil(t, err)
		assert.True(t, ok)
	})
	t.Run("wrong password", func(t *testing.T) {
		ok, err := CheckPassword("Tr0ub4dor&3", hp)
		require.Nil(t, err)
		assert.False(t, ok)
	})
	t.Run("salted", func(t *testing.T) {
		other := HashPassword("correct horse battery staple")
		assert.NotEqual(t, hp.Salt, other.Salt)
		assert.NotEqual(t, hp.Hash, other.Hash)
	})
}

func TestParsePasswordString(t *testing.T) {
	_, err := ParsePasswordString("argon2id$nope")
	assert.NotNil(t, err)

	hp, err := ParsePasswordString("md5$$salt$hash")
	require.Nil(t, err)
	assert.True(t, hp.IsOutdated())
	_, err = CheckPassword("anything", hp)
	assert.NotNil(t, err)
}

func TestOutdatedArgon2idParameters(t *testing.T) {
	current := HashPassword("hunter2")
	require.False(t, current.IsOutdated())

	weaker := current
	weaker.AlgoConfig = Argon2idConfig{Time: 1, Memory: 16 * 1024, Threads: 1, KeyLength: keyLength}.String()
	assert.True(t, weaker.IsOutdated())

	// The old parameters still verify, so the login can go ahead and rehash.
	salt := "c29tZXNhbHRzb21lc2FsdA=="
	old := HashedPassword{Algorithm: Argon2id, AlgoConfig: "t=1,m=1024,p=1,l=32", Salt: salt}
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	require.Nil(t, err)
	old.Hash = base64.StdEncoding.EncodeToString(argon2.IDKey([]byte("hunter2"), rawSalt, 1, 1024, 1, 32))
	assert.True(t, old.IsOutdated())
	ok, err := CheckPassword("hunter2", old)
	require.Nil(t, err)
	assert.True(t, ok)
}

func TestParseArgon2idConfig(t *testing.T) {
	cfg, err := ParseArgon2idConfig("t=1,m=40960,p=1,l=64")
	require.Nil(t, err)
	assert.Equal(t, Argon2idConfig{Time: 1, Memory: 40960, Threads: 1, KeyLength: 64}, cfg)
	assert.Equal(t, "t=1,m=40960,p=1,l=64", cfg.String())

	for _, bad := range []string{"", "t=1", "t=1,m=2,p=3", "t=x,m=2,p=3,l=4", "t,m,p,l"} {
		_, err := ParseArgon2idConfig(bad)
		assert.NotNil(t, err, "config %q", bad)
	}
}

func TestCSRF(t *testing.T) {
	session := &models.Session{CSRFToken: makeRandomToken()}
	assert.True(t, CheckCSRFToken(session, session.CSRFToken))
	assert.False(t, CheckCSRFToken(session, "forged"))
	assert.False(t, CheckCSRFToken(session, ""))
	assert.False(t, CheckCSRFToken(nil, session.CSRFToken))
	assert.False(t, CheckCSRFToken(&models.Session{}, ""))
}

func TestTokens(t *testing.T) {
	a, b := makeRandomToken(), makeRandomToken()
	assert.Len(t, a, 40)
	assert.NotEqual(t, a, b)
	assert.False(t, strings.ContainsAny(a, "+/"), "tokens go in cookies and form fields")
}

func TestSessionCookie(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	cookie := NewSessionCookie(&models.Session{ID: "abc", ExpiresAt: expires})
	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Equal(t, "abc", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, expires, cookie.Expires)
}
