package clerk

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/photoproos/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer = "https://clerk.photoproos.test"
	testKid    = "ins_test_kid"
)

func generateTestKeyPair(t *testing.T) *rsa.PrivateKey {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return privateKey
}

// createMockJWKSServer serves the public key and counts fetches
func createMockJWKSServer(t *testing.T, publicKey *rsa.PublicKey, kid string, hits *int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		jwks := JWKS{Keys: []JWK{{
			Kid: kid,
			Kty: "RSA",
			Alg: "RS256",
			Use: "sig",
			N:   base64.RawURLEncoding.EncodeToString(publicKey.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(publicKey.E)).Bytes()),
		}}}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
}

func newTestValidator(jwksURL string, parties ...string) *Validator {
	return NewValidator(config.ClerkConfig{
		Issuer:            testIssuer,
		JWKSURL:           jwksURL,
		AuthorizedParties: parties,
		JWKSCacheTTL:      time.Hour,
	})
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, mutate func(*Claims)) string {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   "user_2NNEqL2nrIRdJ194ndJqAHwEfxC",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Second)),
		},
		SessionID:       "sess_123",
		AuthorizedParty: "https://app.photoproos.test",
		Email:           "ana@goldenhour.test",
		OrgID:           "org_abc",
		OrgRole:         "org:admin",
	}
	if mutate != nil {
		mutate(claims)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestFetchJWKS_Caches(t *testing.T) {
	key := generateTestKeyPair(t)
	var hits int32
	server := createMockJWKSServer(t, &key.PublicKey, testKid, &hits)
	defer server.Close()

	validator := newTestValidator(server.URL)

	first, err := validator.FetchJWKS(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Keys, 1)
	assert.Equal(t, testKid, first.Keys[0].Kid)

	second, err := validator.FetchJWKS(context.Background())
	require.NoError(t, err)
	assert.True(t, first == second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetchJWKS_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestValidator(server.URL).FetchJWKS(context.Background())
	assert.ErrorIs(t, err, ErrJWKSFetchFailed)

	_, err = newTestValidator("").FetchJWKS(context.Background())
	assert.ErrorIs(t, err, ErrJWKSFetchFailed)
}

func TestValidateToken_Success(t *testing.T) {
	key := generateTestKeyPair(t)
	server := createMockJWKSServer(t, &key.PublicKey, testKid, nil)
	defer server.Close()

	validator := newTestValidator(server.URL, "https://app.photoproos.test")
	token := signToken(t, key, testKid, func(c *Claims) { c.Metadata.SuperAdmin = true })

	session, err := validator.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user_2NNEqL2nrIRdJ194ndJqAHwEfxC", session.UserID)
	assert.Equal(t, "sess_123", session.SessionID)
	assert.Equal(t, "ana@goldenhour.test", session.Email)
	assert.Equal(t, "org_abc", session.OrgID)
	assert.Equal(t, "org:admin", session.OrgRole)
	assert.True(t, session.SuperAdmin)
	assert.False(t, session.ExpiresAt.IsZero())
}

func TestValidateToken_Failures(t *testing.T) {
	key := generateTestKeyPair(t)
	otherKey := generateTestKeyPair(t)
	server := createMockJWKSServer(t, &key.PublicKey, testKid, nil)
	defer server.Close()

	tests := []struct {
		name    string
		token   func() string
		wantErr error
	}{
		{
			name:    "wrong signing key",
			token:   func() string { return signToken(t, otherKey, testKid, nil) },
			wantErr: ErrInvalidToken,
		},
		{
			name: "expired",
			token: func() string {
				return signToken(t, key, testKid, func(c *Claims) {
					c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
				})
			},
			wantErr: ErrTokenExpired,
		},
		{
			name: "wrong issuer",
			token: func() string {
				return signToken(t, key, testKid, func(c *Claims) { c.Issuer = "https://evil.test" })
			},
			wantErr: ErrInvalidIssuer,
		},
		{
			name: "foreign authorized party",
			token: func() string {
				return signToken(t, key, testKid, func(c *Claims) { c.AuthorizedParty = "https://evil.test" })
			},
			wantErr: ErrUnauthorizedParty,
		},
		{
			name: "missing subject",
			token: func() string {
				return signToken(t, key, testKid, func(c *Claims) { c.Subject = "" })
			},
			wantErr: ErrInvalidToken,
		},
		{
			name:    "unknown kid",
			token:   func() string { return signToken(t, key, "rotated", nil) },
			wantErr: ErrInvalidToken,
		},
		{
			name:    "garbage",
			token:   func() string { return "not.a.jwt" },
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := newTestValidator(server.URL, "https://app.photoproos.test")
			_, err := validator.ValidateToken(context.Background(), tt.token())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateToken_HS256Rejected(t *testing.T) {
	key := generateTestKeyPair(t)
	server := createMockJWKSServer(t, &key.PublicKey, testKid, nil)
	defer server.Close()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   "user_1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	token.Header["kid"] = testKid
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = newTestValidator(server.URL).ValidateToken(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// rotatingJWKSServer serves whichever key set is current and counts fetches
type rotatingJWKSServer struct {
	*httptest.Server
	hits int32
	keys atomic.Value
}

func newRotatingJWKSServer(t *testing.T, publicKey *rsa.PublicKey, kid string) *rotatingJWKSServer {
	s := &rotatingJWKSServer{}
	s.rotate(publicKey, kid)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&s.hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.keys.Load().(JWKS))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *rotatingJWKSServer) rotate(publicKey *rsa.PublicKey, kid string) {
	s.keys.Store(JWKS{Keys: []JWK{{
		Kid: kid,
		Kty: "RSA",
		Alg: "RS256",
		Use: "sig",
		N:   base64.RawURLEncoding.EncodeToString(publicKey.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(publicKey.E)).Bytes()),
	}}})
}

func TestValidateToken_UnknownKidRefetchCooldown(t *testing.T) {
	key := generateTestKeyPair(t)
	server := newRotatingJWKSServer(t, &key.PublicKey, testKid)

	validator := newTestValidator(server.URL)
	now := time.Now()
	validator.now = func() time.Time { return now }

	_, err := validator.ValidateToken(context.Background(), signToken(t, key, testKid, nil))
	require.NoError(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&server.hits))

	for i := 0; i < 50; i++ {
		_, err := validator.ValidateToken(context.Background(), signToken(t, key, fmt.Sprintf("forged_%d", i), nil))
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&server.hits))

	// parsed keys survive unknown kids
	_, err = validator.ValidateToken(context.Background(), signToken(t, key, testKid, nil))
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = validator.ValidateToken(context.Background(), signToken(t, key, "forged_late", nil))
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, int32(2), atomic.LoadInt32(&server.hits))
}

func TestValidateToken_RotatedKey(t *testing.T) {
	oldKey, newKey := generateTestKeyPair(t), generateTestKeyPair(t)
	server := newRotatingJWKSServer(t, &oldKey.PublicKey, testKid)

	validator := newTestValidator(server.URL)
	now := time.Now()
	validator.now = func() time.Time { return now }

	_, err := validator.ValidateToken(context.Background(), signToken(t, oldKey, testKid, nil))
	require.NoError(t, err)

	server.rotate(&newKey.PublicKey, "ins_rotated_kid")
	now = now.Add(2 * time.Minute)

	longLived := func(c *Claims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour)) }
	_, err = validator.ValidateToken(context.Background(), signToken(t, newKey, "ins_rotated_kid", longLived))
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&server.hits))

	// the retired key stays usable for tokens issued before the rotation
	_, err = validator.ValidateToken(context.Background(), signToken(t, oldKey, testKid, longLived))
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&server.hits))
}
