// Package clerk verifies Clerk session tokens against the instance JWKS.
package clerk

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/photoproos/platform/config"
)

var (
	// ErrInvalidToken is returned when the token is invalid
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidIssuer is returned when the token issuer is invalid
	ErrInvalidIssuer = errors.New("invalid issuer")

	// ErrUnauthorizedParty is returned when azp is not an allowed origin
	ErrUnauthorizedParty = errors.New("unauthorized party")

	// ErrJWKSFetchFailed is returned when JWKS fetching fails
	ErrJWKSFetchFailed = errors.New("failed to fetch JWKS")
)

// JWKS represents the JSON Web Key Set
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a JSON Web Key
type JWK struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// Metadata is the public metadata Clerk copies into session tokens
type Metadata struct {
	SuperAdmin bool `json:"super_admin"`
}

// Claims are the session token claims
type Claims struct {
	jwt.RegisteredClaims
	SessionID       string   `json:"sid"`
	AuthorizedParty string   `json:"azp"`
	Email           string   `json:"email"`
	OrgID           string   `json:"org_id"`
	OrgRole         string   `json:"org_role"`
	Metadata        Metadata `json:"metadata"`
}

// Session is a verified session token
type Session struct {
	UserID     string
	SessionID  string
	Email      string
	OrgID      string
	OrgRole    string
	SuperAdmin bool
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// Validator validates Clerk session JWTs
type Validator struct {
	issuer            string
	jwksURL           string
	authorizedParties map[string]bool
	client            *resty.Client

	jwksCache    *JWKS
	jwksCacheTTL time.Duration
	jwksCachedAt time.Time
	cacheMu      sync.RWMutex

	// an unknown kid refetches the JWKS at most once per refetchCooldown
	refetchCooldown time.Duration
	lastFetch       time.Time
	fetchMu         sync.Mutex

	keyCache   map[string]*rsa.PublicKey
	keyCacheMu sync.RWMutex

	now func() time.Time
}

// NewValidator creates a Clerk session validator
func NewValidator(cfg config.ClerkConfig) *Validator {
	ttl := cfg.JWKSCacheTTL
	if ttl == 0 {
		ttl = time.Hour
	}
	parties := make(map[string]bool, len(cfg.AuthorizedParties))
	for _, p := range cfg.AuthorizedParties {
		parties[p] = true
	}

	client := resty.New().
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")

	return &Validator{
		issuer:            cfg.Issuer,
		jwksURL:           cfg.JWKSURL,
		authorizedParties: parties,
		client:            client,
		jwksCacheTTL:      ttl,
		refetchCooldown:   time.Minute,
		keyCache:          make(map[string]*rsa.PublicKey),
		now:               time.Now,
	}
}

// ValidateToken verifies signature, expiry, issuer and authorized party
func (v *Validator) ValidateToken(ctx context.Context, tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, errors.New("kid header not found")
		}
		publicKey, err := v.getPublicKey(ctx, kid)
		if err != nil {
			return nil, fmt.Errorf("failed to get public key: %w", err)
		}
		return publicKey, nil
	}, jwt.WithTimeFunc(v.now), jwt.WithLeeway(5*time.Second))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Issuer != v.issuer {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrInvalidIssuer, v.issuer, claims.Issuer)
	}

	if len(v.authorizedParties) > 0 && claims.AuthorizedParty != "" && !v.authorizedParties[claims.AuthorizedParty] {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorizedParty, claims.AuthorizedParty)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	session := &Session{
		UserID:     claims.Subject,
		SessionID:  claims.SessionID,
		Email:      claims.Email,
		OrgID:      claims.OrgID,
		OrgRole:    claims.OrgRole,
		SuperAdmin: claims.Metadata.SuperAdmin,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// FetchJWKS fetches the JWKS, serving it from cache while fresh
func (v *Validator) FetchJWKS(ctx context.Context) (*JWKS, error) {
	if jwks := v.cached(); jwks != nil {
		return jwks, nil
	}

	v.fetchMu.Lock()
	defer v.fetchMu.Unlock()
	if jwks := v.cached(); jwks != nil {
		return jwks, nil
	}
	return v.fetch(ctx)
}

func (v *Validator) cached() *JWKS {
	v.cacheMu.RLock()
	defer v.cacheMu.RUnlock()
	if v.jwksCache != nil && v.now().Before(v.jwksCachedAt.Add(v.jwksCacheTTL)) {
		return v.jwksCache
	}
	return nil
}

// fetch downloads the JWKS and replaces the cached set. Callers hold fetchMu.
func (v *Validator) fetch(ctx context.Context) (*JWKS, error) {
	if v.jwksURL == "" {
		return nil, fmt.Errorf("%w: no JWKS URL configured", ErrJWKSFetchFailed)
	}
	v.lastFetch = v.now()

	var jwks JWKS
	resp, err := v.client.R().SetContext(ctx).SetResult(&jwks).Get(v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrJWKSFetchFailed, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status code %d", ErrJWKSFetchFailed, resp.StatusCode())
	}

	v.cacheMu.Lock()
	v.jwksCache = &jwks
	v.jwksCachedAt = v.now()
	v.cacheMu.Unlock()

	return &jwks, nil
}

// refetch downloads the JWKS again unless a fetch happened within the cooldown.
// It reports whether a fresh set was fetched.
func (v *Validator) refetch(ctx context.Context) (*JWKS, bool, error) {
	v.fetchMu.Lock()
	defer v.fetchMu.Unlock()

	if !v.lastFetch.IsZero() && v.now().Before(v.lastFetch.Add(v.refetchCooldown)) {
		return nil, false, nil
	}
	jwks, err := v.fetch(ctx)
	if err != nil {
		return nil, false, err
	}
	return jwks, true, nil
}

func findKey(jwks *JWKS, kid string) *JWK {
	for i := range jwks.Keys {
		if jwks.Keys[i].Kid == kid {
			return &jwks.Keys[i]
		}
	}
	return nil
}

func (v *Validator) getPublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.keyCacheMu.RLock()
	if key, exists := v.keyCache[kid]; exists {
		v.keyCacheMu.RUnlock()
		return key, nil
	}
	v.keyCacheMu.RUnlock()

	jwks, err := v.FetchJWKS(ctx)
	if err != nil {
		return nil, err
	}

	jwk := findKey(jwks, kid)
	if jwk == nil {
		// a rotated key may be missing from a cached set
		fresh, fetched, err := v.refetch(ctx)
		if err != nil {
			return nil, err
		}
		if fetched {
			jwk = findKey(fresh, kid)
		}
	}
	if jwk == nil {
		return nil, fmt.Errorf("key with kid %s not found in JWKS", kid)
	}

	publicKey, err := jwkToRSAPublicKey(jwk)
	if err != nil {
		return nil, fmt.Errorf("failed to convert JWK to RSA public key: %w", err)
	}

	v.keyCacheMu.Lock()
	v.keyCache[kid] = publicKey
	v.keyCacheMu.Unlock()

	return publicKey, nil
}

func jwkToRSAPublicKey(jwk *JWK) (*rsa.PublicKey, error) {
	if jwk.Kty != "" && jwk.Kty != "RSA" {
		return nil, fmt.Errorf("unsupported key type %s", jwk.Kty)
	}
	nBytes, err := base64.RawURLEncoding.DecodeString(jwk.N)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(jwk.E)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}

	var e int
	for _, b := range eBytes {
		e = e*256 + int(b)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}
