// Package authtoken issues and caches the bearer tokens the transport
// client (C3) attaches to outbound requests. Token acquisition from an
// external identity provider is out of scope; this package self-issues
// HS256 JWTs the server side validates with the same shared secret,
// grounded on the corpus's security.JWTService (lestrrat-go/jwx/v2).
package authtoken

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Provider is a transportclient.TokenProvider that signs and caches a
// JWT for subject, reissuing it once it is within refreshBefore of
// expiring rather than on every call.
type Provider struct {
	secret        []byte
	subject       string
	issuer        string
	ttl           time.Duration
	refreshBefore time.Duration

	mu        sync.Mutex
	cached    string
	expiresAt time.Time
}

// NewProvider constructs a Provider. ttl is the lifetime of each minted
// token; refreshBefore controls how early a new one is minted ahead of
// expiry (it should be well under ttl).
func NewProvider(secret, subject, issuer string, ttl, refreshBefore time.Duration) *Provider {
	return &Provider{
		secret:        []byte(secret),
		subject:       subject,
		issuer:        issuer,
		ttl:           ttl,
		refreshBefore: refreshBefore,
	}
}

// Token returns a cached, still-valid JWT, minting a new one when the
// cache is empty or nearing expiry.
func (p *Provider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != "" && time.Now().Before(p.expiresAt.Add(-p.refreshBefore)) {
		return p.cached, nil
	}

	now := time.Now()
	expiresAt := now.Add(p.ttl)

	builder := jwt.NewBuilder().
		Subject(p.subject).
		IssuedAt(now).
		Expiration(expiresAt)
	if p.issuer != "" {
		builder = builder.Issuer(p.issuer)
	}

	token, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("building token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, p.secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	p.cached = string(signed)
	p.expiresAt = expiresAt
	return p.cached, nil
}

// Validator verifies inbound bearer tokens against the shared secret,
// used by the server's auth middleware.
type Validator struct {
	secret []byte
	issuer string
}

// NewValidator constructs a Validator for the given shared secret.
func NewValidator(secret, issuer string) *Validator {
	return &Validator{secret: []byte(secret), issuer: issuer}
}

// Parse validates tokenString's signature, expiry, and (if configured)
// issuer, returning the parsed claims.
func (v *Validator) Parse(tokenString string) (jwt.Token, error) {
	opts := []jwt.ParseOption{jwt.WithKey(jwa.HS256, v.secret)}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	return token, nil
}
