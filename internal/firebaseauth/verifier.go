// Package firebaseauth verifies Firebase ID tokens. Tokens are minted by the
// Firebase client SDK in the browser; the server only checks the RS256
// signature against Google's published certificates and the project claims.
package firebaseauth

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const certsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

// Identity is the user identity carried by a verified ID token.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// Verifier validates a Firebase ID token and returns the identity it carries.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// CertSource returns the current token-signing certificates keyed by key ID.
type CertSource interface {
	Certs(ctx context.Context) (map[string]*rsa.PublicKey, error)
}

// TokenVerifier verifies ID tokens for a single Firebase project.
type TokenVerifier struct {
	projectID string
	certs     CertSource
}

// Option configures a TokenVerifier.
type Option func(*TokenVerifier)

// WithCertSource overrides the certificate source. Used by tests.
func WithCertSource(src CertSource) Option {
	return func(v *TokenVerifier) { v.certs = src }
}

// NewTokenVerifier creates a TokenVerifier for the given Firebase project.
func NewTokenVerifier(projectID string, opts ...Option) *TokenVerifier {
	v := &TokenVerifier{
		projectID: projectID,
		certs: &googleCertSource{
			httpClient: &http.Client{Timeout: 10 * time.Second},
			url:        certsURL,
		},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks the token signature, issuer, audience and expiry, and
// returns the identity claims.
func (v *TokenVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token has no kid header")
		}
		certs, err := v.certs.Certs(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch signing certs: %w", err)
		}
		key, ok := certs[kid]
		if !ok {
			return nil, fmt.Errorf("no signing cert for kid %q", kid)
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer("https://securetoken.google.com/"+v.projectID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parse id token: %w", err)
	}

	uid, _ := claims["sub"].(string)
	if uid == "" {
		return nil, fmt.Errorf("id token has no subject")
	}

	identity := &Identity{UID: uid}
	identity.Email, _ = claims["email"].(string)
	identity.Name, _ = claims["name"].(string)
	return identity, nil
}

// googleCertSource fetches Google's securetoken certificates and caches them
// for the max-age the response advertises.
type googleCertSource struct {
	httpClient *http.Client
	url        string

	mu      sync.Mutex
	cached  map[string]*rsa.PublicKey
	expires time.Time
}

func (g *googleCertSource) Certs(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cached != nil && time.Now().Before(g.expires) {
		return g.cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch certs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cert endpoint returned status %d", resp.StatusCode)
	}

	var raw map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode certs: %w", err)
	}

	certs := make(map[string]*rsa.PublicKey, len(raw))
	for kid, pemCert := range raw {
		block, _ := pem.Decode([]byte(pemCert))
		if block == nil {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			continue
		}
		if pub, ok := cert.PublicKey.(*rsa.PublicKey); ok {
			certs[kid] = pub
		}
	}
	if len(certs) == 0 {
		return nil, fmt.Errorf("cert endpoint returned no usable certificates")
	}

	g.cached = certs
	g.expires = time.Now().Add(cacheMaxAge(resp.Header.Get("Cache-Control")))
	return certs, nil
}

func cacheMaxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(directive)
		if v, ok := strings.CutPrefix(directive, "max-age="); ok {
			if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return time.Hour
}
