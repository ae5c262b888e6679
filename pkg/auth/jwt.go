package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims is the verified identity the external auth provider
// asserts on every request. The core trusts these claims; it never
// re-verifies credentials itself.
type IdentityClaims struct {
	Email           string `json:"email,omitempty"`
	Name            string `json:"name,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	jwt.RegisteredClaims
}

type Verifier interface {
	Verify(token string) (*IdentityClaims, error)
}

type TokenService struct {
	secret []byte
	issuer string
}

type Config struct {
	Secret string
	Issuer string
}

func NewTokenService(cfg Config) *TokenService {
	return &TokenService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}
}

// Verify parses and validates an identity token issued by the auth
// provider and returns its claims.
func (s *TokenService) Verify(tokenString string) (*IdentityClaims, error) {
	claims := &IdentityClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token missing subject")
	}
	return claims, nil
}

// Issue signs an identity token. Used by tests and local development;
// production tokens come from the auth provider.
func (s *TokenService) Issue(subject string, claims IdentityClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
