package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken covers malformed, forged, mistyped and expired tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is an ErrInvalidToken whose signature checked out.
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)
	// ErrWrongTokenType is an ErrInvalidToken carrying another type tag.
	ErrWrongTokenType = fmt.Errorf("%w: unexpected type", ErrInvalidToken)
)

// TokenType discriminates what a signed token may be used for.
// Types are not interchangeable.
type TokenType string

const (
	TokenAccess            TokenType = "access"
	TokenRefresh           TokenType = "refresh"
	TokenEmailConfirmation TokenType = "email-confirmation"
)

func (t TokenType) Valid() bool {
	switch t {
	case TokenAccess, TokenRefresh, TokenEmailConfirmation:
		return true
	}
	return false
}

// JWTManager signs and verifies HS256 tokens with a single process-wide secret.
// It holds no mutable state and is safe for concurrent use.
type JWTManager struct {
	secret []byte
	now    func() time.Time
}

type JWTOption func(*JWTManager)

// WithClock overrides the time source used for iat/exp.
func WithClock(now func() time.Time) JWTOption {
	return func(m *JWTManager) { m.now = now }
}

func NewJWTManager(secret string, opts ...JWTOption) (*JWTManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	m := &JWTManager{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

type Claims struct {
	Type TokenType `json:"scope"`
	jwt.RegisteredClaims
}

// Issue signs a token for subject valid for ttl. Every token carries a
// random jti, so two tokens issued in the same second still differ.
func (m *JWTManager) Issue(subject string, typ TokenType, ttl time.Duration) (string, time.Time, error) {
	if !typ.Valid() {
		return "", time.Time{}, fmt.Errorf("unsupported token type %q", typ)
	}
	now := m.now()
	exp := now.Add(ttl)
	claims := &Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.secret)
	return s, exp, err
}

// Decode verifies the signature and only then the claims. Any failure
// matches ErrInvalidToken; an authentic but expired token also matches
// ErrTokenExpired.
func (m *JWTManager) Decode(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	claims := &Claims{}
	tkn, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.Type.Valid() {
		return nil, fmt.Errorf("%w: missing or unsupported type", ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}
	if !m.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}

// DecodeAs is Decode plus a type check.
func (m *JWTManager) DecodeAs(tokenStr string, want TokenType) (*Claims, error) {
	claims, err := m.Decode(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Type != want {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
