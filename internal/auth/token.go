// Package auth issues and verifies the JWT access/refresh token pair.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

var (
	// ErrInvalidToken covers malformed, tampered, or wrong-type tokens.
	ErrInvalidToken = errors.New("token is invalid")
	// ErrTokenExpired indicates the token is past its exp claim.
	ErrTokenExpired = errors.New("token has expired")
)

// Claims is the payload carried by both token types.
type Claims struct {
	Type TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// Pair is what login and registration hand back to the client.
type Pair struct {
	Access  string
	Refresh string
}

// Config controls token lifetimes and signing.
type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Tokens signs and parses HS256 tokens.
type Tokens struct {
	cfg Config
	now func() time.Time
}

func NewTokens(cfg Config) (*Tokens, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &Tokens{cfg: cfg, now: time.Now}, nil
}

// IssuePair returns a fresh access and refresh token for userID.
func (t *Tokens) IssuePair(userID int64) (Pair, error) {
	access, err := t.issue(userID, AccessToken, t.cfg.AccessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := t.issue(userID, RefreshToken, t.cfg.RefreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// IssueAccess returns a single access token for userID.
func (t *Tokens) IssueAccess(userID int64) (string, error) {
	return t.issue(userID, AccessToken, t.cfg.AccessTTL)
}

// Parse verifies tokenStr and returns the user id it was issued for. The
// token must be of the wanted type.
func (t *Tokens) Parse(tokenStr string, want TokenType) (int64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(t.cfg.Secret), nil
	}, t.parserOptions()...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrInvalidToken
	}
	if !token.Valid || claims.Type != want {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

func (t *Tokens) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired()}
	if t.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.cfg.Issuer))
	}
	return opts
}

func (t *Tokens) issue(userID int64, typ TokenType, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    t.cfg.Issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(t.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}
