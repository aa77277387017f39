package services

import (
	"errors"
	"strings"
	"time"

	"github.com/goblog/apiserver/config"
	"github.com/golang-jwt/jwt/v5"
)

// Token kinds. Every token carries its kind as a claim and is rejected
// wherever the other kind is expected.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// clockSkewLeeway is the tolerance applied to the expiry check at
// verification time.
const clockSkewLeeway = 30 * time.Second

// ErrInvalidToken is returned when a token fails verification for any
// reason: bad signature, malformed payload, missing subject, expiry, or
// kind mismatch. Callers map it to an unauthenticated response.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the signed payload carried by access and refresh tokens.
type Claims struct {
	UserID int    `json:"user_id,omitempty"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// TokenService mints and validates bearer tokens. It holds no state
// beyond its configuration; tokens are never persisted and remain valid
// until natural expiry.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService constructs a TokenService from auth configuration.
func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

// IssueAccessToken signs a short-lived token identifying the user.
func (s *TokenService) IssueAccessToken(userID int, username string) (string, error) {
	return s.issue(userID, username, TokenKindAccess, s.accessTTL)
}

// IssueRefreshToken signs a long-lived token used solely to mint new
// access tokens. It carries only the subject.
func (s *TokenService) IssueRefreshToken(username string) (string, error) {
	return s.issue(0, username, TokenKindRefresh, s.refreshTTL)
}

func (s *TokenService) issue(userID int, username, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and that the token is of the
// expected kind. It returns the claims on success and ErrInvalidToken
// on any failure.
func (s *TokenService) Verify(tokenString, kind string) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	}, jwt.WithLeeway(clockSkewLeeway))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Claims{}, ErrInvalidToken
	}
	if claims.Kind != kind {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// Refresh verifies a refresh token and issues a new access token bound
// to the same subject. The refresh token itself is not rotated.
func (s *TokenService) Refresh(refreshToken string) (string, error) {
	claims, err := s.Verify(refreshToken, TokenKindRefresh)
	if err != nil {
		return "", err
	}
	return s.issue(claims.UserID, claims.Subject, TokenKindAccess, s.accessTTL)
}
