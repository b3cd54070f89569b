package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"admin-gateway/pkg/common/config"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("invalid token")

// Information a token encodes
type Claims struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Issuer signs and parses the access/refresh pair with one HMAC secret.
type Issuer struct {
	secret     []byte
	method     jwt.SigningMethod
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(cfg config.JWTAuthConfig) (*Issuer, error) {
	method := jwt.GetSigningMethod(cfg.SigningMethod)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing method %q", cfg.SigningMethod)
	}
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &Issuer{
		secret:     []byte(cfg.Secret),
		method:     method,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.ExpireDuration,
		refreshTTL: cfg.RefreshExpire,
		now:        time.Now,
	}, nil
}

// SetClock overrides time.Now for issuance and validation.
func (i *Issuer) SetClock(now func() time.Time) {
	i.now = now
}

func (i *Issuer) IssuePair(userID int64, username string) (Pair, error) {
	access, err := i.sign(userID, username, TypeAccess, i.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.sign(userID, username, TypeRefresh, i.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// Parse validates signature, issuer and expiry, and requires the given token type.
func (i *Issuer) Parse(tokenString, wantType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("%w: want %s token, got %q", ErrInvalidToken, wantType, claims.TokenType)
	}
	return claims, nil
}

// Refresh exchanges a refresh token for a new access token.
func (i *Issuer) Refresh(refreshToken string) (string, error) {
	claims, err := i.Parse(refreshToken, TypeRefresh)
	if err != nil {
		return "", err
	}
	return i.sign(claims.UserID, claims.Username, TypeAccess, i.accessTTL)
}

func (i *Issuer) sign(userID int64, username, tokenType string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		UserID:    userID,
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}
