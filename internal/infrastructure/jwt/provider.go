package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/otp-auth-api/internal/config"
	"github.com/otp-auth-api/internal/domain"
)

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// VerificationClaims asserts that a phone number passed OTP verification.
type VerificationClaims struct {
	Phone string `json:"phone"`
	OtpID string `json:"otp_id"`
	jwt.RegisteredClaims
}

// SessionClaims identifies an authenticated account. TokenUse distinguishes
// access tokens from refresh tokens minted with the same secret.
type SessionClaims struct {
	UserID   string `json:"user_id"`
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// TokenPair is the session credential set returned to clients.
// ExpiresIn is the access token lifetime in seconds.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Provider signs and verifies HS256 JWTs with a single shared secret.
// Verification reports one error kind for forged, malformed and expired
// tokens alike.
type Provider struct {
	secret          []byte
	verificationTTL time.Duration
	accessTTL       time.Duration
	refreshTTL      time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return &Provider{
		secret:          []byte(cfg.JWTSecret),
		verificationTTL: cfg.VerificationTokenTTL,
		accessTTL:       cfg.AccessTokenTTL,
		refreshTTL:      cfg.RefreshTokenTTL,
	}, nil
}

// SignVerification mints a short-lived token binding phone to otpID.
func (p *Provider) SignVerification(phone, otpID string) (token string, expiresAt time.Time, err error) {
	expiresAt = time.Now().Add(p.verificationTTL)
	claims := VerificationClaims{
		Phone: phone,
		OtpID: otpID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	return token, expiresAt, err
}

// VerifyVerification checks a verification token and returns its claims.
func (p *Provider) VerifyVerification(tokenStr string) (*VerificationClaims, error) {
	var claims VerificationClaims
	if err := p.parse(tokenStr, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// SignPair mints an access/refresh session token pair for userID.
func (p *Provider) SignPair(userID string) (*TokenPair, error) {
	access, err := p.signSession(userID, tokenUseAccess, p.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := p.signSession(userID, tokenUseRefresh, p.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(p.accessTTL.Seconds()),
	}, nil
}

// VerifyAccess checks an access session token.
func (p *Provider) VerifyAccess(tokenStr string) (*SessionClaims, error) {
	return p.verifySession(tokenStr, tokenUseAccess)
}

// VerifyRefresh checks a refresh session token. Access tokens are rejected.
func (p *Provider) VerifyRefresh(tokenStr string) (*SessionClaims, error) {
	return p.verifySession(tokenStr, tokenUseRefresh)
}

func (p *Provider) signSession(userID, use string, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		UserID:   userID,
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func (p *Provider) verifySession(tokenStr, use string) (*SessionClaims, error) {
	var claims SessionClaims
	if err := p.parse(tokenStr, &claims); err != nil {
		return nil, err
	}
	if claims.TokenUse != use {
		return nil, fmt.Errorf("invalid or expired token: %w", domain.ErrUnauthorized)
	}
	return &claims, nil
}

func (p *Provider) parse(tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return fmt.Errorf("invalid or expired token: %w", domain.ErrUnauthorized)
	}
	return nil
}
