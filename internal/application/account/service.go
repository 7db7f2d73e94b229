package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/otp-auth-api/internal/domain"
	jwtinfra "github.com/otp-auth-api/internal/infrastructure/jwt"
	"github.com/otp-auth-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult pairs a registered or authenticated account with its session tokens.
type AuthResult struct {
	Account *domain.Account
	Tokens  *jwtinfra.TokenPair
}

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req domain.LoginRequest) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*jwtinfra.TokenPair, error)
	Get(ctx context.Context, accountID string) (*domain.Account, error)
}

type accountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Account, error)
}

type tokenProvider interface {
	VerifyVerification(token string) (*jwtinfra.VerificationClaims, error)
	VerifyRefresh(token string) (*jwtinfra.SessionClaims, error)
	SignPair(userID string) (*jwtinfra.TokenPair, error)
}

type service struct {
	repo       accountStore
	tokens     tokenProvider
	bcryptCost int
}

type ServiceDeps struct {
	AccountRepo accountStore
	Tokens      tokenProvider
	BcryptCost  int
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:       deps.AccountRepo,
		tokens:     deps.Tokens,
		bcryptCost: deps.BcryptCost,
	}
}

func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*AuthResult, error) {
	claims, err := s.tokens.VerifyVerification(req.VerificationToken)
	if err != nil {
		return nil, err
	}
	// The verified-OTP token must be bound to the phone being registered.
	if claims.Phone != req.Phone {
		return nil, fmt.Errorf("phone number does not match the verified phone number: %w", domain.ErrBadRequest)
	}

	// Advisory pre-check; the store's unique write is the real guard against
	// a concurrent duplicate.
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	if _, err := s.repo.GetByPhone(ctx, req.Phone); err == nil {
		return nil, fmt.Errorf("phone already registered: %w", domain.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	a := &domain.Account{
		AccountID:         id.New(),
		Name:              req.Name,
		Email:             strings.ToLower(req.Email),
		Phone:             req.Phone,
		PhoneVerified:     true, // proven by the verification token
		PasswordHash:      string(hash),
		EmergencyContacts: req.EmergencyContacts,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if a.EmergencyContacts == nil {
		a.EmergencyContacts = []domain.EmergencyContact{}
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	tokens, err := s.tokens.SignPair(a.AccountID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: a, Tokens: tokens}, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*AuthResult, error) {
	// Missing account and wrong password surface the same error so callers
	// cannot enumerate registered emails. Store failures stay store failures.
	a, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	tokens, err := s.tokens.SignPair(a.AccountID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: a, Tokens: tokens}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*jwtinfra.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, claims.UserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("account no longer exists: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	return s.tokens.SignPair(claims.UserID)
}

func (s *service) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.repo.Get(ctx, accountID)
}
