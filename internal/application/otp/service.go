package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/otp-auth-api/internal/domain"
	"github.com/otp-auth-api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldStatus   = "status"
	fieldAttempts = "attempts"
)

// IssueResult is the issuance response envelope. PlaintextOtp is set only when
// no SMS sender is configured outside production.
type IssueResult struct {
	OtpID             string    `json:"otp_id"`
	ExpiresAt         time.Time `json:"expires_at"`
	RetryAfterSeconds int       `json:"retry_after_seconds"`
	PlaintextOtp      string    `json:"dev_otp,omitempty"`
}

// VerifyResult is the verification response envelope.
type VerifyResult struct {
	Verified          bool      `json:"verified"`
	VerificationToken string    `json:"verification_token"`
	TokenExpiresAt    time.Time `json:"token_expires_at"`
}

type Service interface {
	Issue(ctx context.Context, phone string, purpose domain.OtpPurpose) (*IssueResult, error)
	Verify(ctx context.Context, phone, code, otpID string) (*VerifyResult, error)
}

type otpStore interface {
	Put(ctx context.Context, rec *domain.OtpRecord) error
	Get(ctx context.Context, otpID string) (*domain.OtpRecord, error)
	GetLatest(ctx context.Context, phone string, purpose domain.OtpPurpose) (*domain.OtpRecord, error)
	Update(ctx context.Context, otpID string, updates map[string]interface{}) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type verificationSigner interface {
	SignVerification(phone, otpID string) (token string, expiresAt time.Time, err error)
}

type service struct {
	repo        otpStore
	smsSender   smsSender
	signer      verificationSigner
	cooldown    time.Duration
	expiry      time.Duration
	maxAttempts int
	bcryptCost  int
	production  bool
	now         func() time.Time
}

type ServiceDeps struct {
	OtpRepo     otpStore
	SMSSender   smsSender // nil means no provider configured
	Signer      verificationSigner
	Cooldown    time.Duration
	Expiry      time.Duration
	MaxAttempts int
	BcryptCost  int
	Production  bool
	Now         func() time.Time // defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        deps.OtpRepo,
		smsSender:   deps.SMSSender,
		signer:      deps.Signer,
		cooldown:    deps.Cooldown,
		expiry:      deps.Expiry,
		maxAttempts: deps.MaxAttempts,
		bcryptCost:  deps.BcryptCost,
		production:  deps.Production,
		now:         now,
	}
}

func (s *service) Issue(ctx context.Context, phone string, purpose domain.OtpPurpose) (*IssueResult, error) {
	if phone == "" {
		return nil, fmt.Errorf("phone is required: %w", domain.ErrBadRequest)
	}
	if !purpose.Valid() {
		return nil, fmt.Errorf("unknown OTP purpose %q: %w", purpose, domain.ErrBadRequest)
	}

	now := s.now()
	last, err := s.repo.GetLatest(ctx, phone, purpose)
	switch {
	case err == nil:
		if elapsed := now.Sub(last.CreatedAt); elapsed < s.cooldown {
			left := int((s.cooldown - elapsed + time.Second - 1) / time.Second)
			return nil, &domain.RateLimitedError{RetryAfter: left}
		}
	case !errors.Is(err, domain.ErrNotFound):
		// A store failure must not be mistaken for "no prior record": that
		// would silently skip the cooldown.
		return nil, err
	}

	code, err := generateOtp()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	rec := &domain.OtpRecord{
		OtpID:      id.New(),
		Phone:      phone,
		Purpose:    purpose,
		SecretHash: string(hash),
		Status:     domain.OtpStatusPending,
		Attempts:   0,
		CreatedAt:  now.UTC(),
		ExpiresAt:  now.Add(s.expiry).Unix(),
	}
	if err := s.repo.Put(ctx, rec); err != nil {
		return nil, err
	}

	result := &IssueResult{
		OtpID:             rec.OtpID,
		ExpiresAt:         time.Unix(rec.ExpiresAt, 0).UTC(),
		RetryAfterSeconds: int(s.cooldown / time.Second),
	}

	if s.smsSender != nil {
		// Best-effort delivery: a failed dispatch is logged, never surfaced.
		if err := s.smsSender.SendSMS(ctx, phone, "Your verification code is: "+code); err != nil {
			slog.Error("failed to send OTP SMS", "phone", phone, "err", err)
		}
	} else if !s.production {
		result.PlaintextOtp = code
		slog.Info("dev OTP issued", "phone", phone, "otp", code)
	} else {
		slog.Error("no SMS provider configured, OTP not delivered", "phone", phone)
	}

	return result, nil
}

func (s *service) Verify(ctx context.Context, phone, code, otpID string) (*VerifyResult, error) {
	rec, err := s.repo.Get(ctx, otpID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("OTP not found or does not match the phone number: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	if rec.Phone != phone {
		return nil, fmt.Errorf("OTP not found or does not match the phone number: %w", domain.ErrNotFound)
	}
	if rec.Status != domain.OtpStatusPending {
		return nil, fmt.Errorf("this OTP has already been used or invalidated: %w", domain.ErrGone)
	}
	now := s.now()
	if now.Unix() > rec.ExpiresAt {
		if err := s.repo.Update(ctx, otpID, map[string]interface{}{fieldStatus: domain.OtpStatusExpired}); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("OTP has expired: %w", domain.ErrExpired)
	}
	if rec.Attempts >= s.maxAttempts {
		return nil, fmt.Errorf("too many verification attempts, request a new OTP: %w", domain.ErrTooManyAttempts)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.SecretHash), []byte(code)); err != nil {
		if err := s.repo.Update(ctx, otpID, map[string]interface{}{fieldAttempts: rec.Attempts + 1}); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("incorrect OTP: %w", domain.ErrInvalidCode)
	}

	if err := s.repo.Update(ctx, otpID, map[string]interface{}{fieldStatus: domain.OtpStatusVerified}); err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.SignVerification(phone, otpID)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{
		Verified:          true,
		VerificationToken: token,
		TokenExpiresAt:    expiresAt,
	}, nil
}

// generateOtp returns a uniformly random 6-digit code, leading zeros allowed.
func generateOtp() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
