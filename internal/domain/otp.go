package domain

import "time"

type OtpPurpose string

const (
	OtpPurposeSignup        OtpPurpose = "signup"
	OtpPurposeLogin         OtpPurpose = "login"
	OtpPurposePasswordReset OtpPurpose = "password_reset"
)

// Valid reports whether p is one of the known purposes.
func (p OtpPurpose) Valid() bool {
	switch p {
	case OtpPurposeSignup, OtpPurposeLogin, OtpPurposePasswordReset:
		return true
	}
	return false
}

type OtpStatus string

const (
	OtpStatusPending  OtpStatus = "pending"
	OtpStatusVerified OtpStatus = "verified"
	OtpStatusExpired  OtpStatus = "expired"
)

// OtpRecord is one issued OTP. Status only ever moves pending->verified or
// pending->expired; both are terminal.
// PK: otp_id. ExpiresAt is a Unix timestamp doubling as the DynamoDB TTL
// attribute, so the store reclaims stale records on its own.
type OtpRecord struct {
	OtpID      string     `json:"otp_id" dynamodbav:"otp_id"`
	Phone      string     `json:"phone" dynamodbav:"phone"`
	Purpose    OtpPurpose `json:"purpose" dynamodbav:"purpose"`
	SecretHash string     `json:"-" dynamodbav:"secret_hash"`
	Status     OtpStatus  `json:"status" dynamodbav:"status"`
	Attempts   int        `json:"attempts" dynamodbav:"attempts"`
	CreatedAt  time.Time  `json:"created_at" dynamodbav:"created_at,unixtime"` // stored as epoch so the GSI range key sorts numerically
	ExpiresAt  int64      `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

type SendOtpRequest struct {
	Phone   string     `json:"phone" validate:"required,e164"`
	Purpose OtpPurpose `json:"purpose" validate:"required,oneof=signup login password_reset"`
}

type VerifyOtpRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
	Otp   string `json:"otp" validate:"required,len=6,numeric"`
	OtpID string `json:"otp_id" validate:"required"`
}
