package domain

import "time"

// EmergencyContact is embedded in an account; order is preserved.
type EmergencyContact struct {
	Name     string `json:"name" dynamodbav:"name" validate:"required"`
	Phone    string `json:"phone" dynamodbav:"phone" validate:"required,e164"`
	Relation string `json:"relation" dynamodbav:"relation" validate:"required"`
}

// Account is a registered user. Email (lowercased) and phone are globally
// unique; identity fields are immutable after registration.
type Account struct {
	AccountID         string             `json:"id" dynamodbav:"account_id"`
	Name              string             `json:"name" dynamodbav:"name"`
	Email             string             `json:"email" dynamodbav:"email"`
	Phone             string             `json:"phone" dynamodbav:"phone"`
	PhoneVerified     bool               `json:"phone_verified" dynamodbav:"phone_verified"`
	PasswordHash      string             `json:"-" dynamodbav:"password_hash"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts" dynamodbav:"emergency_contacts"`
	CreatedAt         time.Time          `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" dynamodbav:"updated_at"`
}

type RegisterRequest struct {
	Name              string             `json:"name" validate:"required"`
	Email             string             `json:"email" validate:"required,email"`
	Phone             string             `json:"phone" validate:"required,e164"`
	Password          string             `json:"password" validate:"required,min=8,max=72"`
	VerificationToken string             `json:"verification_token" validate:"required"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts" validate:"omitempty,dive"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
