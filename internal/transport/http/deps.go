package http

import (
	"github.com/otp-auth-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/otp-auth-api/internal/infrastructure/jwt"
	"github.com/otp-auth-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	OtpRepo     *dynamo.OtpRepo
	AccountRepo *dynamo.AccountRepo
	SMSSender   sns.SMSSender // nil when no provider is configured
	JWTProvider *jwtinfra.Provider
}
