package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/otp-auth-api/internal/application/account"
	"github.com/otp-auth-api/internal/config"
	"github.com/otp-auth-api/internal/domain"
	jwtinfra "github.com/otp-auth-api/internal/infrastructure/jwt"
	"github.com/otp-auth-api/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAccountSvc struct{ mock.Mock }

func (m *mockAccountSvc) Register(ctx context.Context, req domain.RegisterRequest) (*account.AuthResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*account.AuthResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountSvc) Login(ctx context.Context, req domain.LoginRequest) (*account.AuthResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*account.AuthResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountSvc) Refresh(ctx context.Context, refreshToken string) (*jwtinfra.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if p, _ := args.Get(0).(*jwtinfra.TokenPair); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountSvc) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func testAccount() *domain.Account {
	return &domain.Account{
		AccountID:         "a1",
		Name:              "Asha",
		Email:             "asha@example.com",
		Phone:             "+911234567890",
		PhoneVerified:     true,
		PasswordHash:      "$2a$10$secret",
		EmergencyContacts: []domain.EmergencyContact{},
		CreatedAt:         time.Now().UTC(),
	}
}

func validRegisterBody() domain.RegisterRequest {
	return domain.RegisterRequest{
		Name:              "Asha",
		Email:             "asha@example.com",
		Phone:             "+911234567890",
		Password:          "supersecret",
		VerificationToken: "verification-token",
	}
}

// --- Register ---

func TestRegister_Created(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Register", mock.Anything, mock.AnythingOfType("domain.RegisterRequest")).Return(&account.AuthResult{
		Account: testAccount(),
		Tokens:  &jwtinfra.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600},
	}, nil)

	h := NewAccountHandler(svc)
	rec := postJSON(t, h.Register, "/v1/auth/register", validRegisterBody())

	assert.Equal(t, http.StatusCreated, rec.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.User)
	assert.Equal(t, "a1", env.User.ID)
	assert.True(t, env.User.PhoneVerified)
	assert.Equal(t, "access", env.Tokens.AccessToken)
	// The sanitized view must not carry the password hash.
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestRegister_DuplicateConflict(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)

	h := NewAccountHandler(svc)
	rec := postJSON(t, h.Register, "/v1/auth/register", validRegisterBody())

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_BadVerificationToken(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ErrUnauthorized)

	h := NewAccountHandler(svc)
	rec := postJSON(t, h.Register, "/v1/auth/register", validRegisterBody())

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegister_ValidationFailure_WeakPassword(t *testing.T) {
	h := NewAccountHandler(&mockAccountSvc{})
	body := validRegisterBody()
	body.Password = "short"
	rec := postJSON(t, h.Register, "/v1/auth/register", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// --- Login ---

func TestLogin_OK(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Login", mock.Anything, domain.LoginRequest{Email: "asha@example.com", Password: "supersecret"}).Return(&account.AuthResult{
		Account: testAccount(),
		Tokens:  &jwtinfra.TokenPair{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 3600},
	}, nil)

	h := NewAccountHandler(svc)
	rec := postJSON(t, h.Login, "/v1/auth/login", domain.LoginRequest{
		Email:    "asha@example.com",
		Password: "supersecret",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_InvalidCredentials_401(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidCredentials)

	h := NewAccountHandler(svc)
	rec := postJSON(t, h.Login, "/v1/auth/login", domain.LoginRequest{
		Email:    "asha@example.com",
		Password: "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// --- Refresh ---

func TestRefresh_OK(t *testing.T) {
	svc := &mockAccountSvc{}
	svc.On("Refresh", mock.Anything, "refresh-token").Return(&jwtinfra.TokenPair{
		AccessToken: "new-access", RefreshToken: "new-refresh", ExpiresIn: 3600,
	}, nil)

	h := NewAccountHandler(svc)
	rec := postJSON(t, h.Refresh, "/v1/auth/refresh", map[string]string{"refresh_token": "refresh-token"})

	assert.Equal(t, http.StatusOK, rec.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "new-access", env.Tokens.AccessToken)
}

func TestRefresh_MissingToken(t *testing.T) {
	h := NewAccountHandler(&mockAccountSvc{})
	rec := postJSON(t, h.Refresh, "/v1/auth/refresh", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- Me ---

func TestMe_OK(t *testing.T) {
	p, err := jwtinfra.NewProvider(&config.Config{
		JWTSecret:      "test-secret",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)
	pair, err := p.SignPair("a1")
	require.NoError(t, err)

	svc := &mockAccountSvc{}
	svc.On("Get", mock.Anything, "a1").Return(testAccount(), nil)

	h := NewAccountHandler(svc)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	middleware.Auth(p)(http.HandlerFunc(h.Me)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var safe SafeAccount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &safe))
	assert.Equal(t, "a1", safe.ID)
}

func TestMe_NoClaims(t *testing.T) {
	h := NewAccountHandler(&mockAccountSvc{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	h.Me(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
