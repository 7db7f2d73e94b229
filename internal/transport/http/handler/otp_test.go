package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/otp-auth-api/internal/application/otp"
	"github.com/otp-auth-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockOtpSvc struct{ mock.Mock }

func (m *mockOtpSvc) Issue(ctx context.Context, phone string, purpose domain.OtpPurpose) (*otp.IssueResult, error) {
	args := m.Called(ctx, phone, purpose)
	if r, _ := args.Get(0).(*otp.IssueResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOtpSvc) Verify(ctx context.Context, phone, code, otpID string) (*otp.VerifyResult, error) {
	args := m.Called(ctx, phone, code, otpID)
	if r, _ := args.Get(0).(*otp.VerifyResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func postJSON(t *testing.T, h http.HandlerFunc, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(b))
	h(rec, req)
	return rec
}

// --- Send ---

func TestSend_HappyPath(t *testing.T) {
	svc := &mockOtpSvc{}
	expiresAt := time.Now().Add(5 * time.Minute).UTC().Truncate(time.Second)
	svc.On("Issue", mock.Anything, "+911234567890", domain.OtpPurposeSignup).Return(&otp.IssueResult{
		OtpID:             "otp1",
		ExpiresAt:         expiresAt,
		RetryAfterSeconds: 60,
	}, nil)

	h := NewOtpHandler(svc)
	rec := postJSON(t, h.Send, "/v1/auth/send-otp", domain.SendOtpRequest{
		Phone:   "+911234567890",
		Purpose: domain.OtpPurposeSignup,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	var result otp.IssueResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "otp1", result.OtpID)
	assert.Equal(t, 60, result.RetryAfterSeconds)
	assert.Empty(t, result.PlaintextOtp)
}

func TestSend_InvalidBody(t *testing.T) {
	h := NewOtpHandler(&mockOtpSvc{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/send-otp", bytes.NewReader([]byte("{")))
	h.Send(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSend_ValidationFailure(t *testing.T) {
	h := NewOtpHandler(&mockOtpSvc{})
	rec := postJSON(t, h.Send, "/v1/auth/send-otp", domain.SendOtpRequest{
		Phone:   "not-a-phone",
		Purpose: domain.OtpPurposeSignup,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSend_RateLimited_429(t *testing.T) {
	svc := &mockOtpSvc{}
	svc.On("Issue", mock.Anything, mock.Anything, mock.Anything).Return(nil, &domain.RateLimitedError{RetryAfter: 42})

	h := NewOtpHandler(svc)
	rec := postJSON(t, h.Send, "/v1/auth/send-otp", domain.SendOtpRequest{
		Phone:   "+911234567890",
		Purpose: domain.OtpPurposeSignup,
	})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "42 seconds")
}

// --- Verify ---

func verifyBody() domain.VerifyOtpRequest {
	return domain.VerifyOtpRequest{
		Phone: "+911234567890",
		Otp:   "123456",
		OtpID: "otp1",
	}
}

func TestVerify_HappyPath(t *testing.T) {
	svc := &mockOtpSvc{}
	svc.On("Verify", mock.Anything, "+911234567890", "123456", "otp1").Return(&otp.VerifyResult{
		Verified:          true,
		VerificationToken: "token",
		TokenExpiresAt:    time.Now().Add(15 * time.Minute),
	}, nil)

	h := NewOtpHandler(svc)
	rec := postJSON(t, h.Verify, "/v1/auth/verify-otp", verifyBody())

	assert.Equal(t, http.StatusOK, rec.Code)
	var result otp.VerifyResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Verified)
	assert.Equal(t, "token", result.VerificationToken)
}

func TestVerify_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"gone", domain.ErrGone, http.StatusGone},
		{"expired", domain.ErrExpired, http.StatusUnauthorized},
		{"too many attempts", domain.ErrTooManyAttempts, http.StatusTooManyRequests},
		{"invalid code", domain.ErrInvalidCode, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockOtpSvc{}
			svc.On("Verify", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err)

			h := NewOtpHandler(svc)
			rec := postJSON(t, h.Verify, "/v1/auth/verify-otp", verifyBody())

			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestVerify_ValidationFailure_ShortOtp(t *testing.T) {
	h := NewOtpHandler(&mockOtpSvc{})
	body := verifyBody()
	body.Otp = "123"
	rec := postJSON(t, h.Verify, "/v1/auth/verify-otp", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
