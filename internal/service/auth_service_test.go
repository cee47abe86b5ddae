package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"parking_rental/internal/config"
	"parking_rental/internal/domain"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	admin, err := NewUser("admin", "s3cret", domain.RoleAdmin)
	require.NoError(t, err)
	return NewAuthService([]domain.User{admin}, "test-secret", time.Hour)
}

func TestAuthService_Login(t *testing.T) {
	s := newTestAuthService(t)

	resp, err := s.Login(context.Background(), domain.LoginUserDTO{Username: "admin", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, resp.Role)
	assert.Equal(t, "admin", resp.Subject)

	_, claims, err := s.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims["role"])
	assert.Equal(t, "admin", claims["sub"])

	_, err = s.Login(context.Background(), domain.LoginUserDTO{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(context.Background(), domain.LoginUserDTO{Username: "nobody", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_CustomerTokenExpires(t *testing.T) {
	s := newTestAuthService(t)
	s.clock = func() time.Time { return t0 }

	resp, err := s.IssueCustomerToken("ABC123")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, resp.Role)
	assert.Equal(t, t0.Add(time.Hour).Unix(), resp.ExpireAt)

	_, _, err = s.ValidateToken(resp.Token)
	require.NoError(t, err)

	s.clock = func() time.Time { return t0.Add(2 * time.Hour) }
	_, _, err = s.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAuthService_RejectsForeignSignature(t *testing.T) {
	s := newTestAuthService(t)
	other := NewAuthService(nil, "another-secret", time.Hour)

	resp, err := other.IssueCustomerToken("ABC123")
	require.NoError(t, err)
	_, _, err = s.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, _, err = s.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestStaffUsers(t *testing.T) {
	cfg := &config.Config{AdminUsername: "admin", AdminPassword: "pw", OperatorUsername: "op"}

	users, err := StaffUsers(cfg)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, domain.RoleAdmin, users[0].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("pw")))
}
