package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"parking_rental/internal/config"
	"parking_rental/internal/domain"
)

var ErrInvalidCredentials = errors.New("invalid username or password")
var ErrTokenInvalid = errors.New("token is invalid or expired")

// AuthService signs and checks JWTs for staff accounts from configuration
// and for customers identified by plate.
type AuthService struct {
	users              map[string]domain.User
	jwtSecret          string
	jwtExpirationHours time.Duration
	clock              func() time.Time
}

func NewAuthService(users []domain.User, jwtSecret string, jwtExpHours time.Duration) *AuthService {
	byName := make(map[string]domain.User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}
	return &AuthService{
		users:              byName,
		jwtSecret:          jwtSecret,
		jwtExpirationHours: jwtExpHours,
		clock:              time.Now,
	}
}

// NewUser hashes password and returns the account.
func NewUser(username, password, role string) (domain.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password for %s: %w", username, err)
	}
	return domain.User{Username: username, Password: string(hashedPassword), Role: role}, nil
}

// StaffUsers builds the admin and operator accounts from cfg. Accounts
// without a password are skipped.
func StaffUsers(cfg *config.Config) ([]domain.User, error) {
	var users []domain.User
	accounts := []struct{ name, password, role string }{
		{cfg.AdminUsername, cfg.AdminPassword, domain.RoleAdmin},
		{cfg.OperatorUsername, cfg.OperatorPassword, domain.RoleOperator},
	}
	for _, a := range accounts {
		if a.name == "" || a.password == "" {
			log.Printf("AuthService: no password configured for %s account, login disabled", a.role)
			continue
		}
		u, err := NewUser(a.name, a.password, a.role)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (s *AuthService) Login(ctx context.Context, dto domain.LoginUserDTO) (*domain.AuthResponseDTO, error) {
	user, ok := s.users[dto.Username]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(dto.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user.Username, user.Role)
}

// IssueCustomerToken signs a customer token whose subject is plate.
func (s *AuthService) IssueCustomerToken(plate string) (*domain.AuthResponseDTO, error) {
	return s.issue(plate, domain.RoleCustomer)
}

func (s *AuthService) issue(subject, role string) (*domain.AuthResponseDTO, error) {
	now := s.clock()
	expirationTime := now.Add(s.jwtExpirationHours)
	claims := jwt.MapClaims{
		"sub":  subject,
		"exp":  expirationTime.Unix(),
		"iat":  now.Unix(),
		"role": role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &domain.AuthResponseDTO{
		Token:    tokenString,
		Subject:  subject,
		Role:     role,
		ExpireAt: expirationTime.Unix(),
	}, nil
}

// ValidateToken is used by the auth middleware.
func (s *AuthService) ValidateToken(tokenString string) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.clock))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, nil, fmt.Errorf("%w: malformed token", ErrTokenInvalid)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, nil, fmt.Errorf("%w: token expired", ErrTokenInvalid)
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, nil, fmt.Errorf("%w: token not valid yet", ErrTokenInvalid)
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return nil, nil, ErrTokenInvalid
	}
	return token, claims, nil
}
