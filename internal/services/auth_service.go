package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mocklyai/mockly/internal/models"
	pgrepo "github.com/mocklyai/mockly/internal/repositories/postgres"
	"github.com/mocklyai/mockly/internal/utils"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
}

// Claims is the bearer-token payload: the user id travels in the subject,
// the email rides along for display.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type authService struct {
	users  pgrepo.UserRepository
	secret []byte
	ttl    time.Duration
}

func NewAuthService(users pgrepo.UserRepository, secret string, ttl time.Duration) AuthService {
	return &authService{users: users, secret: []byte(secret), ttl: ttl}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	const op = "AuthService.Register"

	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, "", utils.E(utils.CodeInvalidArgument, op, "name, email, and password are required", nil)
	}

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to check email", err)
	}
	if taken {
		return nil, "", utils.E(utils.CodeConflict, op, "email already registered", nil)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		if utils.IsCode(err, utils.CodeInvalidArgument) {
			return nil, "", err
		}
		return nil, "", utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to create user", err)
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return u, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	const op = "AuthService.Login"

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, "", utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
		}
		return nil, "", utils.E(utils.CodeInternal, op, "failed to load user", err)
	}

	if err := utils.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, "", utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to issue token", err)
	}
	return u, token, nil
}

func (s *authService) issueToken(u *models.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email: u.Email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
