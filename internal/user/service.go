// Package user registers customers and staff and issues their session tokens.
package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/antonminaichev/foodorder/internal/logger"
	"github.com/antonminaichev/foodorder/internal/types/user"
)

const minPasswordLen = 8

var (
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidCreds     = errors.New("invalid credentials")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrUserNotFound     = errors.New("user not found")
)

type Service struct {
	repo      UserRepository
	jwtSecret []byte
	jwtTTL    time.Duration
	staff     map[string]struct{}
	now       func() time.Time
}

// NewService builds the service. Accounts registered under one of the staff
// logins are created with admin rights.
func NewService(repo UserRepository, jwtSecret []byte, jwtTTL time.Duration, staff ...string) *Service {
	s := &Service{
		repo:      repo,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
		staff:     make(map[string]struct{}, len(staff)),
		now:       time.Now,
	}
	for _, login := range staff {
		if login = strings.TrimSpace(login); login != "" {
			s.staff[login] = struct{}{}
		}
	}
	return s
}

func (s *Service) Register(ctx context.Context, login, password string) (*user.User, error) {
	if len(password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	_, admin := s.staff[login]
	u := &user.User{
		Login:        login,
		PasswordHash: string(hash),
		IsAdmin:      admin,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.Log.Info("user registered",
		zap.Int64("user_id", u.ID),
		zap.String("login", login),
		zap.Bool("admin", admin),
	)
	return u, nil
}

// Authenticate checks the password and issues an HS256 token whose subject
// is the login.
func (s *Service) Authenticate(ctx context.Context, login, password string) (string, error) {
	u, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			logger.Log.Error("find user", zap.String("login", login), zap.Error(err))
		}
		return "", ErrInvalidCreds
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCreds
	}
	return s.issue(u.Login)
}

func (s *Service) issue(subject string) (string, error) {
	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *Service) TokenTTL() time.Duration { return s.jwtTTL }
