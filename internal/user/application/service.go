// Package application implements signup, login, and bearer token validation
// for the identity service. Tokens are HS256 JWTs carrying the user id and
// username, valid for one hour.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/dongju2-lee/sample-micro-app/internal/user/domain"
)

const tokenTTL = 60 * time.Minute

type UserRepository interface {
	Create(ctx context.Context, u domain.User) (domain.User, error)
	ByUsername(ctx context.Context, username string) (domain.User, error)
	ByID(ctx context.Context, id int64) (domain.User, error)
}

type UserClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

type Service struct {
	log    *slog.Logger
	repo   UserRepository
	secret []byte
	now    func() time.Time
}

func NewService(log *slog.Logger, repo UserRepository, secret string) *Service {
	return &Service{log: log, repo: repo, secret: []byte(secret), now: time.Now}
}

func (s *Service) Signup(ctx context.Context, username, email, password string) (domain.User, error) {
	if _, err := s.repo.ByUsername(ctx, username); err == nil {
		return domain.User{}, fmt.Errorf("%w: %s", domain.ErrUsernameTaken, username)
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.repo.Create(ctx, domain.User{
		Username:       username,
		Email:          email,
		HashedPassword: string(hash),
		Active:         true,
	})
	if err != nil {
		return domain.User{}, err
	}
	s.log.Info("user created", "user_id", u.ID, "username", u.Username)
	return u, nil
}

// Login verifies the credentials and mints a bearer token. Bad username and
// bad password are deliberately indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.repo.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredential
		}
		return "", err
	}
	if !u.Active {
		return "", domain.ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredential
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      u.Username,
		"user_id":  u.ID,
		"username": u.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	s.log.Info("user logged in", "user_id", u.ID, "username", u.Username)
	return signed, nil
}

// Validate parses and verifies a bearer token and returns its claims.
func (s *Service) Validate(ctx context.Context, tokenString string) (UserClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return UserClaims{}, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return UserClaims{}, domain.ErrInvalidToken
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return UserClaims{}, domain.ErrInvalidToken
	}
	username, _ := claims["username"].(string)

	// The account may have been deactivated since the token was issued.
	u, err := s.repo.ByID(ctx, int64(userID))
	if err != nil || !u.Active {
		return UserClaims{}, domain.ErrInvalidToken
	}
	return UserClaims{UserID: u.ID, Username: username}, nil
}
