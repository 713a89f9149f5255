// Package auth — выпуск/проверка bearer-токенов и учётные записи владельцев.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"chantierplus/internal/apperr"
	"chantierplus/internal/models"
	"chantierplus/internal/repo"
)

// Identity — единственный способ узнать, кто делает запрос.
type Identity interface {
	Authenticate(ctx context.Context, bearer string) (*models.UserProfile, error)
}

type UserGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*models.UserProfile, error)
}

// Tokens — HS256 JWT с sub = id пользователя.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 168 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) Issue(userID uuid.UUID) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) Verify(token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return uuid.Nil, apperr.Unauthenticated("invalid or expired token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperr.Unauthenticated("invalid token subject")
	}
	return id, nil
}

// Service проверяет токен и загружает активный профиль.
type Service struct {
	tokens *Tokens
	users  UserGetter
}

func NewService(tokens *Tokens, users UserGetter) *Service {
	return &Service{tokens: tokens, users: users}
}

func (s *Service) Authenticate(ctx context.Context, bearer string) (*models.UserProfile, error) {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return nil, apperr.Unauthenticated("not authenticated")
	}
	id, err := s.tokens.Verify(bearer)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.Unauthenticated("user not found or inactive")
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, apperr.Unauthenticated("user not found or inactive")
	}
	return u, nil
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
