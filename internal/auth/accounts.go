package auth

import (
	"context"
	"errors"
	"strings"

	"chantierplus/internal/apperr"
	"chantierplus/internal/models"
	"chantierplus/internal/repo"
)

// Accounts — саморегистрация владельца и вход по паролю.
type Accounts struct {
	companies *repo.CompanyStore
	users     *repo.UserStore
	tokens    *Tokens
}

func NewAccounts(companies *repo.CompanyStore, users *repo.UserStore, tokens *Tokens) *Accounts {
	return &Accounts{companies: companies, users: users, tokens: tokens}
}

// Session — выданный токен и профиль с названием компании.
type Session struct {
	AccessToken string              `json:"access_token"`
	TokenType   string              `json:"token_type"`
	User        *models.UserProfile `json:"user"`
	CompanyName string              `json:"company_name"`
}

// Register создаёт компанию и активного OWNER.
func (a *Accounts) Register(ctx context.Context, email, password, companyName string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	companyName = strings.TrimSpace(companyName)

	if _, err := a.users.ByEmail(ctx, email); err == nil {
		return nil, apperr.Validation("email already registered")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	taken, err := a.companies.NameTaken(ctx, companyName)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Validation("company name already exists")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	company := &models.Company{Name: companyName}
	owner := &models.UserProfile{
		Email:        email,
		PasswordHash: &hash,
		Role:         models.RoleOwner,
		IsActive:     true,
	}
	if err := a.companies.Register(ctx, company, owner); err != nil {
		return nil, err
	}
	return a.session(owner, company.Name)
}

func (a *Accounts) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := a.users.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.Unauthenticated("incorrect email or password")
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == nil || !CheckPassword(*u.PasswordHash, password) {
		return nil, apperr.Unauthenticated("incorrect email or password")
	}
	if !u.IsActive {
		return nil, apperr.Unauthenticated("account is not active")
	}
	name := "Unknown"
	if c, err := a.companies.Get(ctx, u.CompanyID); err == nil {
		name = c.Name
	}
	return a.session(u, name)
}

func (a *Accounts) session(u *models.UserProfile, companyName string) (*Session, error) {
	tok, err := a.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: tok, TokenType: "bearer", User: u, CompanyName: companyName}, nil
}
