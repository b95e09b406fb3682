package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Pankaj72885/care.xyz/internal/apperr"
	"github.com/Pankaj72885/care.xyz/internal/user/domain"
	"github.com/Pankaj72885/care.xyz/internal/user/repository"
	"github.com/Pankaj72885/care.xyz/pkg/auth"
)

type AuthSvc struct {
	repo       *repository.UserRepo
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthSvc(r *repository.UserRepo, secret string, accessTTL, refreshTTL time.Duration) *AuthSvc {
	return &AuthSvc{repo: r, secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

type TokenPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Contact  string
	NID      string
}

// Same formats the profile update enforces: Bangladeshi NID and mobile.
var (
	nidRe     = regexp.MustCompile(`^\d{13}$`)
	contactRe = regexp.MustCompile(`^\d{11}$`)
)

func (s *AuthSvc) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if len(in.Name) < 2 {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", apperr.ErrValidation)
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", apperr.ErrValidation)
	}
	if in.NID != "" && !nidRe.MatchString(in.NID) {
		return nil, fmt.Errorf("%w: nid must be 13 digits", apperr.ErrValidation)
	}
	if in.Contact != "" && !contactRe.MatchString(in.Contact) {
		return nil, fmt.Errorf("%w: contact must be 11 digits", apperr.ErrValidation)
	}
	if _, err := s.repo.ByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: user already exists with this email", apperr.ErrConflict)
	}
	if in.NID != "" {
		if _, err := s.repo.ByNID(ctx, in.NID); err == nil {
			return nil, fmt.Errorf("%w: nid already in use", apperr.ErrConflict)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Contact:      in.Contact,
		Role:         domain.RoleUser,
	}
	if in.NID != "" {
		u.NID = &in.NID
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, fmt.Errorf("%w: user already exists with this email", apperr.ErrConflict)
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthSvc) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	u, err := s.repo.ByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}
	if u.PasswordHash == "" {
		// OAuth-only account
		return nil, nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil, fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	}
	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// Refresh re-issues both tokens. Claims are rebuilt from the database so a
// role change takes effect on the next refresh rather than living forever
// inside an old token.
func (s *AuthSvc) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.ParseValidate(s.secret, refreshToken)
	if err != nil || claims.Type != auth.TokenRefresh {
		return nil, fmt.Errorf("%w: invalid refresh token", apperr.ErrUnauthorized)
	}
	u, err := s.repo.ByID(ctx, claims.Sub)
	if err != nil {
		return nil, fmt.Errorf("%w: account no longer exists", apperr.ErrUnauthorized)
	}
	return s.issueTokens(u)
}

func (s *AuthSvc) issueTokens(u *domain.User) (*TokenPair, error) {
	access, err := auth.CreateAccessToken(s.secret, u.ID, string(u.Role), u.Email, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.CreateRefreshToken(s.secret, u.ID, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// ---------- Google OAuth ----------

// oauthExchanger is the subset of oauth2.Config the service needs; tests
// plug in a fake.
type oauthExchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (accessToken string, err error)
	Userinfo(ctx context.Context, accessToken string) (email, name, picture string, err error)
}

type GoogleProvider struct {
	svc      *AuthSvc
	exchange oauthExchanger
}

func NewGoogleProvider(svc *AuthSvc, exchange oauthExchanger) *GoogleProvider {
	return &GoogleProvider{svc: svc, exchange: exchange}
}

func (p *GoogleProvider) LoginURL(state string) string {
	return p.exchange.AuthCodeURL(state)
}

// HandleCallback exchanges the authorization code, fetches the Google
// profile and upserts the local user by email. First sign-in creates an
// OAuth-only account (no password hash) that still needs profile
// completion for NID/contact.
func (p *GoogleProvider) HandleCallback(ctx context.Context, code string) (*domain.User, *TokenPair, error) {
	tok, err := p.exchange.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: oauth exchange failed", apperr.ErrUnauthorized)
	}
	email, name, picture, err := p.exchange.Userinfo(ctx, tok)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: fetch userinfo failed", apperr.ErrUnauthorized)
	}
	if email == "" {
		return nil, nil, fmt.Errorf("%w: google account has no email", apperr.ErrUnauthorized)
	}

	u := &domain.User{Name: name, Email: email, ImageURL: picture, Role: domain.RoleUser}
	if err := p.svc.repo.UpsertByEmail(ctx, u); err != nil {
		return nil, nil, err
	}
	// re-read to pick up the stored role for existing accounts
	u, err = p.svc.repo.ByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	pair, err := p.svc.issueTokens(u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

