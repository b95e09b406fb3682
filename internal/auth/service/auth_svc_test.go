package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Pankaj72885/care.xyz/internal/apperr"
	"github.com/Pankaj72885/care.xyz/internal/user/domain"
	"github.com/Pankaj72885/care.xyz/internal/user/repository"
	"github.com/Pankaj72885/care.xyz/pkg/auth"
)

const testSecret = "test-secret"

func testAuth(t *testing.T) (*AuthSvc, *repository.UserRepo) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	repo := repository.NewUserRepo(gdb)
	require.NoError(t, repo.Migrate())
	return NewAuthSvc(repo, testSecret, time.Hour, 24*time.Hour), repo
}

func register(t *testing.T, svc *AuthSvc) *domain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), RegisterInput{
		Name: "Rahim Uddin", Email: "rahim@example.com", Password: "secret1",
		Contact: "01712345678",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := testAuth(t)

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"short name", RegisterInput{Name: "x", Email: "a@b.com", Password: "secret1"}},
		{"bad email", RegisterInput{Name: "Rahim", Email: "not-an-email", Password: "secret1"}},
		{"short password", RegisterInput{Name: "Rahim", Email: "a@b.com", Password: "12345"}},
		{"bad nid", RegisterInput{Name: "Rahim", Email: "a@b.com", Password: "secret1", NID: "123"}},
		{"bad contact", RegisterInput{Name: "Rahim", Email: "a@b.com", Password: "secret1", Contact: "017"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := testAuth(t)
	register(t, svc)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Other", Email: "rahim@example.com", Password: "secret1",
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRegisterDuplicateNID(t *testing.T) {
	svc, _ := testAuth(t)
	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "First", Email: "first@example.com", Password: "secret1", NID: "1234567890123",
	})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{
		Name: "Second", Email: "second@example.com", Password: "secret1", NID: "1234567890123",
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestLoginAndTokenClaims(t *testing.T) {
	svc, _ := testAuth(t)
	u := register(t, svc)

	got, pair, err := svc.Login(context.Background(), "rahim@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	claims, err := auth.ParseValidate(testSecret, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Sub)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, auth.TokenAccess, claims.Type)
}

func TestLoginFailures(t *testing.T) {
	svc, repo := testAuth(t)
	register(t, svc)

	_, _, err := svc.Login(context.Background(), "rahim@example.com", "wrong-pass")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	// OAuth-only account has no password hash
	oauthUser := &domain.User{Name: "OAuth Only", Email: "oauth@example.com", Role: domain.RoleUser}
	require.NoError(t, repo.Create(context.Background(), oauthUser))
	_, _, err = svc.Login(context.Background(), "oauth@example.com", "anything")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRefreshPicksUpRoleChange(t *testing.T) {
	svc, repo := testAuth(t)
	u := register(t, svc)
	_, pair, err := svc.Login(context.Background(), "rahim@example.com", "secret1")
	require.NoError(t, err)

	_, err = repo.UpdateFields(context.Background(), u.ID, map[string]any{"role": domain.RoleAdmin})
	require.NoError(t, err)

	fresh, err := svc.Refresh(context.Background(), pair.Refresh)
	require.NoError(t, err)
	claims, err := auth.ParseValidate(testSecret, fresh.Access)
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", claims.Role, "refresh rebuilds claims from the database")
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := testAuth(t)
	register(t, svc)
	_, pair, err := svc.Login(context.Background(), "rahim@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.Access)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = svc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

// ---------- Google OAuth ----------

type fakeExchanger struct {
	email, name, picture string
	exchangeErr          error
}

func (f *fakeExchanger) AuthCodeURL(state string) string { return "https://accounts.example/" + state }

func (f *fakeExchanger) Exchange(_ context.Context, code string) (string, error) {
	if f.exchangeErr != nil {
		return "", f.exchangeErr
	}
	return "tok-" + code, nil
}

func (f *fakeExchanger) Userinfo(_ context.Context, _ string) (string, string, string, error) {
	return f.email, f.name, f.picture, nil
}

func TestGoogleCallbackCreatesUser(t *testing.T) {
	svc, repo := testAuth(t)
	p := NewGoogleProvider(svc, &fakeExchanger{
		email: "karim@gmail.com", name: "Karim Ahmed", picture: "https://img.example/karim",
	})

	u, pair, err := p.HandleCallback(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "karim@gmail.com", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Empty(t, u.PasswordHash)
	assert.NotEmpty(t, pair.Access)

	stored, err := repo.ByEmail(context.Background(), "karim@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)
}

func TestGoogleCallbackKeepsExistingRole(t *testing.T) {
	svc, repo := testAuth(t)
	u := register(t, svc)
	_, err := repo.UpdateFields(context.Background(), u.ID, map[string]any{"role": domain.RoleAdmin})
	require.NoError(t, err)

	p := NewGoogleProvider(svc, &fakeExchanger{email: "rahim@example.com", name: "Rahim G"})
	got, _, err := p.HandleCallback(context.Background(), "code-2")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role, "upsert must never downgrade a stored role")

	// password login still works afterwards
	_, _, err = svc.Login(context.Background(), "rahim@example.com", "secret1")
	assert.NoError(t, err)
}

func TestGoogleCallbackExchangeFailure(t *testing.T) {
	svc, _ := testAuth(t)
	p := NewGoogleProvider(svc, &fakeExchanger{exchangeErr: errors.New("denied")})
	_, _, err := p.HandleCallback(context.Background(), "bad-code")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
