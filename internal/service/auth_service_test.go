package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/acadplan-api/internal/models"
	appErrors "github.com/noah-isme/acadplan-api/pkg/errors"
)

type mockAuthRepo struct {
	userByEmail      *models.User
	userByID         *models.User
	emailExists      bool
	sessions         map[string]*models.Session
	revokedAll       bool
	auditLogs        []*models.AuditLog
	lastLoginUpdated bool
	createdUser      *models.User
	passwordUpdated  string
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{sessions: make(map[string]*models.Session)}
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.userByID != nil {
		return m.userByID, nil
	}
	if m.userByEmail != nil {
		return m.userByEmail, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.emailExists, nil
}

func (m *mockAuthRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "u-new"
	m.createdUser = user
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	m.passwordUpdated = passwordHash
	return nil
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func (m *mockAuthRepo) CreateSession(ctx context.Context, session *models.Session) error {
	m.sessions[session.TokenID] = session
	return nil
}

func (m *mockAuthRepo) FindSessionByTokenID(ctx context.Context, tokenID string) (*models.Session, error) {
	s, ok := m.sessions[tokenID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockAuthRepo) RevokeSession(ctx context.Context, id string, revokedAt time.Time) error {
	for _, s := range m.sessions {
		if s.ID == id {
			s.Revoked = true
			s.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserSessions(ctx context.Context, userID string) error {
	m.revokedAll = true
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func hashPassword(t *testing.T, raw string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func authServiceFixture(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, nil, nil, AuthConfig{Secret: "test-secret", Issuer: "acadplan"})
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := newMockAuthRepo()
	repo.userByEmail = &models.User{
		ID:           "u1",
		Email:        "coord@example.org",
		PasswordHash: hashPassword(t, "s3cret"),
		FullName:     "Coordinator",
		Role:         models.RoleCoordinator,
		Active:       true,
	}
	svc := authServiceFixture(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "coord@example.org", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionToken)
	assert.Equal(t, "u1", resp.User.ID)
	assert.True(t, repo.lastLoginUpdated)
	require.Len(t, repo.sessions, 1)

	remaining := time.Until(resp.ExpiresAt)
	assert.InDelta(t, (30 * 24 * time.Hour).Hours(), remaining.Hours(), 1)

	claims, err := svc.ValidateToken(resp.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	_, ok := repo.sessions[claims.ID]
	assert.True(t, ok)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newMockAuthRepo()
	repo.userByEmail = &models.User{ID: "u1", Email: "a@b.c", PasswordHash: hashPassword(t, "right"), Active: true}
	svc := authServiceFixture(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@b.c", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestAuthServiceLoginUnknownEmailSameError(t *testing.T) {
	repo := newMockAuthRepo()
	svc := authServiceFixture(repo)

	_, unknownErr := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@b.c", Password: "x"})
	require.Error(t, unknownErr)

	repo.userByEmail = &models.User{ID: "u1", Email: "a@b.c", PasswordHash: hashPassword(t, "right"), Active: true}
	_, wrongErr := svc.Login(context.Background(), models.LoginRequest{Email: "a@b.c", Password: "wrong"})
	require.Error(t, wrongErr)

	assert.Equal(t, appErrors.FromError(unknownErr).Message, appErrors.FromError(wrongErr).Message)
	assert.Equal(t, appErrors.FromError(unknownErr).Status, appErrors.FromError(wrongErr).Status)
}

func TestAuthServiceLoginEmptyHashRejected(t *testing.T) {
	repo := newMockAuthRepo()
	repo.userByEmail = &models.User{ID: "u1", Email: "a@b.c", PasswordHash: "", Active: true}
	svc := authServiceFixture(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@b.c", Password: "anything"})
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestAuthServiceLoginMissingFields(t *testing.T) {
	svc := authServiceFixture(newMockAuthRepo())

	_, err := svc.Login(context.Background(), models.LoginRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Contains(t, appErr.Message, "email")
	assert.Contains(t, appErr.Message, "password")
}

func TestAuthServiceRegisterDuplicateEmail(t *testing.T) {
	repo := newMockAuthRepo()
	repo.emailExists = true
	svc := authServiceFixture(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "a@b.c", Password: "s3cret", FullName: "Someone",
	})
	require.Error(t, err)
	assert.Equal(t, 409, appErrors.FromError(err).Status)
}

func TestAuthServiceRegisterHashesPassword(t *testing.T) {
	repo := newMockAuthRepo()
	svc := authServiceFixture(repo)

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Email: "a@b.c", Password: "s3cret", FullName: "Someone",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))
	assert.Equal(t, models.RoleTeacher, user.Role)
}

func TestAuthServiceLogoutRevokesSession(t *testing.T) {
	repo := newMockAuthRepo()
	repo.userByEmail = &models.User{ID: "u1", Email: "a@b.c", PasswordHash: hashPassword(t, "s3cret"), Active: true}
	svc := authServiceFixture(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "a@b.c", Password: "s3cret"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.SessionToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims, "", ""))
	assert.True(t, repo.sessions[claims.ID].Revoked)
}

func TestAuthServiceLogoutUnknownSession(t *testing.T) {
	svc := authServiceFixture(newMockAuthRepo())

	claims := &models.JWTClaims{UserID: "u1"}
	claims.ID = "missing"
	err := svc.Logout(context.Background(), claims, "", "")
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestAuthServiceChangePasswordRevokesSessions(t *testing.T) {
	repo := newMockAuthRepo()
	repo.userByID = &models.User{ID: "u1", Email: "a@b.c", PasswordHash: hashPassword(t, "old-pass"), Active: true}
	svc := authServiceFixture(repo)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "old-pass",
		NewPassword: "new-pass",
	})
	require.NoError(t, err)
	assert.True(t, repo.revokedAll)
	assert.NotEmpty(t, repo.passwordUpdated)
}

func TestAuthServiceChangePasswordWrongOld(t *testing.T) {
	repo := newMockAuthRepo()
	repo.userByID = &models.User{ID: "u1", Email: "a@b.c", PasswordHash: hashPassword(t, "old-pass"), Active: true}
	svc := authServiceFixture(repo)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "not-it",
		NewPassword: "new-pass",
	})
	require.Error(t, err)
	assert.Equal(t, 403, appErrors.FromError(err).Status)
	assert.False(t, repo.revokedAll)
}

func TestAuthServiceValidateTokenGarbage(t *testing.T) {
	svc := authServiceFixture(newMockAuthRepo())

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}
