package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"Bt1QAuth/model"
	"Bt1QAuth/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, repository.UserRepository) {
	t.Helper()
	repo := repository.NewMemoryUserRepository()
	issuer := NewTokenIssuer([]byte("test-secret"), 60*time.Minute)
	return NewService(repo, issuer), repo
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "a@x.com", "longpassword1", "Alice Example")
	require.NoError(t, err)
	require.NotNil(t, user)

	_, err = uuid.Parse(user.ID)
	assert.NoError(t, err, "user ID should be a UUID")
	assert.False(t, user.CreatedAt.IsZero(), "registration timestamp should be set")
	assert.False(t, user.Verified)
	assert.Equal(t, "Alice Example", user.FullName.String)

	stored, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "longpassword1", stored.PasswordHash)
	assert.True(t, VerifyPassword("longpassword1", stored.PasswordHash))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "longpassword1", "")
	require.NoError(t, err)

	// Same username, different email.
	_, err = svc.Register(ctx, "alice", "other@x.com", "longpassword1", "")
	assert.ErrorIs(t, err, repository.ErrDuplicateUsername)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "longpassword1", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob", "a@x.com", "longpassword1", "")
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
}

// blindRepo hides existing users from the pre-check lookups, simulating a
// concurrent registration landing between the existence check and the
// insert. The store's unique constraint must still decide.
type blindRepo struct {
	repository.UserRepository
}

func (r *blindRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return nil, nil
}

func (r *blindRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}

func TestRegister_ConstraintIsAuthoritative(t *testing.T) {
	t.Parallel()
	inner := repository.NewMemoryUserRepository()
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	svc := NewService(&blindRepo{UserRepository: inner}, issuer)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "longpassword1", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@x.com", "longpassword1", "")
	assert.ErrorIs(t, err, repository.ErrDuplicateUsername,
		"the insert's duplicate error must surface even when the pre-check saw nothing")
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	svc, repo := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "a@x.com", "longpassword1", "")
	require.NoError(t, err)

	token, ttl, err := svc.Login(ctx, "alice", "longpassword1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, 60*time.Minute, ttl)

	claims, err := svc.Tokens().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, registered.ID, claims.UserID)

	stored, err := repo.GetUserByID(ctx, registered.ID)
	require.NoError(t, err)
	assert.True(t, stored.LastLoginAt.Valid, "last login should be stamped")
}

func TestLogin_InvalidCredentialsIndistinguishable(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "longpassword1", "")
	require.NoError(t, err)

	_, _, wrongPassword := svc.Login(ctx, "alice", "wrongpassword")
	_, _, unknownUser := svc.Login(ctx, "nobody", "longpassword1")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error(),
		"wrong password and unknown user must be indistinguishable")
}

// lastLoginFailRepo fails the last-login update only.
type lastLoginFailRepo struct {
	repository.UserRepository
}

func (r *lastLoginFailRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return errors.New("write timeout")
}

func TestLogin_LastLoginFailureDoesNotAbort(t *testing.T) {
	t.Parallel()
	inner := repository.NewMemoryUserRepository()
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	svc := NewService(&lastLoginFailRepo{UserRepository: inner}, issuer)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "longpassword1", "")
	require.NoError(t, err)

	token, _, err := svc.Login(ctx, "alice", "longpassword1")
	require.NoError(t, err, "login must succeed despite the last-login persistence failure")
	assert.NotEmpty(t, token)
}

func TestResolveUser_Success(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "alice", "a@x.com", "longpassword1", "")
	require.NoError(t, err)

	token, _, err := svc.Login(ctx, "alice", "longpassword1")
	require.NoError(t, err)

	user, err := svc.ResolveUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.LastLoginAt.Valid, "resolution returns current store state")
}

func TestResolveUser_UnknownUser(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Well-formed, unexpired, correctly-signed token whose subject is not in
	// the store.
	token, err := svc.Tokens().GenerateToken(uuid.NewString(), "ghost")
	require.NoError(t, err)

	_, err = svc.ResolveUser(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveUser_BadToken(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	_, err := svc.ResolveUser(context.Background(), "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
