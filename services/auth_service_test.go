package services

import (
	"context"
	"errors"
	"testing"

	"knowledge-base-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) *authService {
	return &authService{
		store:      newTestStore(t),
		jwtManager: testJWT(),
		bcryptCost: bcrypt.MinCost,
	}
}

func TestRegister_DefaultsToViewer(t *testing.T) {
	svc := newAuthService(t)

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleViewer, res.User.Role)
	assert.NotEmpty(t, res.Token)
	assert.NotEqual(t, "password123", res.User.Password)

	claims, err := svc.jwtManager.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
}

func TestRegister_Duplicates(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	var conflict models.ErrorConflict

	_, err = svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "other@example.com", Password: "password123"})
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Username already exists", conflict.Message)

	_, err = svc.Register(ctx, models.RegisterRequest{Username: "other", Email: "alice@example.com", Password: "password123"})
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "Email already exists", conflict.Message)
}

func TestLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, models.LoginRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	var unauthorized models.ErrorUnauthorized
	_, err = svc.Login(ctx, models.LoginRequest{Username: "alice", Password: "wrong"})
	assert.True(t, errors.As(err, &unauthorized))

	_, err = svc.Login(ctx, models.LoginRequest{Username: "nobody", Password: "password123"})
	assert.True(t, errors.As(err, &unauthorized))
}

func TestLogin_SyncedUserCannotUsePlaceholder(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	sync := NewIdentityService(svc.store, svc.jwtManager, nil)
	_, err := sync.Sync(ctx, models.SyncRequest{ExternalID: "ext-1", Email: "sso@example.com"}, SessionCredentials{})
	require.NoError(t, err)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "sso", Password: models.ExternalAuthPassword})

	var unauthorized models.ErrorUnauthorized
	assert.True(t, errors.As(err, &unauthorized))
}
