package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/orbitcrm/orbitcrm/internal/auth/domain"
	"github.com/orbitcrm/orbitcrm/internal/auth/password"
	"github.com/orbitcrm/orbitcrm/internal/auth/repository"
	"github.com/orbitcrm/orbitcrm/internal/auth/service"
	"github.com/orbitcrm/orbitcrm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  domain.Service
	user domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Role{}, &domain.User{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	role := domain.Role{ID: node.Generate(), Name: "Sales"}
	require.NoError(t, db.Create(&role).Error)

	hash, err := password.Hash("hunter2")
	require.NoError(t, err)
	user := domain.User{
		ID:           node.Generate(),
		Name:         "Sam Seller",
		Email:        "sam@orbit.test",
		PasswordHash: hash,
		RoleID:       role.ID,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)

	svc := service.New(service.Params{
		DB:   db,
		Log:  zap.NewNop(),
		Cfg:  config.Config{AuthJWTSecret: "test-secret", AuthTokenTTL: time.Hour},
		Repo: repository.Provide(),
	})
	return &fixture{db: db, node: node, svc: svc, user: user}
}

func TestLogin_IssuesTokenForValidCredentials(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Login(context.Background(), domain.LoginRequest{
		Email:    "SAM@orbit.test",
		Password: "hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, f.user.ID, resp.User.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), domain.LoginRequest{
		Email:    "sam@orbit.test",
		Password: "hunter3",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), domain.LoginRequest{
		Email:    "nobody@orbit.test",
		Password: "hunter2",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&domain.User{}).
		Where("id = ?", f.user.ID).
		Update("is_active", false).Error)

	_, err := f.svc.Login(context.Background(), domain.LoginRequest{
		Email:    "sam@orbit.test",
		Password: "hunter2",
	})
	assert.ErrorIs(t, err, domain.ErrInactiveUser)
}

func TestAuthenticate_ReloadsPrincipalWithRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, domain.LoginRequest{
		Email:    "sam@orbit.test",
		Password: "hunter2",
	})
	require.NoError(t, err)

	principal, err := f.svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, principal.UserID)
	assert.Equal(t, "sam@orbit.test", principal.Email)
	assert.Equal(t, "Sales", principal.RoleName)
}

func TestAuthenticate_RejectsGarbageToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestAuthenticate_RejectsDeactivatedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, domain.LoginRequest{
		Email:    "sam@orbit.test",
		Password: "hunter2",
	})
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&domain.User{}).
		Where("id = ?", f.user.ID).
		Update("is_active", false).Error)

	_, err = f.svc.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
