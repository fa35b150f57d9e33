package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/opennoc/fiberplant/internal/auth/domain"
	"github.com/opennoc/fiberplant/internal/auth/repository"
	"github.com/opennoc/fiberplant/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_auth_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.Exec(`CREATE TABLE users (
		id BIGINT PRIMARY KEY,
		username TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`).Error
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if err := db.Exec(`CREATE UNIQUE INDEX uniq_users_username ON users (username)`).Error; err != nil {
		t.Fatalf("schema: %v", err)
	}

	node, _ := snowflake.NewNode(1)
	// The jwt library checks exp against wall time, so the fake clock starts
	// at the real now and only moves forward from there.
	clk := clock.NewFakeClock(time.Now())
	svc := &Service{
		db:       db,
		log:      zaptest.NewLogger(t),
		clock:    clk,
		genID:    node,
		repo:     repository.Provide(),
		secret:   []byte("test-secret"),
		tokenTTL: int64((12 * time.Hour).Seconds()),
	}
	return svc, clk
}

func TestCreateUser(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	t.Run("NormalizesUsername", func(t *testing.T) {
		user, err := svc.CreateUser(ctx, domain.CreateUserRequest{
			Username: "  Planner.One ",
			Password: "s3cret-pass",
			Role:     domain.RolePlanner,
		})
		require.NoError(t, err)
		assert.Equal(t, "planner.one", user.Username)
		assert.Equal(t, domain.RolePlanner, user.Role)
		assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, domain.CreateUserRequest{
			Username: "PLANNER.ONE",
			Password: "another-pass",
			Role:     domain.RoleAdmin,
		})
		assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	})

	t.Run("ShortPassword", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, domain.CreateUserRequest{
			Username: "shorty",
			Password: "short",
			Role:     domain.RolePlanner,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidPassword)
	})

	t.Run("BadRole", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, domain.CreateUserRequest{
			Username: "nobody",
			Password: "long-enough",
			Role:     domain.Role("superuser"),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRole)
	})
}

func TestLoginAndVerify(t *testing.T) {
	svc, clk := setupService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Username: "tech.ana",
		Password: "field-pass-1",
		Role:     domain.RoleTechnician,
	})
	require.NoError(t, err)

	t.Run("RoundTrip", func(t *testing.T) {
		result, err := svc.Login(ctx, "Tech.Ana", "field-pass-1")
		require.NoError(t, err)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, user.ID, result.User.ID)

		claims, err := svc.VerifyToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, "tech.ana", claims.Username)
		assert.Equal(t, domain.RoleTechnician, claims.Role)
		assert.Equal(t, user.ID.String(), claims.Subject)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := svc.Login(ctx, "tech.ana", "wrong")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost", "whatever-pass")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		result, err := svc.Login(ctx, "tech.ana", "field-pass-1")
		require.NoError(t, err)

		clk.Advance(13 * time.Hour)
		_, err = svc.VerifyToken(result.Token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		_, err := svc.VerifyToken("not.a.jwt")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
		_, err = svc.VerifyToken("")
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("TamperedToken", func(t *testing.T) {
		other := &Service{
			db:       svc.db,
			log:      svc.log,
			clock:    svc.clock,
			genID:    svc.genID,
			repo:     svc.repo,
			secret:   []byte("different-secret"),
			tokenTTL: svc.tokenTTL,
		}
		result, err := other.Login(ctx, "tech.ana", "field-pass-1")
		require.NoError(t, err)

		_, err = svc.VerifyToken(result.Token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})
}

func TestGetAndListUsers(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	node, _ := snowflake.NewNode(2)
	_, err := svc.GetUser(ctx, node.Generate())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	created, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Username: "admin",
		Password: "admin-pass-1",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Username, got.Username)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
