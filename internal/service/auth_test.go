package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/mealquest/backend/internal/models"
	"github.com/pageza/mealquest/backend/internal/types"
)

func setupAuthService(t *testing.T) *AuthService {
	t.Helper()
	svc, _ := setupAuthServiceWithDB(t)
	return svc
}

func setupAuthServiceWithDB(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}))

	log, _ := logtest.NewNullLogger()
	return NewAuthService(db, "test-secret", time.Hour, log), db
}

func TestRegisterAndLogin(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, " Cook@Example.com ", "secret1", "Cook")
	require.NoError(t, err)
	assert.Equal(t, "cook@example.com", user.Email)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.False(t, claims.Guest)

	loggedIn, token2, err := svc.Login(ctx, "cook@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, token2)

	fetched, err := svc.GetUserByID(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Cook", fetched.DisplayName)
}

func TestRegisterValidation(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "not-an-email", "secret1", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, _, err = svc.Register(ctx, "cook@example.com", "123", "")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, _, err = svc.Register(ctx, "cook@example.com", "secret1", "")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "COOK@example.com", "secret2", "")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterLosingConcurrentSignUp(t *testing.T) {
	svc, db := setupAuthServiceWithDB(t)

	// Another sign-up for the same address lands between the existence
	// check and the insert.
	raced := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:concurrent_signup", func(tx *gorm.DB) {
		if raced {
			return
		}
		raced = true
		now := time.Now()
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO users (id, created_at, updated_at, email, password_hash) VALUES (?, ?, ?, ?, ?)",
			uuid.NewString(), now, now, "cook@example.com", "hash",
		)
	}))

	_, _, err := svc.Register(context.Background(), "cook@example.com", "secret1", "")
	assert.ErrorIs(t, err, ErrUserExists)
	assert.True(t, raced)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()
	_, _, err := svc.Register(ctx, "cook@example.com", "secret1", "")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "cook@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGuestSessionsAreDistinct(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	id1, token1, err := svc.Guest(ctx)
	require.NoError(t, err)
	id2, _, err := svc.Guest(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	claims, err := svc.ValidateToken(token1)
	require.NoError(t, err)
	assert.True(t, claims.Guest)
	assert.Equal(t, id1, claims.UserID)
}

func TestValidateTokenRejectsForgeries(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	log, _ := logtest.NewNullLogger()
	other := NewAuthService(nil, "other-secret", time.Hour, log)
	forged, err := other.GenerateToken("user1", "", false)
	require.NoError(t, err)
	_, err = svc.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user1",
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		UserID: "user1",
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequestPasswordReset(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()
	_, _, err := svc.Register(ctx, "cook@example.com", "secret1", "")
	require.NoError(t, err)

	assert.NoError(t, svc.RequestPasswordReset(ctx, "cook@example.com"))
	assert.NoError(t, svc.RequestPasswordReset(ctx, "nobody@example.com"))
	assert.ErrorIs(t, svc.RequestPasswordReset(ctx, "nope"), ErrInvalidEmail)
}
