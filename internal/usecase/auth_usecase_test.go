package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"medicare-backend/config"
	"medicare-backend/internal/delivery/dto"
	"medicare-backend/internal/domain/entity"
	"medicare-backend/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	userRepo    *fakeUserRepo
	jwtService  *jwt.JWTService
	redisClient *redis.Client
	usecase     AuthUsecase
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Hour,
		RefreshExpiry: 2 * time.Hour,
	})

	userRepo := newFakeUserRepo()

	return &authFixture{
		userRepo:    userRepo,
		jwtService:  jwtService,
		redisClient: client,
		usecase:     NewAuthUsecase(testLogger(), userRepo, jwtService, client),
	}
}

// login registers and logs in a fresh account, returning the user id and the
// token ids of the issued pair.
func (f *authFixture) login(t *testing.T, email string) (uuid.UUID, string, string) {
	t.Helper()
	ctx := context.Background()

	user, err := f.userRepo.FindByEmail(ctx, email)
	require.NoError(t, err)
	if user == nil {
		_, err := f.usecase.Register(ctx, &dto.RegisterRequest{
			Name:     "Someone",
			Email:    email,
			Password: "correct-horse",
			Role:     entity.RolePatient,
		})
		require.NoError(t, err)
		user, err = f.userRepo.FindByEmail(ctx, email)
		require.NoError(t, err)
	}

	tokens, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: email, Password: "correct-horse"})
	require.NoError(t, err)

	accessClaims, err := f.jwtService.ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	refreshClaims, err := f.jwtService.ValidateToken(tokens.RefreshToken)
	require.NoError(t, err)

	return user.ID, accessClaims.TokenID, refreshClaims.TokenID
}

func (f *authFixture) keyExists(t *testing.T, key string) bool {
	t.Helper()
	n, err := f.redisClient.Exists(context.Background(), key).Result()
	require.NoError(t, err)
	return n > 0
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("allowlists both tokens", func(t *testing.T) {
		f := newAuthFixture(t)
		userID, accessID, refreshID := f.login(t, "alice@example.com")

		assert.True(t, f.keyExists(t, fmt.Sprintf("access_token:%s:%s", userID, accessID)))
		assert.True(t, f.keyExists(t, fmt.Sprintf("refresh_token:%s:%s", userID, refreshID)))
	})

	t.Run("rejects suspended accounts", func(t *testing.T) {
		f := newAuthFixture(t)
		userID, _, _ := f.login(t, "alice@example.com")
		f.userRepo.users[userID].Status = entity.UserStatusSuspended

		_, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "correct-horse"})
		assert.ErrorIs(t, err, ErrAccountSuspended)
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		f.login(t, "alice@example.com")

		_, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("revokes only the session's own keys", func(t *testing.T) {
		f := newAuthFixture(t)
		userID, accessOne, refreshOne := f.login(t, "alice@example.com")
		_, accessTwo, refreshTwo := f.login(t, "alice@example.com")
		otherID, otherAccess, _ := f.login(t, "bob@example.com")

		require.NoError(t, f.usecase.Logout(ctx, userID, accessOne, refreshOne))

		assert.False(t, f.keyExists(t, fmt.Sprintf("access_token:%s:%s", userID, accessOne)))
		assert.False(t, f.keyExists(t, fmt.Sprintf("refresh_token:%s:%s", userID, refreshOne)))

		// The second session and the other user remain untouched
		assert.True(t, f.keyExists(t, fmt.Sprintf("access_token:%s:%s", userID, accessTwo)))
		assert.True(t, f.keyExists(t, fmt.Sprintf("refresh_token:%s:%s", userID, refreshTwo)))
		assert.True(t, f.keyExists(t, fmt.Sprintf("access_token:%s:%s", otherID, otherAccess)))
	})

	t.Run("invalidates the access token for future requests", func(t *testing.T) {
		f := newAuthFixture(t)
		userID, accessID, refreshID := f.login(t, "alice@example.com")

		valid, err := f.usecase.IsTokenValid(ctx, userID, accessID, jwt.AccessToken)
		require.NoError(t, err)
		require.True(t, valid)

		require.NoError(t, f.usecase.Logout(ctx, userID, accessID, refreshID))

		valid, err = f.usecase.IsTokenValid(ctx, userID, accessID, jwt.AccessToken)
		require.NoError(t, err)
		assert.False(t, valid)
	})
}

func TestRefreshTokenRotation(t *testing.T) {
	ctx := context.Background()

	f := newAuthFixture(t)
	userID, _, refreshID := f.login(t, "alice@example.com")

	tokens, err := f.usecase.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	rotated, err := f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The rotated-away token is single-use
	_, err = f.usecase.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// The first session's refresh token is still live
	assert.True(t, f.keyExists(t, fmt.Sprintf("refresh_token:%s:%s", userID, refreshID)))
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	newDoctor := func(t *testing.T, f *authFixture) *entity.User {
		t.Helper()
		doctor := &entity.User{
			ID:             uuid.New(),
			Name:           "Dr. Bob",
			Email:          "bob@example.com",
			Role:           entity.RoleDoctor,
			Status:         entity.UserStatusActive,
			Specialization: "Cardiology",
		}
		f.userRepo.users[doctor.ID] = doctor
		return doctor
	}

	strPtr := func(s string) *string { return &s }
	floatPtr := func(v float64) *float64 { return &v }

	t.Run("updates name and doctor fields", func(t *testing.T) {
		f := newAuthFixture(t)
		doctor := newDoctor(t, f)

		got, err := f.usecase.UpdateProfile(ctx, entity.Actor{ID: doctor.ID, Role: doctor.Role}, &dto.UpdateProfileRequest{
			Name:            strPtr("  Dr. Robert  "),
			ConsultationFee: floatPtr(150),
		})
		require.NoError(t, err)
		assert.Equal(t, "Dr. Robert", got.Name)
		assert.Equal(t, float64(150), got.ConsultationFee)
		assert.Equal(t, "Cardiology", got.Specialization)
	})

	t.Run("ignores doctor fields for patients", func(t *testing.T) {
		f := newAuthFixture(t)
		userID, _, _ := f.login(t, "alice@example.com")

		got, err := f.usecase.UpdateProfile(ctx, entity.Actor{ID: userID, Role: entity.RolePatient}, &dto.UpdateProfileRequest{
			ConsultationFee: floatPtr(999),
			Specialization:  strPtr("Surgery"),
		})
		require.NoError(t, err)
		assert.Zero(t, got.ConsultationFee)
		assert.Empty(t, got.Specialization)
	})

	t.Run("rejects a name that trims below two characters", func(t *testing.T) {
		f := newAuthFixture(t)
		doctor := newDoctor(t, f)

		_, err := f.usecase.UpdateProfile(ctx, entity.Actor{ID: doctor.ID, Role: doctor.Role}, &dto.UpdateProfileRequest{
			Name: strPtr("  a  "),
		})
		assert.ErrorIs(t, err, ErrNameTooShort)
	})

	t.Run("rejects unknown user", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.usecase.UpdateProfile(ctx, entity.Actor{ID: uuid.New()}, &dto.UpdateProfileRequest{})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
