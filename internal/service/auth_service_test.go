package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
	"github.com/schreiber-platform/schreiber-api/internal/models"
	"github.com/schreiber-platform/schreiber-api/internal/repository"
)

func setupAuthService(t *testing.T) AuthService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:authsvc?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	require.NoError(t, db.Exec("DELETE FROM users").Error)

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAuthService(repository.NewUserRepository(db), validate, "test-secret", 0, 4, zerolog.Nop())
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, dto.RegisterRequest{
		Email:     "Max@Example.com",
		Password:  "secret-password",
		FirstName: "Max",
		LastName:  "Mustermann",
	})
	require.NoError(t, err)
	require.Equal(t, "max@example.com", user.Email, "email should be normalized")
	require.Equal(t, models.RoleUser, user.Role)
	require.False(t, user.IsAdmin)

	token, err := svc.Login(ctx, dto.LoginRequest{Email: "max@example.com", Password: "secret-password"})
	require.NoError(t, err)
	require.NotEmpty(t, token.AccessToken)
	require.Positive(t, token.ExpiresIn)

	parsed, err := jwt.Parse(token.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, "max@example.com", claims["email"])
}

func TestAuthServiceRejectsDuplicateEmail(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	payload := dto.RegisterRequest{
		Email:     "dupe@example.com",
		Password:  "secret-password",
		FirstName: "First",
		LastName:  "User",
	}
	_, err := svc.Register(ctx, payload)
	require.NoError(t, err)

	_, err = svc.Register(ctx, payload)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthServiceLoginFailures(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterRequest{
		Email:     "login@example.com",
		Password:  "secret-password",
		FirstName: "Login",
		LastName:  "User",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "login@example.com", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown accounts fail with the same error as wrong passwords.
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ghost@example.com", Password: "secret-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := setupAuthService(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email:     "short@example.com",
		Password:  "short",
		FirstName: "Short",
		LastName:  "Password",
	})
	require.Error(t, err)
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

func TestAuthServiceUpsertAdmin(t *testing.T) {
	svc := setupAuthService(t)
	ctx := context.Background()

	// Promote an existing regular account.
	existing, err := svc.Register(ctx, dto.RegisterRequest{
		Email:     "teacher@example.com",
		Password:  "secret-password",
		FirstName: "Tina",
		LastName:  "Teacher",
	})
	require.NoError(t, err)

	promoted, err := svc.UpsertAdmin(ctx, dto.AdminUserRequest{
		Email:     "teacher@example.com",
		FirstName: "Tina",
		LastName:  "Teacher",
	})
	require.NoError(t, err)
	require.Equal(t, existing.ID, promoted.ID)
	require.True(t, promoted.IsAdmin)

	// The original password still works after promotion.
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "teacher@example.com", Password: "secret-password"})
	require.NoError(t, err)

	// Create a brand-new admin account.
	created, err := svc.UpsertAdmin(ctx, dto.AdminUserRequest{
		Email:     "fresh-admin@example.com",
		Password:  "admin-password",
		FirstName: "Fresh",
		LastName:  "Admin",
	})
	require.NoError(t, err)
	require.True(t, created.IsAdmin)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "fresh-admin@example.com", Password: "admin-password"})
	require.NoError(t, err)
}
