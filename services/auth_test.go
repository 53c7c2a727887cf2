package services_test

import (
	"context"
	"testing"

	"coursemaster/apperr"
	"coursemaster/logger"
	"coursemaster/middleware"
	"coursemaster/models"
	"coursemaster/services"
	"coursemaster/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	st := testutils.SetupTestStore(t)
	ctx := context.Background()
	mailer := &fakeMailer{}
	svc := services.NewAuthService(st, mailer, "secret", 4, logger.Nop())

	user, token, err := svc.Register(ctx, services.RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "active", user.Status)

	identity, err := middleware.ParseJWT("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", identity.Email)
	assert.Equal(t, []sentMail{{Kind: "welcome", Email: "ada@example.com", Name: "Ada"}}, mailer.Sent())

	_, _, err = svc.Register(ctx, services.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "password123"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	tests := []struct {
		name     string
		email    string
		password string
		wantKind apperr.Kind
		wantErr  bool
	}{
		{name: "valid credentials", email: "ada@example.com", password: "password123"},
		{name: "wrong password", email: "ada@example.com", password: "nope", wantErr: true, wantKind: apperr.KindUnauthenticated},
		{name: "unknown user", email: "bob@example.com", password: "password123", wantErr: true, wantKind: apperr.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, token, err := svc.Login(ctx, tt.email, tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.email, got.Email)
			assert.NotEmpty(t, token)
		})
	}
}

func TestMe(t *testing.T) {
	st := testutils.SetupTestStore(t)
	svc := services.NewAuthService(st, &fakeMailer{}, "secret", 4, logger.Nop())
	user := testutils.CreateTestUser(t, st)

	got, err := svc.Me(context.Background(), user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.Me(context.Background(), "ghost@example.com")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUserService(t *testing.T) {
	st := testutils.SetupTestStore(t)
	ctx := context.Background()
	svc := services.NewUserService(st, logger.Nop())
	admin := testutils.CreateTestUser(t, st, testutils.WithRole(models.RoleAdmin))
	student := testutils.CreateTestUser(t, st)

	updated, err := svc.UpdateProfile(ctx, student.Email, models.ProfileUpdate{Phone: "5551234"})
	require.NoError(t, err)
	assert.Equal(t, "5551234", updated.Phone)
	assert.Equal(t, student.Name, updated.Name)

	_, err = svc.UpdateProfile(ctx, "ghost@example.com", models.ProfileUpdate{Name: "x"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	isAdmin, err := svc.IsAdmin(ctx, admin.Email)
	require.NoError(t, err)
	assert.True(t, isAdmin)
	isAdmin, err = svc.IsAdmin(ctx, student.Email)
	require.NoError(t, err)
	assert.False(t, isAdmin)
}
