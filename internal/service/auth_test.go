package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinewave/cinewave/internal/domain"
	domainerrors "github.com/cinewave/cinewave/internal/errors"
	"github.com/cinewave/cinewave/internal/sse"
	"github.com/cinewave/cinewave/internal/store"
)

func setupAuthTest(t *testing.T) (*AuthService, store.Backend, *recordingEmitter) {
	t.Helper()

	kv := store.NewMemory()
	events := &recordingEmitter{}
	svc := NewAuthService(kv, events, AuthConfig{LoginLatency: time.Second}, testLogger())
	svc.SetDelay(NoDelay)
	t.Cleanup(func() { _ = kv.Close() })
	return svc, kv, events
}

func TestAuthService_StartsUnresolved(t *testing.T) {
	svc, _, _ := setupAuthTest(t)

	state := svc.State()
	assert.Equal(t, domain.AuthUnresolved, state.Status)
	assert.False(t, state.IsAuthenticated)

	require.NoError(t, svc.Resolve(context.Background()))
	assert.Equal(t, domain.AuthAnonymous, svc.State().Status)
}

func TestAuthService_Login_DemoUser(t *testing.T) {
	svc, kv, events := setupAuthTest(t)
	ctx := context.Background()
	require.NoError(t, svc.Resolve(ctx))

	user, err := svc.Login(ctx, LoginRequest{Email: "demo@cinewave.com", Password: "123456"})
	require.NoError(t, err)

	assert.Equal(t, "demo", user.Name)
	assert.Equal(t, "demo@cinewave.com", user.Email)
	assert.NotZero(t, user.ID)
	assert.True(t, svc.IsAuthenticated())
	assert.Equal(t, domain.AuthAuthenticated, svc.State().Status)

	stored, ok, err := store.GetJSON[domain.User](ctx, kv, store.KeySessionUser)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, user.ID, stored.ID)

	roster, _, err := store.GetJSON[[]domain.User](ctx, kv, store.KeyAllUsers)
	require.NoError(t, err)
	assert.Len(t, roster, 1)

	changes := events.OfType(sse.EventAuthChanged)
	require.NotEmpty(t, changes)
	last := changes[len(changes)-1].Data.(domain.AuthState)
	assert.True(t, last.IsAuthenticated)
}

func TestAuthService_Login_ReusesKnownIdentity(t *testing.T) {
	svc, _, _ := setupAuthTest(t)
	ctx := context.Background()
	require.NoError(t, svc.Resolve(ctx))

	first, err := svc.Login(ctx, LoginRequest{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))

	second, err := svc.Login(ctx, LoginRequest{Email: "  ANA@example.com ", Password: "another"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	tests := []struct {
		name  string
		req   LoginRequest
		field string
	}{
		{"blank email", LoginRequest{Email: "   ", Password: "123456"}, "email"},
		{"short password", LoginRequest{Email: "demo@cinewave.com", Password: "12345"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, kv, _ := setupAuthTest(t)
			ctx := context.Background()
			require.NoError(t, svc.Resolve(ctx))

			_, err := svc.Login(ctx, tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))

			var derr *domainerrors.Error
			require.True(t, errors.As(err, &derr))
			details, ok := derr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.field)

			assert.False(t, svc.IsAuthenticated())
			_, ok, err = kv.Get(ctx, store.KeySessionUser)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestAuthService_Login_HonoursContext(t *testing.T) {
	svc, _, _ := setupAuthTest(t)
	svc.SetDelay(SleepContext)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Login(ctx, LoginRequest{Email: "demo@cinewave.com", Password: "123456"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, svc.IsAuthenticated())
}

func TestAuthService_Register(t *testing.T) {
	svc, kv, _ := setupAuthTest(t)
	ctx := context.Background()
	require.NoError(t, svc.Resolve(ctx))

	user, err := svc.Register(ctx, RegisterRequest{Name: " Maria Silva ", Email: "maria@example.com", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", user.Name)
	assert.True(t, svc.IsAuthenticated())

	roster, _, err := store.GetJSON[[]domain.User](ctx, kv, store.KeyAllUsers)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, user.ID, roster[0].ID)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, kv, _ := setupAuthTest(t)
	ctx := context.Background()
	require.NoError(t, svc.Resolve(ctx))

	_, err := svc.Register(ctx, RegisterRequest{Name: "Maria", Email: "maria@example.com", Password: "123456"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Name: "Other", Email: "MARIA@example.com", Password: "abcdef"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrAlreadyExists))

	roster, _, err := store.GetJSON[[]domain.User](ctx, kv, store.KeyAllUsers)
	require.NoError(t, err)
	assert.Len(t, roster, 1)
	assert.Equal(t, "Maria", roster[0].Name)
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   RegisterRequest
		field string
	}{
		{"missing name", RegisterRequest{Email: "a@b.com", Password: "123456"}, "name"},
		{"bad email", RegisterRequest{Name: "A", Email: "not-an-email", Password: "123456"}, "email"},
		{"short password", RegisterRequest{Name: "A", Email: "a@b.com", Password: "123"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := setupAuthTest(t)
			ctx := context.Background()
			require.NoError(t, svc.Resolve(ctx))

			_, err := svc.Register(ctx, tt.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrValidation))

			var derr *domainerrors.Error
			require.True(t, errors.As(err, &derr))
			assert.Contains(t, derr.Details, tt.field)
			assert.False(t, svc.IsAuthenticated())
		})
	}
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	svc, kv, _ := setupAuthTest(t)
	ctx := context.Background()
	require.NoError(t, svc.Resolve(ctx))

	_, err := svc.Login(ctx, LoginRequest{Email: "demo@cinewave.com", Password: "123456"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))
	require.NoError(t, svc.Logout(ctx))

	assert.False(t, svc.IsAuthenticated())
	assert.Nil(t, svc.CurrentUser())
	_, ok, err := kv.Get(ctx, store.KeySessionUser)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_Resolve_RestoresSession(t *testing.T) {
	kv := store.NewMemory()
	ctx := context.Background()
	user := &domain.User{ID: 1700000000000, Email: "demo@cinewave.com", Name: "demo"}
	require.NoError(t, store.SetJSON(ctx, kv, store.KeySessionUser, user))

	svc := NewAuthService(kv, store.NewNoopEmitter(), AuthConfig{}, testLogger())
	require.NoError(t, svc.Resolve(ctx))

	require.True(t, svc.IsAuthenticated())
	assert.Equal(t, user.ID, svc.CurrentUser().ID)
}

func TestAuthService_Resolve_CorruptSession(t *testing.T) {
	kv := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, store.KeySessionUser, "{not json"))

	svc := NewAuthService(kv, store.NewNoopEmitter(), AuthConfig{}, testLogger())
	require.NoError(t, svc.Resolve(ctx))

	assert.False(t, svc.IsAuthenticated())
	assert.Equal(t, domain.AuthAnonymous, svc.State().Status)
	_, ok, err := kv.Get(ctx, store.KeySessionUser)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_NewIDsAvoidRoster(t *testing.T) {
	kv := store.NewMemory()
	ctx := context.Background()
	fixed := time.UnixMilli(1000)
	require.NoError(t, store.SetJSON(ctx, kv, store.KeyAllUsers, []domain.User{
		{ID: 5000, Email: "old@example.com", Name: "old"},
	}))

	svc := NewAuthService(kv, store.NewNoopEmitter(), AuthConfig{}, testLogger())
	svc.SetDelay(NoDelay)
	svc.SetClock(func() time.Time { return fixed })
	require.NoError(t, svc.Resolve(ctx))

	user, err := svc.Login(ctx, LoginRequest{Email: "new@example.com", Password: "123456"})
	require.NoError(t, err)
	assert.Greater(t, user.ID, int64(5000))
}

func TestAuthService_UpdateProfile(t *testing.T) {
	svc, kv, _ := setupAuthTest(t)
	ctx := context.Background()
	require.NoError(t, svc.Resolve(ctx))

	user, err := svc.Login(ctx, LoginRequest{Email: "demo@cinewave.com", Password: "123456"})
	require.NoError(t, err)

	name := "Demo User"
	updated, err := svc.UpdateProfile(ctx, ProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Demo User", updated.Name)
	assert.Equal(t, user.Email, updated.Email)
	assert.False(t, updated.UpdatedAt.IsZero())

	roster, _, err := store.GetJSON[[]domain.User](ctx, kv, store.KeyAllUsers)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "Demo User", roster[0].Name)

	session, _, err := store.GetJSON[domain.User](ctx, kv, store.KeySessionUser)
	require.NoError(t, err)
	assert.Equal(t, "Demo User", session.Name)
}

func TestAuthService_UpdateProfile_RequiresLogin(t *testing.T) {
	svc, _, _ := setupAuthTest(t)
	ctx := context.Background()
	require.NoError(t, svc.Resolve(ctx))

	name := "Nobody"
	_, err := svc.UpdateProfile(ctx, ProfileRequest{Name: &name})
	assert.True(t, errors.Is(err, domainerrors.ErrRequiresLogin))
}

func TestAuthService_UpdateProfile_RejectsBlankName(t *testing.T) {
	svc, _, _ := setupAuthTest(t)
	ctx := context.Background()
	require.NoError(t, svc.Resolve(ctx))
	_, err := svc.Login(ctx, LoginRequest{Email: "demo@cinewave.com", Password: "123456"})
	require.NoError(t, err)

	blank := "  "
	_, err = svc.UpdateProfile(ctx, ProfileRequest{Name: &blank})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
	assert.Equal(t, "demo", svc.CurrentUser().Name)
}

func TestAuthService_OnIdentityChange(t *testing.T) {
	svc, _, _ := setupAuthTest(t)
	ctx := context.Background()

	var seen []int64
	svc.OnIdentityChange(func(_ context.Context, u *domain.User) {
		seen = append(seen, userID(u))
	})

	require.NoError(t, svc.Resolve(ctx))
	user, err := svc.Login(ctx, LoginRequest{Email: "demo@cinewave.com", Password: "123456"})
	require.NoError(t, err)

	name := "Renamed"
	_, err = svc.UpdateProfile(ctx, ProfileRequest{Name: &name})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))
	require.NoError(t, svc.Logout(ctx))

	// Resolve, login and the first logout change the identity; the profile
	// update and the second logout do not.
	assert.Equal(t, []int64{0, user.ID, 0}, seen)
}
