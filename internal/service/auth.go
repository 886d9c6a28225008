package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cinewave/cinewave/internal/domain"
	domainerrors "github.com/cinewave/cinewave/internal/errors"
	"github.com/cinewave/cinewave/internal/id"
	"github.com/cinewave/cinewave/internal/sse"
	"github.com/cinewave/cinewave/internal/store"
)

// IdentityListener is told whenever the current identity changes. user is nil
// when the session became anonymous.
type IdentityListener func(ctx context.Context, user *domain.User)

// AuthConfig holds the simulated latencies of the identity operations.
type AuthConfig struct {
	LoginLatency   time.Duration
	ProfileLatency time.Duration
}

// AuthService owns the current identity. There is no credential check:
// login and registration are simulated against the KV store, with the
// roster of known users kept under store.KeyAllUsers.
type AuthService struct {
	kv     store.KV
	events store.EventEmitter
	logger *slog.Logger
	ids    *id.Sequence
	delay  Delay
	now    func() time.Time
	cfg    AuthConfig

	// opMu serializes identity transitions and listener notification.
	opMu      sync.Mutex
	listeners []IdentityListener

	mu     sync.RWMutex
	status domain.AuthStatus
	user   *domain.User
}

// NewAuthService creates an identity container in the Unresolved state.
// Call Resolve to read the stored session.
func NewAuthService(kv store.KV, events store.EventEmitter, cfg AuthConfig, logger *slog.Logger) *AuthService {
	return &AuthService{
		kv:     kv,
		events: events,
		logger: logger,
		ids:    id.NewSequence(nil),
		delay:  SleepContext,
		now:    time.Now,
		cfg:    cfg,
		status: domain.AuthUnresolved,
	}
}

// SetDelay replaces the latency simulation.
func (s *AuthService) SetDelay(d Delay) {
	s.delay = d
}

// SetClock replaces the time source used for timestamps and user IDs.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
	s.ids = id.NewSequence(now)
}

// OnIdentityChange registers a listener. Listeners run in registration order,
// serialized with the transitions that trigger them.
func (s *AuthService) OnIdentityChange(fn IdentityListener) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// LoginRequest is the simulated credential pair. Any non-blank email with a
// password of six or more characters is accepted.
type LoginRequest struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"min=6"`
}

// RegisterRequest creates a roster entry. Password confirmation is the
// caller's concern.
type RegisterRequest struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"notblank,simpleemail"`
	Password string `json:"password" validate:"min=6"`
}

// ProfileRequest carries the editable profile fields.
type ProfileRequest struct {
	Name *string `json:"name,omitempty" validate:"omitnil,notblank,max=100"`
}

// Resolve reads the stored session and leaves the Unresolved state. A stored
// session that cannot be decoded is removed and the session is anonymous.
func (s *AuthService) Resolve(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.observeRoster(ctx)

	user, ok, err := store.GetJSON[*domain.User](ctx, s.kv, store.KeySessionUser)
	switch {
	case store.IsCorrupt(err):
		s.logger.Warn("stored session is corrupt, treating as anonymous", "error", err)
		if rmErr := s.kv.Remove(ctx, store.KeySessionUser); rmErr != nil {
			s.logger.Warn("failed to remove corrupt session", "error", rmErr)
		}
		user, ok = nil, false
	case err != nil:
		s.logger.Error("failed to read stored session, treating as anonymous", "error", err)
		user, ok = nil, false
	}
	if ok && user == nil {
		ok = false
	}

	if ok {
		s.ids.Observe(user.ID)
		s.logger.Info("session restored", "user_id", user.ID, "email", user.Email)
		s.transition(ctx, user)
	} else {
		s.logger.Info("no stored session")
		s.transition(ctx, nil)
	}
	return nil
}

// Login simulates a credential check. A known email reuses its roster
// identity; a first-time email gets a new user named after the email's local
// part, which is added to the roster.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*domain.User, error) {
	if err := s.delay(ctx, s.cfg.LoginLatency); err != nil {
		return nil, err
	}

	if err := validate.Validate(req); err != nil {
		var derr *domainerrors.Error
		if errors.As(err, &derr) {
			return nil, domainerrors.InvalidCredentials("invalid credentials").WithDetails(derr.Details)
		}
		return nil, err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	roster := s.loadRoster(ctx)
	email := strings.TrimSpace(req.Email)

	var user *domain.User
	if i := rosterIndex(roster, email); i >= 0 {
		u := roster[i]
		user = &u
	} else {
		user = &domain.User{
			ID:        s.ids.Next(),
			Email:     email,
			Name:      domain.LocalPart(email),
			CreatedAt: s.now().UTC(),
		}
		s.saveRoster(ctx, append(roster, *user))
	}

	s.persistSession(ctx, user)
	s.logger.Info("user logged in", "user_id", user.ID, "email", user.Email)
	s.transition(ctx, user)

	return cloneUser(user), nil
}

// Register adds a new identity to the roster and makes it current.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	if err := s.delay(ctx, s.cfg.LoginLatency); err != nil {
		return nil, err
	}

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	roster := s.loadRoster(ctx)
	email := strings.TrimSpace(req.Email)
	if rosterIndex(roster, email) >= 0 {
		return nil, domainerrors.AlreadyExists("email already registered").
			WithDetails(map[string]string{"email": "is already registered"})
	}

	user := &domain.User{
		ID:        s.ids.Next(),
		Email:     email,
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: s.now().UTC(),
	}

	s.saveRoster(ctx, append(roster, *user))
	s.persistSession(ctx, user)
	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	s.transition(ctx, user)

	return cloneUser(user), nil
}

// Logout clears the current session. It is idempotent.
func (s *AuthService) Logout(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.kv.Remove(ctx, store.KeySessionUser); err != nil {
		s.logger.Warn("failed to remove stored session", "error", err)
	}

	prev := s.CurrentUser()
	if prev != nil {
		s.logger.Info("user logged out", "user_id", prev.ID)
	}
	s.transition(ctx, nil)
	return nil
}

// UpdateProfile merges the request into the current user. The email is
// immutable. It fails with ErrRequiresLogin when nobody is logged in.
func (s *AuthService) UpdateProfile(ctx context.Context, req ProfileRequest) (*domain.User, error) {
	if !s.IsAuthenticated() {
		return nil, domainerrors.RequiresLogin("login required to update the profile")
	}
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if err := s.delay(ctx, s.cfg.ProfileLatency); err != nil {
		return nil, err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	// The session may have ended during the simulated latency.
	user := s.CurrentUser()
	if user == nil {
		return nil, domainerrors.RequiresLogin("login required to update the profile")
	}

	if (domain.ProfileUpdate{Name: req.Name}).Apply(user) {
		user.UpdatedAt = s.now().UTC()

		roster := s.loadRoster(ctx)
		if i := slices.IndexFunc(roster, func(u domain.User) bool { return u.ID == user.ID }); i >= 0 {
			roster[i].Name = user.Name
			roster[i].UpdatedAt = user.UpdatedAt
			s.saveRoster(ctx, roster)
		}
	}

	s.persistSession(ctx, user)
	s.logger.Info("profile updated", "user_id", user.ID)
	s.transition(ctx, user)

	return cloneUser(user), nil
}

// CurrentUser returns a copy of the current user, or nil when anonymous.
func (s *AuthService) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

// IsAuthenticated reports whether a current user exists.
func (s *AuthService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// State returns the observable identity state.
func (s *AuthService) State() domain.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.AuthState{
		Status:          s.status,
		User:            cloneUser(s.user),
		IsAuthenticated: s.user != nil,
	}
}

// transition installs user as the current identity, publishes the new state
// and notifies listeners when the identity itself changed. Callers hold opMu.
func (s *AuthService) transition(ctx context.Context, user *domain.User) {
	s.mu.Lock()
	prevID := userID(s.user)
	wasUnresolved := s.status == domain.AuthUnresolved
	s.user = cloneUser(user)
	if user != nil {
		s.status = domain.AuthAuthenticated
	} else {
		s.status = domain.AuthAnonymous
	}
	s.mu.Unlock()

	s.events.Emit(sse.NewAuthChangedEvent(s.State()))

	if wasUnresolved || prevID != userID(user) {
		for _, fn := range s.listeners {
			fn(ctx, cloneUser(user))
		}
	}
}

func (s *AuthService) persistSession(ctx context.Context, user *domain.User) {
	if err := store.SetJSON(ctx, s.kv, store.KeySessionUser, user); err != nil {
		s.logger.Error("failed to persist session", "user_id", user.ID, "error", err)
	}
}

// loadRoster reads the roster. A corrupt roster is treated as empty.
func (s *AuthService) loadRoster(ctx context.Context) []domain.User {
	roster, _, err := store.GetJSON[[]domain.User](ctx, s.kv, store.KeyAllUsers)
	if err != nil {
		s.logger.Warn("failed to read user roster, treating as empty", "error", err)
		return nil
	}
	return roster
}

func (s *AuthService) saveRoster(ctx context.Context, roster []domain.User) {
	if err := store.SetJSON(ctx, s.kv, store.KeyAllUsers, roster); err != nil {
		s.logger.Error("failed to persist user roster", "users", len(roster), "error", err)
	}
}

// observeRoster feeds existing user IDs to the sequence so new IDs stay unique.
func (s *AuthService) observeRoster(ctx context.Context) {
	for _, u := range s.loadRoster(ctx) {
		s.ids.Observe(u.ID)
	}
}

func rosterIndex(roster []domain.User, email string) int {
	key := domain.NormalizeEmail(email)
	return slices.IndexFunc(roster, func(u domain.User) bool {
		return domain.NormalizeEmail(u.Email) == key
	})
}

func userID(u *domain.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
