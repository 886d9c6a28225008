package sse

import (
	"bufio"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinewave/cinewave/internal/domain"
)

func newTestManager(t *testing.T) (*Manager, context.CancelFunc) {
	t.Helper()
	m := NewManager(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)
	return m, cancel
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case evt := <-c.EventChan:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestManager_BroadcastsToConnectedClients(t *testing.T) {
	m, _ := newTestManager(t)

	a, err := m.Connect()
	require.NoError(t, err)
	b, err := m.Connect()
	require.NoError(t, err)
	assert.Equal(t, 2, m.ClientCount())
	assert.True(t, strings.HasPrefix(a.ID, "sse-"))

	m.Emit(NewThemeChangedEvent(domain.ThemeState{IsDarkMode: true, CurrentTheme: domain.ThemeDark}))

	for _, c := range []*Client{a, b} {
		evt := receive(t, c)
		assert.Equal(t, EventThemeChanged, evt.Type)
		state, ok := evt.Data.(domain.ThemeState)
		require.True(t, ok)
		assert.True(t, state.IsDarkMode)
	}
}

func TestManager_ConnectReplaysLatestState(t *testing.T) {
	m, _ := newTestManager(t)

	m.Emit(NewThemeChangedEvent(domain.ThemeState{CurrentTheme: domain.ThemeDark}))
	m.Emit(NewAuthChangedEvent(domain.AuthState{Status: domain.AuthAnonymous}))
	m.Emit(NewThemeChangedEvent(domain.ThemeState{CurrentTheme: domain.ThemeLight}))

	require.Eventually(t, func() bool {
		evt, ok := m.Latest(EventThemeChanged)
		return ok && evt.Data.(domain.ThemeState).CurrentTheme == domain.ThemeLight
	}, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := m.Latest(EventAuthChanged)
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	c, err := m.Connect()
	require.NoError(t, err)

	first := receive(t, c)
	second := receive(t, c)
	assert.Equal(t, EventThemeChanged, first.Type)
	assert.Equal(t, domain.ThemeLight, first.Data.(domain.ThemeState).CurrentTheme)
	assert.Equal(t, EventAuthChanged, second.Type)
}

func TestManager_DisconnectClosesClient(t *testing.T) {
	m, _ := newTestManager(t)

	c, err := m.Connect()
	require.NoError(t, err)
	m.Disconnect(c.ID)
	m.Disconnect(c.ID)

	assert.Equal(t, 0, m.ClientCount())
	_, open := <-c.Done
	assert.False(t, open)
}

func TestManager_EmitIgnoresForeignValues(t *testing.T) {
	m, _ := newTestManager(t)
	m.Emit("not an event")

	_, ok := m.Latest(EventType("not an event"))
	assert.False(t, ok)
}

func TestManager_ShutdownDrainsAndRejects(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	c, err := m.Connect()
	require.NoError(t, err)

	m.Emit(NewAuthChangedEvent(domain.AuthState{Status: domain.AuthAnonymous}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))
	require.NoError(t, m.Shutdown(ctx))

	evt, ok := <-c.EventChan
	require.True(t, ok)
	assert.Equal(t, EventAuthChanged, evt.Type)

	// Emitting after shutdown is a silent no-op.
	m.Emit(NewAuthChangedEvent(domain.AuthState{Status: domain.AuthAuthenticated}))
	assert.Equal(t, 0, m.ClientCount())
}

func TestHandler_StreamsEvents(t *testing.T) {
	m, _ := newTestManager(t)
	srv := httptest.NewServer(NewHandler(m, slog.New(slog.DiscardHandler)))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)
	_, err = reader.ReadString('\n') // data
	require.NoError(t, err)
	_, err = reader.ReadString('\n') // blank
	require.NoError(t, err)

	m.Emit(NewSearchUpdatedEvent(domain.SearchState{Query: "matrix"}))

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: search.updated\n", line)
	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, data, `"query":"matrix"`)
}

func TestHandler_RejectsNonGet(t *testing.T) {
	m, _ := newTestManager(t)
	rec := httptest.NewRecorder()
	NewHandler(m, slog.New(slog.DiscardHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_FiltersByType(t *testing.T) {
	m, _ := newTestManager(t)
	srv := httptest.NewServer(NewHandler(m, slog.New(slog.DiscardHandler)))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"?types=theme.changed", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)
	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, data, `"types":["theme.changed"]`)
	_, err = reader.ReadString('\n')
	require.NoError(t, err)

	m.Emit(NewSearchUpdatedEvent(domain.SearchState{Query: "matrix"}))
	m.Emit(NewThemeChangedEvent(domain.ThemeState{IsDarkMode: false, CurrentTheme: domain.ThemeLight}))

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: theme.changed\n", line)
}

func TestParseTypes(t *testing.T) {
	assert.Nil(t, parseTypes(""))
	assert.Nil(t, parseTypes(" , "))

	set := parseTypes("search.updated, theme.changed")
	assert.Len(t, set, 2)
	assert.True(t, wants(set, EventSearchUpdated))
	assert.True(t, wants(set, EventHeartbeat))
	assert.False(t, wants(set, EventAuthChanged))
	assert.True(t, wants(nil, EventAuthChanged))
}
