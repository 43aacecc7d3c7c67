package whatsapp

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Manager tracks the gateway connection state and drives reconnection.
// A drop that was not caused by an explicit logout schedules an automatic
// reconnect after the configured delay. After a logout the gateway stays
// down until an operator asks for a reconnect.
type Manager struct {
	gateway        Gateway
	reconnectDelay time.Duration

	mu        sync.Mutex
	state     string
	loggedOut bool
	timer     *time.Timer
}

func NewManager(gateway Gateway, reconnectDelay time.Duration) *Manager {
	return &Manager{
		gateway:        gateway,
		reconnectDelay: reconnectDelay,
		state:          StateDisconnected,
	}
}

// State returns the last observed connection state.
func (m *Manager) State() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Refresh polls the gateway and updates the tracked state. An unsolicited
// drop from connected arms the reconnect timer.
func (m *Manager) Refresh(ctx context.Context) GatewayStatus {
	status, err := m.gateway.Status(ctx)
	if err != nil {
		status = GatewayStatus{State: StateDisconnected}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.state
	m.state = status.State

	if status.State == StateConnected {
		m.loggedOut = false
		m.stopTimerLocked()
		if previous != StateConnected {
			log.Info().Str("phone", status.Phone).Msg("whatsapp gateway connected")
		}
		return status
	}

	if previous == StateConnected && status.State == StateDisconnected && !m.loggedOut {
		log.Warn().Msg("whatsapp gateway dropped, scheduling reconnect")
		m.armTimerLocked()
	}
	return status
}

// Reconnect asks the gateway to re-establish its session. It clears the
// logged-out latch so the watchdog resumes automatic recovery.
func (m *Manager) Reconnect(ctx context.Context) error {
	m.mu.Lock()
	m.loggedOut = false
	m.stopTimerLocked()
	m.mu.Unlock()

	return m.gateway.Reconnect(ctx)
}

// Logout terminates the session and suppresses automatic reconnection.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.loggedOut = true
	m.stopTimerLocked()
	m.state = StateLoggedOut
	m.mu.Unlock()

	return m.gateway.Logout(ctx)
}

// Stop cancels any pending reconnect. Called on shutdown.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimerLocked()
}

func (m *Manager) armTimerLocked() {
	if m.timer != nil {
		return
	}
	m.timer = time.AfterFunc(m.reconnectDelay, func() {
		m.mu.Lock()
		m.timer = nil
		suppressed := m.loggedOut
		m.mu.Unlock()

		if suppressed {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.gateway.Reconnect(ctx); err != nil {
			log.Error().Err(err).Msg("whatsapp auto-reconnect failed")
		}
	})
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
