package workflow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ConnectionManager drives the LinkedIn OAuth flow and tracks the cached
// connection state. The callback guard guarantees that the code exchange
// for one redirect runs at most once, no matter how many times the
// redirect is delivered.
type ConnectionManager struct {
	client *Client

	mu        sync.Mutex
	connected bool
	state     string
	guard     *callbackGuard
}

// NewConnectionManager creates a manager over the API client. The
// connection state starts unknown; call Refresh at session start.
func NewConnectionManager(client *Client) *ConnectionManager {
	return &ConnectionManager{client: client}
}

// Connected returns the cached connection flag. It reflects the last
// Refresh, HandleCallback, or Disconnect; stale reads between those are
// acceptable.
func (m *ConnectionManager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Refresh queries the server for the current connection state and caches it.
func (m *ConnectionManager) Refresh(ctx context.Context) (bool, error) {
	connected, err := m.client.ConnectionStatus(ctx)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	m.connected = connected
	m.mu.Unlock()
	return connected, nil
}

// Connect requests an authorization URL for the user to visit and arms a
// fresh callback guard for the redirect that will follow. It does not
// change the connection state.
func (m *ConnectionManager) Connect(ctx context.Context) (string, error) {
	info, err := m.client.Connect(ctx)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.state = info.State
	m.guard = newCallbackGuard()
	m.mu.Unlock()
	return info.AuthorizationURL, nil
}

// callbackGuard makes the handling of one redirect exactly-once. The
// claimed flag is set before any network call and is never reset; late
// duplicates wait for the first invocation and return its result.
type callbackGuard struct {
	claimed atomic.Bool
	done    chan struct{}
	err     error
}

func newCallbackGuard() *callbackGuard {
	return &callbackGuard{done: make(chan struct{})}
}

// HandleCallback processes the OAuth redirect parameters. The first call
// for a given redirect decides the outcome; every subsequent call for the
// same redirect returns that cached outcome without touching the network.
//
//	error parameter present -> AuthorizationDeniedError
//	no code, no error       -> MissingCodeError
//	code present            -> exchange; success=false or failure -> ExchangeFailedError
func (m *ConnectionManager) HandleCallback(ctx context.Context, code, errParam string) error {
	m.mu.Lock()
	if m.guard == nil {
		m.guard = newCallbackGuard()
	}
	g := m.guard
	m.mu.Unlock()

	if !g.claimed.CompareAndSwap(false, true) {
		select {
		case <-g.done:
			return g.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	g.err = m.processCallback(ctx, code, errParam)
	close(g.done)
	return g.err
}

func (m *ConnectionManager) processCallback(ctx context.Context, code, errParam string) error {
	if errParam != "" {
		return &AuthorizationDeniedError{Reason: errParam}
	}
	if code == "" {
		return &MissingCodeError{}
	}

	m.mu.Lock()
	state := m.state
	m.mu.Unlock()

	ok, err := m.client.ExchangeToken(ctx, code, state)
	if err != nil {
		return &ExchangeFailedError{Err: err}
	}
	if !ok {
		return &ExchangeFailedError{Err: errors.New("server reported exchange failure")}
	}

	m.mu.Lock()
	m.connected = true
	m.mu.Unlock()
	return nil
}

// Disconnect unlinks the account. The local flag flips false on any
// acknowledged response without inspecting the body.
func (m *ConnectionManager) Disconnect(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
	return nil
}
