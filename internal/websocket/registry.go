package websocket

import (
	"sync"
	"time"

	"ai-support-agent-be/internal/model"
	"ai-support-agent-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// Transport is the send side of one client connection.
type Transport interface {
	// Enqueue hands a serialized frame to the connection's write pump
	// without blocking. It reports false when the outbound buffer is full.
	Enqueue(data []byte) bool

	// CloseSend shuts the outbound side down. Called by the registry while
	// it holds the map lock, so no Enqueue can race it.
	CloseSend()
}

// Session is the mutable per-connection state.
type Session struct {
	ID           string
	ConnectedAt  time.Time
	Language     string
	MessageCount int
}

// Registry owns the sessionId -> session and sessionId -> transport maps.
// Map mutation is synchronized; per-session fields are only written by the
// session's own frame loop and by the registry itself.
type Registry struct {
	mu              sync.RWMutex
	sessions        map[string]*Session
	conns           map[string]Transport
	defaultLanguage string
	logger          logger.ILogger
}

func NewRegistry(defaultLanguage string, log logger.ILogger) *Registry {
	return &Registry{
		sessions:        make(map[string]*Session),
		conns:           make(map[string]Transport),
		defaultLanguage: defaultLanguage,
		logger:          log,
	}
}

// Connect mints a session for a new connection and returns its id.
func (r *Registry) Connect(conn Transport) string {
	sessionID := uuid.NewString()

	r.mu.Lock()
	r.sessions[sessionID] = &Session{
		ID:          sessionID,
		ConnectedAt: time.Now(),
		Language:    r.defaultLanguage,
	}
	r.conns[sessionID] = conn
	total := len(r.conns)
	r.mu.Unlock()

	r.logger.Info("Registry", "New connection established", map[string]interface{}{
		"session_id":        sessionID,
		"total_connections": total,
	})

	return sessionID
}

// Disconnect removes the session. Removing an unknown id is a silent no-op.
func (r *Registry) Disconnect(sessionID string) {
	r.mu.Lock()
	session, known := r.sessions[sessionID]
	if conn, ok := r.conns[sessionID]; ok {
		conn.CloseSend()
	}
	delete(r.sessions, sessionID)
	delete(r.conns, sessionID)
	total := len(r.conns)
	r.mu.Unlock()

	if known {
		r.logger.Info("Registry", "Connection closed", map[string]interface{}{
			"session_id":        sessionID,
			"message_count":     session.MessageCount,
			"total_connections": total,
		})
	}
}

// SendTo serializes the frame and hands it to the session's transport.
// A missing session is an expected race with Disconnect and reports false
// without logging; transport-level failures are logged, never propagated.
func (r *Registry) SendTo(sessionID string, frame model.OutboundFrame) bool {
	data, err := model.EncodeOutbound(frame)
	if err != nil {
		r.logger.Error("Registry", "Failed to encode frame", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return false
	}

	// Enqueue under the read lock so Disconnect cannot close the transport
	// between lookup and enqueue.
	r.mu.RLock()
	conn, ok := r.conns[sessionID]
	if !ok {
		r.mu.RUnlock()
		return false
	}
	delivered := conn.Enqueue(data)
	r.mu.RUnlock()

	if !delivered {
		r.logger.Warn("Registry", "Send buffer full, dropping frame", map[string]interface{}{
			"session_id": sessionID,
		})
	}
	return delivered
}

// Language returns the session's language, or the default when the session
// is gone.
func (r *Registry) Language(sessionID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if session, ok := r.sessions[sessionID]; ok {
		return session.Language
	}
	return r.defaultLanguage
}

// SetLanguage updates the session's language. No-op for absent sessions.
func (r *Registry) SetLanguage(sessionID, language string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[sessionID]; ok {
		session.Language = language
	}
}

// IncrementMessageCount bumps the session's counter. No-op for absent
// sessions.
func (r *Registry) IncrementMessageCount(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[sessionID]; ok {
		session.MessageCount++
	}
}

// MessageCount reports the session's counter for diagnostics.
func (r *Registry) MessageCount(sessionID string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if session, ok := r.sessions[sessionID]; ok {
		return session.MessageCount, true
	}
	return 0, false
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
