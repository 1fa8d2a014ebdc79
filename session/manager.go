package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"google.golang.org/genai"

	"homescout/config"
	"homescout/functions"
	"homescout/inventory"
)

// closedSessionTTL keeps the final record of a finished session around for a
// while after it is removed from the active set.
const closedSessionTTL = 24 * time.Hour

// Manager manages all client sessions
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	redis    *redis.Client
	config   *config.Config
	sink     *inventory.Sink
	tools    []*genai.Tool
}

// NewManager creates a session manager. writer may be nil (no external
// persistence); Redis is optional and skipped when unreachable.
func NewManager(cfg *config.Config, writer inventory.Writer) (*Manager, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Redis unavailable, continue without it
		redisClient = nil
	}

	return &Manager{
		sessions: make(map[string]*Session),
		redis:    redisClient,
		config:   cfg,
		sink:     inventory.NewSink(writer),
		tools:    buildTools(),
	}, nil
}

func buildTools() []*genai.Tool {
	return []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				functions.LogApplianceDeclaration(),
			},
		},
	}
}

// CreateSession creates a new client session for a connection. userID and
// sessionID are the path values from the WebSocket URL.
func (sm *Manager) CreateSession(ctx context.Context, conn *websocket.Conn, userID, sessionID string) (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= sm.config.MaxSessions {
		return nil, fmt.Errorf("maximum sessions reached")
	}

	id := uuid.New().String()

	session, err := NewSession(ctx, id, userID, sessionID, conn, sm.config, sm.sink, sm.tools)
	if err != nil {
		return nil, err
	}

	sm.storeSession(ctx, id, session)
	return session, nil
}

// storeSession saves a session to memory and Redis
func (sm *Manager) storeSession(ctx context.Context, id string, session *Session) {
	sm.sessions[id] = session

	if sm.redis != nil {
		sm.redis.HSet(ctx, "session:"+id, map[string]interface{}{
			"user_id":       session.UserID,
			"session_id":    session.SessionID,
			"created_at":    session.CreatedAt.Format(time.RFC3339),
			"last_activity": session.LastActivity().Format(time.RFC3339),
			"status":        "active",
		})
		sm.redis.SAdd(ctx, "active_sessions", id)
		sm.redis.Expire(ctx, "session:"+id, sm.config.SessionTimeout)
	}
}

// GetSession retrieves a session by ID
func (sm *Manager) GetSession(id string) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[id]
	return session, exists
}

// RemoveSession cleans up and removes a session
func (sm *Manager) RemoveSession(ctx context.Context, id string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[id]
	if !exists {
		return nil
	}

	session.Close()
	delete(sm.sessions, id)
	sm.retireSession(ctx, id, session)

	return nil
}

// retireSession marks the Redis record closed with the final appliance count.
func (sm *Manager) retireSession(ctx context.Context, id string, session *Session) {
	if sm.redis == nil {
		return
	}
	sm.redis.HSet(ctx, "session:"+id, map[string]interface{}{
		"status":     "closed",
		"appliances": session.Inventory.Len(),
	})
	sm.redis.Expire(ctx, "session:"+id, closedSessionTTL)
	sm.redis.SRem(ctx, "active_sessions", id)
}

// GetActiveSessionCount returns current session count
func (sm *Manager) GetActiveSessionCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// CleanupInactiveSessions removes sessions that have been inactive
func (sm *Manager) CleanupInactiveSessions(ctx context.Context) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	now := time.Now()
	for id, session := range sm.sessions {
		if now.Sub(session.LastActivity()) > sm.config.SessionTimeout {
			session.Close()
			delete(sm.sessions, id)
			sm.retireSession(ctx, id, session)
		}
	}
}

// StartCleanupRoutine starts periodic cleanup of inactive sessions
func (sm *Manager) StartCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sm.CleanupInactiveSessions(ctx)
		}
	}
}

// Shutdown closes all sessions
func (sm *Manager) Shutdown() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for id, session := range sm.sessions {
		session.Close()
		delete(sm.sessions, id)
	}

	if sm.redis != nil {
		sm.redis.Close()
	}
}
