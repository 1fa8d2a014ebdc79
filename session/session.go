package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"google.golang.org/genai"

	"homescout/agent"
	"homescout/config"
	"homescout/functions"
	"homescout/inventory"
	"homescout/relay"
)

// Session represents a single client connection: one WebSocket, one live
// agent binding, one inventory. UserID and SessionID come from the request
// path and are opaque routing keys; ID is server-assigned and unique.
type Session struct {
	ID        string
	UserID    string
	SessionID string
	Inventory *inventory.List
	CreatedAt time.Time

	conn   *websocket.Conn
	queue  *agent.RequestQueue
	runner *agent.Runner
	sink   *inventory.Sink

	mu           sync.RWMutex
	lastActivity time.Time
	closed       bool

	closeOnce sync.Once
	CloseChan chan struct{}
}

// NewSession connects a live agent binding for one client connection.
func NewSession(ctx context.Context, id, userID, sessionID string, conn *websocket.Conn, cfg *config.Config, sink *inventory.Sink, tools []*genai.Tool) (*Session, error) {
	s := &Session{
		ID:           id,
		UserID:       userID,
		SessionID:    sessionID,
		Inventory:    &inventory.List{},
		CreatedAt:    time.Now(),
		lastActivity: time.Now(),
		conn:         conn,
		queue:        agent.NewRequestQueue(),
		sink:         sink,
		CloseChan:    make(chan struct{}),
	}

	runner, err := agent.NewRunner(ctx, cfg.GeminiAPIKey, agent.RunnerConfig{
		Model:        cfg.GeminiModel,
		Voice:        cfg.VoiceName,
		SystemPrompt: SystemPrompt,
		Tools:        tools,
		ToolHandler:  s.handleToolCall,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent runner: %w", err)
	}
	if err := runner.Connect(ctx); err != nil {
		runner.Close()
		return nil, fmt.Errorf("failed to connect agent session: %w", err)
	}
	s.runner = runner

	// Configure WebSocket for better performance
	conn.SetReadLimit(512 * 1024) // 512KB max message
	conn.EnableWriteCompression(true)
	conn.SetCompressionLevel(6)

	return s, nil
}

// Run drives the session: enqueue the greeting trigger, pump both directions
// concurrently, and tear down once regardless of which side ends first. It
// blocks until both pumps have returned.
func (s *Session) Run(ctx context.Context) {
	defer s.Close()

	// The agent speaks first.
	s.queue.SendContent(&genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: greetingTrigger}},
	})

	events, err := s.runner.Run(ctx, s.queue)
	if err != nil {
		log.Printf("❌ [%s] Failed to start agent stream: %v", s.tag(), err)
		return
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		relay.Upstream(&trackedConn{Conn: s.conn, session: s}, s.queue, s.tag())
		// Closing the runner ends the event stream so the peer pump joins.
		s.Close()
	}()

	go func() {
		defer wg.Done()
		relay.Downstream(s.conn, events, s.tag())
		// Closing the conn unblocks the peer pump's pending read.
		s.Close()
		// Discard whatever the runner produces until it notices the closed
		// session, so its receive loop never blocks on a full channel.
		for range events {
		}
	}()

	wg.Wait()
}

// handleToolCall dispatches a function call from the agent runtime.
func (s *Session) handleToolCall(ctx context.Context, fc *genai.FunctionCall) map[string]any {
	switch fc.Name {
	case functions.LogApplianceName:
		resp := functions.LogAppliance(ctx, s.sink, s.Inventory, fc.Args)
		log.Printf("🔧 [%s] log_appliance: %v (total: %v)", s.tag(), resp["status"], resp["total_appliances"])
		return resp

	default:
		log.Printf("⚠️ [%s] Unknown function called: %s", s.tag(), fc.Name)
		return map[string]any{"error": fmt.Sprintf("Unknown function: %s", fc.Name)}
	}
}

// Touch records client activity for idle cleanup.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// LastActivity returns the time of the most recent inbound frame.
func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// IsClosed returns whether the session is closed
func (s *Session) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Close terminates the session and cleans up resources. It runs exactly once
// on every exit path; later calls are no-ops.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		// Closing the queue signals the runtime that no more input is coming.
		s.queue.Close()

		if s.runner != nil {
			s.runner.Close()
		}
		s.conn.Close()

		close(s.CloseChan)
		log.Printf("🔌 [%s] Session closed: user=%s session=%s appliances=%d",
			s.tag(), s.UserID, s.SessionID, s.Inventory.Len())
	})
	return nil
}

func (s *Session) tag() string {
	if len(s.ID) >= 8 {
		return s.ID[:8]
	}
	return s.ID
}

// trackedConn updates the session's activity clock on every inbound frame.
type trackedConn struct {
	relay.Conn
	session *Session
}

func (c *trackedConn) ReadMessage() (int, []byte, error) {
	messageType, payload, err := c.Conn.ReadMessage()
	if err == nil {
		c.session.Touch()
	}
	return messageType, payload, err
}
