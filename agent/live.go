package agent

import (
	"context"
	"fmt"
	"log"
	"sync"

	"google.golang.org/genai"
)

const eventDepth = 32

// ToolHandler executes one function call from the model and returns the
// payload for the FunctionResponse sent back to it.
type ToolHandler func(ctx context.Context, call *genai.FunctionCall) map[string]any

// RunnerConfig configures one live session.
type RunnerConfig struct {
	Model        string
	Voice        string
	SystemPrompt string
	Tools        []*genai.Tool
	ToolHandler  ToolHandler
}

// Runner owns the connection to the Gemini Live API and adapts it to the
// relay's shape: a RequestQueue in, a channel of Events out. Turn
// management, transcription and voice synthesis all happen on the far side
// of this boundary.
type Runner struct {
	client *genai.Client
	cfg    RunnerConfig

	mu      sync.RWMutex
	session *genai.Session
	closed  bool
}

// NewRunner creates a GenAI client for one session.
func NewRunner(ctx context.Context, apiKey string, cfg RunnerConfig) (*Runner, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Runner{client: client, cfg: cfg}, nil
}

// Connect establishes the Live session
func (r *Runner) Connect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("runner is closed")
	}

	config := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{"AUDIO"},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: r.cfg.SystemPrompt},
			},
		},
		Tools: r.cfg.Tools,
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: r.cfg.Voice,
				},
			},
		},
		// Both transcriptions are relayed to the frontend for captions.
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}

	session, err := r.client.Live.Connect(ctx, r.cfg.Model, config)
	if err != nil {
		return fmt.Errorf("failed to connect to Live API: %w", err)
	}

	r.session = session
	log.Printf("✅ Connected to Gemini Live (%s)", r.cfg.Model)
	return nil
}

// Run starts the two runner goroutines: one draining the request queue into
// the session, one translating session messages into Events. The returned
// channel closes when the session ends; events on it appear in the order the
// runtime produced them.
func (r *Runner) Run(ctx context.Context, queue *RequestQueue) (<-chan *Event, error) {
	r.mu.RLock()
	connected := r.session != nil && !r.closed
	r.mu.RUnlock()
	if !connected {
		return nil, fmt.Errorf("runner is closed or not connected")
	}

	go r.sendLoop(queue)

	events := make(chan *Event, eventDepth)
	go r.receiveLoop(ctx, events)

	return events, nil
}

func (r *Runner) sendLoop(queue *RequestQueue) {
	for req := range queue.Requests() {
		var err error
		switch {
		case req.Blob != nil:
			err = r.sendRealtime(req.Blob)
		case req.Content != nil:
			err = r.sendContent(req.Content)
		}
		if err != nil {
			if !r.isClosed() {
				log.Printf("❌ Gemini send error: %v", err)
			}
			return
		}
	}
}

func (r *Runner) receiveLoop(ctx context.Context, events chan<- *Event) {
	defer close(events)

	for {
		r.mu.RLock()
		session := r.session
		closed := r.closed
		r.mu.RUnlock()
		if closed || session == nil {
			return
		}

		// Receive blocks until a message arrives or the session ends
		msg, err := session.Receive()
		if err != nil {
			if !r.isClosed() {
				log.Printf("❌ Gemini receive error: %v", err)
			}
			return
		}

		r.handleMessage(ctx, msg, events)
	}
}

// handleMessage translates one LiveServerMessage into relay events. Tool
// calls are executed inline and surfaced as a function-call event followed
// by a function-response event, so the downstream relay sees tool activity
// in stream order.
func (r *Runner) handleMessage(ctx context.Context, msg *genai.LiveServerMessage, events chan<- *Event) {
	if msg.ToolCall != nil && len(msg.ToolCall.FunctionCalls) > 0 {
		r.handleToolCall(ctx, msg.ToolCall.FunctionCalls, events)
	}

	if sc := msg.ServerContent; sc != nil {
		event := &Event{
			Content:             sc.ModelTurn,
			TurnComplete:        sc.TurnComplete,
			Interrupted:         sc.Interrupted,
			InputTranscription:  sc.InputTranscription,
			OutputTranscription: sc.OutputTranscription,
		}
		if event.HasSignal() {
			events <- event
		}
	}
}

func (r *Runner) handleToolCall(ctx context.Context, calls []*genai.FunctionCall, events chan<- *Event) {
	callParts := make([]*genai.Part, 0, len(calls))
	for _, fc := range calls {
		callParts = append(callParts, &genai.Part{FunctionCall: fc})
	}
	events <- &Event{Content: &genai.Content{Role: "model", Parts: callParts}}

	responses := make([]*genai.FunctionResponse, 0, len(calls))
	responseParts := make([]*genai.Part, 0, len(calls))
	for _, fc := range calls {
		log.Printf("🔧 Function call: %s (id: %s)", fc.Name, fc.ID)

		var payload map[string]any
		if r.cfg.ToolHandler != nil {
			payload = r.cfg.ToolHandler(ctx, fc)
		} else {
			payload = map[string]any{"error": fmt.Sprintf("unknown function: %s", fc.Name)}
		}

		resp := &genai.FunctionResponse{
			ID:       fc.ID,
			Name:     fc.Name,
			Response: payload,
		}
		responses = append(responses, resp)
		responseParts = append(responseParts, &genai.Part{FunctionResponse: resp})
	}

	if err := r.sendToolResponse(responses); err != nil {
		log.Printf("❌ Failed to send tool response: %v", err)
		return
	}

	events <- &Event{Content: &genai.Content{Role: "user", Parts: responseParts}}
}

func (r *Runner) sendRealtime(blob *genai.Blob) error {
	r.mu.RLock()
	session := r.session
	closed := r.closed
	r.mu.RUnlock()

	if closed || session == nil {
		return fmt.Errorf("runner is closed or not connected")
	}

	if err := session.SendRealtimeInput(genai.LiveRealtimeInput{Media: blob}); err != nil {
		return fmt.Errorf("failed to send realtime input: %w", err)
	}
	return nil
}

func (r *Runner) sendContent(content *genai.Content) error {
	r.mu.RLock()
	session := r.session
	closed := r.closed
	r.mu.RUnlock()

	if closed || session == nil {
		return fmt.Errorf("runner is closed or not connected")
	}

	turnComplete := true
	err := session.SendClientContent(genai.LiveSendClientContentParameters{
		Turns:        []*genai.Content{content},
		TurnComplete: &turnComplete,
	})
	if err != nil {
		return fmt.Errorf("failed to send content: %w", err)
	}
	return nil
}

func (r *Runner) sendToolResponse(responses []*genai.FunctionResponse) error {
	r.mu.RLock()
	session := r.session
	closed := r.closed
	r.mu.RUnlock()

	if closed || session == nil {
		return fmt.Errorf("runner is closed or not connected")
	}

	err := session.SendToolResponse(genai.LiveToolResponseInput{
		FunctionResponses: responses,
	})
	if err != nil {
		return fmt.Errorf("failed to send tool response: %w", err)
	}
	return nil
}

func (r *Runner) isClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

// Close terminates the Gemini connection
func (r *Runner) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if r.session != nil {
		return r.session.Close()
	}
	return nil
}
