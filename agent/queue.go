package agent

import (
	"sync"

	"google.golang.org/genai"
)

const queueDepth = 256

// Request is one input event for the live session: either a realtime blob
// (audio or image) or structured content. Exactly one field is set.
type Request struct {
	Blob    *genai.Blob
	Content *genai.Content
}

// RequestQueue is the one-way FIFO between the upstream pump (producer) and
// the live runner (consumer). Closing it signals the runner that no further
// input is coming; sends after close are dropped silently so the producer
// never races a panic during teardown.
type RequestQueue struct {
	ch chan Request

	mu     sync.Mutex
	closed bool
}

// NewRequestQueue creates a queue ready for sends.
func NewRequestQueue() *RequestQueue {
	return &RequestQueue{ch: make(chan Request, queueDepth)}
}

// SendRealtime enqueues a raw audio/image blob.
func (q *RequestQueue) SendRealtime(blob *genai.Blob) {
	q.send(Request{Blob: blob})
}

// SendContent enqueues structured content (text turns, greeting trigger).
func (q *RequestQueue) SendContent(content *genai.Content) {
	q.send(Request{Content: content})
}

func (q *RequestQueue) send(req Request) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	select {
	case q.ch <- req:
	default:
		// Queue full: the runtime has stalled. Drop rather than block the
		// upstream pump; realtime audio is only useful fresh anyway.
	}
}

// Requests exposes the consumer side. The channel is closed by Close.
func (q *RequestQueue) Requests() <-chan Request {
	return q.ch
}

// Close marks the queue finished. Safe to call more than once.
func (q *RequestQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}
