package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Result statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// DefaultUserID is used when the model omits the user identifier.
const DefaultUserID = "default_user"

// Entry is one logged appliance. Entries are append-only within a session;
// corrections are logged as new entries, never edits.
type Entry struct {
	ApplianceType string `json:"appliance_type"`
	Make          string `json:"make"`
	Model         string `json:"model"`
	Location      string `json:"location"`
	Finish        string `json:"finish,omitempty"`
	Notes         string `json:"notes,omitempty"`
	UserID        string `json:"user_id"`
}

// List is a session-scoped appliance inventory. The model reads it back
// through tool results for in-session deduplication; it dies with the
// session.
type List struct {
	mu      sync.Mutex
	entries []Entry
}

func (l *List) append(e Entry) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return len(l.entries)
}

// Entries returns a copy of the logged entries in append order.
func (l *List) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of logged entries.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Result is the outcome of one log_appliance call, returned to the model as
// the tool response.
type Result struct {
	Status          string   `json:"status"`
	Message         string   `json:"message"`
	TotalAppliances int      `json:"total_appliances"`
	BigQueryErrors  []string `json:"bigquery_errors,omitempty"`
}

// Writer persists entries outside the session. Implementations must be safe
// for concurrent use across sessions.
type Writer interface {
	Insert(ctx context.Context, e Entry, at time.Time) error
}

// Sink records confirmed appliances. The session list is updated first and
// unconditionally; persistence failure is reported in the Result but never
// rolls the local append back, so total_appliances always reflects what the
// session saw.
type Sink struct {
	writer Writer
}

// NewSink creates a sink. writer may be nil, in which case entries live only
// in session state.
func NewSink(writer Writer) *Sink {
	return &Sink{writer: writer}
}

// Log appends the entry to the session inventory and mirrors it to the
// configured writer.
func (s *Sink) Log(ctx context.Context, list *List, e Entry) Result {
	if e.UserID == "" {
		e.UserID = DefaultUserID
	}

	total := list.append(e)

	if s.writer != nil {
		if err := s.writer.Insert(ctx, e, time.Now().UTC()); err != nil {
			return Result{
				Status: StatusError,
				Message: fmt.Sprintf("Saved to session but BigQuery insert failed for %s %s %s.",
					e.Make, e.Model, e.ApplianceType),
				TotalAppliances: total,
				BigQueryErrors:  rowErrors(err),
			}
		}
	}

	return Result{
		Status: StatusSuccess,
		Message: fmt.Sprintf("Logged %s %s %s in %s for user %s",
			e.Make, e.Model, e.ApplianceType, e.Location, e.UserID),
		TotalAppliances: total,
	}
}
