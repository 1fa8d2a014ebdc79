package relay

import (
	"testing"
	"time"

	"google.golang.org/genai"

	"homescout/agent"
)

func speechEvent(text string) *agent.Event {
	return &agent.Event{OutputTranscription: &genai.Transcription{Text: text}}
}

func audioEvent() *agent.Event {
	return &agent.Event{Content: &genai.Content{Parts: []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: "audio/pcm;rate=24000", Data: []byte{1, 2}}},
	}}}
}

func toolResponseEvent() *agent.Event {
	return &agent.Event{Content: &genai.Content{Parts: []*genai.Part{
		{FunctionResponse: &genai.FunctionResponse{Name: "log_appliance"}},
	}}}
}

func turnCompleteEvent() *agent.Event {
	return &agent.Event{TurnComplete: true}
}

// testClock drives the suppressor's monotonic clock by hand.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSuppressor() (*suppressor, *testClock) {
	clock := &testClock{t: time.Unix(1000, 0)}
	return &suppressor{now: clock.now}, clock
}

func TestSuppressorDropsDuplicatePostToolTurn(t *testing.T) {
	sup, _ := newTestSuppressor()

	steps := []struct {
		ev   *agent.Event
		drop bool
	}{
		{toolResponseEvent(), false},
		{speechEvent("logged it"), false}, // the confirmation passes
		{turnCompleteEvent(), false},      // arms the cooldown, still emitted
		{speechEvent("logged it"), true},  // duplicate turn
		{turnCompleteEvent(), true},       // its turn_complete is swallowed too
	}
	for i, step := range steps {
		if got := sup.observe(step.ev); got != step.drop {
			t.Fatalf("step %d: observe() drop = %v, want %v", i, got, step.drop)
		}
	}

	// A turn after the suppressed one flows normally.
	if sup.observe(speechEvent("next answer")) {
		t.Fatal("speech after suppressed turn was dropped")
	}
	if sup.observe(turnCompleteEvent()) {
		t.Fatal("turn_complete after suppressed turn was dropped")
	}
}

func TestSuppressorCooldownExpires(t *testing.T) {
	sup, clock := newTestSuppressor()

	sup.observe(toolResponseEvent())
	sup.observe(speechEvent("logged it"))
	sup.observe(turnCompleteEvent())

	clock.advance(6 * time.Second)

	if sup.observe(speechEvent("logged it")) {
		t.Fatal("speech 6s after cooldown was armed should not be suppressed")
	}
	if sup.observe(turnCompleteEvent()) {
		t.Fatal("turn_complete after expired cooldown should not be suppressed")
	}
}

func TestSuppressorNeverCatchesTheConfirmationItself(t *testing.T) {
	sup, _ := newTestSuppressor()

	sup.observe(toolResponseEvent())
	if sup.observe(audioEvent()) {
		t.Fatal("the post-tool confirmation audio must pass through")
	}
}

func TestSuppressorIgnoresSpeechWithoutToolResponse(t *testing.T) {
	sup, _ := newTestSuppressor()

	for i := 0; i < 3; i++ {
		if sup.observe(speechEvent("chat")) {
			t.Fatalf("turn %d: plain speech was dropped", i)
		}
		if sup.observe(turnCompleteEvent()) {
			t.Fatalf("turn %d: plain turn_complete was dropped", i)
		}
	}
}

func TestSuppressorTurnCompleteWithoutSpeechDoesNotArm(t *testing.T) {
	sup, _ := newTestSuppressor()

	sup.observe(toolResponseEvent())
	sup.observe(turnCompleteEvent()) // no speech yet: cooldown must stay unarmed

	if sup.observe(speechEvent("late confirmation")) {
		t.Fatal("speech before any spoken confirmation was suppressed")
	}
}

func TestSuppressorSingleEventWithResponseAndSpeech(t *testing.T) {
	sup, _ := newTestSuppressor()

	// One event carries both the function response and the spoken
	// confirmation: state updates run in order within the event.
	ev := toolResponseEvent()
	ev.OutputTranscription = &genai.Transcription{Text: "done"}
	if sup.observe(ev) {
		t.Fatal("combined response+speech event must pass through")
	}
	sup.observe(turnCompleteEvent())

	if !sup.observe(speechEvent("done")) {
		t.Fatal("repeat speech inside the cooldown was not suppressed")
	}
}
