package relay

import (
	"log"
	"time"

	"homescout/agent"
)

// postToolCooldown is the window after a spoken tool confirmation during
// which new speech is treated as a duplicate utterance.
const postToolCooldown = 5 * time.Second

// suppressor drops the duplicate confirmation the model sometimes speaks in
// back-to-back turns after a tool call. The first confirmation passes
// through; the machine tracks speech after the tool response so only the
// repeat is dropped:
//
//	function_response part seen  -> sawToolResponse
//	model speaks                 -> sawPostToolSpeech
//	turn_complete with both set  -> arm 5s cooldown
//	speech inside the cooldown   -> suppress until the next turn_complete
//
// State is scoped to one connection and never shared.
type suppressor struct {
	now func() time.Time

	sawToolResponse   bool
	sawPostToolSpeech bool
	cooldownUntil     time.Time
	suppressing       bool
}

func newSuppressor() *suppressor {
	return &suppressor{now: time.Now}
}

// observe runs the state machine over one event and reports whether the
// event must be dropped. State updates fully precede the trigger check, so a
// single event can carry both a function response and the speech that
// confirms it.
func (s *suppressor) observe(ev *agent.Event) bool {
	if ev.HasFunctionResponse() {
		s.sawToolResponse = true
		s.sawPostToolSpeech = false
	}

	if s.sawToolResponse && !s.sawPostToolSpeech && ev.HasSpeech() {
		s.sawPostToolSpeech = true
	}

	// Arm only once the model has both received the tool response and
	// spoken its confirmation, so the confirmation itself is never caught.
	if ev.TurnComplete && s.sawToolResponse && s.sawPostToolSpeech {
		s.cooldownUntil = s.now().Add(postToolCooldown)
		s.sawToolResponse = false
		s.sawPostToolSpeech = false
	}

	if !s.suppressing && s.now().Before(s.cooldownUntil) && ev.HasSpeech() {
		s.suppressing = true
		log.Println("🔇 Suppressing duplicate post-tool turn")
	}

	if s.suppressing {
		if ev.TurnComplete {
			// The suppressed turn's own turn_complete is swallowed too.
			s.suppressing = false
			s.cooldownUntil = time.Time{}
			log.Println("🔊 Duplicate turn suppression ended (turn_complete)")
		}
		return true
	}
	return false
}
