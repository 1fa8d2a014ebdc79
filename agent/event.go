package agent

import (
	"strings"

	"google.golang.org/genai"
)

// Event is one unit of agent output, relayed to the client as JSON after the
// audio parts have been split off into binary frames. Field names match the
// camelCase the genai SDK uses for content parts, so the frontend sees one
// consistent casing. Unset fields are omitted from the serialized form.
type Event struct {
	Content             *genai.Content       `json:"content,omitempty"`
	TurnComplete        bool                 `json:"turnComplete,omitempty"`
	Interrupted         bool                 `json:"interrupted,omitempty"`
	InputTranscription  *genai.Transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *genai.Transcription `json:"outputTranscription,omitempty"`
}

// IsAudioPart reports whether a content part carries inline audio data.
func IsAudioPart(part *genai.Part) bool {
	return part != nil && part.InlineData != nil &&
		strings.HasPrefix(part.InlineData.MIMEType, "audio/")
}

// HasSpeech reports whether the event carries model speech: an output
// transcription, or any content part with inline audio data.
func (e *Event) HasSpeech() bool {
	if e.OutputTranscription != nil {
		return true
	}
	if e.Content == nil {
		return false
	}
	for _, part := range e.Content.Parts {
		if IsAudioPart(part) {
			return true
		}
	}
	return false
}

// HasFunctionResponse reports whether any content part is a tool response
// marker.
func (e *Event) HasFunctionResponse() bool {
	if e.Content == nil {
		return false
	}
	for _, part := range e.Content.Parts {
		if part != nil && part.FunctionResponse != nil {
			return true
		}
	}
	return false
}

// HasSignal reports whether the event still carries anything the frontend
// needs once audio parts have been stripped. Pure-audio events return false
// and are not sent as JSON.
func (e *Event) HasSignal() bool {
	return e.Content != nil || e.TurnComplete || e.Interrupted ||
		e.InputTranscription != nil || e.OutputTranscription != nil
}
