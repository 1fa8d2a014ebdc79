package messages

// MIME types used on the client connection
const (
	MimeAudioPCM16k  = "audio/pcm;rate=16000" // inbound microphone audio (binary frames)
	MimeImageDefault = "image/jpeg"           // assumed when an image frame omits mimeType
)

// Frame types
const (
	TypeText  = "text"
	TypeImage = "image"
)

// ClientFrame is the envelope for inbound text frames. Binary frames carry
// raw PCM audio and have no envelope.
//
// Exactly one tag shape is expected per frame:
//
//	{"type":"text","text":"..."}
//	{"type":"image","data":"<base64>","mimeType":"image/png"}
//
// Unknown types are dropped by the relay without terminating the connection.
type ClientFrame struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`     // base64-encoded image payload
	MimeType string `json:"mimeType,omitempty"` // defaults to image/jpeg
}
