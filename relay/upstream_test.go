package relay

import (
	"bytes"
	"encoding/base64"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"homescout/agent"
	"homescout/messages"
)

type scriptedFrame struct {
	messageType int
	data        []byte
}

// scriptConn replays a fixed frame sequence, then reports a clean close.
type scriptConn struct {
	frames []scriptedFrame
	next   int
}

func (c *scriptConn) ReadMessage() (int, []byte, error) {
	if c.next >= len(c.frames) {
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
	f := c.frames[c.next]
	c.next++
	return f.messageType, f.data, nil
}

func (c *scriptConn) WriteMessage(int, []byte) error { return nil }
func (c *scriptConn) SetWriteDeadline(time.Time) error { return nil }

func runUpstream(t *testing.T, frames ...scriptedFrame) []agent.Request {
	t.Helper()
	queue := agent.NewRequestQueue()
	Upstream(&scriptConn{frames: frames}, queue, "test")
	queue.Close()

	var requests []agent.Request
	for req := range queue.Requests() {
		requests = append(requests, req)
	}
	return requests
}

func TestUpstreamBinaryFrameBecomesAudioBlob(t *testing.T) {
	pcm := bytes.Repeat([]byte{0x7f, 0x00}, 160) // 320 bytes

	requests := runUpstream(t, scriptedFrame{websocket.BinaryMessage, pcm})

	if len(requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(requests))
	}
	blob := requests[0].Blob
	if blob == nil {
		t.Fatal("binary frame must produce a realtime blob")
	}
	if blob.MIMEType != messages.MimeAudioPCM16k {
		t.Fatalf("MIME = %q, want %q", blob.MIMEType, messages.MimeAudioPCM16k)
	}
	if !bytes.Equal(blob.Data, pcm) {
		t.Fatalf("blob carries %d bytes, want the original %d", len(blob.Data), len(pcm))
	}
}

func TestUpstreamTextFrameBecomesContent(t *testing.T) {
	requests := runUpstream(t, scriptedFrame{websocket.TextMessage, []byte(`{"type":"text","text":"log it"}`)})

	if len(requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(requests))
	}
	content := requests[0].Content
	if content == nil {
		t.Fatal("text frame must produce content")
	}
	if content.Role != "" {
		t.Fatalf("role = %q, want unset", content.Role)
	}
	if len(content.Parts) != 1 || content.Parts[0].Text != "log it" {
		t.Fatalf("parts = %+v, want one text part", content.Parts)
	}
}

func TestUpstreamImageFrameDecodesBase64(t *testing.T) {
	raw := []byte{0xde, 0xad, 0xbe, 0xef}
	frame := []byte(`{"type":"image","mimeType":"image/png","data":"` +
		base64.StdEncoding.EncodeToString(raw) + `"}`)

	requests := runUpstream(t, scriptedFrame{websocket.TextMessage, frame})

	if len(requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(requests))
	}
	blob := requests[0].Blob
	if blob == nil || blob.MIMEType != "image/png" {
		t.Fatalf("blob = %+v, want image/png blob", blob)
	}
	if !bytes.Equal(blob.Data, raw) {
		t.Fatalf("decoded = %x, want %x", blob.Data, raw)
	}
}

func TestUpstreamImageFrameDefaultsToJPEG(t *testing.T) {
	frame := []byte(`{"type":"image","data":"` + base64.StdEncoding.EncodeToString([]byte{1}) + `"}`)

	requests := runUpstream(t, scriptedFrame{websocket.TextMessage, frame})

	if len(requests) != 1 || requests[0].Blob == nil {
		t.Fatalf("requests = %+v, want one blob", requests)
	}
	if got := requests[0].Blob.MIMEType; got != messages.MimeImageDefault {
		t.Fatalf("MIME = %q, want %q", got, messages.MimeImageDefault)
	}
}

func TestUpstreamDropsBadFramesAndKeepsOrder(t *testing.T) {
	requests := runUpstream(t,
		scriptedFrame{websocket.TextMessage, []byte(`{"type":"text","text":"first"}`)},
		scriptedFrame{websocket.TextMessage, []byte(`not json at all`)},
		scriptedFrame{websocket.TextMessage, []byte(`{"type":"bogus"}`)},
		scriptedFrame{websocket.TextMessage, []byte(`{"type":"image","data":"!!not-base64!!"}`)},
		scriptedFrame{websocket.BinaryMessage, []byte{9, 9}},
		scriptedFrame{websocket.TextMessage, []byte(`{"type":"text","text":"second"}`)},
	)

	// 1:1 for good frames, zero events for the dropped ones, order preserved.
	if len(requests) != 3 {
		t.Fatalf("requests = %d, want 3", len(requests))
	}
	if requests[0].Content == nil || requests[0].Content.Parts[0].Text != "first" {
		t.Fatalf("request 0 = %+v, want text 'first'", requests[0])
	}
	if requests[1].Blob == nil {
		t.Fatalf("request 1 = %+v, want audio blob", requests[1])
	}
	if requests[2].Content == nil || requests[2].Content.Parts[0].Text != "second" {
		t.Fatalf("request 2 = %+v, want text 'second'", requests[2])
	}
}
