package relay

import (
	"fmt"
	"log"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"google.golang.org/genai"

	"homescout/agent"
)

const writeTimeout = 10 * time.Second

// Downstream relays agent events to the client until the event stream or the
// connection ends. Per event, in arrival order: run the suppressor, then
// emit each inline audio part as its own binary frame (no JSON or base64 on
// the playback path), then send whatever signal remains as one JSON text
// frame. Pure-audio events produce no JSON envelope.
func Downstream(conn Conn, events <-chan *agent.Event, tag string) {
	sup := newSuppressor()

	for event := range events {
		if sup.observe(event) {
			continue
		}

		if err := emit(conn, event); err != nil {
			if isClosedConn(err) {
				log.Printf("🔌 [%s] Client disconnected (downstream)", tag)
			} else {
				log.Printf("❌ [%s] Downstream error: %v", tag, err)
			}
			return
		}
	}
}

func emit(conn Conn, event *agent.Event) error {
	if event.Content != nil {
		var nonAudio []*genai.Part
		for _, part := range event.Content.Parts {
			if agent.IsAudioPart(part) {
				conn.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := conn.WriteMessage(websocket.BinaryMessage, part.InlineData.Data); err != nil {
					return err
				}
			} else {
				nonAudio = append(nonAudio, part)
			}
		}

		// The event keeps only what the frontend still needs.
		if len(nonAudio) > 0 {
			event.Content.Parts = nonAudio
		} else {
			event.Content = nil
		}
	}

	if !event.HasSignal() {
		return nil
	}

	payload, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, payload)
}
