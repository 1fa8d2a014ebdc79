package relay

import (
	"encoding/base64"
	"log"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"google.golang.org/genai"

	"homescout/agent"
	"homescout/messages"
)

// Upstream pumps inbound connection frames into the request queue until the
// connection ends. Binary frames are raw 16kHz PCM; text frames carry the
// ClientFrame envelope. Forwarding order matches arrival order, one event
// per frame; unknown tags and malformed payloads are dropped without ending
// the loop.
func Upstream(conn Conn, queue *agent.RequestQueue, tag string) {
	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if isClosedConn(err) {
				log.Printf("🔌 [%s] Client disconnected (upstream)", tag)
			} else {
				log.Printf("❌ [%s] Upstream read error: %v", tag, err)
			}
			return
		}

		if messageType == websocket.BinaryMessage {
			queue.SendRealtime(&genai.Blob{
				MIMEType: messages.MimeAudioPCM16k,
				Data:     payload,
			})
			continue
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var frame messages.ClientFrame
		if err := sonic.Unmarshal(payload, &frame); err != nil {
			log.Printf("⚠️ [%s] Dropping malformed frame: %v", tag, err)
			continue
		}

		switch frame.Type {
		case messages.TypeText:
			// No role: the runtime treats unattributed content as user input.
			queue.SendContent(&genai.Content{
				Parts: []*genai.Part{{Text: frame.Text}},
			})

		case messages.TypeImage:
			data, err := base64.StdEncoding.DecodeString(frame.Data)
			if err != nil {
				log.Printf("⚠️ [%s] Dropping image frame with invalid base64: %v", tag, err)
				continue
			}
			mimeType := frame.MimeType
			if mimeType == "" {
				mimeType = messages.MimeImageDefault
			}
			queue.SendRealtime(&genai.Blob{
				MIMEType: mimeType,
				Data:     data,
			})

		default:
			log.Printf("⚠️ [%s] Dropping frame with unknown type %q", tag, frame.Type)
		}
	}
}
