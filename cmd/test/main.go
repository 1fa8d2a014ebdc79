package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// AgentEvent mirrors the JSON text frames the server relays. Audio arrives
// separately as binary frames.
type AgentEvent struct {
	Content             json.RawMessage `json:"content,omitempty"`
	TurnComplete        bool            `json:"turnComplete,omitempty"`
	Interrupted         bool            `json:"interrupted,omitempty"`
	InputTranscription  *Transcription  `json:"inputTranscription,omitempty"`
	OutputTranscription *Transcription  `json:"outputTranscription,omitempty"`
}

type Transcription struct {
	Text     string `json:"text,omitempty"`
	Finished bool   `json:"finished,omitempty"`
}

// AudioPlayer streams audio via sox
type AudioPlayer struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	mu     sync.Mutex
	closed bool
}

func NewAudioPlayer() *AudioPlayer {
	cmd := exec.Command("sox",
		"-t", "raw",
		"-r", "24000",
		"-b", "16",
		"-c", "1",
		"-e", "signed-integer",
		"-",
		"-d",
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		log.Println("sox stdin error:", err)
		return nil
	}

	if err := cmd.Start(); err != nil {
		log.Println("sox start error:", err)
		return nil
	}

	return &AudioPlayer{cmd: cmd, stdin: stdin}
}

func (p *AudioPlayer) Play(audioData []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.stdin == nil {
		return
	}
	p.stdin.Write(audioData)
}

func (p *AudioPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.stdin != nil {
		p.stdin.Close()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Wait()
	}
}

func main() {
	// Flags
	serverURL := flag.String("server", "ws://localhost:8080/ws/demo_user/demo_session", "WebSocket server URL")
	audioFile := flag.String("file", "examples/user.pcm", "Audio file to send (PCM or WAV)")
	text := flag.String("text", "", "Send a text message instead of audio")
	flag.Parse()

	log.Printf("🔌 Connecting to %s...", *serverURL)

	// Connect to server
	conn, _, err := websocket.DefaultDialer.Dial(*serverURL, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	log.Println("✅ Connected!")

	// Setup audio player
	player := NewAudioPlayer()
	if player == nil {
		log.Fatal("Failed to create audio player (is sox installed?)")
	}
	defer player.Close()

	// Handle interrupt
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})

	// Read responses from server
	go func() {
		defer close(done)
		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}

			// Binary frames are raw 24kHz PCM audio
			if messageType == websocket.BinaryMessage {
				log.Printf("🔊 Playing audio: %d bytes", len(message))
				player.Play(message)
				continue
			}

			var event AgentEvent
			if err := json.Unmarshal(message, &event); err != nil {
				log.Println("Parse error:", err)
				continue
			}

			if event.InputTranscription != nil {
				fmt.Printf("🎤 you: %s\n", event.InputTranscription.Text)
			}
			if event.OutputTranscription != nil {
				fmt.Printf("📝 agent: %s\n", event.OutputTranscription.Text)
			}
			if len(event.Content) > 0 {
				log.Printf("📦 Content: %s", string(event.Content))
			}
			if event.Interrupted {
				log.Println("✋ Interrupted")
			}
			if event.TurnComplete {
				log.Println("--- Turn complete ---")
			}
		}
	}()

	// Give the agent a moment to speak its greeting
	time.Sleep(500 * time.Millisecond)

	if *text != "" {
		payload, _ := json.Marshal(map[string]string{"type": "text", "text": *text})
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Fatalf("Send error: %v", err)
		}
		log.Printf("📤 Sent text: %s", *text)
	} else {
		// Load and send audio file
		log.Printf("📤 Sending audio file: %s", *audioFile)

		audioData, err := loadAudioFile(*audioFile)
		if err != nil {
			log.Fatalf("Failed to load audio: %v", err)
		}

		// Send audio in chunks (simulating real-time streaming)
		chunkSize := 3200 // 100ms at 16kHz
		for i := 0; i < len(audioData); i += chunkSize {
			end := i + chunkSize
			if end > len(audioData) {
				end = len(audioData)
			}
			chunk := audioData[i:end]

			if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
				log.Printf("Send error: %v", err)
				break
			}

			// Simulate real-time streaming pace
			time.Sleep(100 * time.Millisecond)
		}

		log.Println("✅ Audio sent, waiting for response...")
	}

	// Wait for response or interrupt
	select {
	case <-done:
		log.Println("Connection closed")
	case <-interrupt:
		log.Println("\n👋 Interrupted, closing...")
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	case <-time.After(60 * time.Second):
		log.Println("⏰ Timeout waiting for response")
	}
}

// loadAudioFile loads PCM or WAV file and returns raw PCM bytes
func loadAudioFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Check if it's a WAV file (starts with "RIFF")
	if len(data) > 44 && string(data[0:4]) == "RIFF" {
		// Skip WAV header (44 bytes for standard WAV)
		log.Println("📁 Detected WAV file, skipping header")
		return data[44:], nil
	}

	// Assume raw PCM
	log.Println("📁 Detected raw PCM file")
	return data, nil
}
