package relay

import (
	"errors"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the subset of *websocket.Conn the relay needs. The upstream pump
// reads and the downstream pump writes concurrently, which gorilla supports
// (one concurrent reader plus one concurrent writer).
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
}

// isClosedConn classifies errors that mean the connection ended rather than
// broke: peer close frames, or our own teardown closing the socket under a
// blocked read.
func isClosedConn(err error) bool {
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
	) {
		return true
	}
	return errors.Is(err, websocket.ErrCloseSent) || errors.Is(err, net.ErrClosed)
}
