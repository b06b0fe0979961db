package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kode4food/learnable/pkg/api"
	"github.com/kode4food/learnable/pkg/log"
)

type (
	// Monitor listens on the backend session websocket and ends the local
	// session when the backend reports it terminated
	Monitor struct {
		store        *Store
		dialer       *websocket.Dialer
		onTerminated TerminatedFunc
		baseURL      string
	}

	// TerminatedFunc is invoked after a terminated session has been cleared
	TerminatedFunc func(ctx context.Context, message string)
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize     = 4096
	incomingBufferSize = 16
)

var (
	ErrNoSession         = errors.New("no session to monitor")
	ErrSessionTerminated = errors.New("session terminated")
)

// NewMonitor creates a Monitor for the backend at baseURL (http or https)
func NewMonitor(baseURL string, s *Store, fn TerminatedFunc) *Monitor {
	return &Monitor{
		store:        s,
		dialer:       websocket.DefaultDialer,
		onTerminated: fn,
		baseURL:      strings.TrimRight(baseURL, "/"),
	}
}

// URL returns the websocket address monitored for sessionID
func (m *Monitor) URL(sessionID string) string {
	base := m.baseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return fmt.Sprintf("%s/ws/sessions/%s/", base, sessionID)
}

// Run connects and blocks until ctx is done, the connection drops, or the
// session is terminated. A terminated session clears the Store and yields
// ErrSessionTerminated
func (m *Monitor) Run(ctx context.Context) error {
	sessionID, err := m.store.SessionID(ctx)
	if err != nil {
		return err
	}
	if sessionID == "" {
		return ErrNoSession
	}

	conn, _, err := m.dialer.DialContext(ctx, m.URL(sessionID), nil)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if err := m.authenticate(ctx, conn); err != nil {
		return err
	}

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	incoming := make(chan []byte, incomingBufferSize)
	done := make(chan struct{})
	defer close(done)
	go readMessages(conn, incoming, done)

	for {
		select {
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			)
			return nil

		case data, ok := <-incoming:
			if !ok {
				return nil
			}
			if m.handleMessage(ctx, data) {
				return ErrSessionTerminated
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func (m *Monitor) authenticate(ctx context.Context, conn *websocket.Conn) error {
	tok, err := m.store.AccessToken(ctx)
	if err != nil || tok == "" {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(api.SessionMessage{
		Type:  api.MessageAuthenticate,
		Token: tok,
	})
}

func (m *Monitor) handleMessage(ctx context.Context, data []byte) bool {
	var msg api.SessionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Error("Failed to parse session message", log.Error(err))
		return false
	}
	if msg.Type != api.MessageSessionTerminated {
		return false
	}

	slog.Warn("Session terminated by backend",
		slog.String("message", msg.Message))
	if err := m.store.Clear(ctx); err != nil {
		slog.Error("Failed to clear session", log.Error(err))
	}
	if m.onTerminated != nil {
		m.onTerminated(ctx, msg.Message)
	}
	return true
}

func readMessages(
	conn *websocket.Conn, incoming chan<- []byte, done <-chan struct{},
) {
	defer close(incoming)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case incoming <- data:
		case <-done:
			return
		}
	}
}
