// Package server exposes the segmentation engine over a websocket endpoint.
// One connection is one stream session: the client sends text deltas as they
// are generated and receives speakable chunks back, in order.
package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/sentencekit/sentencekit/pkg/tokenizer"
	"github.com/sentencekit/sentencekit/pkg/trace"
)

const (
	DefaultWSWriteWait = 10 * time.Second
	DefaultWSPongWait  = 60 * time.Second
)

// ServerConfig holds configuration for the segmentation server.
type ServerConfig struct {
	Addr      string
	Tokenizer tokenizer.Config
	WriteWait time.Duration
	PongWait  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:      ":8080",
		Tokenizer: tokenizer.DefaultConfig(),
		WriteWait: DefaultWSWriteWait,
		PongWait:  DefaultWSPongWait,
	}
}

// WSMessage is the JSON frame exchanged over the websocket.
//
// Client to server: type "delta" (with Text), "flush", "abort".
// Server to client: type "chunk" (Text, Seq), "done", "error" (Error).
type WSMessage struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	Seq       int    `json:"seq,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SegmentServer serves the /segment websocket endpoint.
type SegmentServer struct {
	config    *ServerConfig
	tokenizer *tokenizer.BoundaryTokenizer
	upgrader  websocket.Upgrader
}

// NewSegmentServer validates the tokenizer configuration up front so a bad
// deployment fails at startup, not per connection.
func NewSegmentServer(config *ServerConfig) (*SegmentServer, error) {
	if config == nil {
		config = DefaultServerConfig()
	}
	tok, err := tokenizer.NewBoundaryTokenizer(config.Tokenizer)
	if err != nil {
		return nil, fmt.Errorf("segment server: %w", err)
	}
	return &SegmentServer{
		config:    config,
		tokenizer: tok,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}, nil
}

// ListenAndServe registers the /segment handler and blocks serving it.
func (s *SegmentServer) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/segment", s.HandleSegment)
	log.Printf("segment server listening on %s", s.config.Addr)
	return http.ListenAndServe(s.config.Addr, mux)
}

// HandleSegment upgrades the connection and runs one stream session over it.
func (s *SegmentServer) HandleSegment(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	log.Printf("segment session %s started", sessionID)
	s.serveSession(r, conn, sessionID)
	log.Printf("segment session %s finished", sessionID)
}

func (s *SegmentServer) serveSession(r *http.Request, conn *websocket.Conn, sessionID string) {
	stream, err := s.tokenizer.Stream()
	if err != nil {
		s.writeError(conn, err)
		return
	}

	seq := 0
	conn.SetReadDeadline(time.Now().Add(s.config.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.config.PongWait))
	})

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			// Client went away mid-stream: treat as cancellation.
			_, span := trace.InstrumentAbort(r.Context(), sessionID)
			_ = stream.Abort()
			span.End()
			return
		}
		conn.SetReadDeadline(time.Now().Add(s.config.PongWait))

		switch msg.Type {
		case "delta":
			_, span := trace.InstrumentFeed(r.Context(), sessionID, len(msg.Text))
			chunks, err := stream.Feed([]byte(msg.Text))
			if err != nil {
				trace.RecordError(span, err)
				span.End()
				s.writeError(conn, err)
				return
			}
			span.End()
			for _, chunk := range chunks {
				if !s.writeChunk(conn, sessionID, chunk, &seq) {
					return
				}
			}

		case "flush":
			_, span := trace.InstrumentFlush(r.Context(), sessionID)
			final, ok, err := stream.Close()
			span.End()
			if err != nil {
				s.writeError(conn, err)
				return
			}
			if ok {
				if !s.writeChunk(conn, sessionID, final, &seq) {
					return
				}
			}
			s.write(conn, WSMessage{Type: "done", SessionID: sessionID})
			return

		case "abort":
			_, span := trace.InstrumentAbort(r.Context(), sessionID)
			err := stream.Abort()
			span.End()
			if err != nil {
				s.writeError(conn, err)
				return
			}
			s.write(conn, WSMessage{Type: "done", SessionID: sessionID})
			return

		default:
			s.writeError(conn, fmt.Errorf("unknown message type %q", msg.Type))
			return
		}
	}
}

func (s *SegmentServer) writeChunk(conn *websocket.Conn, sessionID, chunk string, seq *int) bool {
	ok := s.write(conn, WSMessage{
		Type:      "chunk",
		Text:      chunk,
		Seq:       *seq,
		SessionID: sessionID,
	})
	*seq++
	return ok
}

func (s *SegmentServer) writeError(conn *websocket.Conn, err error) {
	s.write(conn, WSMessage{Type: "error", Error: err.Error()})
}

func (s *SegmentServer) write(conn *websocket.Conn, msg WSMessage) bool {
	conn.SetWriteDeadline(time.Now().Add(s.config.WriteWait))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("websocket write failed: %v", err)
		return false
	}
	return true
}
