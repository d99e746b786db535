package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nvoss/phonedump/internal/android"
	"github.com/nvoss/phonedump/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API has no browser origin to protect; it serves local tooling
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ProgressEvent is one message on the parse-progress stream
type ProgressEvent struct {
	// Type is "section", "cached", "done", or "error"
	Type string `json:"type"`

	// Section and Lines are set on "section" events
	Section string `json:"section,omitempty"`
	Lines   int    `json:"lines,omitempty"`

	// Sections is the full section list, set on "done"
	Sections []string `json:"sections,omitempty"`

	// Error is set on "error" events
	Error string `json:"error,omitempty"`
}

// handleParseProgress serves GET /ws/parse?dump=<name>.
//
// The connection streams one "section" event per parsed dump section as
// the parse proceeds, then a final "done" event carrying the section
// list. A dump whose sidecar cache is fresh parses no sections; the
// stream then carries a single "cached" event before "done".
func (s *Server) handleParseProgress(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("dump")
	if name == "" || strings.ContainsAny(name, `/\`) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid dump name %q", name))
		return
	}

	path := filepath.Join(s.config.DumpDir, name+".txt")
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("dump %s not found", name))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	defer conn.Close()

	logging.Info("Parse progress stream opened",
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("dump", name),
	)

	send := func(ev ProgressEvent) error {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return conn.WriteJSON(ev)
	}

	sawSection := false
	d, err := android.Open(path, &android.Options{
		OnSection: func(section string, lines int) {
			sawSection = true
			if err := send(ProgressEvent{Type: "section", Section: section, Lines: lines}); err != nil {
				logging.Warn("Failed to stream section event",
					zap.String("remote_addr", r.RemoteAddr),
					zap.Error(err),
				)
			}
		},
	})
	if err != nil {
		_ = send(ProgressEvent{Type: "error", Error: err.Error()})
		return
	}

	if !sawSection {
		// The sidecar cache satisfied the open, so no sections parsed.
		_ = send(ProgressEvent{Type: "cached"})
	}

	s.mu.Lock()
	s.dumps[name] = d
	s.mu.Unlock()

	if err := send(ProgressEvent{Type: "done", Sections: d.Sections()}); err != nil {
		logging.Warn("Failed to send done event",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
}
