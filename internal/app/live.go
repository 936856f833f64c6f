package app

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/starter/internal/errors"
	"github.com/vango-dev/starter/internal/metrics"
	"github.com/vango-dev/starter/internal/store/user"
	"github.com/vango-dev/starter/pkg/query"
	"github.com/vango-dev/starter/pkg/router"
)

// maxFrameSize bounds inbound frames.
const maxFrameSize = 16 << 10

// inbound is a frame sent by the browser.
type inbound struct {
	Type     string    `json:"type"`
	Username string    `json:"username,omitempty"`
	Key      query.Key `json:"key,omitempty"`
	Path     string    `json:"path,omitempty"`
}

// HandleFrame decodes one browser frame and dispatches its action to the
// loop. Malformed frames return E401 and change nothing.
func (s *Session) HandleFrame(data []byte) error {
	var in inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return errors.New(errors.CodeFrameInvalid).WithDetail("frame is not a JSON object").Wrap(err)
	}
	if m := s.opts.Metrics; m != nil {
		m.FrameReceived(in.Type)
	}

	switch in.Type {
	case "setUser":
		if in.Username == "" {
			return errors.New(errors.CodeFrameInvalid).WithDetail("setUser needs a username")
		}
		name := in.Username
		s.Dispatch(func() { s.users.Invoke(user.KeySetUser, name) })

	case "logout":
		s.Dispatch(func() { s.users.Invoke(user.KeyLogout) })

	case "invalidate":
		if len(in.Key) == 0 {
			return errors.New(errors.CodeFrameInvalid).WithDetail("invalidate needs a key")
		}
		key := in.Key
		s.Dispatch(func() {
			n := s.client.Invalidate(key)
			s.logger.Debug("invalidated", "key", key.String(), "entries", n)
		})

	case "navigate":
		path, err := router.ValidateNavPath(in.Path)
		if err != nil {
			return errors.New(errors.CodeFrameInvalid).WithDetailf("navigate to %q", in.Path).Wrap(err)
		}
		s.Dispatch(func() {
			if err := s.location.Navigate(path); err != nil {
				s.logger.Warn("navigate", "path", path, "error", err)
			}
		})

	default:
		return errors.New(errors.CodeFrameInvalid).WithDetailf("unknown frame type %q", in.Type)
	}
	return nil
}

// errorFrame reports err to the browser.
func errorFrame(err error) Frame {
	f := Frame{Type: "error", Message: err.Error()}
	if e := errors.FromError(err, ""); e != nil && e.Code != "" {
		f.Code = e.Code
		f.Message = e.Message
		if e.Detail != "" {
			f.Message += ": " + e.Detail
		}
	}
	return f
}

// liveHandler upgrades /_live requests and pumps frames for one session.
type liveHandler struct {
	manager  *Manager
	upgrader websocket.Upgrader
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func newLiveHandler(manager *Manager, m *metrics.Metrics, logger *slog.Logger) *liveHandler {
	return &liveHandler{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		metrics: m,
		logger:  logger.With("component", "live"),
	}
}

func (h *liveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, err := h.manager.Get(r.URL.Query().Get("session"))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(errors.FromError(err, errors.CodeSessionNotFound).FormatJSON()))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		h.logger.Warn("websocket upgrade", "error", err)
		h.wsError("upgrade")
		return
	}
	conn.SetReadLimit(maxFrameSize)

	sess.attach(conn)
	defer sess.detach(conn)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				h.logger.Warn("read error", "session_id", sess.ID, "error", err)
				h.wsError("read")
			}
			return
		}
		sess.touch()

		if err := sess.HandleFrame(msg); err != nil {
			h.logger.Debug("rejected frame", "session_id", sess.ID, "error", err)
			sess.send(errorFrame(err))
		}
	}
}

func (h *liveHandler) wsError(kind string) {
	if h.metrics != nil {
		h.metrics.WebSocketError(kind)
	}
}
