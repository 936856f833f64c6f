// Package devtools records store events for inspection during development.
//
// An Inspector is a store.Observer. Attach it to every session store and
// mount its Handler to browse recent actions:
//
//	insp := devtools.NewInspector(256, logger)
//	users := user.New(store.WithObserver(insp))
//	r.Get("/__devtools/events", insp.ServeHTTP)
package devtools

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/vango-dev/starter/pkg/store"
)

// DefaultCapacity is used when NewInspector is given a non-positive size.
const DefaultCapacity = 256

// Entry is one recorded event with its sequence number.
type Entry struct {
	Seq uint64 `json:"seq"`
	store.Event
}

// Inspector is a thread-safe ring buffer of store events. The oldest entry
// is overwritten once the buffer is full.
type Inspector struct {
	mu       sync.RWMutex
	entries  []Entry
	head     int // next write position
	count    int
	capacity int
	seq      uint64

	logger *slog.Logger
}

// NewInspector creates an inspector keeping the last capacity events.
func NewInspector(capacity int, logger *slog.Logger) *Inspector {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Inspector{
		entries:  make([]Entry, capacity),
		capacity: capacity,
		logger:   logger.With("component", "devtools"),
	}
}

// Observe implements store.Observer.
func (in *Inspector) Observe(e store.Event) {
	in.mu.Lock()
	in.seq++
	seq := in.seq
	in.entries[in.head] = Entry{Seq: seq, Event: e}
	in.head = (in.head + 1) % in.capacity
	if in.count < in.capacity {
		in.count++
	}
	in.mu.Unlock()

	in.logger.Debug("store event", "seq", seq, "store", e.Store, "session_id", e.Session, "action", e.Type)
}

// Events returns the recorded entries with Seq greater than since, oldest
// first.
func (in *Inspector) Events(since uint64) []Entry {
	in.mu.RLock()
	defer in.mu.RUnlock()

	out := make([]Entry, 0, in.count)
	for i := 0; i < in.count; i++ {
		idx := (in.head - in.count + i + in.capacity) % in.capacity
		if e := in.entries[idx]; e.Seq > since {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of buffered entries.
func (in *Inspector) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.count
}

// Reset drops every buffered entry. Sequence numbers keep increasing.
func (in *Inspector) Reset() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.entries = make([]Entry, in.capacity)
	in.head = 0
	in.count = 0
}

// ServeHTTP writes the buffered events as JSON. Optional query parameters:
// since (sequence number), store (store name) and session (session id).
func (in *Inspector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var since uint64
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "since must be a sequence number", http.StatusBadRequest)
			return
		}
		since = n
	}

	q := r.URL.Query()
	name, session := q.Get("store"), q.Get("session")
	events := in.Events(since)
	filtered := events[:0]
	for _, e := range events {
		if name != "" && e.Store != name {
			continue
		}
		if session != "" && e.Session != session {
			continue
		}
		filtered = append(filtered, e)
	}
	events = filtered

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(struct {
		Events []Entry `json:"events"`
	}{events}); err != nil {
		in.logger.Warn("encode events", "error", err)
	}
}
