// Package transcript holds the in-memory transcript store and the rolling
// caption window. Lifecycle is process lifetime; there is no persistence.
package transcript

import (
	"sync"
	"time"
)

// Segment is one transcribed audio slice. Segments are never mutated after
// creation. Seq is a per-participant monotonic sequence number stamped at
// append time; segments may complete out of capture order, so consumers that
// need chronological order must sort on it.
type Segment struct {
	Seq        uint64 `json:"seq"`
	Raw        string `json:"raw"`
	Clean      string `json:"clean"`
	Meaningful string `json:"meaningful"`
	Timestamp  int64  `json:"timestamp"`
}

type participantLog struct {
	mu       sync.Mutex
	seq      uint64
	segments []Segment
}

// Store maps participant ids to their append-only segment sequences.
// Mutations for different participants never contend: each participant's log
// carries its own lock, the store-level lock only guards the index.
type Store struct {
	mu         sync.RWMutex
	logs       map[string]*participantLog
	maxHistory int
}

// NewStore creates a store. maxHistory bounds per-participant retention;
// zero or negative keeps the full history.
func NewStore(maxHistory int) *Store {
	return &Store{
		logs:       make(map[string]*participantLog),
		maxHistory: maxHistory,
	}
}

func (s *Store) logFor(participantID string) *participantLog {
	s.mu.RLock()
	l, ok := s.logs[participantID]
	s.mu.RUnlock()
	if ok {
		return l
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok = s.logs[participantID]; ok {
		return l
	}
	l = &participantLog{}
	s.logs[participantID] = l
	return l
}

// Append records a segment for the participant, stamping its sequence number
// and timestamp, and returns the stored segment. Oldest entries are evicted
// FIFO once the history bound is reached.
func (s *Store) Append(participantID, raw, clean, meaningful string) Segment {
	l := s.logFor(participantID)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	seg := Segment{
		Seq:        l.seq,
		Raw:        raw,
		Clean:      clean,
		Meaningful: meaningful,
		Timestamp:  time.Now().UnixMilli(),
	}
	l.segments = append(l.segments, seg)
	if s.maxHistory > 0 && len(l.segments) > s.maxHistory {
		l.segments = l.segments[len(l.segments)-s.maxHistory:]
	}
	return seg
}

// History returns a copy of the participant's retained segments in append
// order.
func (s *Store) History(participantID string) []Segment {
	s.mu.RLock()
	l, ok := s.logs[participantID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Segment, len(l.segments))
	copy(out, l.segments)
	return out
}

// Snapshot returns a copy of the whole store keyed by participant id.
func (s *Store) Snapshot() map[string][]Segment {
	s.mu.RLock()
	ids := make([]string, 0, len(s.logs))
	for id := range s.logs {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	out := make(map[string][]Segment, len(ids))
	for _, id := range ids {
		out[id] = s.History(id)
	}
	return out
}
