package room

import (
	"errors"
	"sync"
	"testing"

	"telemeet-transcription-service/internal/models"
)

type fakeSink struct {
	mu          sync.Mutex
	transcripts []string
	events      []models.PeerEvent
	failNext    bool
}

func (f *fakeSink) DeliverTranscript(from string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errors.New("sink write failed")
	}
	f.transcripts = append(f.transcripts, string(payload))
	return nil
}

func (f *fakeSink) DeliverEvent(ev models.PeerEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeSink) received() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.transcripts))
	copy(out, f.transcripts)
	return out
}

func (f *fakeSink) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Type)
	}
	return out
}

// joinConnected joins a participant and attaches a fake sink.
func joinConnected(t *testing.T, r *Registry, m *Multiplexer, s *Session, name string) (*Participant, *fakeSink) {
	t.Helper()
	p, err := r.Join(s, name)
	if err != nil {
		t.Fatalf("join %s: %v", name, err)
	}
	sink := &fakeSink{}
	if err := m.Connect(s, p.ID, sink); err != nil {
		t.Fatalf("connect %s: %v", name, err)
	}
	return p, sink
}

func TestMultiplexer_SendDataSkipsSender(t *testing.T) {
	r := NewRegistry(nil)
	m := NewMultiplexer(r)
	s := r.CreateOrGet("standup", "alice")

	alice, aliceSink := joinConnected(t, r, m, s, "alice")
	_, bobSink := joinConnected(t, r, m, s, "bob")
	_, carolSink := joinConnected(t, r, m, s, "carol")

	if _, err := m.Publish(s, alice.ID, TrackData); err != nil {
		t.Fatalf("publish: %v", err)
	}

	delivered, err := m.SendData(s, alice.ID, []byte(`{"transcript":"hello"}`))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if delivered != 2 {
		t.Errorf("expected 2 deliveries, got %d", delivered)
	}
	if len(aliceSink.received()) != 0 {
		t.Error("sender received its own transcript")
	}
	for name, sink := range map[string]*fakeSink{"bob": bobSink, "carol": carolSink} {
		got := sink.received()
		if len(got) != 1 || got[0] != `{"transcript":"hello"}` {
			t.Errorf("%s received %v, want the exact payload once", name, got)
		}
	}
}

func TestMultiplexer_SendDataRequiresPublishedDataTrack(t *testing.T) {
	r := NewRegistry(nil)
	m := NewMultiplexer(r)
	s := r.CreateOrGet("standup", "alice")
	alice, _ := joinConnected(t, r, m, s, "alice")
	joinConnected(t, r, m, s, "bob")

	if _, err := m.SendData(s, alice.ID, []byte("x")); !errors.Is(err, ErrNotPublished) {
		t.Errorf("expected ErrNotPublished without a data track, got %v", err)
	}

	if _, err := m.Publish(s, alice.ID, TrackData); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := m.Unpublish(s, alice.ID, TrackData); err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if _, err := m.SendData(s, alice.ID, []byte("x")); !errors.Is(err, ErrNotPublished) {
		t.Errorf("expected ErrNotPublished after unpublish, got %v", err)
	}
}

func TestMultiplexer_SendDataBestEffort(t *testing.T) {
	r := NewRegistry(nil)
	m := NewMultiplexer(r)
	s := r.CreateOrGet("standup", "alice")

	alice, _ := joinConnected(t, r, m, s, "alice")
	_, bobSink := joinConnected(t, r, m, s, "bob")
	_, carolSink := joinConnected(t, r, m, s, "carol")
	bobSink.failNext = true

	if _, err := m.Publish(s, alice.ID, TrackData); err != nil {
		t.Fatalf("publish: %v", err)
	}
	delivered, err := m.SendData(s, alice.ID, []byte("payload"))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if delivered != 1 {
		t.Errorf("expected 1 successful delivery, got %d", delivered)
	}
	if len(carolSink.received()) != 1 {
		t.Error("healthy peer missed the delivery")
	}
}

func TestMultiplexer_DisconnectStopsDeliveries(t *testing.T) {
	r := NewRegistry(nil)
	m := NewMultiplexer(r)
	s := r.CreateOrGet("standup", "alice")

	alice, _ := joinConnected(t, r, m, s, "alice")
	bob, bobSink := joinConnected(t, r, m, s, "bob")
	joinConnected(t, r, m, s, "carol")

	if _, err := m.Publish(s, alice.ID, TrackData); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := m.Disconnect(s, bob.ID); err != nil {
		t.Fatalf("disconnect: %v", err)
	}

	delivered, err := m.SendData(s, alice.ID, []byte("after-leave"))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if delivered != 1 {
		t.Errorf("expected 1 delivery after bob left, got %d", delivered)
	}
	if len(bobSink.received()) != 0 {
		t.Error("departed participant received a transcript")
	}
}

func TestMultiplexer_ConnectReplaysExistingPublications(t *testing.T) {
	r := NewRegistry(nil)
	m := NewMultiplexer(r)
	s := r.CreateOrGet("standup", "alice")

	alice, _ := joinConnected(t, r, m, s, "alice")
	if _, err := m.Publish(s, alice.ID, TrackAudio); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if _, err := m.Publish(s, alice.ID, TrackData); err != nil {
		t.Fatalf("publish: %v", err)
	}

	_, bobSink := joinConnected(t, r, m, s, "bob")

	published := 0
	for _, typ := range bobSink.eventTypes() {
		if typ == models.EventTrackPublished {
			published++
		}
	}
	if published != 2 {
		t.Errorf("expected 2 replayed publications, got %d", published)
	}
}

func TestMultiplexer_RepublishReplacesTrack(t *testing.T) {
	r := NewRegistry(nil)
	m := NewMultiplexer(r)
	s := r.CreateOrGet("standup", "alice")
	alice, _ := joinConnected(t, r, m, s, "alice")

	t1, err := m.Publish(s, alice.ID, TrackAudio)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	t2, err := m.Publish(s, alice.ID, TrackAudio)
	if err != nil {
		t.Fatalf("republish: %v", err)
	}

	if t1 == t2 {
		t.Error("expected a fresh track instance on republish")
	}
	if t1.State() != StateUnpublishedFinal {
		t.Errorf("expected old track UNPUBLISHED_FINAL, got %s", t1.State())
	}
	if t2.State() != StatePublished {
		t.Errorf("expected new track PUBLISHED, got %s", t2.State())
	}
}
