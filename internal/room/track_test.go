package room

import (
	"errors"
	"testing"
)

func TestTrack_PublishLifecycle(t *testing.T) {
	tr := NewTrack(TrackAudio)

	if tr.State() != StateUnpublished {
		t.Errorf("expected UNPUBLISHED, got %s", tr.State())
	}
	if err := tr.Publish(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.State() != StatePublished {
		t.Errorf("expected PUBLISHED, got %s", tr.State())
	}
	if err := tr.Publish(); !errors.Is(err, ErrAlreadyPublished) {
		t.Errorf("expected ErrAlreadyPublished, got %v", err)
	}

	tr.Unpublish()
	if tr.State() != StateUnpublishedFinal {
		t.Errorf("expected UNPUBLISHED_FINAL, got %s", tr.State())
	}
	if err := tr.Publish(); !errors.Is(err, ErrTrackClosed) {
		t.Errorf("expected ErrTrackClosed after unpublish, got %v", err)
	}
}

func TestTrack_SubscribeRules(t *testing.T) {
	tr := NewTrack(TrackVideo)

	if err := tr.Subscribe("peer-1"); !errors.Is(err, ErrNotPublished) {
		t.Errorf("expected ErrNotPublished before publish, got %v", err)
	}

	_ = tr.Publish()
	if err := tr.Subscribe("peer-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Subscribe("peer-1"); !errors.Is(err, ErrAlreadySubscribed) {
		t.Errorf("expected ErrAlreadySubscribed, got %v", err)
	}
	if tr.Subscribers() != 1 {
		t.Errorf("expected 1 subscriber, got %d", tr.Subscribers())
	}

	if err := tr.Unsubscribe("peer-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Unsubscribe("peer-1"); !errors.Is(err, ErrNotSubscribed) {
		t.Errorf("expected ErrNotSubscribed, got %v", err)
	}
}

func TestTrack_UnpublishDropsSubscribers(t *testing.T) {
	tr := NewTrack(TrackData)
	_ = tr.Publish()
	_ = tr.Subscribe("peer-1")
	_ = tr.Subscribe("peer-2")

	tr.Unpublish()
	if tr.Subscribers() != 0 {
		t.Errorf("expected 0 subscribers after unpublish, got %d", tr.Subscribers())
	}
	if err := tr.Subscribe("peer-3"); !errors.Is(err, ErrTrackClosed) {
		t.Errorf("expected ErrTrackClosed, got %v", err)
	}

	// Idempotent.
	tr.Unpublish()
	if tr.State() != StateUnpublishedFinal {
		t.Errorf("expected UNPUBLISHED_FINAL, got %s", tr.State())
	}
}

func TestTrackState_String(t *testing.T) {
	cases := []struct {
		state TrackState
		want  string
	}{
		{StateUnpublished, "UNPUBLISHED"},
		{StatePublished, "PUBLISHED"},
		{StateUnpublishedFinal, "UNPUBLISHED_FINAL"},
		{TrackState(99), "UNKNOWN(99)"},
	}
	for _, tc := range cases {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("String(%d) = %s, want %s", tc.state, got, tc.want)
		}
	}
}
