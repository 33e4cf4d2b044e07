package capture

import (
	"context"
	"errors"
	"testing"
)

func TestOpenAndPushChunks(t *testing.T) {
	f := NewAudioFeed()
	stream, err := f.OpenTabAudio(context.Background(), 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if !f.Push(1, []byte("chunk-a")) {
		t.Fatalf("push to an open stream must be accepted")
	}
	if got := <-stream.Chunks(); string(got) != "chunk-a" {
		t.Fatalf("unexpected chunk: %q", got)
	}
}

func TestPushWithoutOpenStreamDropped(t *testing.T) {
	f := NewAudioFeed()
	if f.Push(1, []byte("chunk")) {
		t.Fatalf("push without an open stream must be dropped")
	}
}

func TestSecondOpenSameTabRejected(t *testing.T) {
	f := NewAudioFeed()
	if _, err := f.OpenTabAudio(context.Background(), 1); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.OpenTabAudio(context.Background(), 1); !errors.Is(err, ErrStreamOpen) {
		t.Fatalf("expected ErrStreamOpen, got %v", err)
	}
	// other tabs are unaffected
	if _, err := f.OpenTabAudio(context.Background(), 2); err != nil {
		t.Fatalf("open second tab: %v", err)
	}
}

func TestStopClosesChannelAndReleasesTab(t *testing.T) {
	f := NewAudioFeed()
	stream, err := f.OpenTabAudio(context.Background(), 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	f.Push(1, []byte("last"))

	if err := stream.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	// buffered chunk drains, then the channel closes
	if got := <-stream.Chunks(); string(got) != "last" {
		t.Fatalf("in-flight chunk lost: %q", got)
	}
	if _, open := <-stream.Chunks(); open {
		t.Fatalf("channel must be closed after stop")
	}

	if f.Push(1, []byte("late")) {
		t.Fatalf("push after stop must be dropped")
	}
	if _, err := f.OpenTabAudio(context.Background(), 1); err != nil {
		t.Fatalf("tab must be reopenable after stop: %v", err)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	f := NewAudioFeed()
	stream, _ := f.OpenTabAudio(context.Background(), 1)
	if err := stream.Stop(); err != nil {
		t.Fatalf("first stop: %v", err)
	}
	if err := stream.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
