package capture

import (
	"context"
	"errors"
	"testing"
)

func TestTextFeedReturnsLatestSubmission(t *testing.T) {
	f := NewTextFeed()
	if _, err := f.ExtractVisibleText(context.Background(), 1); !errors.Is(err, ErrNoText) {
		t.Fatalf("empty feed must report ErrNoText, got %v", err)
	}

	f.Submit(1, "first page text")
	f.Submit(1, "second page text")
	got, err := f.ExtractVisibleText(context.Background(), 1)
	if err != nil || got != "second page text" {
		t.Fatalf("expected latest submission, got %q err=%v", got, err)
	}

	// tabs are independent
	if _, err := f.ExtractVisibleText(context.Background(), 2); !errors.Is(err, ErrNoText) {
		t.Fatalf("other tab must stay empty, got %v", err)
	}
}

func TestTextFeedEmptySubmissionClears(t *testing.T) {
	f := NewTextFeed()
	f.Submit(1, "something")
	f.Submit(1, "")
	if _, err := f.ExtractVisibleText(context.Background(), 1); !errors.Is(err, ErrNoText) {
		t.Fatalf("empty submission must clear the tab, got %v", err)
	}
}

func TestTextFeedForget(t *testing.T) {
	f := NewTextFeed()
	f.Submit(1, "something")
	f.Forget(1)
	if _, err := f.ExtractVisibleText(context.Background(), 1); !errors.Is(err, ErrNoText) {
		t.Fatalf("forgotten tab must report ErrNoText, got %v", err)
	}
}
