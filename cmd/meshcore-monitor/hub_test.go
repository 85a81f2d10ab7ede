package main

import (
	"testing"

	"github.com/meshcore-go/companion/codec"
)

func TestCategoryName(t *testing.T) {
	tests := []struct {
		in   codec.ResponseCategory
		want string
	}{
		{codec.CategoryDevice, "device"},
		{codec.CategoryContact, "contact"},
		{codec.CategoryMessage, "message"},
		{codec.CategoryPush, "push"},
		{codec.CategoryUnknown, "unknown"},
	}
	for _, tt := range tests {
		if got := categoryName(tt.in); got != tt.want {
			t.Errorf("categoryName(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSummarizePrefersParseFailure(t *testing.T) {
	ev := codec.Event{
		ParseFailure:   &codec.ParseFailure{Reason: "bad frame"},
		ContactMessage: &codec.ContactMessage{Text: "hello"},
	}
	if got := summarize(ev); got != "bad frame" {
		t.Errorf("summarize() = %q, want %q", got, "bad frame")
	}
}

func TestSummarizeContactMessage(t *testing.T) {
	ev := codec.Event{ContactMessage: &codec.ContactMessage{Text: "hello"}}
	if got := summarize(ev); got != "hello" {
		t.Errorf("summarize() = %q, want %q", got, "hello")
	}
}

func TestNewBridgeEventMarksPushCodes(t *testing.T) {
	ev := codec.Event{Code: codec.RespAdvertisement, Category: codec.CategoryPush}
	be := newBridgeEvent(ev)
	if !be.Push {
		t.Error("expected Push=true for a push response code")
	}
	if be.Category != "push" {
		t.Errorf("Category = %q, want push", be.Category)
	}
}
