package hackernews

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetItem_ParsesThread(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/item/42.json" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":42,"type":"story","by":"whoishiring","time":1717200000,"title":"Ask HN: Who is hiring? (June 2024)","kids":[101,102,103]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	item, err := c.GetItem(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if item.ID != 42 {
		t.Fatalf("expected id 42, got %d", item.ID)
	}
	if len(item.Kids) != 3 {
		t.Fatalf("expected 3 kids, got %d", len(item.Kids))
	}
	if item.PostedAt().IsZero() {
		t.Fatalf("expected posted_at from unix time")
	}
	if item.SourceID() != "42" {
		t.Fatalf("unexpected source id: %s", item.SourceID())
	}
}

func TestGetItem_NullBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `null`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetItem(context.Background(), 999)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestItem_PlainTextAndFirstLink(t *testing.T) {
	item := Item{
		Text: `Acme Corp | Senior Go Engineer | Berlin | ONSITE<p>We build infra tooling.<p>Apply at <a href="https:&#x2F;&#x2F;acme.example&#x2F;jobs" rel="nofollow">https:&#x2F;&#x2F;acme.example&#x2F;jobs</a>`,
	}

	text := item.PlainText()
	if text == "" {
		t.Fatalf("expected plain text")
	}
	if want := "Acme Corp | Senior Go Engineer | Berlin | ONSITE"; text[:len(want)] != want {
		t.Fatalf("unexpected first line: %q", text)
	}
	if link := item.FirstLink(); link != "https://acme.example/jobs" {
		t.Fatalf("unexpected first link: %q", link)
	}
}
