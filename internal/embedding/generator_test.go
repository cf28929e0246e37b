package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"resume-pathways/internal/pkg/retry"
)

type fakeProvider struct {
	vec      []float32
	err      error
	failures int
	calls    int
	lastText string
}

func (f *fakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	f.lastText = text
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("timeout awaiting response")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeProvider) Model() string { return "fake-embedding-001" }

func newTestGenerator(p Provider) *Generator {
	g := NewGenerator(p)
	g.policy = retry.Policy{MaxAttempts: 3}
	return g
}

func TestGenerate_PadsShortVector(t *testing.T) {
	native := make([]float32, 1536)
	for i := range native {
		native[i] = 0.5
	}
	g := newTestGenerator(&fakeProvider{vec: native})

	out, err := g.Generate(context.Background(), "some resume text")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(out) != CanonicalDim {
		t.Fatalf("expected length %d, got %d", CanonicalDim, len(out))
	}
	for i := 0; i < 1536; i++ {
		if out[i] != 0.5 {
			t.Fatalf("payload value clobbered at %d", i)
		}
	}
	for i := 1536; i < CanonicalDim; i++ {
		if out[i] != 0 {
			t.Fatalf("expected zero padding at %d, got %v", i, out[i])
		}
	}
}

func TestGenerate_ExactLengthUnchanged(t *testing.T) {
	native := make([]float32, CanonicalDim)
	native[0] = 1
	native[CanonicalDim-1] = 2
	g := newTestGenerator(&fakeProvider{vec: native})

	out, err := g.Generate(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out[0] != 1 || out[CanonicalDim-1] != 2 {
		t.Fatalf("exact-length vector must pass through unchanged")
	}
}

func TestGenerate_OverLengthRejectedPermanently(t *testing.T) {
	g := newTestGenerator(&fakeProvider{vec: make([]float32, CanonicalDim+1)})

	_, err := g.Generate(context.Background(), "text")
	if err == nil {
		t.Fatalf("expected error for over-length vector")
	}
	if !retry.IsPermanent(err) {
		t.Fatalf("over-length vector must be a permanent error, got %v", err)
	}
}

func TestGenerate_TruncatesLongInput(t *testing.T) {
	p := &fakeProvider{vec: make([]float32, 8)}
	g := newTestGenerator(p)

	long := strings.Repeat("a", 9000)
	if _, err := g.Generate(context.Background(), long); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := utf8.RuneCountInString(p.lastText); got != MaxInputChars {
		t.Fatalf("expected input truncated to %d chars, got %d", MaxInputChars, got)
	}
}

func TestGenerate_RetriesTransientFailures(t *testing.T) {
	p := &fakeProvider{vec: make([]float32, 8), failures: 2}
	g := newTestGenerator(p)

	if _, err := g.Generate(context.Background(), "text"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.calls != 3 {
		t.Fatalf("expected 3 provider calls, got %d", p.calls)
	}
}

func TestGenerate_EmptyInputPermanent(t *testing.T) {
	p := &fakeProvider{vec: make([]float32, 8)}
	g := newTestGenerator(p)

	_, err := g.Generate(context.Background(), "   ")
	if !retry.IsPermanent(err) {
		t.Fatalf("empty input must fail permanently, got %v", err)
	}
	if p.calls != 0 {
		t.Fatalf("provider must not be called for empty input")
	}
}

func TestTruncate_MultiByteSafe(t *testing.T) {
	s := strings.Repeat("é", 10)
	out := Truncate(s, 4)
	if utf8.RuneCountInString(out) != 4 {
		t.Fatalf("expected 4 runes, got %d", utf8.RuneCountInString(out))
	}
	if !utf8.ValidString(out) {
		t.Fatalf("truncation split a multi-byte character")
	}
}
