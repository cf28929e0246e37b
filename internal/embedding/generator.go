package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resume-pathways/internal/pkg/retry"
)

const (
	// CanonicalDim is the fixed length all stored vectors conform to,
	// regardless of the provider model's native output length.
	CanonicalDim = 3072

	// MaxInputChars is the provider's input ceiling. Text is truncated
	// client-side so the provider never rejects an oversized request.
	MaxInputChars = 8192
)

var (
	ErrEmptyInput  = errors.New("embedding input is empty")
	ErrEmptyVector = errors.New("provider returned empty vector")
)

// Provider produces a vector at the model's native dimensionality.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

type Generator struct {
	provider Provider
	dim      int
	maxChars int
	policy   retry.Policy
}

func NewGenerator(provider Provider) *Generator {
	return &Generator{
		provider: provider,
		dim:      CanonicalDim,
		maxChars: MaxInputChars,
		policy:   retry.DefaultPolicy(),
	}
}

// Generate embeds text at the canonical dimensionality. Short vectors are
// right-padded with zeros; a vector longer than the canonical length is a
// permanent error, since truncating a semantic vector is lossy in an
// uncontrolled way.
func (g *Generator) Generate(ctx context.Context, text string) ([]float32, error) {
	if g == nil || g.provider == nil {
		return nil, errors.New("nil embedding generator")
	}

	text = Truncate(strings.TrimSpace(text), g.maxChars)
	if text == "" {
		return nil, retry.Permanent(ErrEmptyInput)
	}

	var raw []float32
	err := retry.Do(ctx, g.policy, func(ctx context.Context) error {
		vec, err := g.provider.Embed(ctx, text)
		if err != nil {
			return err
		}
		if len(vec) == 0 {
			return retry.Permanent(ErrEmptyVector)
		}
		raw = vec
		return nil
	})
	if err != nil {
		return nil, err
	}

	return Pad(raw, g.dim)
}

func (g *Generator) Model() string {
	if g == nil || g.provider == nil {
		return ""
	}
	return g.provider.Model()
}

// Truncate cuts text to at most maxChars characters (runes, so a
// multi-byte character is never split).
func Truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}

// Pad right-pads vec with zeros up to dim. Different model versions return
// different native dimensionalities; padding keeps stored vectors
// comparable. Vectors longer than dim are rejected.
func Pad(vec []float32, dim int) ([]float32, error) {
	if len(vec) > dim {
		return nil, retry.Permanent(fmt.Errorf("embedding length %d exceeds canonical dimensionality %d", len(vec), dim))
	}
	if len(vec) == dim {
		return vec, nil
	}
	out := make([]float32, dim)
	copy(out, vec)
	return out, nil
}
