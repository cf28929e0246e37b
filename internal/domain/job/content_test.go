package job

import (
	"errors"
	"strings"
	"testing"
)

func TestParseContent_Sentinel(t *testing.T) {
	_, err := ParseContent(FailedSentinel)
	if !errors.Is(err, ErrContentFailed) {
		t.Fatalf("expected ErrContentFailed, got %v", err)
	}
}

func TestParseContent_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "{not json", `{"company":"Acme"}`} {
		if _, err := ParseContent(raw); !errors.Is(err, ErrInvalidContent) {
			t.Fatalf("%q: expected ErrInvalidContent, got %v", raw, err)
		}
	}
}

func TestSerializeContent_RequiresTitle(t *testing.T) {
	if _, err := SerializeContent(Content{Company: "Acme"}); !errors.Is(err, ErrInvalidContent) {
		t.Fatalf("expected ErrInvalidContent, got %v", err)
	}
}

func TestContent_Text(t *testing.T) {
	c := Content{
		Title:       "Go Engineer",
		Company:     "Acme",
		Location:    Location{City: "Berlin", CountryCode: "DE"},
		Remote:      true,
		Experience:  "senior",
		Skills:      []string{"go", "postgresql"},
		BonusSkills: []string{"kubernetes"},
		Description: "Infra team.",
	}
	text := c.Text()
	for _, want := range []string{"Go Engineer", "Acme", "Remote", "Skills: go, postgresql", "Nice to have: kubernetes"} {
		if !strings.Contains(text, want) {
			t.Fatalf("text missing %q:\n%s", want, text)
		}
	}
}
