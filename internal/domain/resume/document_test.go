package resume

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParse_Invalid(t *testing.T) {
	for _, raw := range []string{"", "  ", "{broken"} {
		if _, err := Parse(raw); !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("%q: expected ErrInvalidDocument, got %v", raw, err)
		}
	}
}

func TestSkillKeywords_LowercaseDedup(t *testing.T) {
	doc := Document{
		Skills: []Skill{
			{Name: "Go", Keywords: []string{"PostgreSQL", "go"}},
			{Name: "Kubernetes", Keywords: []string{"postgresql"}},
		},
	}
	got := doc.SkillKeywords()
	want := []string{"go", "postgresql", "kubernetes"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestText_RendersSections(t *testing.T) {
	doc := Document{
		Basics: Basics{Name: "J Doe", Label: "Backend Engineer", Summary: "Builds services."},
		Work:   []Work{{Name: "Acme", Position: "Engineer", Summary: "Infra."}},
		Skills: []Skill{{Name: "Go", Keywords: []string{"PostgreSQL"}}},
	}
	text := doc.Text()
	for _, want := range []string{"J Doe Backend Engineer", "Engineer at Acme", "Go: PostgreSQL"} {
		if !strings.Contains(text, want) {
			t.Fatalf("text missing %q:\n%s", want, text)
		}
	}
}
