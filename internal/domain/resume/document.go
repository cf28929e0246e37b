package resume

import (
	"encoding/json"
	"errors"
	"strings"
)

// Document is the structured professional-profile schema stored for each
// user. It is parsed once at the read boundary and serialized only when
// written back.
type Document struct {
	Basics    Basics      `json:"basics"`
	Work      []Work      `json:"work,omitempty"`
	Education []Education `json:"education,omitempty"`
	Skills    []Skill     `json:"skills,omitempty"`
	Projects  []Project   `json:"projects,omitempty"`
	Languages []Language  `json:"languages,omitempty"`
}

type Basics struct {
	Name     string   `json:"name,omitempty"`
	Label    string   `json:"label,omitempty"`
	Email    string   `json:"email,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Location Location `json:"location,omitempty"`
}

type Location struct {
	City        string `json:"city,omitempty"`
	Region      string `json:"region,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
}

type Work struct {
	Name       string   `json:"name,omitempty"`
	Position   string   `json:"position,omitempty"`
	StartDate  string   `json:"startDate,omitempty"`
	EndDate    string   `json:"endDate,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Highlights []string `json:"highlights,omitempty"`
}

type Education struct {
	Institution string `json:"institution,omitempty"`
	Area        string `json:"area,omitempty"`
	StudyType   string `json:"studyType,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
}

type Skill struct {
	Name     string   `json:"name,omitempty"`
	Level    string   `json:"level,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

type Project struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

type Language struct {
	Language string `json:"language,omitempty"`
	Fluency  string `json:"fluency,omitempty"`
}

var ErrInvalidDocument = errors.New("invalid resume document")

func Parse(raw string) (Document, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Document{}, ErrInvalidDocument
	}
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Document{}, ErrInvalidDocument
	}
	return doc, nil
}

func Serialize(doc Document) (string, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// SkillKeywords flattens skill names and keywords into a lowercase set,
// the form the match scorer consumes.
func (d Document) SkillKeywords() []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(d.Skills)*4)
	add := func(s string) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, sk := range d.Skills {
		add(sk.Name)
		for _, kw := range sk.Keywords {
			add(kw)
		}
	}
	return out
}

// Text renders the document as plain text for embedding generation.
func (d Document) Text() string {
	var b strings.Builder
	line := func(parts ...string) {
		joined := strings.TrimSpace(strings.Join(parts, " "))
		if joined == "" {
			return
		}
		b.WriteString(joined)
		b.WriteString("\n")
	}

	line(d.Basics.Name, d.Basics.Label)
	line(d.Basics.Summary)
	line(d.Basics.Location.City, d.Basics.Location.Region, d.Basics.Location.CountryCode)

	for _, w := range d.Work {
		line(w.Position, "at", w.Name)
		line(w.Summary)
		for _, h := range w.Highlights {
			line(h)
		}
	}
	for _, e := range d.Education {
		line(e.StudyType, e.Area, "-", e.Institution)
	}
	for _, s := range d.Skills {
		line(s.Name + ": " + strings.Join(s.Keywords, ", "))
	}
	for _, p := range d.Projects {
		line(p.Name)
		line(p.Description)
	}

	return strings.TrimSpace(b.String())
}
